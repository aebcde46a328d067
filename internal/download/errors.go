package download

import "errors"

var (
	ErrAlreadyRunning   = errors.New("a download is already in progress")
	ErrProbeFailed      = errors.New("metadata probe failed")
	ErrBackendFailure   = errors.New("backend download failed")
	ErrArtifactNotFound = errors.New("could not locate the downloaded file")
	ErrCancelled        = errors.New("download cancelled")
)

// taskError tags an underlying error with its kind. Error() returns only
// the underlying text so status lines show what the backend reported.
type taskError struct {
	kind error
	err  error
}

func (e *taskError) Error() string {
	return e.err.Error()
}

func (e *taskError) Unwrap() []error {
	return []error{e.kind, e.err}
}

func wrapKind(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return &taskError{kind: kind, err: err}
}
