package model

// FetchStatus is the phase reported by the backend in a progress event
type FetchStatus string

const (
	FetchDownloading FetchStatus = "downloading"
	FetchFinished    FetchStatus = "finished"
)

// PostProcessor requests an audio extraction step after download
type PostProcessor struct {
	Codec   string // target codec, e.g. "mp3"
	Bitrate string // numeric kbps, e.g. "192"
}

// FetchOptions is the configuration record handed to the backend download call
type FetchOptions struct {
	FormatSelector string
	OutputTemplate string
	PostProcessors []PostProcessor
}

// ProgressEvent is one callback invocation from the backend.
// Totals, Speed and ETASec of zero or less are treated as absent.
type ProgressEvent struct {
	Status             FetchStatus
	DownloadedBytes    int64
	TotalBytes         int64
	TotalBytesEstimate int64
	Speed              float64 // bytes per second
	ETASec             int
}

// ProgressHook receives backend progress events. Returning a non-nil error
// asks the backend to abort the download and return that error.
type ProgressHook func(ProgressEvent) error

// Metadata is the subset of probe output the app uses
type Metadata struct {
	URL   string
	Title string
}
