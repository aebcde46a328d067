package download

import (
	"context"

	"github.com/ytget/ytube-downloader/internal/model"
)

// Backend defines the media fetch engine the controller delegates to.
type Backend interface {
	// Probe extracts metadata without downloading media.
	Probe(ctx context.Context, url string) (*model.Metadata, error)

	// Download blocks until the media is fetched and post-processed. The
	// backend must stop and return the hook's error when the hook fails.
	Download(ctx context.Context, url string, opts model.FetchOptions, hook model.ProgressHook) error
}

// Observer receives task notifications. Calls arrive on the task goroutine.
type Observer interface {
	Progress(percent int)
	Status(text string)
	Finished(success bool, path string)
}

// Tagger writes metadata into a produced artifact
type Tagger interface {
	Tag(path, title string) error
}

// Recorder persists finished tasks
type Recorder interface {
	Record(ctx context.Context, entry model.HistoryEntry) error
}

// ObserverFuncs adapts plain functions to the Observer interface. Nil
// fields are ignored.
type ObserverFuncs struct {
	OnProgress func(percent int)
	OnStatus   func(text string)
	OnFinished func(success bool, path string)
}

func (o ObserverFuncs) Progress(percent int) {
	if o.OnProgress != nil {
		o.OnProgress(percent)
	}
}

func (o ObserverFuncs) Status(text string) {
	if o.OnStatus != nil {
		o.OnStatus(text)
	}
}

func (o ObserverFuncs) Finished(success bool, path string) {
	if o.OnFinished != nil {
		o.OnFinished(success, path)
	}
}

// MultiObserver fans notifications out to several observers in order
type MultiObserver []Observer

func (m MultiObserver) Progress(percent int) {
	for _, o := range m {
		o.Progress(percent)
	}
}

func (m MultiObserver) Status(text string) {
	for _, o := range m {
		o.Status(text)
	}
}

func (m MultiObserver) Finished(success bool, path string) {
	for _, o := range m {
		o.Finished(success, path)
	}
}
