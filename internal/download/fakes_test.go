package download

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ytget/ytube-downloader/internal/model"
)

// fakeBackend replays scripted progress events
type fakeBackend struct {
	mu sync.Mutex

	title    string
	probeErr error

	events      []model.ProgressEvent
	partials    []string // created in the destination before events
	produce     string   // created in the destination on success
	downloadErr error
	panicMsg    string

	entered chan struct{} // signalled when Download starts, must be buffered
	release chan struct{} // Download waits for it before replaying events

	downloads int
	opts      model.FetchOptions
	hookErr   error
}

func (f *fakeBackend) Probe(ctx context.Context, url string) (*model.Metadata, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return &model.Metadata{URL: url, Title: f.title}, nil
}

func (f *fakeBackend) Download(ctx context.Context, url string, opts model.FetchOptions, hook model.ProgressHook) error {
	f.mu.Lock()
	f.downloads++
	f.opts = opts
	f.mu.Unlock()

	dir := filepath.Dir(opts.OutputTemplate)
	for _, name := range f.partials {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("partial"), 0644); err != nil {
			return err
		}
	}

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}

	for _, ev := range f.events {
		if err := hook(ev); err != nil {
			f.mu.Lock()
			f.hookErr = err
			f.mu.Unlock()
			return err
		}
	}

	if f.downloadErr != nil {
		return f.downloadErr
	}
	if f.produce != "" {
		return os.WriteFile(filepath.Join(dir, f.produce), []byte("media"), 0644)
	}
	return nil
}

func (f *fakeBackend) downloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloads
}

type eventKind string

const (
	evProgress eventKind = "progress"
	evStatus   eventKind = "status"
	evFinished eventKind = "finished"
)

type observed struct {
	kind    eventKind
	percent int
	text    string
	success bool
	path    string
}

// recordingObserver captures notifications in order
type recordingObserver struct {
	mu     sync.Mutex
	events []observed
}

func (r *recordingObserver) Progress(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, observed{kind: evProgress, percent: percent})
}

func (r *recordingObserver) Status(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, observed{kind: evStatus, text: text})
}

func (r *recordingObserver) Finished(success bool, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, observed{kind: evFinished, success: success, path: path})
}

func (r *recordingObserver) all() []observed {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]observed(nil), r.events...)
}

func (r *recordingObserver) of(kind eventKind) []observed {
	var out []observed
	for _, e := range r.all() {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingObserver) percents() []int {
	var out []int
	for _, e := range r.of(evProgress) {
		out = append(out, e.percent)
	}
	return out
}

func (r *recordingObserver) hasStatus(text string) bool {
	for _, e := range r.of(evStatus) {
		if e.text == text {
			return true
		}
	}
	return false
}

// fakeTagger records tag calls
type fakeTagger struct {
	mu    sync.Mutex
	calls map[string]string
}

func (f *fakeTagger) Tag(path, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]string)
	}
	f.calls[path] = title
	return nil
}

// fakeRecorder keeps history entries in memory
type fakeRecorder struct {
	mu      sync.Mutex
	entries []model.HistoryEntry
	delay   time.Duration // simulates a slow database
}

func (f *fakeRecorder) Record(ctx context.Context, entry model.HistoryEntry) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}
