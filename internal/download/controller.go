package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/ytube-downloader/internal/model"
	"github.com/ytget/ytube-downloader/internal/platform"
)

// Status lines
const (
	StatusAlreadyRunning = "A download is already in progress"
	StatusExtracting     = "Extracting video information..."
	StatusProcessing     = "Processing video..."
	StatusDownloading    = "Downloading..."
	StatusPostProcessing = "Download finished, processing file..."
	StatusCancelling     = "Cancelling download..."
	StatusErrorPrefix    = "Error: "
)

const (
	TaskIDPrefix        = "task-"
	DefaultProbeTimeout = 60 * time.Second
	recordTimeout       = 5 * time.Second
)

// Config holds the controller collaborators. Backend is required.
type Config struct {
	Backend  Backend
	Observer Observer
	Tagger   Tagger   // optional
	Recorder Recorder // optional
}

// Controller runs at most one download at a time
type Controller struct {
	backend  Backend
	observer Observer
	tagger   Tagger
	recorder Recorder

	mu      sync.Mutex
	state   model.TaskState
	current *task
}

// task is the per-start state owned by the task goroutine
type task struct {
	id       string
	req      model.DownloadRequest
	title    string
	progress percentTracker
	finished bool // terminal Result emitted, guarded by Controller.mu
	done     chan struct{}
}

// NewController creates a controller in the Idle state
func NewController(cfg Config) *Controller {
	observer := cfg.Observer
	if observer == nil {
		observer = ObserverFuncs{}
	}
	return &Controller{
		backend:  cfg.Backend,
		observer: observer,
		tagger:   cfg.Tagger,
		recorder: cfg.Recorder,
		state:    model.StateIdle,
	}
}

// State returns the current task state
func (c *Controller) State() model.TaskState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start launches a download in the background and returns its task ID.
// While another task is active the request is rejected with
// ErrAlreadyRunning and nothing else changes.
func (c *Controller) Start(req model.DownloadRequest) (string, error) {
	if err := req.Validate(); err != nil {
		c.observer.Status(StatusErrorPrefix + err.Error())
		return "", fmt.Errorf("invalid request: %w", err)
	}

	c.mu.Lock()
	if c.state.IsActive() {
		c.mu.Unlock()
		c.observer.Status(StatusAlreadyRunning)
		return "", ErrAlreadyRunning
	}
	t := &task{
		id:   generateTaskID(),
		req:  req,
		done: make(chan struct{}),
	}
	c.state = model.StateRunning
	c.current = t
	c.mu.Unlock()

	log.Printf("[download] task %s started: %s (%s, %s) -> %s", t.id, req.URL, req.Format, req.Quality, req.Dir)
	go c.run(t)
	return t.id, nil
}

// Cancel requests cooperative cancellation of the running task. It takes
// effect the next time the backend reports progress. Returns false when
// there was nothing to cancel, including a task that already reported its
// Result and is only finishing up.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if c.state != model.StateRunning || c.current.finished {
		c.mu.Unlock()
		return false
	}
	c.state = model.StateCancelling
	id := c.current.id
	c.mu.Unlock()

	log.Printf("[download] task %s: cancel requested", id)
	c.observer.Status(StatusCancelling)
	return true
}

// Wait blocks until the active task, if any, has finished
func (c *Controller) Wait() {
	c.mu.Lock()
	t := c.current
	c.mu.Unlock()
	if t != nil {
		<-t.done
	}
}

func (c *Controller) cancelRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == model.StateCancelling
}

// run is the task goroutine. Every exit path goes through finish.
func (c *Controller) run(t *task) {
	var (
		path string
		err  error
	)
	defer func() {
		if r := recover(); r != nil {
			path, err = "", wrapKind(ErrBackendFailure, fmt.Errorf("panic: %v", r))
		}
		c.finish(t, path, err)
	}()

	path, err = c.execute(t)
}

func (c *Controller) execute(t *task) (string, error) {
	platform.RemovePartials(t.req.Dir)

	opts := BuildFetchOptions(t.req)
	c.probe(t)

	if c.cancelRequested() {
		return "", ErrCancelled
	}

	if err := c.backend.Download(context.Background(), t.req.URL, opts, c.progressHook(t)); err != nil {
		if errors.Is(err, ErrCancelled) {
			return "", err
		}
		return "", wrapKind(ErrBackendFailure, err)
	}

	// the backend may finish without calling the hook again
	if c.cancelRequested() {
		return "", ErrCancelled
	}

	path, err := platform.NewestFile(t.req.Dir)
	if err != nil {
		log.Printf("[download] task %s: %v", t.id, err)
		return "", ErrArtifactNotFound
	}

	if c.tagger != nil && t.req.Format == model.FormatMP3 && t.title != "" {
		if err := c.tagger.Tag(path, t.title); err != nil {
			log.Printf("[download] task %s: tagging %s failed: %v", t.id, path, err)
		}
	}

	c.observer.Status("Download complete: " + filepath.Base(path))
	c.observer.Progress(100)
	return path, nil
}

// probe fetches the title for status reporting. Failure is not fatal.
func (c *Controller) probe(t *task) {
	c.observer.Status(StatusExtracting)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultProbeTimeout)
	defer cancel()

	meta, err := c.backend.Probe(ctx, t.req.URL)
	if err != nil || meta == nil || meta.Title == "" {
		if err != nil {
			log.Printf("[download] task %s: %v", t.id, wrapKind(ErrProbeFailed, err))
		}
		c.observer.Status(StatusProcessing)
		return
	}

	t.title = meta.Title
	c.observer.Status("Processing: " + meta.Title)
}

// progressHook returns the callback handed to the backend. It runs on the
// backend's goroutine and signals cancellation by returning ErrCancelled.
func (c *Controller) progressHook(t *task) model.ProgressHook {
	return func(ev model.ProgressEvent) error {
		if c.cancelRequested() {
			return ErrCancelled
		}

		switch ev.Status {
		case model.FetchDownloading:
			snap := snapshot(t.progress.next(ev), ev)
			c.observer.Progress(snap.Percent)
			c.observer.Status(snap.Status)
		case model.FetchFinished:
			c.observer.Status(StatusPostProcessing)
		}
		return nil
	}
}

// finish emits the terminal result, cleans up and returns to Idle
func (c *Controller) finish(t *task, path string, err error) {
	result := model.Result{TaskID: t.id, Success: err == nil, Path: path, Err: err}

	// nothing may follow the Result, so late cancels are refused from here on
	c.mu.Lock()
	t.finished = true
	c.mu.Unlock()

	if err != nil {
		result.Path = ""
		log.Printf("[download] task %s failed: %v", t.id, err)
		c.observer.Status(StatusErrorPrefix + err.Error())
		c.observer.Finished(false, "")
		if removed := platform.RemovePartials(t.req.Dir); removed > 0 {
			log.Printf("[download] task %s: removed %d partial files", t.id, removed)
		}
	} else {
		log.Printf("[download] task %s completed: %s", t.id, path)
		c.observer.Finished(true, path)
	}

	c.record(t, result)

	c.mu.Lock()
	c.state = model.StateIdle
	c.mu.Unlock()
	close(t.done)
}

func (c *Controller) record(t *task, result model.Result) {
	if c.recorder == nil {
		return
	}

	entry := model.HistoryEntry{
		TaskID:     t.id,
		URL:        t.req.URL,
		Format:     t.req.Format,
		Quality:    t.req.Quality,
		Path:       result.Path,
		Success:    result.Success,
		FinishedAt: time.Now(),
	}
	if result.Err != nil {
		entry.Error = result.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := c.recorder.Record(ctx, entry); err != nil {
		log.Printf("[download] task %s: failed to record history: %v", t.id, err)
	}
}

// generateTaskID generates a unique task ID using UUID v7 for time ordering
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
