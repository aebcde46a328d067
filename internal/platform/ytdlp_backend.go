package platform

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/ytube-downloader/internal/model"
)

// Backend defaults
const (
	DefaultProgressInterval = 500 * time.Millisecond
	DefaultMaxRetries       = 1
	DefaultRetryBackoff     = 2 * time.Second
)

// ErrNoMetadata is returned when yt-dlp produced no extractable info
var ErrNoMetadata = errors.New("no metadata returned")

// YTDLPBackend fetches media through the yt-dlp binary
type YTDLPBackend struct {
	executable       string // empty resolves the installed binary
	progressInterval time.Duration
	maxRetries       int
	retryBackoff     time.Duration
}

// NewYTDLPBackend creates a backend with default settings
func NewYTDLPBackend() *YTDLPBackend {
	return &YTDLPBackend{
		progressInterval: DefaultProgressInterval,
		maxRetries:       DefaultMaxRetries,
		retryBackoff:     DefaultRetryBackoff,
	}
}

// SetExecutable pins the yt-dlp binary instead of resolving or installing one
func (b *YTDLPBackend) SetExecutable(path string) *YTDLPBackend {
	b.executable = path
	return b
}

// EnsureInstalled resolves the yt-dlp binary, downloading it when missing.
// A pinned executable is used as is.
func (b *YTDLPBackend) EnsureInstalled(ctx context.Context) error {
	if b.executable != "" {
		return nil
	}
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	return nil
}

// Probe extracts metadata without downloading media
func (b *YTDLPBackend) Probe(ctx context.Context, url string) (*model.Metadata, error) {
	res, err := b.command().
		Quiet().
		NoPlaylist().
		DumpJSON().
		Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("probe failed: %w", err)
	}

	info, err := res.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to parse probe output: %w", err)
	}
	if len(info) == 0 {
		return nil, ErrNoMetadata
	}

	meta := &model.Metadata{URL: url}
	if info[0].Title != nil {
		meta.Title = *info[0].Title
	}
	return meta, nil
}

// Download runs a blocking download. Progress events are forwarded to hook;
// if hook returns an error the run is aborted and that error is returned.
func (b *YTDLPBackend) Download(ctx context.Context, url string, opts model.FetchOptions, hook model.ProgressHook) error {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		hookMu  sync.Mutex
		hookErr error
		events  int
		rate    rateMeter
	)

	dl := b.buildCommand(opts)
	dl.ProgressFunc(b.progressInterval, func(update ytdlp.ProgressUpdate) {
		hookMu.Lock()
		defer hookMu.Unlock()
		if hookErr != nil || hook == nil {
			return
		}
		ev, ok := toProgressEvent(&update)
		if !ok {
			return
		}
		ev.Speed = rate.observe(update.DownloadedBytes, time.Now())
		events++
		if err := hook(ev); err != nil {
			hookErr = err
			cancel(err)
		}
	})

	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(b.retryBackoff):
			case <-runCtx.Done():
				return b.abortError(runCtx)
			}
			log.Printf("[ytdlp] retrying %s, attempt %d", url, attempt+1)
		}

		_, err := dl.Run(runCtx, url)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Printf("[ytdlp] attempt %d failed for %s: %v", attempt+1, url, err)

		if runCtx.Err() != nil {
			return b.abortError(runCtx)
		}

		// a retry would restart progress from zero
		hookMu.Lock()
		started := events > 0
		hookMu.Unlock()
		if started {
			break
		}
	}
	return lastErr
}

// abortError returns the hook's abort error when present, else the context error
func (b *YTDLPBackend) abortError(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	return ctx.Err()
}

// buildCommand maps fetch options onto the yt-dlp command builder
func (b *YTDLPBackend) buildCommand(opts model.FetchOptions) *ytdlp.Command {
	dl := b.command().
		NoPlaylist().
		Format(opts.FormatSelector).
		Output(opts.OutputTemplate)

	for _, pp := range opts.PostProcessors {
		dl = dl.ExtractAudio().AudioFormat(pp.Codec)
		if pp.Bitrate != "" {
			dl = dl.AudioQuality(pp.Bitrate + "K")
		}
	}
	return dl
}

// command starts a yt-dlp invocation on the configured binary
func (b *YTDLPBackend) command() *ytdlp.Command {
	cmd := ytdlp.New()
	if b.executable != "" {
		cmd.SetExecutable(b.executable)
	}
	return cmd
}

// toProgressEvent converts a yt-dlp progress update into a backend event.
// Only downloading and finished updates are forwarded.
func toProgressEvent(update *ytdlp.ProgressUpdate) (model.ProgressEvent, bool) {
	ev := model.ProgressEvent{
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
		ETASec:          -1,
	}
	switch update.Status {
	case ytdlp.ProgressStatusDownloading:
		ev.Status = model.FetchDownloading
	case ytdlp.ProgressStatusFinished:
		ev.Status = model.FetchFinished
	default:
		return ev, false
	}

	if eta := update.ETA(); eta > 0 {
		ev.ETASec = int(eta.Seconds())
	}
	return ev, true
}

// rateMeter derives transfer speed from the byte delta between updates.
// The first sample has no previous point and reports 0.
type rateMeter struct {
	bytes int
	at    time.Time
}

func (m *rateMeter) observe(bytes int, now time.Time) float64 {
	prevBytes, prevAt := m.bytes, m.at
	m.bytes, m.at = bytes, now
	if prevAt.IsZero() || bytes < prevBytes {
		return 0
	}
	elapsed := now.Sub(prevAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(bytes-prevBytes) / elapsed
}
