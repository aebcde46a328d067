package platform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/ytube-downloader/internal/model"
)

const (
	startingLine    = `printf '%s\n' 'progress:{"info":{"id":"abc"},"progress":{"status":"starting","downloaded_bytes":0,"filename":"a.mp3"}}'`
	downloadingLine = `printf '%s\n' 'progress:{"info":{"id":"abc"},"progress":{"status":"downloading","downloaded_bytes":100,"total_bytes":1000,"filename":"a.mp3"}}'`
	finishedLine    = `printf '%s\n' 'progress:{"info":{"id":"abc"},"progress":{"status":"finished","downloaded_bytes":1000,"total_bytes":1000,"filename":"a.mp3"}}'`
)

// fakeYTDLP writes a shell script standing in for yt-dlp. Every invocation
// appends a line to the returned runs file.
func fakeYTDLP(t *testing.T, lines ...string) (exe, runs string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake yt-dlp is a shell script")
	}

	dir := t.TempDir()
	exe = filepath.Join(dir, "yt-dlp")
	runs = filepath.Join(dir, "runs")
	script := "#!/bin/sh\necho run >> '" + runs + "'\n" + strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(exe, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write fake yt-dlp: %v", err)
	}
	return exe, runs
}

func runCount(t *testing.T, runs string) int {
	t.Helper()
	data, err := os.ReadFile(runs)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	if err != nil {
		t.Fatalf("Failed to read runs file: %v", err)
	}
	return strings.Count(string(data), "run\n")
}

func testBackend(exe string) *YTDLPBackend {
	b := NewYTDLPBackend().SetExecutable(exe)
	b.progressInterval = 100 * time.Millisecond
	b.retryBackoff = 10 * time.Millisecond
	return b
}

func testOptions(t *testing.T) model.FetchOptions {
	return model.FetchOptions{
		FormatSelector: "bestaudio/best",
		OutputTemplate: filepath.Join(t.TempDir(), "%(title)s.%(ext)s"),
	}
}

func TestNewYTDLPBackend(t *testing.T) {
	b := NewYTDLPBackend()

	if b.progressInterval != DefaultProgressInterval {
		t.Errorf("Expected progress interval %v, got %v", DefaultProgressInterval, b.progressInterval)
	}
	if b.maxRetries != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, b.maxRetries)
	}
	if b.executable != "" {
		t.Errorf("Expected no pinned executable, got %s", b.executable)
	}
}

func TestEnsureInstalled_PinnedExecutable(t *testing.T) {
	b := NewYTDLPBackend().SetExecutable("/nonexistent/yt-dlp")
	if err := b.EnsureInstalled(context.Background()); err != nil {
		t.Errorf("Expected pinned executable to skip install, got %v", err)
	}
}

func TestDownload_ForwardsEvents(t *testing.T) {
	exe, runs := fakeYTDLP(t, startingLine, downloadingLine, finishedLine)

	var got []model.ProgressEvent
	err := testBackend(exe).Download(context.Background(), "https://youtu.be/abc", testOptions(t), func(ev model.ProgressEvent) error {
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Expected downloading and finished events only, got %+v", got)
	}
	if got[0].Status != model.FetchDownloading || got[0].DownloadedBytes != 100 || got[0].TotalBytes != 1000 {
		t.Errorf("Unexpected downloading event: %+v", got[0])
	}
	if got[0].Speed != 0 {
		t.Errorf("Expected no speed on the first event, got %v", got[0].Speed)
	}
	if got[1].Status != model.FetchFinished {
		t.Errorf("Expected finished event, got %+v", got[1])
	}
	if n := runCount(t, runs); n != 1 {
		t.Errorf("Expected one run, got %d", n)
	}
}

func TestDownload_HookErrorAborts(t *testing.T) {
	exe, runs := fakeYTDLP(t, downloadingLine, "exec sleep 10")
	stop := errors.New("stop requested")

	calls := 0
	start := time.Now()
	err := testBackend(exe).Download(context.Background(), "https://youtu.be/abc", testOptions(t), func(model.ProgressEvent) error {
		calls++
		return stop
	})

	if !errors.Is(err, stop) {
		t.Fatalf("Expected hook error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected hook to be called once, got %d", calls)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Expected the run to be killed promptly, took %v", elapsed)
	}
	if n := runCount(t, runs); n != 1 {
		t.Errorf("Expected no retry after abort, got %d runs", n)
	}
}

func TestDownload_NoRetryAfterEvents(t *testing.T) {
	exe, runs := fakeYTDLP(t, downloadingLine, "exit 1")

	err := testBackend(exe).Download(context.Background(), "https://youtu.be/abc", testOptions(t), func(model.ProgressEvent) error {
		return nil
	})
	if err == nil {
		t.Fatal("Expected an error from the failing run")
	}
	if n := runCount(t, runs); n != 1 {
		t.Errorf("Expected a single run once progress was reported, got %d", n)
	}
}

func TestDownload_RetriesBeforeEvents(t *testing.T) {
	exe, runs := fakeYTDLP(t, "exit 1")

	err := testBackend(exe).Download(context.Background(), "https://youtu.be/abc", testOptions(t), func(model.ProgressEvent) error {
		return nil
	})
	if err == nil {
		t.Fatal("Expected an error from the failing runs")
	}
	if n := runCount(t, runs); n != DefaultMaxRetries+1 {
		t.Errorf("Expected %d runs, got %d", DefaultMaxRetries+1, n)
	}
}

func TestToProgressEvent(t *testing.T) {
	tests := []struct {
		name     string
		status   ytdlp.ProgressStatus
		expected model.FetchStatus
		ok       bool
	}{
		{"downloading", ytdlp.ProgressStatusDownloading, model.FetchDownloading, true},
		{"finished", ytdlp.ProgressStatusFinished, model.FetchFinished, true},
		{"starting", ytdlp.ProgressStatusStarting, "", false},
		{"error", ytdlp.ProgressStatusError, "", false},
		{"post processing", ytdlp.ProgressStatusPostProcessing, "", false},
	}

	for _, test := range tests {
		update := ytdlp.ProgressUpdate{
			Status:          test.status,
			TotalBytes:      1000,
			DownloadedBytes: 500,
			Started:         time.Now().Add(-2 * time.Second),
		}
		ev, ok := toProgressEvent(&update)
		if ok != test.ok {
			t.Errorf("%s: expected ok=%v, got %v", test.name, test.ok, ok)
			continue
		}
		if ok && ev.Status != test.expected {
			t.Errorf("%s: expected status %s, got %s", test.name, test.expected, ev.Status)
		}
		if ok && (ev.TotalBytes != 1000 || ev.DownloadedBytes != 500) {
			t.Errorf("%s: expected 500/1000 bytes, got %d/%d", test.name, ev.DownloadedBytes, ev.TotalBytes)
		}
	}
}

func TestRateMeter(t *testing.T) {
	var m rateMeter
	start := time.Now()

	if rate := m.observe(5_000_000, start); rate != 0 {
		t.Errorf("Expected no rate on the first sample, got %v", rate)
	}
	if rate := m.observe(5_000_000+2048, start.Add(2*time.Second)); rate != 1024 {
		t.Errorf("Expected 1024 B/s, got %v", rate)
	}
	if rate := m.observe(100, start.Add(3*time.Second)); rate != 0 {
		t.Errorf("Expected no rate when the byte count restarts, got %v", rate)
	}
	if rate := m.observe(100, start.Add(3*time.Second)); rate != 0 {
		t.Errorf("Expected no rate without elapsed time, got %v", rate)
	}
}

func TestAbortError(t *testing.T) {
	b := NewYTDLPBackend()
	sentinel := errors.New("stop")

	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(sentinel)
	if err := b.abortError(ctx); !errors.Is(err, sentinel) {
		t.Errorf("Expected hook error, got %v", err)
	}

	plain, cancelPlain := context.WithCancel(context.Background())
	cancelPlain()
	if err := b.abortError(plain); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
