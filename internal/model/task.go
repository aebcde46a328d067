package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DownloadRequest describes one download invocation. It is treated as an
// immutable value once handed to the controller.
type DownloadRequest struct {
	URL     string
	Format  Format
	Quality Quality
	Dir     string // destination directory, assumed to exist
}

// Validate checks the fields the controller cannot work without
func (r DownloadRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return errors.New("url is empty")
	}
	if r.Format.Kind() == "" {
		return fmt.Errorf("unsupported format: %q", r.Format)
	}
	if !r.Quality.ValidFor(r.Format) {
		return fmt.Errorf("quality %q is not available for %s", r.Quality, r.Format)
	}
	if r.Dir == "" {
		return errors.New("destination directory is empty")
	}
	return nil
}

// ProgressSnapshot is a transient progress report emitted while running
type ProgressSnapshot struct {
	Percent int     // 0..99 while downloading, 100 only on success
	Status  string  // human readable status line
	Rate    float64 // bytes per second, 0 if unknown
	ETASec  int     // ETA in seconds, -1 if unknown
}

// Result is the terminal value of a task
type Result struct {
	TaskID  string
	Success bool
	Path    string // artifact path, empty on failure
	Err     error  // nil on success
}

// HistoryEntry is a persisted record of a finished task
type HistoryEntry struct {
	TaskID     string
	URL        string
	Format     Format
	Quality    Quality
	Path       string
	Success    bool
	Error      string
	FinishedAt time.Time
}

// DisplayName returns the artifact file name without its extension
func (r Result) DisplayName() string {
	if r.Path == "" {
		return ""
	}
	name := filepath.Base(r.Path)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name
}

// FormatRate renders a transfer rate in KB/s below 1024 KB/s, MB/s above
func FormatRate(bytesPerSec float64) string {
	kb := bytesPerSec / 1024
	if kb >= 1024 {
		return fmt.Sprintf("%.1f MB/s", kb/1024)
	}
	return fmt.Sprintf("%.1f KB/s", kb)
}

// FormatETA renders seconds as "Ns", or "Mm Ss" beyond one minute
func FormatETA(sec int) string {
	if sec > 60 {
		return fmt.Sprintf("%dm %ds", sec/60, sec%60)
	}
	return fmt.Sprintf("%ds", sec)
}

// HumanSize renders a byte count using B, KB, MB or GB
func HumanSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	case size < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/(1024*1024*1024))
	}
}

// IsSupportedURL is a loose check for video site links
func IsSupportedURL(url string) bool {
	return strings.Contains(url, "youtube.com/") || strings.Contains(url, "youtu.be/")
}
