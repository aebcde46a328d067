package download

import (
	"fmt"

	"github.com/ytget/ytube-downloader/internal/model"
)

// Synthetic progress used when the backend reports no usable byte counts
const (
	SyntheticStartPercent = 10
	SyntheticMaxPercent   = 95
	MaxRunningPercent     = 99
)

// percentTracker turns backend byte counts into a display percentage.
// It is owned by a single task goroutine.
type percentTracker struct {
	synthetic int
}

// next computes the percent for a downloading event
func (p *percentTracker) next(ev model.ProgressEvent) int {
	total := ev.TotalBytes
	if total <= 0 {
		total = ev.TotalBytesEstimate
	}

	var percent int
	if total > 0 && ev.DownloadedBytes >= 0 {
		percent = int(ev.DownloadedBytes * 100 / total)
	} else {
		percent = p.advanceSynthetic()
	}
	return clampPercent(percent)
}

func (p *percentTracker) advanceSynthetic() int {
	if p.synthetic == 0 {
		p.synthetic = SyntheticStartPercent
	} else {
		p.synthetic = min(SyntheticMaxPercent, p.synthetic+1)
	}
	return p.synthetic
}

func clampPercent(percent int) int {
	return max(0, min(MaxRunningPercent, percent))
}

// snapshot builds the progress report for a downloading event
func snapshot(percent int, ev model.ProgressEvent) model.ProgressSnapshot {
	snap := model.ProgressSnapshot{
		Percent: percent,
		Status:  StatusDownloading,
		Rate:    max(0, ev.Speed),
		ETASec:  -1,
	}
	if ev.ETASec > 0 {
		snap.ETASec = ev.ETASec
	}
	if snap.Rate == 0 {
		return snap
	}

	snap.Status = fmt.Sprintf("Downloading: %d%% (%s)", percent, model.FormatRate(snap.Rate))
	if snap.ETASec > 0 {
		snap.Status += ", ETA: " + model.FormatETA(snap.ETASec)
	}
	return snap
}
