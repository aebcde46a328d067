package main

import (
	"context"
	"sync"

	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"

	"github.com/ytget/ytube-downloader/internal/model"
)

// progressObserver renders controller notifications as a terminal bar
type progressObserver struct {
	container *mpb.Progress
	bar       *mpb.Bar

	mu      sync.Mutex
	current int
	success bool
	path    string
}

func newProgressObserver(ctx context.Context, req model.DownloadRequest) *progressObserver {
	p := mpb.NewWithContext(ctx, mpb.WithWidth(64))
	bar := p.AddBar(100,
		mpb.PrependDecorators(
			decor.Name(req.Format.String()+" "+req.Quality.String(), decor.WC{W: 14, C: decor.DidentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
		),
	)
	return &progressObserver{container: p, bar: bar}
}

// Wait blocks until the bar has been rendered to completion
func (o *progressObserver) Wait() {
	o.container.Wait()
}

func (o *progressObserver) Progress(percent int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if delta := percent - o.current; delta > 0 {
		o.bar.IncrBy(delta)
		o.current = percent
	}
}

// Status is a no-op, status lines go through statusLogger
func (o *progressObserver) Status(string) {}

func (o *progressObserver) Finished(success bool, path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.success = success
	o.path = path
	if !success {
		// complete the bar where it stopped so Wait returns
		o.bar.SetTotal(int64(o.current), true)
	}
}

func (o *progressObserver) Succeeded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.success
}

func (o *progressObserver) Path() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.path
}
