package main

import (
	"context"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/ytube-downloader/internal/config"
	"github.com/ytget/ytube-downloader/internal/download"
	"github.com/ytget/ytube-downloader/internal/history"
	"github.com/ytget/ytube-downloader/internal/platform"
	"github.com/ytget/ytube-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.ytube-downloader"
	AppName = "YTube Downloader"

	WindowWidth  = 520
	WindowHeight = 320
)

func main() {
	log.Printf("%s v%s starting...", AppName, version)

	myApp := app.NewWithID(AppID)
	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	settings := config.NewSettings(myApp)
	env, err := config.LoadEnv()
	if err != nil {
		log.Printf("ignoring environment config: %v", err)
		env = &config.EnvConfig{}
	}
	if env.HistoryDB != "" {
		settings.SetHistoryDB(env.HistoryDB)
	}
	if err := platform.CreateDirectoryIfNotExists(settings.GetDownloadDirectory()); err != nil {
		log.Printf("failed to ensure downloads dir: %v", err)
	}

	backend := platform.NewYTDLPBackend()
	if env.YTDLPPath != "" {
		backend.SetExecutable(env.YTDLPPath)
	}
	go func() {
		if err := backend.EnsureInstalled(context.Background()); err != nil {
			log.Printf("yt-dlp unavailable: %v", err)
		}
	}()

	cfg := download.Config{
		Backend: backend,
		Tagger:  platform.NewID3Tagger(),
	}
	if dbPath := settings.GetHistoryDB(); dbPath != "" {
		store, err := history.Open(dbPath)
		if err != nil {
			log.Printf("history disabled: %v", err)
		} else {
			defer store.Close()
			cfg.Recorder = store
		}
	}

	root := ui.NewRootUI(myWindow, settings)
	cfg.Observer = root
	root.SetDownloader(download.NewController(cfg))

	myWindow.ShowAndRun()
}
