package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ytget/ytube-downloader/internal/config"
	"github.com/ytget/ytube-downloader/internal/download"
	"github.com/ytget/ytube-downloader/internal/history"
	"github.com/ytget/ytube-downloader/internal/model"
	"github.com/ytget/ytube-downloader/internal/platform"
)

var version = "dev"

const historyListLimit = 20

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		log.Fatal(err)
	}

	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "output format: mp3, m4a, mp4 or webm",
		Value:   env.Format,
	}
	qualityFlag := &cli.StringFlag{
		Name:    "quality",
		Aliases: []string{"q"},
		Usage:   "bitrate for audio (e.g. 192kbps) or resolution for video (e.g. 720p)",
		Value:   env.Quality,
	}
	dirFlag := &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "destination directory",
		Value:   env.DownloadDir,
	}
	historyFlag := &cli.StringFlag{
		Name:  "history",
		Usage: "path of the sqlite history database (disabled when empty)",
		Value: env.HistoryDB,
	}

	app := &cli.App{
		Name:      "ytfetch",
		Usage:     "download audio or video from a video URL",
		Version:   version,
		ArgsUsage: "URL",
		Flags:     []cli.Flag{formatFlag, qualityFlag, dirFlag, historyFlag},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one URL is required", 2)
			}
			cfg := *env
			cfg.Format = c.String(formatFlag.Name)
			cfg.Quality = c.String(qualityFlag.Name)
			cfg.DownloadDir = c.String(dirFlag.Name)
			req, err := cfg.Request(c.Args().First())
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			return run(c.Context, req, c.String(historyFlag.Name), env.YTDLPPath)
		},
		Commands: []*cli.Command{{
			Name:  "history",
			Usage: "list recent downloads",
			Flags: []cli.Flag{historyFlag},
			Action: func(c *cli.Context) error {
				return listHistory(c.Context, c.String(historyFlag.Name))
			},
		}},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, req model.DownloadRequest, historyPath, ytdlpPath string) error {
	if err := platform.CreateDirectoryIfNotExists(req.Dir); err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	backend := platform.NewYTDLPBackend()
	if ytdlpPath != "" {
		backend.SetExecutable(ytdlpPath)
	}
	if err := backend.EnsureInstalled(ctx); err != nil {
		return err
	}

	progress := newProgressObserver(ctx, req)
	cfg := download.Config{
		Backend:  backend,
		Observer: download.MultiObserver{progress, statusLogger()},
		Tagger:   platform.NewID3Tagger(),
	}
	if historyPath != "" {
		store, err := history.Open(historyPath)
		if err != nil {
			return err
		}
		defer store.Close()
		cfg.Recorder = store
	}

	ctrl := download.NewController(cfg)
	if _, err := ctrl.Start(req); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		ctrl.Cancel()
	}()

	ctrl.Wait()
	progress.Wait()

	if !progress.Succeeded() {
		return cli.Exit("download failed", 1)
	}
	fmt.Println(progress.Path())
	return nil
}

func listHistory(ctx context.Context, historyPath string) error {
	if historyPath == "" {
		return errors.New("no history database configured (set --history or YTD_HISTORY_DB)")
	}
	store, err := history.Open(historyPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(ctx, historyListLimit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Println(formatEntry(e))
	}
	return nil
}

// statusLogger prints status lines above the progress bar
func statusLogger() download.Observer {
	return download.ObserverFuncs{
		OnStatus: func(text string) { log.Print(text) },
	}
}

// formatEntry renders one history line, with the artifact size when it still exists
func formatEntry(e model.HistoryEntry) string {
	when := e.FinishedAt.Format("2006-01-02 15:04")
	if !e.Success {
		return fmt.Sprintf("%s  FAIL  %-4s  %s  (%s)", when, e.Format, e.URL, e.Error)
	}
	size := "missing"
	if info, err := os.Stat(e.Path); err == nil {
		size = model.HumanSize(info.Size())
	}
	return fmt.Sprintf("%s  OK    %-4s  %s  %s [%s]", when, e.Format, e.URL, e.Path, size)
}
