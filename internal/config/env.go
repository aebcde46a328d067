package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ytget/ytube-downloader/internal/model"
	"github.com/ytget/ytube-downloader/internal/platform"
)

// EnvPrefix is the environment variable prefix for the CLI
const EnvPrefix = "YTD"

// EnvConfig holds CLI defaults read from the environment
type EnvConfig struct {
	DownloadDir string `envconfig:"DOWNLOAD_DIR"`
	Format      string `envconfig:"FORMAT" default:"mp3"`
	Quality     string `envconfig:"QUALITY"`
	HistoryDB   string `envconfig:"HISTORY_DB"`
	YTDLPPath   string `envconfig:"YTDLP_PATH"` // skips the managed yt-dlp install
}

// LoadEnv reads optional dotenv files into the environment, then decodes
// YTD_* variables. Variables already set take precedence over dotenv files.
func LoadEnv(files ...string) (*EnvConfig, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading dotenv: %w", err)
	}

	var c EnvConfig
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if c.DownloadDir == "" {
		dir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			dir = FallbackDownloadDir
		}
		c.DownloadDir = dir
	}
	return &c, nil
}

// Request builds a download request for url from the environment defaults
func (c *EnvConfig) Request(url string) (model.DownloadRequest, error) {
	f, err := model.ParseFormat(c.Format)
	if err != nil {
		return model.DownloadRequest{}, err
	}

	q := model.Quality(c.Quality)
	if q == "" {
		q = model.DefaultQuality(f)
	} else if !q.ValidFor(f) {
		return model.DownloadRequest{}, fmt.Errorf("quality %q is not available for %s", q, f)
	}

	return model.DownloadRequest{URL: url, Format: f, Quality: q, Dir: c.DownloadDir}, nil
}
