package config

import (
	"fyne.io/fyne/v2"

	"github.com/ytget/ytube-downloader/internal/model"
	"github.com/ytget/ytube-downloader/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir = "download_directory"
	KeyFormat      = "last_format"
	KeyQuality     = "last_quality"
	KeyHistoryDB   = "history_db"
)

// Default values
const (
	DefaultFormat        = model.FormatMP3
	FallbackDownloadDir  = "/tmp/downloads"
	DefaultHistoryDBName = "history.db"
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured download directory
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir == "" {
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = FallbackDownloadDir
		}
		s.SetDownloadDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetFormat returns the last used format
func (s *Settings) GetFormat() model.Format {
	f, err := model.ParseFormat(s.app.Preferences().String(KeyFormat))
	if err != nil {
		return DefaultFormat
	}
	return f
}

// SetFormat stores the last used format. Unknown formats are ignored.
func (s *Settings) SetFormat(f model.Format) {
	if f.Kind() == "" {
		return
	}
	s.app.Preferences().SetString(KeyFormat, string(f))
}

// GetQuality returns the last used quality if it is valid for f, otherwise
// the default quality of f.
func (s *Settings) GetQuality(f model.Format) model.Quality {
	q := model.Quality(s.app.Preferences().String(KeyQuality))
	if !q.ValidFor(f) {
		return model.DefaultQuality(f)
	}
	return q
}

// SetQuality stores the last used quality
func (s *Settings) SetQuality(q model.Quality) {
	s.app.Preferences().SetString(KeyQuality, string(q))
}

// GetHistoryDB returns the path of the history database, or "" when the
// app has no writable storage root.
func (s *Settings) GetHistoryDB() string {
	if path := s.app.Preferences().String(KeyHistoryDB); path != "" {
		return path
	}
	root := s.app.Storage().RootURI()
	if root == nil {
		return ""
	}
	return root.Path() + "/" + DefaultHistoryDBName
}

// SetHistoryDB overrides the history database path
func (s *Settings) SetHistoryDB(path string) {
	s.app.Preferences().SetString(KeyHistoryDB, path)
}
