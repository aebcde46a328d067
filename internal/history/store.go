package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ytget/ytube-downloader/internal/model"
)

// DefaultRecentLimit caps Recent when a non-positive limit is passed
const DefaultRecentLimit = 50

// Store is a SQLite-backed download history
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file and applies migrations
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history db: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		format TEXT NOT NULL,
		quality TEXT,
		path TEXT,
		success INTEGER NOT NULL,
		error TEXT,
		finished_at INTEGER NOT NULL -- unix milliseconds
	);

	CREATE INDEX IF NOT EXISTS idx_downloads_finished_at ON downloads(finished_at);
	`
	_, err := s.db.Exec(query)
	return err
}

// Record stores a finished task
func (s *Store) Record(ctx context.Context, entry model.HistoryEntry) error {
	query := `
	INSERT INTO downloads (task_id, url, format, quality, path, success, error, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(task_id) DO NOTHING;
	`
	finishedAt := entry.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.TaskID, entry.URL, string(entry.Format), string(entry.Quality),
		entry.Path, entry.Success, entry.Error, finishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record task %s: %w", entry.TaskID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := `SELECT task_id, url, format, quality, path, success, error, finished_at
	          FROM downloads ORDER BY finished_at DESC, id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var (
			e          model.HistoryEntry
			format     string
			quality    sql.NullString
			path       sql.NullString
			errText    sql.NullString
			finishedAt int64
		)
		if err := rows.Scan(&e.TaskID, &e.URL, &format, &quality, &path, &e.Success, &errText, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Format = model.Format(format)
		e.Quality = model.Quality(quality.String)
		e.Path = path.String
		e.Error = errText.String
		e.FinishedAt = time.UnixMilli(finishedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
