package history

// Package history persists finished download tasks in a local SQLite database.
