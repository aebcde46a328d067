package model

// Package model defines domain data structures used across the app: download
// requests, formats and qualities, task state, progress snapshots, results,
// and the value types exchanged with the media fetch backend.
