package download

// Package download implements the download task controller: a single-flight,
// cooperatively cancellable task that drives a blocking media fetch backend on
// a goroutine and reports normalized progress, status and results to an Observer.
