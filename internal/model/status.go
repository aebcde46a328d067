package model

// TaskState represents the lifecycle state of the download controller
type TaskState int32

const (
	// StateIdle means no download is in flight
	StateIdle TaskState = iota

	// StateRunning means a download task is executing
	StateRunning

	// StateCancelling means cancel was requested and the task is unwinding
	StateCancelling
)

// String returns the string representation of TaskState
func (ts TaskState) String() string {
	switch ts {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateCancelling:
		return "Cancelling"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a task currently owns the controller
func (ts TaskState) IsActive() bool {
	return ts == StateRunning || ts == StateCancelling
}
