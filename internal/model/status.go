package model

// TaskStatus represents the lifecycle state of an icon fetch task
type TaskStatus string

const (
	// TaskStatusPending means the task was created but not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusInFlight means the fetch and decode are running
	TaskStatusInFlight TaskStatus = "InFlight"

	// TaskStatusCompleted means the icon was fetched and decoded
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusCancelled means the task was aborted by its owner
	TaskStatusCancelled TaskStatus = "Cancelled"

	// TaskStatusFailed means the fetch or the decode failed
	TaskStatusFailed TaskStatus = "Failed"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true while the task holds network or decode work
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusInFlight
}

// IsFinished returns true if the task reached a terminal state (completed, cancelled, or failed)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusCancelled || ts == TaskStatusFailed
}

// CanTransitionTo reports whether next is a legal successor of ts.
// Pending -> InFlight -> {Completed | Cancelled | Failed}; a pending task may
// also be cancelled before it starts. Terminal states have no successors.
func (ts TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch ts {
	case TaskStatusPending:
		return next == TaskStatusInFlight || next == TaskStatusCancelled
	case TaskStatusInFlight:
		return next == TaskStatusCompleted || next == TaskStatusCancelled || next == TaskStatusFailed
	default:
		return false
	}
}
