package batch

import "time"

// Status is the lifecycle state of one queued file. Transitions are strictly
// forward: waiting → processing → complete or error. There is no retry
// transition.
type Status string

// Job states.
const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Job is one file queued for preflight. The scheduler owns jobs exclusively
// until they reach a terminal state; outside callers see snapshot copies
// only.
type Job struct {
	ID        string        `json:"id"`
	Path      string        `json:"path"`
	Status    Status        `json:"status"`
	AddedAt   time.Time     `json:"added_at"`
	StartedAt time.Time     `json:"started_at,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Message   string        `json:"message,omitempty"`
	AutoFixed bool          `json:"auto_fixed"`
}

// allowedTransition reports whether a status change is forward-only legal.
func allowedTransition(from, to Status) bool {
	switch from {
	case StatusWaiting:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusComplete || to == StatusError
	default:
		return false
	}
}
