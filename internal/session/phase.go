package session

// Phase is the lifecycle stage of a session.
type Phase uint8

// Session phases. Transitions only move forward:
// NotStarted -> Running -> Finished or Cancelled.
const (
	NotStarted Phase = iota
	Running
	Finished
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Done reports whether the phase is terminal.
func (p Phase) Done() bool {
	return p == Finished || p == Cancelled
}

// Status is the match state of a single target character.
type Status uint8

// Character statuses.
const (
	Pending Status = iota
	Correct
	Incorrect
)

func (s Status) String() string {
	switch s {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "pending"
	}
}
