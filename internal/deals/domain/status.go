package domain

// Status is the lifecycle state of a deal.
type Status string

const (
	StatusOpen Status = "open"
	StatusWon  Status = "won"
	StatusLost Status = "lost"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusWon, StatusLost:
		return true
	}
	return false
}

// Closed reports whether the deal has reached a terminal outcome.
func (s Status) Closed() bool {
	return s == StatusWon || s == StatusLost
}

// CanTransition reports whether a deal may move between statuses. Closed
// deals can be reopened, but never flipped directly between won and lost.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusOpen:
		return to == StatusWon || to == StatusLost
	case StatusWon, StatusLost:
		return to == StatusOpen
	}
	return false
}
