package reminder

import "errors"

var ErrParseStatus = errors.New("invalid status")

type Status struct {
	v string
}

func (s Status) String() string {
	return s.v
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusFired || s == StatusFailed
}

func ParseStatus(value string) (Status, error) {
	switch value {
	case "pending":
		return StatusPending, nil
	case "fired":
		return StatusFired, nil
	case "failed":
		return StatusFailed, nil
	default:
		return StatusUnknown, ErrParseStatus
	}
}

var (
	StatusUnknown = Status{}
	StatusPending = Status{v: "pending"}
	StatusFired   = Status{v: "fired"}
	StatusFailed  = Status{v: "failed"}
)
