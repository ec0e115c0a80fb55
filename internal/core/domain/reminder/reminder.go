package reminder

import (
	"time"

	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
)

type ID string

func (id ID) String() string {
	return string(id)
}

// Destination identifies the chat that receives fired reminders.
type Destination string

type Record struct {
	ID               ID
	Message          string
	Zone             string
	LocalDisplayTime time.Time
	FireInstant      time.Time
	Status           Status
	CreatedAt        time.Time
	FiredAt          c.Optional[time.Time]
	FailedAt         c.Optional[time.Time]
	FailureReason    string
}

func (r Record) Validate() error {
	if r.ID == "" {
		return e.NewInvalidStateError("reminder ID must be set")
	}
	if r.FireInstant.Location() != time.UTC {
		return e.NewInvalidStateError("FireInstant must be in UTC")
	}
	if !r.LocalDisplayTime.Equal(r.FireInstant) {
		return e.NewInvalidStateError("LocalDisplayTime and FireInstant must denote the same instant")
	}
	if r.FiredAt.IsPresent && r.FailedAt.IsPresent {
		return e.NewInvalidStateError("either FiredAt or FailedAt must not be set")
	}
	if r.Status == StatusFired && !r.FiredAt.IsPresent {
		return e.NewInvalidStateError("FiredAt must be set for fired reminders")
	}
	if r.Status == StatusFailed && !r.FailedAt.IsPresent {
		return e.NewInvalidStateError("FailedAt must be set for failed reminders")
	}
	if r.Status == StatusPending && (r.FiredAt.IsPresent || r.FailedAt.IsPresent) {
		return e.NewInvalidStateError("pending reminder must not have FiredAt or FailedAt")
	}
	return nil
}
