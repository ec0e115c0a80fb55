package response

import (
	"time"

	"remindbot/internal/core/domain/reminder"
)

const localTimeLayout = "2006-01-02T15:04:05"

type Reminder struct {
	ID           string    `json:"id"`
	Confirmation string    `json:"confirmation"`
	FireInstant  time.Time `json:"fire_instant"`
	LocalTime    string    `json:"local_time"`
}

func (r *Reminder) FromDomainType(record reminder.Record, confirmation string) {
	r.ID = string(record.ID)
	r.Confirmation = confirmation
	r.FireInstant = record.FireInstant
	r.LocalTime = record.LocalDisplayTime.Format(localTimeLayout)
}
