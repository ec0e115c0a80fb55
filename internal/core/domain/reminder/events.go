package reminder

import (
	"context"
	"encoding/json"
	"time"
)

type EventType string

const (
	EventScheduled EventType = "scheduled"
	EventFired     EventType = "fired"
	EventFailed    EventType = "failed"
)

type Event struct {
	Type        EventType `json:"type"`
	ReminderID  ID        `json:"reminder_id"`
	FireInstant time.Time `json:"fire_instant"`
	Reason      string    `json:"reason,omitempty"`
	At          time.Time `json:"at"`
}

func NewEvent(t EventType, r Record, at time.Time) Event {
	return Event{
		Type:        t,
		ReminderID:  r.ID,
		FireInstant: r.FireInstant,
		Reason:      r.FailureReason,
		At:          at,
	}
}

func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Event) Unmarshal(data []byte) error {
	return json.Unmarshal(data, e)
}

type EventPublisher interface {
	PublishReminderEvent(ctx context.Context, event Event) error
}
