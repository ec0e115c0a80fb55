package reminder

import (
	"context"
	"time"
)

type CreateInput struct {
	Message          string
	Zone             string
	LocalDisplayTime time.Time
	FireInstant      time.Time
	CreatedAt        time.Time
}

// Store owns the canonical state of all reminders. MarkFired and MarkFailed
// are no-ops on records that are already terminal.
type Store interface {
	Create(ctx context.Context, input CreateInput) (ID, error)
	Restore(ctx context.Context, r Record) error
	Get(ctx context.Context, id ID) (Record, error)
	MarkFired(ctx context.Context, id ID, at time.Time) error
	MarkFailed(ctx context.Context, id ID, at time.Time, reason string) error
}

type IDGenerator interface {
	GenerateReminderID() ID
}

type StatusUpdate struct {
	ID     ID
	Status Status
	At     time.Time
	Reason string
}

// Journal is the optional durable copy of the store.
type Journal interface {
	Save(ctx context.Context, r Record) error
	UpdateStatus(ctx context.Context, update StatusUpdate) error
	// Claim records that delivery of r starts at. It reports false when r is
	// already claimed or no longer pending.
	Claim(ctx context.Context, r Record, at time.Time) (bool, error)
	// FailInterrupted marks claimed reminders that never reached a terminal
	// status as failed and returns their ids.
	FailInterrupted(ctx context.Context, at time.Time, reason string) ([]ID, error)
	// LoadPending returns pending reminders whose delivery was never claimed.
	LoadPending(ctx context.Context) ([]Record, error)
}
