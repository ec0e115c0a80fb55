package reminderevents

import (
	"context"
	"errors"

	"remindbot/internal/core/domain/reminder"
)

// Fanout publishes every event to all of its publishers.
type Fanout struct {
	publishers []reminder.EventPublisher
}

func NewFanout(publishers ...reminder.EventPublisher) *Fanout {
	return &Fanout{publishers: publishers}
}

func (f *Fanout) Add(publisher reminder.EventPublisher) {
	f.publishers = append(f.publishers, publisher)
}

func (f *Fanout) PublishReminderEvent(ctx context.Context, event reminder.Event) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.PublishReminderEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
