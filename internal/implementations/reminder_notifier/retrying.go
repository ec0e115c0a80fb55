package remindernotifier

import (
	"context"
	"time"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"

	"github.com/cenkalti/backoff/v4"
)

const defaultInitialInterval = 500 * time.Millisecond

// Retrying repeats deliveries that failed with a retryable transport error,
// at most maxRetries times with exponential backoff.
type Retrying struct {
	notifier        reminder.Notifier
	log             logging.Logger
	maxRetries      uint64
	initialInterval time.Duration
}

func NewRetrying(notifier reminder.Notifier, log logging.Logger, maxRetries uint64) *Retrying {
	if notifier == nil {
		panic(e.NewNilArgumentError("notifier"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &Retrying{
		notifier:        notifier,
		log:             log,
		maxRetries:      maxRetries,
		initialInterval: defaultInitialInterval,
	}
}

func (r *Retrying) Deliver(ctx context.Context, destination reminder.Destination, text string) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := r.notifier.Deliver(ctx, destination, text)
		if err == nil {
			return nil
		}
		if !reminder.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		r.log.Warning(
			ctx,
			"Reminder delivery attempt failed.",
			logging.Entry("attempt", attempt),
			logging.Entry("err", err),
		)
		return err
	}
	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(r.backOff(), r.maxRetries), ctx))
}

func (r *Retrying) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
