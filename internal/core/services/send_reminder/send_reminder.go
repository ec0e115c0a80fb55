package sendreminder

import (
	"context"
	"errors"
	"time"

	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/metrics"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
)

const reasonClaimFailed = "delivery claim failed"

type Input struct {
	ReminderID reminder.ID
}

type Result struct {
	Record    reminder.Record
	Delivered bool
}

type Destinations struct {
	Reminders reminder.Destination
	// Admin receives delivery failure reports when present.
	Admin c.Optional[reminder.Destination]
}

type service struct {
	log          logging.Logger
	store        reminder.Store
	notifier     reminder.Notifier
	guard        reminder.DeliveryGuard
	publisher    reminder.EventPublisher
	metrics      metrics.Sink
	renderer     reminder.Renderer
	destinations Destinations
	now          func() time.Time
}

func New(
	log logging.Logger,
	store reminder.Store,
	notifier reminder.Notifier,
	guard reminder.DeliveryGuard,
	publisher reminder.EventPublisher,
	sink metrics.Sink,
	renderer reminder.Renderer,
	destinations Destinations,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if store == nil {
		panic(e.NewNilArgumentError("store"))
	}
	if notifier == nil {
		panic(e.NewNilArgumentError("notifier"))
	}
	if guard == nil {
		panic(e.NewNilArgumentError("guard"))
	}
	if publisher == nil {
		panic(e.NewNilArgumentError("publisher"))
	}
	if sink == nil {
		panic(e.NewNilArgumentError("sink"))
	}
	if destinations.Reminders == "" {
		panic(e.NewEmptyArgumentError("destinations.Reminders"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:          log,
		store:        store,
		notifier:     notifier,
		guard:        guard,
		publisher:    publisher,
		metrics:      sink,
		renderer:     renderer,
		destinations: destinations,
		now:          now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	record, err := s.store.Get(ctx, input.ReminderID)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", input.ReminderID))
		return result, err
	}
	result.Record = record

	if record.Status != reminder.StatusPending {
		s.log.Info(
			ctx,
			"Reminder is skipped due to the status is not 'pending'.",
			logging.Entry("reminderID", record.ID),
			logging.Entry("status", record.Status),
		)
		return result, nil
	}

	claimed, err := s.guard.Claim(ctx, record.ID)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", record.ID))
		return s.fail(ctx, record, reasonClaimFailed)
	}
	if !claimed {
		s.log.Warning(
			ctx,
			"Reminder is skipped, delivery is already claimed.",
			logging.Entry("reminderID", record.ID),
		)
		return result, nil
	}

	err = s.notifier.Deliver(ctx, s.destinations.Reminders, s.renderer.Delivery(record))
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", record.ID))
		result, err = s.fail(ctx, record, err.Error())
		s.report(ctx, result.Record)
		return result, err
	}

	at := s.now()
	if err := s.store.MarkFired(ctx, record.ID, at); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", record.ID))
		return result, err
	}
	s.metrics.ReminderFired(at.Sub(record.FireInstant))

	result.Delivered = true
	result.Record, err = s.store.Get(ctx, record.ID)
	if err != nil {
		return result, err
	}
	s.publish(ctx, reminder.NewEvent(reminder.EventFired, result.Record, at))
	s.log.Info(
		ctx,
		"Reminder delivered.",
		logging.Entry("reminderID", record.ID),
		logging.Entry("lateness", at.Sub(record.FireInstant)),
	)
	return result, nil
}

func (s *service) fail(ctx context.Context, record reminder.Record, reason string) (result Result, err error) {
	at := s.now()
	result.Record = record
	if err := s.store.MarkFailed(ctx, record.ID, at, reason); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", record.ID))
		return result, err
	}
	s.metrics.ReminderFailed()

	result.Record, err = s.store.Get(ctx, record.ID)
	if err != nil {
		return result, err
	}
	s.publish(ctx, reminder.NewEvent(reminder.EventFailed, result.Record, at))
	return result, nil
}

// report tells the admin chat about a reminder that could not be delivered.
func (s *service) report(ctx context.Context, record reminder.Record) {
	if !s.destinations.Admin.IsPresent || record.Status != reminder.StatusFailed {
		return
	}
	err := s.notifier.Deliver(ctx, s.destinations.Admin.Value, s.renderer.DeliveryFailure(record))
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warning(
			ctx,
			"Could not report failed reminder.",
			logging.Entry("reminderID", record.ID),
			logging.Entry("err", err),
		)
	}
}

func (s *service) publish(ctx context.Context, event reminder.Event) {
	if err := s.publisher.PublishReminderEvent(ctx, event); err != nil {
		s.log.Warning(
			ctx,
			"Could not publish reminder event.",
			logging.Entry("event", event.Type),
			logging.Entry("reminderID", event.ReminderID),
			logging.Entry("err", err),
		)
	}
}
