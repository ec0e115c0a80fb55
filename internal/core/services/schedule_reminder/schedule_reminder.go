package schedulereminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/localtime"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/metrics"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
)

type Input struct {
	Text string
	Time string
	// Submitter identifies who submitted the reminder, e.g. "telegram:42".
	Submitter string
}

func (i Input) GetRateLimitKey() string {
	return "submit::" + i.Submitter
}

type Result struct {
	Record       reminder.Record
	Confirmation string
}

type TimeNormalizer interface {
	Normalize(value string, zone string) (time.Time, error)
	Localize(instant time.Time, zone string) (time.Time, error)
}

type service struct {
	log        logging.Logger
	normalizer TimeNormalizer
	store      reminder.Store
	scheduler  reminder.Scheduler
	publisher  reminder.EventPublisher
	metrics    metrics.Sink
	renderer   reminder.Renderer
	zone       string
	now        func() time.Time
}

func New(
	log logging.Logger,
	normalizer TimeNormalizer,
	store reminder.Store,
	scheduler reminder.Scheduler,
	publisher reminder.EventPublisher,
	sink metrics.Sink,
	renderer reminder.Renderer,
	zone string,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if normalizer == nil {
		panic(e.NewNilArgumentError("normalizer"))
	}
	if store == nil {
		panic(e.NewNilArgumentError("store"))
	}
	if scheduler == nil {
		panic(e.NewNilArgumentError("scheduler"))
	}
	if publisher == nil {
		panic(e.NewNilArgumentError("publisher"))
	}
	if sink == nil {
		panic(e.NewNilArgumentError("sink"))
	}
	if zone == "" {
		panic(e.NewEmptyArgumentError("zone"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:        log,
		normalizer: normalizer,
		store:      store,
		scheduler:  scheduler,
		publisher:  publisher,
		metrics:    sink,
		renderer:   renderer,
		zone:       zone,
		now:        now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	instant, err := s.normalizer.Normalize(input.Time, s.zone)
	if err != nil {
		if errors.Is(err, localtime.ErrInvalidTimestamp) {
			s.metrics.ReminderRejected("invalid_timestamp")
			s.log.Info(ctx, "Reminder rejected, invalid timestamp.", logging.Entry("time", input.Time))
		} else {
			logging.Error(ctx, s.log, err, logging.Entry("time", input.Time), logging.Entry("zone", s.zone))
		}
		return result, err
	}
	local, err := s.normalizer.Localize(instant, s.zone)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("zone", s.zone))
		return result, err
	}

	id, err := s.store.Create(ctx, reminder.CreateInput{
		Message:          input.Text,
		Zone:             s.zone,
		LocalDisplayTime: local,
		FireInstant:      instant,
		CreatedAt:        s.now(),
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("fireInstant", instant))
		return result, err
	}
	record, err := s.store.Get(ctx, id)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", id))
		return result, err
	}

	// Published before arming, a timer due now may fire right away.
	s.publish(ctx, reminder.NewEvent(reminder.EventScheduled, record, s.now()))
	if err := s.scheduler.ScheduleReminder(ctx, record); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", id))
		s.fail(ctx, record, err)
		return result, fmt.Errorf("could not schedule reminder %s: %w", id, err)
	}

	s.metrics.ReminderScheduled()
	s.log.Info(
		ctx,
		"Reminder scheduled.",
		logging.Entry("reminderID", id),
		logging.Entry("fireInstant", record.FireInstant),
	)

	result.Record = record
	result.Confirmation = s.renderer.Confirmation(record)
	return result, nil
}

func (s *service) fail(ctx context.Context, record reminder.Record, cause error) {
	at := s.now()
	if err := s.store.MarkFailed(ctx, record.ID, at, cause.Error()); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", record.ID))
		return
	}
	s.metrics.ReminderFailed()
	record.Status = reminder.StatusFailed
	record.FailureReason = cause.Error()
	s.publish(ctx, reminder.NewEvent(reminder.EventFailed, record, at))
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
