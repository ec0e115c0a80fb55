package recoverreminders

import (
	"context"
	"errors"
	"time"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
)

type Input struct{}

const reasonInterrupted = "delivery interrupted by restart"

type Result struct {
	Restored int
	Failed   int
	// Interrupted counts reminders whose delivery was claimed before the
	// restart. They are failed instead of re-armed.
	Interrupted int
}

type service struct {
	log       logging.Logger
	journal   reminder.Journal
	store     reminder.Store
	scheduler reminder.Scheduler
	now       func() time.Time
}

func New(
	log logging.Logger,
	journal reminder.Journal,
	store reminder.Store,
	scheduler reminder.Scheduler,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if journal == nil {
		panic(e.NewNilArgumentError("journal"))
	}
	if store == nil {
		panic(e.NewNilArgumentError("store"))
	}
	if scheduler == nil {
		panic(e.NewNilArgumentError("scheduler"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:       log,
		journal:   journal,
		store:     store,
		scheduler: scheduler,
		now:       now,
	}
}

// Run re-arms every pending reminder found in the journal. Reminders whose
// instant passed while the process was down fire right away.
func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	interrupted, err := s.journal.FailInterrupted(ctx, s.now(), reasonInterrupted)
	if err != nil {
		logging.Error(ctx, s.log, err)
		return result, err
	}
	for _, id := range interrupted {
		s.log.Warning(ctx, "Reminder delivery was interrupted.", logging.Entry("reminderID", id))
	}
	result.Interrupted = len(interrupted)

	pending, err := s.journal.LoadPending(ctx)
	if err != nil {
		logging.Error(ctx, s.log, err)
		return result, err
	}

	for _, record := range pending {
		if err := s.store.Restore(ctx, record); err != nil {
			if !errors.Is(err, reminder.ErrReminderAlreadyExists) {
				logging.Error(ctx, s.log, err, logging.Entry("reminderID", record.ID))
				result.Failed++
			}
			continue
		}
		if err := s.scheduler.ScheduleReminder(ctx, record); err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("reminderID", record.ID))
			if err := s.store.MarkFailed(ctx, record.ID, s.now(), err.Error()); err != nil {
				logging.Error(ctx, s.log, err, logging.Entry("reminderID", record.ID))
			}
			result.Failed++
			continue
		}
		result.Restored++
	}

	s.log.Info(
		ctx,
		"Pending reminders recovered.",
		logging.Entry("restored", result.Restored),
		logging.Entry("failed", result.Failed),
		logging.Entry("interrupted", result.Interrupted),
	)
	return result, nil
}
