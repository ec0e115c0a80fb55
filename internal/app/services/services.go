package services

import (
	"context"

	"remindbot/internal/app/deps"
	c "remindbot/internal/core/domain/common"
	"remindbot/internal/core/domain/logging"
	drl "remindbot/internal/core/domain/rate_limiter"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	ratelimiting "remindbot/internal/core/services/rate_limiting"
	recoverreminders "remindbot/internal/core/services/recover_reminders"
	schedulereminder "remindbot/internal/core/services/schedule_reminder"
	sendreminder "remindbot/internal/core/services/send_reminder"
	deliveryguard "remindbot/internal/implementations/delivery_guard"
	reminderscheduler "remindbot/internal/implementations/reminder_scheduler"
)

type Services struct {
	ScheduleReminder services.Service[schedulereminder.Input, schedulereminder.Result]
	SendReminder     services.Service[sendreminder.Input, sendreminder.Result]
	// RecoverReminders is nil when no journal is configured.
	RecoverReminders services.Service[recoverreminders.Input, recoverreminders.Result]

	Scheduler *reminderscheduler.TimerScheduler
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	destinations := sendreminder.Destinations{
		Reminders: reminder.Destination(deps.Config.DestinationChatID),
		Admin: c.NewOptional(
			reminder.Destination(deps.Config.AdminChatID),
			deps.Config.AdminChatID != "",
		),
	}
	var guard reminder.DeliveryGuard = deps.DeliveryGuard
	if deps.ReminderJournal != nil {
		guard = deliveryguard.NewChain(
			deps.DeliveryGuard,
			deliveryguard.NewJournal(deps.ReminderJournal, deps.ReminderStore, deps.Now),
		)
	}
	s.SendReminder = sendreminder.New(
		deps.Logger,
		deps.ReminderStore,
		deps.ReminderNotifier,
		guard,
		deps.EventPublisher,
		deps.Metrics,
		deps.Renderer,
		destinations,
		deps.Now,
	)
	s.Scheduler = reminderscheduler.New(
		func(ctx context.Context, id reminder.ID) {
			if _, err := s.SendReminder.Run(ctx, sendreminder.Input{ReminderID: id}); err != nil {
				deps.Logger.Warning(
					ctx,
					"Reminder delivery did not complete.",
					logging.Entry("reminderID", id),
					logging.Entry("err", err),
				)
			}
		},
		deps.Logger,
		deps.Metrics,
		deps.Now,
	)
	s.ScheduleReminder = schedulereminder.New(
		deps.Logger,
		deps.Normalizer,
		deps.ReminderStore,
		s.Scheduler,
		deps.EventPublisher,
		deps.Metrics,
		deps.Renderer,
		deps.Config.DisplayZone,
		deps.Now,
	)
	submissionLimit := drl.Limit{Value: deps.Config.SubmissionsPerMinute, Interval: drl.Minute}
	if submissionLimit.IsEnabled() {
		s.ScheduleReminder = ratelimiting.WithRateLimiting(
			deps.Logger,
			deps.RateLimiter,
			submissionLimit,
			deps.Metrics,
			s.ScheduleReminder,
		)
	}
	if deps.ReminderJournal != nil {
		s.RecoverReminders = recoverreminders.New(
			deps.Logger,
			deps.ReminderJournal,
			deps.ReminderStore,
			s.Scheduler,
			deps.Now,
		)
	}

	return s
}
