package reminderscheduler

import (
	"context"
	"sync"
	"time"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/metrics"
	"remindbot/internal/core/domain/reminder"
)

// FireFunc is invoked once per armed reminder when its instant is reached.
type FireFunc func(ctx context.Context, id reminder.ID)

// TimerScheduler arms one in-process timer per reminder.
type TimerScheduler struct {
	fire    FireFunc
	log     logging.Logger
	metrics metrics.Sink
	now     func() time.Time

	timers   map[reminder.ID]*time.Timer
	stopped  bool
	lock     sync.Mutex
	inflight sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

func New(fire FireFunc, log logging.Logger, sink metrics.Sink, now func() time.Time) *TimerScheduler {
	if fire == nil {
		panic(e.NewNilArgumentError("fire"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if sink == nil {
		panic(e.NewNilArgumentError("sink"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TimerScheduler{
		fire:    fire,
		log:     log,
		metrics: sink,
		now:     now,
		timers:  make(map[reminder.ID]*time.Timer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// ScheduleReminder arms a one-shot timer at r.FireInstant. Instants in the
// past fire immediately.
func (s *TimerScheduler) ScheduleReminder(ctx context.Context, r reminder.Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.stopped {
		return reminder.ErrSchedulerStopped
	}
	if _, ok := s.timers[r.ID]; ok {
		return reminder.ErrAlreadyScheduled
	}

	delay := r.FireInstant.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	id := r.ID
	s.timers[id] = time.AfterFunc(delay, func() { s.expire(id) })
	s.metrics.ArmedTimers(len(s.timers))

	s.log.Debug(
		ctx,
		"Reminder timer armed.",
		logging.Entry("reminderID", id),
		logging.Entry("fireInstant", r.FireInstant),
		logging.Entry("delay", delay),
	)
	return nil
}

func (s *TimerScheduler) IsPending(id reminder.ID) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, ok := s.timers[id]
	return ok
}

func (s *TimerScheduler) Armed() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.timers)
}

// Stop cancels all armed timers and waits for running callbacks until ctx
// is done. Callbacks still running at that point see their context
// canceled.
func (s *TimerScheduler) Stop(ctx context.Context) error {
	s.lock.Lock()
	if !s.stopped {
		s.stopped = true
		for id, timer := range s.timers {
			timer.Stop()
			delete(s.timers, id)
		}
		s.metrics.ArmedTimers(0)
	}
	s.lock.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

func (s *TimerScheduler) expire(id reminder.ID) {
	s.lock.Lock()
	if _, ok := s.timers[id]; !ok || s.stopped {
		s.lock.Unlock()
		return
	}
	delete(s.timers, id)
	s.metrics.ArmedTimers(len(s.timers))
	s.inflight.Add(1)
	s.lock.Unlock()

	defer s.inflight.Done()
	s.fire(s.ctx, id)
}
