package metrics

import (
	"sync"
	"time"
)

type TestSink struct {
	Scheduled int
	Rejected  []string
	Fired     []time.Duration
	Failed    int
	Armed     int
	lock      sync.Mutex
}

func NewTestSink() *TestSink {
	return &TestSink{}
}

func (s *TestSink) ReminderScheduled() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Scheduled++
}

func (s *TestSink) ReminderRejected(reason string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Rejected = append(s.Rejected, reason)
}

func (s *TestSink) ReminderFired(lateness time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Fired = append(s.Fired, lateness)
}

func (s *TestSink) ReminderFailed() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Failed++
}

func (s *TestSink) ArmedTimers(count int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Armed = count
}

type TestSinkSnapshot struct {
	Scheduled int
	Rejected  []string
	Fired     []time.Duration
	Failed    int
	Armed     int
}

func (s *TestSink) Snapshot() TestSinkSnapshot {
	s.lock.Lock()
	defer s.lock.Unlock()
	return TestSinkSnapshot{
		Scheduled: s.Scheduled,
		Rejected:  append([]string(nil), s.Rejected...),
		Fired:     append([]time.Duration(nil), s.Fired...),
		Failed:    s.Failed,
		Armed:     s.Armed,
	}
}
