package metrics

import "time"

// Sink receives reminder lifecycle measurements. Implementations must not
// block.
type Sink interface {
	ReminderScheduled()
	ReminderRejected(reason string)
	ReminderFired(lateness time.Duration)
	ReminderFailed()
	ArmedTimers(count int)
}

type NopSink struct{}

func NewNopSink() *NopSink {
	return &NopSink{}
}

func (n *NopSink) ReminderScheduled()                   {}
func (n *NopSink) ReminderRejected(reason string)       {}
func (n *NopSink) ReminderFired(lateness time.Duration) {}
func (n *NopSink) ReminderFailed()                      {}
func (n *NopSink) ArmedTimers(count int)                {}
