package reminder

import "context"

type Scheduler interface {
	ScheduleReminder(ctx context.Context, r Record) error
	IsPending(id ID) bool
}

// DeliveryGuard hands out the right to deliver a reminder. Claim returns
// true for exactly one caller per id.
type DeliveryGuard interface {
	Claim(ctx context.Context, id ID) (bool, error)
}
