package reminder

import "context"

type Notifier interface {
	Deliver(ctx context.Context, destination Destination, text string) error
}
