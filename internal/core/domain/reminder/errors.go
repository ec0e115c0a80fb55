package reminder

import (
	"errors"
	"fmt"
)

var (
	ErrReminderDoesNotExist  = errors.New("reminder does not exist")
	ErrReminderAlreadyExists = errors.New("reminder already exists")
	ErrAlreadyScheduled      = errors.New("reminder is already scheduled")
	ErrSchedulerStopped      = errors.New("scheduler is stopped")
	ErrTransport             = errors.New("reminder delivery failed")
)

// TransportError is returned by notifiers. Retryable is set only when the
// message provably did not reach the destination.
type TransportError struct {
	Err       error
	Retryable bool
}

func NewTransportError(err error, retryable bool) *TransportError {
	return &TransportError{Err: err, Retryable: retryable}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// IsRetryable reports whether err is a retryable TransportError.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Retryable
}
