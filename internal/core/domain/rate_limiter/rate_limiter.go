package ratelimiter

import (
	"context"
	"errors"
	"time"
)

var ErrRateLimitExceeded = errors.New("rate limit exceeded")

type Interval struct {
	value time.Duration
}

var (
	Minute = Interval{value: time.Minute}
	Hour   = Interval{value: time.Hour}
)

func (i Interval) Duration() time.Duration {
	return i.value
}

// Window returns the start of the fixed window containing at.
func (i Interval) Window(at time.Time) time.Time {
	return at.UTC().Truncate(i.value)
}

// Limit allows Value calls per Interval. A zero Value disables limiting.
type Limit struct {
	Value    uint16
	Interval Interval
}

func (l Limit) IsEnabled() bool {
	return l.Value > 0 && l.Interval.value > 0
}

type Result struct {
	IsAllowed bool
}

func Allowed() Result {
	return Result{IsAllowed: true}
}

func NotAllowed() Result {
	return Result{IsAllowed: false}
}

type RateLimiter interface {
	CheckLimit(ctx context.Context, key string, limit Limit) Result
}
