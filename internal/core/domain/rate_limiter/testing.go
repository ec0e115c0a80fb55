package ratelimiter

import (
	"context"
	"sync"
)

type FakeRateLimiter struct {
	IsAllowed bool
	keys      []string
	lock      sync.Mutex
}

func NewFakeRateLimiter(isAllowed bool) *FakeRateLimiter {
	return &FakeRateLimiter{IsAllowed: isAllowed}
}

func (rl *FakeRateLimiter) CheckLimit(ctx context.Context, key string, limit Limit) Result {
	rl.lock.Lock()
	defer rl.lock.Unlock()
	rl.keys = append(rl.keys, key)
	if rl.IsAllowed {
		return Allowed()
	}
	return NotAllowed()
}

// Keys returns the keys checked so far.
func (rl *FakeRateLimiter) Keys() []string {
	rl.lock.Lock()
	defer rl.lock.Unlock()
	return append([]string(nil), rl.keys...)
}
