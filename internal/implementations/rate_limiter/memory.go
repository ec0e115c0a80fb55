package ratelimiter

import (
	"context"
	"sync"
	"time"

	e "remindbot/internal/core/domain/errors"
	ratelimiter "remindbot/internal/core/domain/rate_limiter"
)

type counter struct {
	window time.Time
	count  uint16
}

// Memory counts calls per fixed window inside the process.
type Memory struct {
	now      func() time.Time
	counters map[string]*counter
	lock     sync.Mutex
}

func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &Memory{now: now, counters: make(map[string]*counter)}
}

func (m *Memory) CheckLimit(ctx context.Context, key string, limit ratelimiter.Limit) ratelimiter.Result {
	if !limit.IsEnabled() {
		return ratelimiter.Allowed()
	}
	window := limit.Interval.Window(m.now())
	k := windowKey(key, limit.Interval, window)

	m.lock.Lock()
	defer m.lock.Unlock()

	m.evict(window)
	c, ok := m.counters[k]
	if !ok {
		c = &counter{window: window}
		m.counters[k] = c
	}
	if c.count >= limit.Value {
		return ratelimiter.NotAllowed()
	}
	c.count++
	return ratelimiter.Allowed()
}

// evict drops counters of windows that ended before the current one.
func (m *Memory) evict(current time.Time) {
	for k, c := range m.counters {
		if c.window.Before(current) {
			delete(m.counters, k)
		}
	}
}
