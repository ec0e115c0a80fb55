package ratelimiter

import (
	"context"
	"os"
	"testing"
	"time"

	"remindbot/internal/core/domain/logging"
	ratelimiter "remindbot/internal/core/domain/rate_limiter"
	randomstringgenerator "remindbot/internal/implementations/random_string_generator"

	"github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAllowsUpTo(t *testing.T, limiter ratelimiter.RateLimiter, key string, limit ratelimiter.Limit) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < int(limit.Value); i++ {
		require.True(t, limiter.CheckLimit(ctx, key, limit).IsAllowed, "call %d", i)
	}
	require.False(t, limiter.CheckLimit(ctx, key, limit).IsAllowed)
}

func TestMemory(t *testing.T) {
	// Setup ---
	now := time.Date(2024, 3, 10, 14, 0, 10, 0, time.UTC)
	limiter := NewMemory(func() time.Time { return now })
	limit := ratelimiter.Limit{Value: 3, Interval: ratelimiter.Minute}

	// Exercise & Verify ---
	assertAllowsUpTo(t, limiter, "telegram:1", limit)
	assert.True(t, limiter.CheckLimit(context.Background(), "telegram:2", limit).IsAllowed)

	now = now.Add(time.Minute)
	assertAllowsUpTo(t, limiter, "telegram:1", limit)
	assert.Len(t, limiter.counters, 1)
}

func TestMemoryDisabledLimit(t *testing.T) {
	limiter := NewMemory(time.Now)
	limit := ratelimiter.Limit{Value: 0, Interval: ratelimiter.Minute}

	for i := 0; i < 100; i++ {
		require.True(t, limiter.CheckLimit(context.Background(), "k", limit).IsAllowed)
	}
	assert.Empty(t, limiter.counters)
}

func TestWindowKey(t *testing.T) {
	at := time.Date(2024, 3, 10, 14, 37, 21, 0, time.UTC)

	assert.Equal(
		t,
		"remindbot::ratelimit::telegram:1::1710081420",
		windowKey("telegram:1", ratelimiter.Minute, at),
	)
}

func TestRedis(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}
	opt, err := redis.ParseURL(redisURL)
	require.Nil(t, err)
	client := redis.NewClient(opt)
	defer client.Close()
	limiter := NewRedis(client, logging.NewFakeLogger(), time.Now)
	key := string(randomstringgenerator.NewGenerator().GenerateReminderID())

	assertAllowsUpTo(t, limiter, key, ratelimiter.Limit{Value: 5, Interval: ratelimiter.Hour})
}
