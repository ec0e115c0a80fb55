package deliveryguard

import (
	"context"
	"fmt"
	"time"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/reminder"

	"github.com/go-redis/redis/v9"
)

const keyPrefix = "remindbot::delivery::"

// Redis grants claims across processes sharing one Redis instance.
type Redis struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewRedis(redisClient *redis.Client, ttl time.Duration) *Redis {
	if redisClient == nil {
		panic(e.NewNilArgumentError("redisClient"))
	}
	return &Redis{redisClient: redisClient, ttl: ttl}
}

func (g *Redis) Claim(ctx context.Context, id reminder.ID) (bool, error) {
	ok, err := g.redisClient.SetNX(ctx, keyPrefix+string(id), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("could not claim delivery of reminder %s: %w", id, err)
	}
	return ok, nil
}
