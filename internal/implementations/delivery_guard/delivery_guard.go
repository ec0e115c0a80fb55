package deliveryguard

import (
	"context"
	"sync"

	"remindbot/internal/core/domain/reminder"
)

// Memory grants claims within a single process.
type Memory struct {
	claimed sync.Map
}

func NewMemory() *Memory {
	return &Memory{}
}

func (g *Memory) Claim(ctx context.Context, id reminder.ID) (bool, error) {
	_, loaded := g.claimed.LoadOrStore(id, struct{}{})
	return !loaded, nil
}
