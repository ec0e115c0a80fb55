package deliveryguard

import (
	"context"
	"time"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/reminder"
)

// Journal persists the claim before delivery starts, so a reminder claimed
// before a restart is never handed out again.
type Journal struct {
	journal reminder.Journal
	store   reminder.Store
	now     func() time.Time
}

func NewJournal(journal reminder.Journal, store reminder.Store, now func() time.Time) *Journal {
	if journal == nil {
		panic(e.NewNilArgumentError("journal"))
	}
	if store == nil {
		panic(e.NewNilArgumentError("store"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &Journal{journal: journal, store: store, now: now}
}

func (g *Journal) Claim(ctx context.Context, id reminder.ID) (bool, error) {
	record, err := g.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return g.journal.Claim(ctx, record, g.now())
}

// Chain grants a claim only when every guard grants it. Guards are asked in
// order and the first denial or error stops the chain.
type Chain struct {
	guards []reminder.DeliveryGuard
}

func NewChain(guards ...reminder.DeliveryGuard) *Chain {
	for _, guard := range guards {
		if guard == nil {
			panic(e.NewNilArgumentError("guard"))
		}
	}
	return &Chain{guards: guards}
}

func (g *Chain) Claim(ctx context.Context, id reminder.ID) (bool, error) {
	for _, guard := range g.guards {
		ok, err := guard.Claim(ctx, id)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
