package reminderstore

import (
	"context"
	"sync"
	"time"

	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/reminder"
)

type entry struct {
	record reminder.Record
	lock   sync.Mutex
}

// MemoryStore keeps reminders in process memory. The map lock only guards
// insertion and lookup; status transitions take the lock of their entry.
type MemoryStore struct {
	ids     reminder.IDGenerator
	entries map[reminder.ID]*entry
	lock    sync.RWMutex
}

func NewMemoryStore(ids reminder.IDGenerator) *MemoryStore {
	if ids == nil {
		panic(e.NewNilArgumentError("ids"))
	}
	return &MemoryStore{
		ids:     ids,
		entries: make(map[reminder.ID]*entry),
	}
}

func (s *MemoryStore) Create(ctx context.Context, input reminder.CreateInput) (reminder.ID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := s.ids.GenerateReminderID()
	for s.taken(id) {
		id = s.ids.GenerateReminderID()
	}

	s.entries[id] = &entry{record: reminder.Record{
		ID:               id,
		Message:          input.Message,
		Zone:             input.Zone,
		LocalDisplayTime: input.LocalDisplayTime,
		FireInstant:      input.FireInstant.UTC(),
		Status:           reminder.StatusPending,
		CreatedAt:        input.CreatedAt,
	}}
	return id, nil
}

func (s *MemoryStore) Restore(ctx context.Context, r reminder.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exists := s.entries[r.ID]; exists {
		return reminder.ErrReminderAlreadyExists
	}
	s.entries[r.ID] = &entry{record: r}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id reminder.ID) (reminder.Record, error) {
	en, err := s.lookup(id)
	if err != nil {
		return reminder.Record{}, err
	}
	en.lock.Lock()
	defer en.lock.Unlock()
	return en.record, nil
}

func (s *MemoryStore) MarkFired(ctx context.Context, id reminder.ID, at time.Time) error {
	return s.transition(id, func(r *reminder.Record) {
		r.Status = reminder.StatusFired
		r.FiredAt = c.Some(at)
	})
}

func (s *MemoryStore) MarkFailed(ctx context.Context, id reminder.ID, at time.Time, reason string) error {
	return s.transition(id, func(r *reminder.Record) {
		r.Status = reminder.StatusFailed
		r.FailedAt = c.Some(at)
		r.FailureReason = reason
	})
}

func (s *MemoryStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.entries)
}

// taken must be called with s.lock held.
func (s *MemoryStore) taken(id reminder.ID) bool {
	if id == "" {
		return true
	}
	_, exists := s.entries[id]
	return exists
}

func (s *MemoryStore) lookup(id reminder.ID) (*entry, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	en, ok := s.entries[id]
	if !ok {
		return nil, reminder.ErrReminderDoesNotExist
	}
	return en, nil
}

func (s *MemoryStore) transition(id reminder.ID, apply func(r *reminder.Record)) error {
	en, err := s.lookup(id)
	if err != nil {
		return err
	}
	en.lock.Lock()
	defer en.lock.Unlock()
	if en.record.Status.IsTerminal() {
		return nil
	}
	apply(&en.record)
	return nil
}
