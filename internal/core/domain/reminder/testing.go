package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	c "remindbot/internal/core/domain/common"
)

type TestStore struct {
	CreateError     error
	GetError        error
	MarkFiredError  error
	MarkFailedError error
	records         map[ID]Record
	seq             int
	lock            sync.Mutex
}

func NewTestStore() *TestStore {
	return &TestStore{records: make(map[ID]Record)}
}

func (s *TestStore) Create(ctx context.Context, input CreateInput) (ID, error) {
	if s.CreateError != nil {
		return "", s.CreateError
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.seq++
	id := ID(fmt.Sprintf("reminder-%d", s.seq))
	s.records[id] = Record{
		ID:               id,
		Message:          input.Message,
		Zone:             input.Zone,
		LocalDisplayTime: input.LocalDisplayTime,
		FireInstant:      input.FireInstant,
		Status:           StatusPending,
		CreatedAt:        input.CreatedAt,
	}
	return id, nil
}

func (s *TestStore) Restore(ctx context.Context, r Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.records[r.ID] = r
	return nil
}

func (s *TestStore) Get(ctx context.Context, id ID) (Record, error) {
	if s.GetError != nil {
		return Record{}, s.GetError
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	r, ok := s.records[id]
	if !ok {
		return Record{}, ErrReminderDoesNotExist
	}
	return r, nil
}

func (s *TestStore) MarkFired(ctx context.Context, id ID, at time.Time) error {
	if s.MarkFiredError != nil {
		return s.MarkFiredError
	}
	return s.transition(id, func(r *Record) {
		r.Status = StatusFired
		r.FiredAt = c.Some(at)
	})
}

func (s *TestStore) MarkFailed(ctx context.Context, id ID, at time.Time, reason string) error {
	if s.MarkFailedError != nil {
		return s.MarkFailedError
	}
	return s.transition(id, func(r *Record) {
		r.Status = StatusFailed
		r.FailedAt = c.Some(at)
		r.FailureReason = reason
	})
}

func (s *TestStore) transition(id ID, apply func(r *Record)) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	r, ok := s.records[id]
	if !ok {
		return ErrReminderDoesNotExist
	}
	if r.Status.IsTerminal() {
		return nil
	}
	apply(&r)
	s.records[id] = r
	return nil
}

func (s *TestStore) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.records)
}

type TestScheduler struct {
	Scheduled []Record
	Error     error
	lock      sync.Mutex
}

func NewTestScheduler() *TestScheduler {
	return &TestScheduler{}
}

func (s *TestScheduler) ScheduleReminder(ctx context.Context, r Record) error {
	if s.Error != nil {
		return s.Error
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Scheduled = append(s.Scheduled, r)
	return nil
}

func (s *TestScheduler) IsPending(id ID) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, r := range s.Scheduled {
		if r.ID == id {
			return true
		}
	}
	return false
}

type TestDelivery struct {
	Destination Destination
	Text        string
}

type TestNotifier struct {
	Error     error
	Delivered []TestDelivery
	lock      sync.Mutex
}

func NewTestNotifier() *TestNotifier {
	return &TestNotifier{}
}

func (n *TestNotifier) Deliver(ctx context.Context, destination Destination, text string) error {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.Delivered = append(n.Delivered, TestDelivery{Destination: destination, Text: text})
	return n.Error
}

func (n *TestNotifier) Calls() []TestDelivery {
	n.lock.Lock()
	defer n.lock.Unlock()
	calls := make([]TestDelivery, len(n.Delivered))
	copy(calls, n.Delivered)
	return calls
}

type TestDeliveryGuard struct {
	Deny  bool
	Error error
}

func NewTestDeliveryGuard() *TestDeliveryGuard {
	return &TestDeliveryGuard{}
}

func (g *TestDeliveryGuard) Claim(ctx context.Context, id ID) (bool, error) {
	if g.Error != nil {
		return false, g.Error
	}
	return !g.Deny, nil
}

type TestEventPublisher struct {
	Error     error
	Published []Event
	lock      sync.Mutex
}

func NewTestEventPublisher() *TestEventPublisher {
	return &TestEventPublisher{}
}

func (p *TestEventPublisher) PublishReminderEvent(ctx context.Context, event Event) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.Published = append(p.Published, event)
	return p.Error
}

func (p *TestEventPublisher) Types() []EventType {
	p.lock.Lock()
	defer p.lock.Unlock()
	types := make([]EventType, 0, len(p.Published))
	for _, e := range p.Published {
		types = append(types, e.Type)
	}
	return types
}

type TestJournal struct {
	SaveError      error
	UpdateError    error
	ClaimError     error
	InterruptError error
	LoadError      error
	Pending        []Record
	Saved          []Record
	Updates        []StatusUpdate
	claimed        map[ID]time.Time
	lock           sync.Mutex
}

func NewTestJournal() *TestJournal {
	return &TestJournal{claimed: make(map[ID]time.Time)}
}

func (j *TestJournal) Save(ctx context.Context, r Record) error {
	if j.SaveError != nil {
		return j.SaveError
	}
	j.lock.Lock()
	defer j.lock.Unlock()
	j.Saved = append(j.Saved, r)
	return nil
}

func (j *TestJournal) UpdateStatus(ctx context.Context, update StatusUpdate) error {
	if j.UpdateError != nil {
		return j.UpdateError
	}
	j.lock.Lock()
	defer j.lock.Unlock()
	j.Updates = append(j.Updates, update)
	return nil
}

func (j *TestJournal) Claim(ctx context.Context, r Record, at time.Time) (bool, error) {
	if j.ClaimError != nil {
		return false, j.ClaimError
	}
	j.lock.Lock()
	defer j.lock.Unlock()
	if _, ok := j.claimed[r.ID]; ok || j.isTerminal(r.ID) {
		return false, nil
	}
	j.claimed[r.ID] = at
	return true, nil
}

// FailInterrupted fails claimed records of Pending that have no terminal
// update yet.
func (j *TestJournal) FailInterrupted(ctx context.Context, at time.Time, reason string) ([]ID, error) {
	if j.InterruptError != nil {
		return nil, j.InterruptError
	}
	j.lock.Lock()
	defer j.lock.Unlock()
	var ids []ID
	for _, r := range j.Pending {
		if _, ok := j.claimed[r.ID]; !ok || j.isTerminal(r.ID) {
			continue
		}
		j.Updates = append(j.Updates, StatusUpdate{ID: r.ID, Status: StatusFailed, At: at, Reason: reason})
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// LoadPending returns the records of Pending that were never claimed.
func (j *TestJournal) LoadPending(ctx context.Context) ([]Record, error) {
	if j.LoadError != nil {
		return nil, j.LoadError
	}
	j.lock.Lock()
	defer j.lock.Unlock()
	var pending []Record
	for _, r := range j.Pending {
		if _, ok := j.claimed[r.ID]; !ok && !j.isTerminal(r.ID) {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// Claimed reports whether delivery of id was claimed.
func (j *TestJournal) Claimed(id ID) bool {
	j.lock.Lock()
	defer j.lock.Unlock()
	_, ok := j.claimed[id]
	return ok
}

func (j *TestJournal) isTerminal(id ID) bool {
	for _, u := range j.Updates {
		if u.ID == id && u.Status.IsTerminal() {
			return true
		}
	}
	return false
}
