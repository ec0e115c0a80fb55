package reminderstore

import (
	"context"
	"time"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
)

// JournaledStore mirrors every create and terminal transition of the
// wrapped store into a journal. Journal failures are logged and never
// reported to the caller.
type JournaledStore struct {
	store   reminder.Store
	journal reminder.Journal
	log     logging.Logger
}

func NewJournaledStore(store reminder.Store, journal reminder.Journal, log logging.Logger) *JournaledStore {
	if store == nil {
		panic(e.NewNilArgumentError("store"))
	}
	if journal == nil {
		panic(e.NewNilArgumentError("journal"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &JournaledStore{store: store, journal: journal, log: log}
}

func (s *JournaledStore) Create(ctx context.Context, input reminder.CreateInput) (reminder.ID, error) {
	id, err := s.store.Create(ctx, input)
	if err != nil {
		return id, err
	}
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return id, err
	}
	if err := s.journal.Save(ctx, record); err != nil {
		s.log.Warning(
			ctx,
			"Could not save reminder to the journal.",
			logging.Entry("reminderID", id),
			logging.Entry("err", err),
		)
	}
	return id, nil
}

// Restore does not write to the journal, restored records come from it.
func (s *JournaledStore) Restore(ctx context.Context, r reminder.Record) error {
	return s.store.Restore(ctx, r)
}

func (s *JournaledStore) Get(ctx context.Context, id reminder.ID) (reminder.Record, error) {
	return s.store.Get(ctx, id)
}

func (s *JournaledStore) MarkFired(ctx context.Context, id reminder.ID, at time.Time) error {
	if err := s.store.MarkFired(ctx, id, at); err != nil {
		return err
	}
	s.update(ctx, reminder.StatusUpdate{ID: id, Status: reminder.StatusFired, At: at})
	return nil
}

func (s *JournaledStore) MarkFailed(ctx context.Context, id reminder.ID, at time.Time, reason string) error {
	if err := s.store.MarkFailed(ctx, id, at, reason); err != nil {
		return err
	}
	s.update(ctx, reminder.StatusUpdate{ID: id, Status: reminder.StatusFailed, At: at, Reason: reason})
	return nil
}

func (s *JournaledStore) update(ctx context.Context, update reminder.StatusUpdate) {
	if err := s.journal.UpdateStatus(ctx, update); err != nil {
		s.log.Warning(
			ctx,
			"Could not update reminder status in the journal.",
			logging.Entry("reminderID", update.ID),
			logging.Entry("status", update.Status),
			logging.Entry("err", err),
		)
	}
}
