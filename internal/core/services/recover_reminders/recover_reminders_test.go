package recoverreminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"

	"github.com/stretchr/testify/require"
)

var Now = time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

func pending(id reminder.ID, instant time.Time) reminder.Record {
	return reminder.Record{
		ID:               id,
		Message:          string(id),
		Zone:             "UTC",
		LocalDisplayTime: instant,
		FireInstant:      instant,
		Status:           reminder.StatusPending,
		CreatedAt:        instant.Add(-time.Hour),
	}
}

func TestPendingRemindersAreRestoredAndArmed(t *testing.T) {
	// Setup ---
	journal := reminder.NewTestJournal()
	journal.Pending = []reminder.Record{
		pending("past", Now.Add(-time.Minute)),
		pending("future", Now.Add(time.Hour)),
	}
	store := reminder.NewTestStore()
	scheduler := reminder.NewTestScheduler()
	service := New(logging.NewFakeLogger(), journal, store, scheduler, func() time.Time { return Now })

	// Exercise ---
	result, err := service.Run(context.Background(), Input{})

	// Verify ---
	assert := require.New(t)
	assert.Nil(err)
	assert.Equal(Result{Restored: 2}, result)
	assert.Equal(2, store.Len())
	assert.Equal(journal.Pending, scheduler.Scheduled)
}

func TestSchedulerErrorMarksRestoredRecordFailed(t *testing.T) {
	// Setup ---
	journal := reminder.NewTestJournal()
	journal.Pending = []reminder.Record{pending("a", Now)}
	store := reminder.NewTestStore()
	scheduler := reminder.NewTestScheduler()
	scheduler.Error = reminder.ErrSchedulerStopped
	service := New(logging.NewFakeLogger(), journal, store, scheduler, func() time.Time { return Now })

	// Exercise ---
	result, err := service.Run(context.Background(), Input{})

	// Verify ---
	assert := require.New(t)
	assert.Nil(err)
	assert.Equal(Result{Failed: 1}, result)
	record, err := store.Get(context.Background(), "a")
	assert.Nil(err)
	assert.Equal(reminder.StatusFailed, record.Status)
}

func TestAlreadyKnownRemindersAreSkipped(t *testing.T) {
	journal := reminder.NewTestJournal()
	journal.Pending = []reminder.Record{pending("a", Now)}
	scheduler := reminder.NewTestScheduler()
	service := New(logging.NewFakeLogger(), journal, &duplicateStore{reminder.NewTestStore()}, scheduler, time.Now)

	result, err := service.Run(context.Background(), Input{})

	require.Nil(t, err)
	require.Equal(t, Result{}, result)
	require.Empty(t, scheduler.Scheduled)
}

func TestClaimedRemindersAreFailedInsteadOfArmed(t *testing.T) {
	// Setup ---
	ctx := context.Background()
	journal := reminder.NewTestJournal()
	claimed := pending("claimed", Now.Add(-time.Minute))
	journal.Pending = []reminder.Record{claimed, pending("future", Now.Add(time.Hour))}
	ok, err := journal.Claim(ctx, claimed, Now.Add(-time.Minute))
	require.Nil(t, err)
	require.True(t, ok)
	log := logging.NewFakeLogger()
	store := reminder.NewTestStore()
	scheduler := reminder.NewTestScheduler()
	service := New(log, journal, store, scheduler, func() time.Time { return Now })

	// Exercise ---
	result, err := service.Run(ctx, Input{})

	// Verify ---
	assert := require.New(t)
	assert.Nil(err)
	assert.Equal(Result{Restored: 1, Interrupted: 1}, result)
	assert.False(scheduler.IsPending("claimed"))
	assert.True(scheduler.IsPending("future"))
	assert.Equal(
		[]reminder.StatusUpdate{{ID: "claimed", Status: reminder.StatusFailed, At: Now, Reason: reasonInterrupted}},
		journal.Updates,
	)
	assert.Equal(1, log.CountLevel(logging.WARNING))
}

func TestInterruptedLookupErrorIsReturned(t *testing.T) {
	journal := reminder.NewTestJournal()
	journal.InterruptError = errors.New("db is down")
	scheduler := reminder.NewTestScheduler()
	service := New(logging.NewFakeLogger(), journal, reminder.NewTestStore(), scheduler, time.Now)

	_, err := service.Run(context.Background(), Input{})

	require.ErrorIs(t, err, journal.InterruptError)
	require.Empty(t, scheduler.Scheduled)
}

func TestJournalErrorIsReturned(t *testing.T) {
	journal := reminder.NewTestJournal()
	journal.LoadError = errors.New("db is down")
	service := New(logging.NewFakeLogger(), journal, reminder.NewTestStore(), reminder.NewTestScheduler(), time.Now)

	_, err := service.Run(context.Background(), Input{})

	require.ErrorIs(t, err, journal.LoadError)
}

type duplicateStore struct {
	*reminder.TestStore
}

func (s *duplicateStore) Restore(ctx context.Context, r reminder.Record) error {
	return reminder.ErrReminderAlreadyExists
}
