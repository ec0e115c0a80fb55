package dbreminder

import (
	"context"
	"time"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/localtime"
	"remindbot/internal/core/domain/reminder"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

const saveReminder = `
INSERT INTO reminder (id, message, zone, fire_instant, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`

const markFired = `
UPDATE reminder SET status = 'fired', fired_at = $2
WHERE id = $1 AND status = 'pending'`

const markFailed = `
UPDATE reminder SET status = 'failed', failed_at = $2, failure_reason = $3
WHERE id = $1 AND status = 'pending'`

// claimReminder inserts the row when its save was lost, so a claim never
// depends on the best-effort create.
const claimReminder = `
INSERT INTO reminder (id, message, zone, fire_instant, status, created_at, claimed_at)
VALUES ($1, $2, $3, $4, 'pending', $5, $6)
ON CONFLICT (id) DO UPDATE SET claimed_at = EXCLUDED.claimed_at
WHERE reminder.status = 'pending' AND reminder.claimed_at IS NULL`

const failInterrupted = `
UPDATE reminder SET status = 'failed', failed_at = $1, failure_reason = $2
WHERE status = 'pending' AND claimed_at IS NOT NULL
RETURNING id::text`

const loadPending = `
SELECT id, message, zone, fire_instant, created_at
FROM reminder
WHERE status = 'pending' AND claimed_at IS NULL
ORDER BY fire_instant`

// PgxJournal keeps the durable copy of reminders in PostgreSQL.
type PgxJournal struct {
	db    DBTX
	zones localtime.ZoneProvider
}

func NewPgxJournal(db DBTX, zones localtime.ZoneProvider) *PgxJournal {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	if zones == nil {
		panic(e.NewNilArgumentError("zones"))
	}
	return &PgxJournal{db: db, zones: zones}
}

func (j *PgxJournal) Save(ctx context.Context, r reminder.Record) error {
	_, err := j.db.Exec(
		ctx,
		saveReminder,
		string(r.ID),
		r.Message,
		r.Zone,
		r.FireInstant,
		r.Status.String(),
		r.CreatedAt,
	)
	return err
}

func (j *PgxJournal) UpdateStatus(ctx context.Context, update reminder.StatusUpdate) (err error) {
	switch update.Status {
	case reminder.StatusFired:
		_, err = j.db.Exec(ctx, markFired, string(update.ID), update.At)
	case reminder.StatusFailed:
		_, err = j.db.Exec(ctx, markFailed, string(update.ID), update.At, update.Reason)
	default:
		err = e.NewInvalidStateError("only terminal statuses can be journaled")
	}
	return err
}

func (j *PgxJournal) Claim(ctx context.Context, r reminder.Record, at time.Time) (bool, error) {
	tag, err := j.db.Exec(
		ctx,
		claimReminder,
		string(r.ID),
		r.Message,
		r.Zone,
		r.FireInstant,
		r.CreatedAt,
		at,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (j *PgxJournal) FailInterrupted(ctx context.Context, at time.Time, reason string) ([]reminder.ID, error) {
	rows, err := j.db.Query(ctx, failInterrupted, at, reason)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []reminder.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, reminder.ID(id))
	}
	return ids, rows.Err()
}

func (j *PgxJournal) LoadPending(ctx context.Context) ([]reminder.Record, error) {
	rows, err := j.db.Query(ctx, loadPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []reminder.Record
	for rows.Next() {
		var (
			id          string
			r           reminder.Record
			fireInstant time.Time
			createdAt   time.Time
		)
		if err := rows.Scan(&id, &r.Message, &r.Zone, &fireInstant, &createdAt); err != nil {
			return nil, err
		}
		r.ID = reminder.ID(id)
		r.Status = reminder.StatusPending
		r.FireInstant = fireInstant.UTC()
		r.CreatedAt = createdAt.UTC()
		r.LocalDisplayTime = j.localize(r.FireInstant, r.Zone)
		records = append(records, r)
	}
	return records, rows.Err()
}

// localize falls back to UTC for zones that are no longer known, the record
// keeps its original zone name.
func (j *PgxJournal) localize(instant time.Time, zone string) time.Time {
	loc, err := j.zones.Location(zone)
	if err != nil {
		return instant
	}
	return instant.In(loc)
}
