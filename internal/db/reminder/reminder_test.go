package dbreminder

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"remindbot/internal/core/domain/localtime"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/db"
	randomstringgenerator "remindbot/internal/implementations/random_string_generator"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/suite"
)

var Now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testSuite struct {
	suite.Suite
	pool    *pgxpool.Pool
	journal *PgxJournal
	ids     *randomstringgenerator.Generator
}

func (suite *testSuite) SetupSuite() {
	suite.pool = db.CreateTestPool(suite.T())
	suite.journal = NewPgxJournal(suite.pool, localtime.SystemZoneProvider{})
	suite.ids = randomstringgenerator.NewGenerator()
}

func (suite *testSuite) TearDownSuite() {
	suite.pool.Close()
}

func (suite *testSuite) SetupTest() {
	db.TruncateTables(suite.T(), suite.pool)
}

func (suite *testSuite) record(instant time.Time) reminder.Record {
	ny, err := time.LoadLocation("America/New_York")
	suite.Require().Nil(err)
	return reminder.Record{
		ID:               suite.ids.GenerateReminderID(),
		Message:          "Team sync",
		Zone:             "America/New_York",
		LocalDisplayTime: instant.In(ny),
		FireInstant:      instant,
		Status:           reminder.StatusPending,
		CreatedAt:        Now,
	}
}

func (suite *testSuite) TestSaveAndLoadPending() {
	// Setup ---
	ctx := context.Background()
	assert := suite.Require()
	later := suite.record(time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC))
	earlier := suite.record(time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC))

	// Exercise ---
	assert.Nil(suite.journal.Save(ctx, later))
	assert.Nil(suite.journal.Save(ctx, earlier))
	assert.Nil(suite.journal.Save(ctx, earlier))
	pending, err := suite.journal.LoadPending(ctx)

	// Verify ---
	assert.Nil(err)
	assert.Len(pending, 2)
	assert.Equal(earlier.ID, pending[0].ID)
	assert.Equal(later.ID, pending[1].ID)
	assert.True(earlier.FireInstant.Equal(pending[0].FireInstant))
	assert.Equal("2024-03-10 10:00", pending[0].LocalDisplayTime.Format("2006-01-02 15:04"))
	assert.Nil(pending[0].Validate())
}

func (suite *testSuite) TestTerminalRecordsAreNotLoaded() {
	ctx := context.Background()
	assert := suite.Require()
	fired := suite.record(Now)
	failed := suite.record(Now)
	assert.Nil(suite.journal.Save(ctx, fired))
	assert.Nil(suite.journal.Save(ctx, failed))

	assert.Nil(suite.journal.UpdateStatus(ctx, reminder.StatusUpdate{ID: fired.ID, Status: reminder.StatusFired, At: Now}))
	assert.Nil(suite.journal.UpdateStatus(ctx, reminder.StatusUpdate{
		ID:     failed.ID,
		Status: reminder.StatusFailed,
		At:     Now,
		Reason: "boom",
	}))
	pending, err := suite.journal.LoadPending(ctx)

	assert.Nil(err)
	assert.Empty(pending)
}

func (suite *testSuite) TestClaimedRecordsAreFailedInsteadOfLoaded() {
	// Setup ---
	ctx := context.Background()
	assert := suite.Require()
	claimed := suite.record(Now)
	unclaimed := suite.record(Now.Add(time.Hour))
	assert.Nil(suite.journal.Save(ctx, claimed))
	assert.Nil(suite.journal.Save(ctx, unclaimed))

	// Exercise ---
	ok, err := suite.journal.Claim(ctx, claimed, Now)
	assert.Nil(err)
	assert.True(ok)
	again, err := suite.journal.Claim(ctx, claimed, Now)
	assert.Nil(err)
	assert.False(again)

	ids, err := suite.journal.FailInterrupted(ctx, Now, "interrupted")
	assert.Nil(err)
	pending, err := suite.journal.LoadPending(ctx)

	// Verify ---
	assert.Nil(err)
	assert.Equal([]reminder.ID{claimed.ID}, ids)
	assert.Len(pending, 1)
	assert.Equal(unclaimed.ID, pending[0].ID)
}

func (suite *testSuite) TestClaimInsertsUnsavedRecord() {
	ctx := context.Background()
	assert := suite.Require()
	record := suite.record(Now)

	ok, err := suite.journal.Claim(ctx, record, Now)
	assert.Nil(err)
	assert.True(ok)

	pending, err := suite.journal.LoadPending(ctx)
	assert.Nil(err)
	assert.Empty(pending)
}

func (suite *testSuite) TestTerminalRecordCannotBeClaimed() {
	ctx := context.Background()
	assert := suite.Require()
	record := suite.record(Now)
	assert.Nil(suite.journal.Save(ctx, record))
	assert.Nil(suite.journal.UpdateStatus(ctx, reminder.StatusUpdate{ID: record.ID, Status: reminder.StatusFired, At: Now}))

	ok, err := suite.journal.Claim(ctx, record, Now)

	assert.Nil(err)
	assert.False(ok)
}

func (suite *testSuite) TestPendingStatusUpdateIsRejected() {
	err := suite.journal.UpdateStatus(context.Background(), reminder.StatusUpdate{
		ID:     suite.ids.GenerateReminderID(),
		Status: reminder.StatusPending,
	})
	suite.NotNil(err)
}

func TestPgxJournal(t *testing.T) {
	suite.Run(t, new(testSuite))
}
