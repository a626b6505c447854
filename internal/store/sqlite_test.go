package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/sicbo-sim/internal/bankroll"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func testRun(wager string, created time.Time) *Run {
	return &Run{
		WagerType:      wager,
		NumSessions:    2,
		NumGames:       10,
		BetAmount:      decimal.NewFromInt(100),
		InitialCapital: decimal.NewFromInt(1000),
		Seed:           ^uint64(0),
		OverallRTP:     0.97,
		TotalStaked:    decimal.RequireFromString("2000"),
		TotalWon:       decimal.RequireFromString("1940.50"),
		EngineVersion:  "test",
		CreatedAt:      created,
		Sessions: []SessionSummary{
			{Index: 0, FinalCapital: decimal.NewFromInt(900), GamesPlayed: 10, TotalStaked: decimal.NewFromInt(1000), TotalWon: decimal.NewFromInt(900), RTP: 0.9, Terminal: "GAMES_EXHAUSTED"},
			{Index: 1, FinalCapital: decimal.RequireFromString("1040.5"), GamesPlayed: 10, TotalStaked: decimal.NewFromInt(1000), TotalWon: decimal.RequireFromString("1040.5"), RTP: 1.0405, Terminal: "GAMES_EXHAUSTED"},
		},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())
	assert.NoError(t, db.Ping())
}

func TestSaveAndGetRun(t *testing.T) {
	db := newTestDB(t)

	run := testRun("HI", time.Time{})
	require.NoError(t, db.SaveRun(run))
	require.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := db.GetRun(run.ID)
	require.NoError(t, err)

	assert.Equal(t, "HI", got.WagerType)
	assert.Equal(t, ^uint64(0), got.Seed)
	assert.True(t, got.TotalWon.Equal(decimal.RequireFromString("1940.5")), got.TotalWon.String())
	assert.True(t, got.BetAmount.Equal(decimal.NewFromInt(100)))
	assert.InDelta(t, 0.97, got.OverallRTP, 1e-12)
	require.Len(t, got.Sessions, 2)
	assert.Equal(t, 1, got.Sessions[1].Index)
	assert.True(t, got.Sessions[1].FinalCapital.Equal(decimal.RequireFromString("1040.5")))
	assert.Equal(t, "GAMES_EXHAUSTED", got.Sessions[0].Terminal)
}

func TestGetRunNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetRun("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRuns(t *testing.T) {
	db := newTestDB(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, wager := range []string{"HI", "LO", "HI"} {
		require.NoError(t, db.SaveRun(testRun(wager, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := db.ListRuns(RunsQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalCount)
	assert.Equal(t, 1, all.TotalPages)
	require.Len(t, all.Runs, 3)
	assert.True(t, all.Runs[0].CreatedAt.After(all.Runs[2].CreatedAt), "newest first")
	assert.Empty(t, all.Runs[0].Sessions)

	hi, err := db.ListRuns(RunsQuery{WagerType: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 2, hi.TotalCount)
	assert.Equal(t, 50, hi.PerPage)

	page, err := db.ListRuns(RunsQuery{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Runs, 1)
}

func TestRunFromCohort(t *testing.T) {
	c, err := bankroll.RunCohort(context.Background(), bankroll.CohortParams{
		Sessions:       3,
		Games:          5,
		Bet:            decimal.NewFromInt(10),
		InitialCapital: decimal.NewFromInt(100),
		Wager:          bankroll.WagerEleven,
		Seed:           11,
	})
	require.NoError(t, err)

	run := RunFromCohort(c, "v-test")
	assert.Equal(t, "ELEVEN", run.WagerType)
	assert.Equal(t, uint64(11), run.Seed)
	assert.Equal(t, c.OverallRTP, run.OverallRTP)
	require.Len(t, run.Sessions, 3)
	assert.Equal(t, c.Results[2].GamesPlayed, run.Sessions[2].GamesPlayed)

	db := newTestDB(t)
	require.NoError(t, db.SaveRun(run))
	got, err := db.GetRun(run.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalStaked.Equal(c.TotalStaked))
	assert.Len(t, got.Sessions, 3)
}
