package bankroll

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/sicbo-sim/internal/catalog"
	"github.com/MJE43/sicbo-sim/internal/engine"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestParseWagerType(t *testing.T) {
	for in, want := range map[string]WagerType{"HI": WagerHi, "lo": WagerLo, " Eleven ": WagerEleven} {
		got, err := ParseWagerType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseWagerType("TRIPLE")
	assert.ErrorIs(t, err, ErrUnknownWager)
	assert.ErrorIs(t, err, catalog.ErrUnknownWager)
	assert.Equal(t, "eleven", WagerEleven.CatalogID())
}

func TestRunSessionLedger(t *testing.T) {
	src := engine.NewQueueSource(
		6, 6, 5, // 17 win
		1, 1, 1, // 3
		1, 2, 3, // 6
		2, 2, 2, // 6
		3, 4, 1, // 8, stake clipped to 50
	)
	s, err := RunSession(src, SessionParams{
		InitialCapital: d(250),
		Bet:            d(100),
		MaxGames:       10,
		Wager:          WagerHi,
	})
	require.NoError(t, err)

	require.Len(t, s.Ledger, 5)
	assert.Equal(t, 5, s.GamesPlayed)
	assert.Panics(t, func() { src.Draw() }, "every queued face is consumed")

	first := s.Ledger[0]
	assert.Equal(t, 1, first.Game)
	assert.Equal(t, [3]int{6, 6, 5}, first.Dice)
	assert.True(t, first.Won)
	assert.True(t, first.Winnings.Equal(d(200)), first.Winnings.String())
	assert.True(t, first.Capital.Equal(d(350)))

	last := s.Ledger[4]
	assert.True(t, last.Stake.Equal(d(50)), last.Stake.String())
	assert.True(t, last.Capital.IsZero())

	assert.Equal(t, TerminalBankrupt, s.Terminal)
	assert.True(t, s.FinalCapital.IsZero())
	assert.True(t, s.TotalStaked.Equal(d(450)))
	assert.True(t, s.TotalWon.Equal(d(200)))
	assert.InDelta(t, 200.0/450, s.RTP, 1e-12)
}

func TestRunSessionLoPaysExactDecimal(t *testing.T) {
	s, err := RunSession(engine.NewQueueSource(1, 2, 3), SessionParams{
		InitialCapital: d(100),
		Bet:            d(100),
		MaxGames:       1,
		Wager:          WagerLo,
	})
	require.NoError(t, err)

	assert.Equal(t, "195", s.FinalCapital.String())
	assert.Equal(t, TerminalGamesExhausted, s.Terminal)
	assert.InDelta(t, 1.95, s.RTP, 1e-12)
}

func TestRunSessionZeroCapital(t *testing.T) {
	s, err := RunSession(engine.NewQueueSource(), SessionParams{
		InitialCapital: decimal.Zero,
		Bet:            d(10),
		MaxGames:       100,
		Wager:          WagerEleven,
	})
	require.NoError(t, err)
	assert.Zero(t, s.GamesPlayed)
	assert.Empty(t, s.Ledger)
	assert.Zero(t, s.RTP)
	assert.Equal(t, TerminalBankrupt, s.Terminal)
}

func TestRunSessionValidation(t *testing.T) {
	valid := SessionParams{InitialCapital: d(100), Bet: d(10), MaxGames: 10, Wager: WagerHi}

	tests := []struct {
		name   string
		modify func(p *SessionParams)
		want   error
	}{
		{"negative capital", func(p *SessionParams) { p.InitialCapital = d(-1) }, ErrInvalidParams},
		{"zero bet", func(p *SessionParams) { p.Bet = decimal.Zero }, ErrInvalidParams},
		{"negative bet", func(p *SessionParams) { p.Bet = d(-5) }, ErrInvalidParams},
		{"negative games", func(p *SessionParams) { p.MaxGames = -1 }, ErrInvalidParams},
		{"unknown wager", func(p *SessionParams) { p.Wager = "PAIR" }, ErrUnknownWager},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.modify(&p)
			_, err := RunSession(engine.NewSeededSource(1, 0), p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRunSessionInvariants(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		for _, w := range WagerTypes {
			s, err := RunSession(engine.NewSeededSource(seed, 3), SessionParams{
				InitialCapital: d(500),
				Bet:            d(75),
				MaxGames:       40,
				Wager:          w,
			})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(s.Ledger), 40)
			for _, e := range s.Ledger {
				assert.False(t, e.Capital.IsNegative(), "seed %d wager %s game %d", seed, w, e.Game)
				assert.True(t, e.Stake.LessThanOrEqual(d(75)))
			}
			if s.Terminal == TerminalGamesExhausted {
				assert.Len(t, s.Ledger, 40)
			}
		}
	}
}

func baseCohort() CohortParams {
	return CohortParams{
		Sessions:       40,
		Games:          60,
		Bet:            d(100),
		InitialCapital: d(1000),
		Wager:          WagerHi,
		Seed:           2024,
	}
}

func TestRunCohortStakeWeightedRTP(t *testing.T) {
	c, err := RunCohort(context.Background(), baseCohort())
	require.NoError(t, err)
	require.Len(t, c.Results, 40)

	var weighted, staked float64
	for _, s := range c.Results {
		st := s.TotalStaked.InexactFloat64()
		weighted += s.RTP * st
		staked += st
	}
	require.Positive(t, staked)
	assert.InDelta(t, weighted/staked, c.OverallRTP, 1e-9)
	assert.InDelta(t, c.TotalWon.InexactFloat64()/c.TotalStaked.InexactFloat64(), c.OverallRTP, 1e-12)

	bankrupt := 0
	for _, s := range c.Results {
		if s.Terminal == TerminalBankrupt {
			bankrupt++
		}
	}
	assert.Equal(t, bankrupt, c.BankruptSessions)
}

func TestRunCohortDeterministicAcrossWorkers(t *testing.T) {
	p := baseCohort()
	p.Workers = 1
	one, err := RunCohort(context.Background(), p)
	require.NoError(t, err)

	p.Workers = 16
	many, err := RunCohort(context.Background(), p)
	require.NoError(t, err)

	a, err := json.Marshal(one)
	require.NoError(t, err)
	b, err := json.Marshal(many)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestRunCohortReportsProgress(t *testing.T) {
	var done atomic.Int64
	p := baseCohort()
	p.Workers = 4
	p.OnProgress = func() { done.Add(1) }

	_, err := RunCohort(context.Background(), p)
	require.NoError(t, err)
	assert.EqualValues(t, p.Sessions, done.Load())
}

func TestRunCohortValidation(t *testing.T) {
	p := baseCohort()
	p.Sessions = -1
	_, err := RunCohort(context.Background(), p)
	assert.ErrorIs(t, err, ErrInvalidParams)

	p = baseCohort()
	p.Wager = "BIG"
	_, err = RunCohort(context.Background(), p)
	assert.ErrorIs(t, err, ErrUnknownWager)
}

func TestRunCohortEmpty(t *testing.T) {
	p := baseCohort()
	p.Sessions = 0
	c, err := RunCohort(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, c.Results)
	assert.Empty(t, c.Series)
	assert.Zero(t, c.OverallRTP)
}

func TestRunCohortCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := baseCohort()
	p.Sessions = 5000
	p.Workers = 1
	_, err := RunCohort(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildSeries(t *testing.T) {
	c, err := RunCohort(context.Background(), baseCohort())
	require.NoError(t, err)
	require.NotEmpty(t, c.Series)

	assert.Equal(t, 1, c.Series[0].Game)
	assert.Equal(t, 40, c.Series[0].ActiveSessions)
	for i := 1; i < len(c.Series); i++ {
		assert.LessOrEqual(t, c.Series[i].ActiveSessions, c.Series[i-1].ActiveSessions)
	}
	for _, pt := range c.Series {
		assert.GreaterOrEqual(t, pt.WinRate, 0.0)
		assert.LessOrEqual(t, pt.WinRate, 1.0)
		assert.GreaterOrEqual(t, pt.AverageCapital, 0.0)
	}
	assert.InDelta(t, c.OverallRTP, c.Series[len(c.Series)-1].CumulativeRTP, 1e-12)
}

func TestBuildSeriesHandComputed(t *testing.T) {
	a := &Session{Ledger: []LedgerEntry{
		{Game: 1, Stake: d(10), Won: true, Winnings: d(20), Capital: d(110)},
		{Game: 2, Stake: d(10), Capital: d(100)},
	}}
	b := &Session{Ledger: []LedgerEntry{
		{Game: 1, Stake: d(10), Capital: d(0)},
	}}

	series := BuildSeries([]*Session{a, b})
	require.Len(t, series, 2)

	assert.Equal(t, SeriesPoint{Game: 1, ActiveSessions: 2, AverageCapital: 55, WinRate: 0.5, CumulativeRTP: 1}, series[0])
	assert.Equal(t, 1, series[1].ActiveSessions)
	assert.InDelta(t, 100.0, series[1].AverageCapital, 1e-12)
	assert.InDelta(t, 20.0/30, series[1].CumulativeRTP, 1e-12)
}
