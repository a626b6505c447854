package bankroll

import "github.com/shopspring/decimal"

// SeriesPoint summarizes game index Game (1-based) across the sessions
// that were still playing it. CumulativeRTP covers every stake placed up to
// and including Game.
type SeriesPoint struct {
	Game           int     `json:"game"`
	ActiveSessions int     `json:"active_sessions"`
	AverageCapital float64 `json:"average_capital"`
	WinRate        float64 `json:"win_rate"`
	CumulativeRTP  float64 `json:"cumulative_rtp"`
}

// BuildSeries derives per-game cohort figures from session ledgers.
func BuildSeries(sessions []*Session) []SeriesPoint {
	longest := 0
	for _, s := range sessions {
		longest = max(longest, len(s.Ledger))
	}

	series := make([]SeriesPoint, 0, longest)
	staked, won := decimal.Zero, decimal.Zero
	for g := 0; g < longest; g++ {
		capital := decimal.Zero
		active, wins := 0, 0
		for _, s := range sessions {
			if g >= len(s.Ledger) {
				continue
			}
			e := s.Ledger[g]
			active++
			if e.Won {
				wins++
			}
			capital = capital.Add(e.Capital)
			staked = staked.Add(e.Stake)
			won = won.Add(e.Winnings)
		}
		series = append(series, SeriesPoint{
			Game:           g + 1,
			ActiveSessions: active,
			AverageCapital: capital.Div(decimal.NewFromInt(int64(active))).InexactFloat64(),
			WinRate:        float64(wins) / float64(active),
			CumulativeRTP:  rtp(won, staked),
		})
	}
	return series
}
