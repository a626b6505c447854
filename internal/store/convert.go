package store

import "github.com/MJE43/sicbo-sim/internal/bankroll"

// RunFromCohort flattens a cohort into a storable summary.
func RunFromCohort(c *bankroll.Cohort, engineVersion string) *Run {
	run := &Run{
		WagerType:        string(c.WagerType),
		NumSessions:      c.NumSessions,
		NumGames:         c.NumGames,
		BetAmount:        c.BetAmount,
		InitialCapital:   c.InitialCapital,
		Seed:             c.Seed,
		OverallRTP:       c.OverallRTP,
		TotalStaked:      c.TotalStaked,
		TotalWon:         c.TotalWon,
		BankruptSessions: c.BankruptSessions,
		EngineVersion:    engineVersion,
		Sessions:         make([]SessionSummary, len(c.Results)),
	}
	for i, s := range c.Results {
		run.Sessions[i] = SessionSummary{
			Index:        i,
			FinalCapital: s.FinalCapital,
			GamesPlayed:  s.GamesPlayed,
			TotalStaked:  s.TotalStaked,
			TotalWon:     s.TotalWon,
			RTP:          s.RTP,
			Terminal:     string(s.Terminal),
		}
	}
	return run
}
