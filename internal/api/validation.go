package api

import (
	"strings"

	"github.com/MJE43/sicbo-sim/internal/bankroll"
	"github.com/MJE43/sicbo-sim/internal/config"
)

func validationError(field, message string) EngineError {
	return NewError(ErrTypeValidation, "Validation failed: "+message).
		WithContext("field", field).
		Build()
}

// clamp applies the default to an absent value and caps it at limit.
func clamp(v *int, def, limit int) int {
	n := def
	if v != nil {
		n = *v
	}
	return min(n, limit)
}

// BuildCohortParams applies defaults and limits to a simulate request.
// Seed is left zero when neither the request nor cfg pins one.
func BuildCohortParams(req *SimulateRequest, cfg *config.Config) (bankroll.CohortParams, error) {
	if req.NumSessions != nil && *req.NumSessions < 0 {
		return bankroll.CohortParams{}, validationError("num_sessions", "num_sessions must be >= 0")
	}
	if req.NumGames != nil && *req.NumGames < 0 {
		return bankroll.CohortParams{}, validationError("num_games", "num_games must be >= 0")
	}

	p := bankroll.CohortParams{
		Sessions:       clamp(req.NumSessions, cfg.Defaults.Sessions, cfg.Limits.MaxSessions),
		Games:          clamp(req.NumGames, cfg.Defaults.Games, cfg.Limits.MaxGames),
		Bet:            cfg.Defaults.Bet(),
		InitialCapital: cfg.Defaults.Capital(),
		Seed:           cfg.Simulation.Seed,
		Workers:        cfg.Simulation.Workers,
	}
	if req.BetAmount != nil {
		if !req.BetAmount.IsPositive() {
			return p, validationError("bet_amount", "bet_amount must be > 0")
		}
		p.Bet = *req.BetAmount
	}
	if req.InitialCapital != nil {
		if req.InitialCapital.IsNegative() {
			return p, validationError("initial_capital", "initial_capital must be >= 0")
		}
		p.InitialCapital = *req.InitialCapital
	}
	if req.Seed != nil {
		p.Seed = *req.Seed
	}

	wager := req.WagerType
	if strings.TrimSpace(wager) == "" {
		wager = cfg.Defaults.WagerType
	}
	wt, err := bankroll.ParseWagerType(wager)
	if err != nil {
		return p, err
	}
	p.Wager = wt
	return p, nil
}

var legacyBetTypes = map[string]bankroll.WagerType{
	"高 (HI)":   bankroll.WagerHi,
	"低 (LO)":   bankroll.WagerLo,
	"11 HI-LO": bankroll.WagerEleven,
}

// SimulateRequest maps the legacy field names onto a SimulateRequest.
// Unrecognised bet types pass through and fail wager parsing.
func (l LegacySimulateRequest) SimulateRequest() SimulateRequest {
	wager := strings.TrimSpace(l.BetType)
	if wt, ok := legacyBetTypes[wager]; ok {
		wager = string(wt)
	}
	return SimulateRequest{
		NumSessions:    l.NumPlayers,
		NumGames:       l.NumGames,
		BetAmount:      l.BetAmount,
		InitialCapital: l.InitialCapital,
		WagerType:      wager,
	}
}

// TrialCount applies the default and limit to a trials request.
func TrialCount(req *TrialsRequest, cfg *config.Config) (int, error) {
	if req.Count != nil && *req.Count < 0 {
		return 0, validationError("count", "count must be >= 0")
	}
	return clamp(req.Count, cfg.Defaults.Trials, cfg.Limits.MaxTrials), nil
}

// ValidateVerifyRequest validates a verify request
func ValidateVerifyRequest(req *VerifyRequest) error {
	if req.Seeds.Server == "" {
		return NewError(ErrTypeInvalidSeed, "server seed is required").WithContext("field", "seeds.server").Build()
	}
	if req.Seeds.Client == "" {
		return NewError(ErrTypeInvalidSeed, "client seed is required").WithContext("field", "seeds.client").Build()
	}
	return nil
}
