package api

import (
	"github.com/shopspring/decimal"

	"github.com/MJE43/sicbo-sim/internal/bankroll"
	"github.com/MJE43/sicbo-sim/internal/catalog"
	"github.com/MJE43/sicbo-sim/internal/games"
	"github.com/MJE43/sicbo-sim/internal/stats"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeValidation          = "validation_error"
	ErrTypeInvalidParams       = "invalid_params"
	ErrTypeUnknownWager        = "unknown_wager"
	ErrTypeInvalidDistribution = "invalid_distribution"
	ErrTypeInvalidSeed         = "invalid_seed"

	// Simulation outcomes that are not server faults
	ErrTypeNoData   = "no_data"
	ErrTypeNotFound = "not_found"

	// System errors
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategorySimulation ErrorCategory = "simulation"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeValidation, ErrTypeInvalidParams, ErrTypeUnknownWager, ErrTypeInvalidDistribution, ErrTypeInvalidSeed:
		return CategoryValidation
	case ErrTypeNoData, ErrTypeNotFound:
		return CategorySimulation
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// SimulateRequest is a cohort request. Absent fields take configured
// defaults and sizes are clamped to configured limits. OmitLedgers drops
// per-game ledgers from the response.
type SimulateRequest struct {
	NumSessions    *int             `json:"num_sessions,omitempty"`
	NumGames       *int             `json:"num_games,omitempty"`
	BetAmount      *decimal.Decimal `json:"bet_amount,omitempty"`
	InitialCapital *decimal.Decimal `json:"initial_capital,omitempty"`
	WagerType      string           `json:"wager_type,omitempty"`
	Seed           *uint64          `json:"seed,omitempty"`
	OmitLedgers    bool             `json:"omit_ledgers,omitempty"`
}

// LegacySimulateRequest is the body posted by the original form page.
// BetType holds the page's option labels, e.g. "低 (LO)".
type LegacySimulateRequest struct {
	NumPlayers     *int             `json:"num_players,omitempty"`
	NumGames       *int             `json:"num_games,omitempty"`
	BetAmount      *decimal.Decimal `json:"bet_amount,omitempty"`
	InitialCapital *decimal.Decimal `json:"initial_capital,omitempty"`
	BetType        string           `json:"bet_type,omitempty"`
}

// SimulateResponse is the cohort result plus the stored run ID, if any.
type SimulateResponse struct {
	*bankroll.Cohort
	RunID         string `json:"run_id,omitempty"`
	EngineVersion string `json:"engine_version"`
}

// TrialsRequest asks for a batch of classified trials and their statistics.
type TrialsRequest struct {
	Count          *int                 `json:"count,omitempty"`
	Seed           *uint64              `json:"seed,omitempty"`
	Weights        map[string][]float64 `json:"weights,omitempty"`
	Representative map[string]float64   `json:"representative,omitempty"`
}

// TrialsResponse carries the snapshot and the EV table built from it.
type TrialsResponse struct {
	Trials        int             `json:"trials"`
	Seed          uint64          `json:"seed"`
	Snapshot      *stats.Snapshot `json:"snapshot"`
	EV            *stats.EVTable  `json:"ev"`
	EngineVersion string          `json:"engine_version"`
}

// VerifyRequest represents a single nonce verification request
type VerifyRequest struct {
	Seeds games.Seeds `json:"seeds"`
	Nonce uint64      `json:"nonce"`
}

// VerifyResponse represents a single nonce verification response
type VerifyResponse struct {
	Nonce         uint64           `json:"nonce"`
	Outcome       games.Outcome    `json:"outcome"`
	GameResult    games.GameResult `json:"game_result"`
	EngineVersion string           `json:"engine_version"`
	Echo          VerifyRequest    `json:"echo"`
}

// WagersResponse lists the wager catalogue
type WagersResponse struct {
	Wagers        []catalog.Wager      `json:"wagers"`
	SessionWagers []bankroll.WagerType `json:"session_wagers"`
	EngineVersion string               `json:"engine_version"`
}
