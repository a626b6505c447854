// Package store persists cohort run summaries.
package store

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// DB represents the database interface
type DB interface {
	Close() error
	Migrate() error
	SaveRun(run *Run) error
	GetRun(id string) (*Run, error)
	ListRuns(query RunsQuery) (*RunsList, error)
	Ping() error
}

// RunsQuery represents query parameters for listing runs
type RunsQuery struct {
	WagerType string `json:"wager_type,omitempty"`
	Page      int    `json:"page"`
	PerPage   int    `json:"perPage"`
}

// RunsList represents paginated runs response
type RunsList struct {
	Runs       []Run `json:"runs"`
	TotalCount int   `json:"totalCount"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}

// Run is the stored summary of one cohort simulation. Sessions is only
// populated by GetRun.
type Run struct {
	ID               string           `json:"id" db:"id"`
	WagerType        string           `json:"wager_type" db:"wager_type"`
	NumSessions      int              `json:"num_sessions" db:"num_sessions"`
	NumGames         int              `json:"num_games" db:"num_games"`
	BetAmount        decimal.Decimal  `json:"bet_amount" db:"bet_amount"`
	InitialCapital   decimal.Decimal  `json:"initial_capital" db:"initial_capital"`
	Seed             uint64           `json:"seed" db:"seed"`
	OverallRTP       float64          `json:"overall_rtp" db:"overall_rtp"`
	TotalStaked      decimal.Decimal  `json:"total_staked" db:"total_staked"`
	TotalWon         decimal.Decimal  `json:"total_won" db:"total_won"`
	BankruptSessions int              `json:"bankrupt_sessions" db:"bankrupt_sessions"`
	EngineVersion    string           `json:"engine_version" db:"engine_version"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	Sessions         []SessionSummary `json:"sessions,omitempty"`
}

// SessionSummary is one session of a stored run, without its ledger.
type SessionSummary struct {
	Index        int             `json:"index" db:"session_index"`
	FinalCapital decimal.Decimal `json:"final_capital" db:"final_capital"`
	GamesPlayed  int             `json:"games_played" db:"games_played"`
	TotalStaked  decimal.Decimal `json:"total_staked" db:"total_staked"`
	TotalWon     decimal.Decimal `json:"total_won" db:"total_won"`
	RTP          float64         `json:"rtp" db:"rtp"`
	Terminal     string          `json:"terminal" db:"terminal"`
}
