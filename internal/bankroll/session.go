// Package bankroll plays fixed-bet sessions on a basic wager and measures
// return to player across a cohort.
package bankroll

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MJE43/sicbo-sim/internal/catalog"
	"github.com/MJE43/sicbo-sim/internal/engine"
	"github.com/MJE43/sicbo-sim/internal/games"
)

var (
	ErrInvalidParams = errors.New("invalid bankroll parameters")
	// ErrUnknownWager matches catalog.ErrUnknownWager under errors.Is.
	ErrUnknownWager = catalog.ErrUnknownWager
)

// WagerType is one of the basic total wagers a session can place.
type WagerType string

const (
	WagerHi     WagerType = "HI"
	WagerLo     WagerType = "LO"
	WagerEleven WagerType = "ELEVEN"
)

// WagerTypes lists the supported session wagers.
var WagerTypes = []WagerType{WagerHi, WagerLo, WagerEleven}

// ParseWagerType accepts any letter case.
func ParseWagerType(s string) (WagerType, error) {
	w := WagerType(strings.ToUpper(strings.TrimSpace(s)))
	switch w {
	case WagerHi, WagerLo, WagerEleven:
		return w, nil
	}
	return "", fmt.Errorf("%w: wager type %q", ErrUnknownWager, s)
}

// CatalogID is the id of the matching catalogue entry.
func (w WagerType) CatalogID() string {
	return strings.ToLower(string(w))
}

// Wins reports whether the outcome pays this wager.
func (w WagerType) Wins(o games.Outcome) bool {
	switch w {
	case WagerHi:
		return o.IsHi
	case WagerLo:
		return o.IsLo
	case WagerEleven:
		return o.IsHiLo11
	}
	return false
}

// Terminal is why a session stopped.
type Terminal string

const (
	TerminalBankrupt       Terminal = "BANKRUPT"
	TerminalGamesExhausted Terminal = "GAMES_EXHAUSTED"
)

// SessionParams configures one session. A nil Catalog means catalog.Default().
type SessionParams struct {
	InitialCapital decimal.Decimal
	Bet            decimal.Decimal
	MaxGames       int
	Wager          WagerType
	Catalog        *catalog.Catalog
}

// Validate checks the parameters without playing.
func (p SessionParams) Validate() error {
	if p.InitialCapital.IsNegative() {
		return fmt.Errorf("%w: initial capital %s is negative", ErrInvalidParams, p.InitialCapital)
	}
	if !p.Bet.IsPositive() {
		return fmt.Errorf("%w: bet %s must be positive", ErrInvalidParams, p.Bet)
	}
	if p.MaxGames < 0 {
		return fmt.Errorf("%w: max games %d is negative", ErrInvalidParams, p.MaxGames)
	}
	if _, err := ParseWagerType(string(p.Wager)); err != nil {
		return err
	}
	return nil
}

// LedgerEntry records one game of a session.
type LedgerEntry struct {
	Game     int             `json:"game"`
	Dice     [3]int          `json:"dice"`
	Total    int             `json:"total"`
	Stake    decimal.Decimal `json:"stake"`
	Won      bool            `json:"won"`
	Winnings decimal.Decimal `json:"winnings"`
	Capital  decimal.Decimal `json:"capital"`
}

// Session is the full record of one played bankroll.
type Session struct {
	Wager          WagerType       `json:"wager_type"`
	Bet            decimal.Decimal `json:"bet_amount"`
	InitialCapital decimal.Decimal `json:"initial_capital"`
	FinalCapital   decimal.Decimal `json:"final_capital"`
	GamesPlayed    int             `json:"games_played"`
	Ledger         []LedgerEntry   `json:"ledger"`
	TotalStaked    decimal.Decimal `json:"total_staked"`
	TotalWon       decimal.Decimal `json:"total_won"`
	RTP            float64         `json:"rtp"`
	Terminal       Terminal        `json:"terminal"`
}

// RunSession plays until capital is gone or MaxGames is reached. When
// capital drops below the bet the last stake is the remaining capital.
func RunSession(src engine.DieSource, p SessionParams) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cat := p.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	wager, _ := ParseWagerType(string(p.Wager))
	m, err := cat.FixedMultiplier(wager.CatalogID())
	if err != nil {
		return nil, err
	}
	payout := decimal.NewFromFloat(m).Add(decimal.NewFromInt(1))

	s := &Session{
		Wager:          wager,
		Bet:            p.Bet,
		InitialCapital: p.InitialCapital,
		Ledger:         make([]LedgerEntry, 0, min(p.MaxGames, 1024)),
		TotalStaked:    decimal.Zero,
		TotalWon:       decimal.Zero,
	}

	capital := p.InitialCapital
	for s.GamesPlayed < p.MaxGames && capital.IsPositive() {
		stake := decimal.Min(p.Bet, capital)
		outcome := games.Classify(engine.Roll(src))

		winnings := decimal.Zero
		won := wager.Wins(outcome)
		if won {
			winnings = stake.Mul(payout)
		}
		capital = capital.Sub(stake).Add(winnings)

		s.GamesPlayed++
		s.TotalStaked = s.TotalStaked.Add(stake)
		s.TotalWon = s.TotalWon.Add(winnings)
		s.Ledger = append(s.Ledger, LedgerEntry{
			Game:     s.GamesPlayed,
			Dice:     outcome.Dice,
			Total:    outcome.Total,
			Stake:    stake,
			Won:      won,
			Winnings: winnings,
			Capital:  capital,
		})
	}

	s.FinalCapital = capital
	s.RTP = rtp(s.TotalWon, s.TotalStaked)
	if capital.IsPositive() {
		s.Terminal = TerminalGamesExhausted
	} else {
		s.Terminal = TerminalBankrupt
	}
	return s, nil
}

func rtp(won, staked decimal.Decimal) float64 {
	if staked.IsZero() {
		return 0
	}
	return won.Div(staked).InexactFloat64()
}
