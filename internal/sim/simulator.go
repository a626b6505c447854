// Package sim produces trial histories by rolling and classifying dice.
package sim

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MJE43/sicbo-sim/internal/engine"
	"github.com/MJE43/sicbo-sim/internal/games"
)

var (
	// ErrInvalidCount is returned for a negative trial count.
	ErrInvalidCount = errors.New("trial count must not be negative")
	// ErrNoSource is returned when rolling on a simulator built without a source.
	ErrNoSource = errors.New("simulator has no die source")
)

// Simulator owns one append-only trial history. It is not safe for
// concurrent use.
type Simulator struct {
	src     engine.DieSource
	history []games.Outcome
}

// New returns a simulator drawing from src. A nil src gives a simulator that
// only records outcomes passed to Extend.
func New(src engine.DieSource) *Simulator {
	return &Simulator{src: src}
}

// SimulateTrials rolls count times and appends each classified outcome.
func (s *Simulator) SimulateTrials(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	if s.src == nil && count > 0 {
		return ErrNoSource
	}
	s.history = growOutcomes(s.history, count)
	for i := 0; i < count; i++ {
		s.history = append(s.history, games.Classify(engine.Roll(s.src)))
	}
	return nil
}

// Extend appends already classified outcomes, e.g. from RunBatch. The
// simulator takes ownership of outcomes; callers must not modify it after.
func (s *Simulator) Extend(outcomes []games.Outcome) {
	if s.history == nil {
		s.history = slices.Clip(outcomes)
		return
	}
	s.history = append(s.history, outcomes...)
}

// History returns a copy of the trials so far.
func (s *Simulator) History() []games.Outcome {
	out := make([]games.Outcome, len(s.history))
	copy(out, s.history)
	return out
}

// Len is the number of trials recorded.
func (s *Simulator) Len() int {
	return len(s.history)
}

// Reset drops the history and keeps the source.
func (s *Simulator) Reset() {
	s.history = nil
}

func growOutcomes(h []games.Outcome, n int) []games.Outcome {
	if cap(h)-len(h) >= n {
		return h
	}
	grown := make([]games.Outcome, len(h), len(h)+n)
	copy(grown, h)
	return grown
}
