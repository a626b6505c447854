// Package stats turns a trial history into empirical probabilities and
// expected values per wager.
package stats

import (
	"errors"

	"github.com/MJE43/sicbo-sim/internal/engine"
	"github.com/MJE43/sicbo-sim/internal/games"
)

// ErrNoData is returned when there are no trials to aggregate.
var ErrNoData = errors.New("no simulation data")

// TierProbabilities holds the two winning combo tiers of one group.
type TierProbabilities struct {
	TwoOfThree float64 `json:"two_of_three"`
	AllThree   float64 `json:"all_three"`
}

// Snapshot is the empirical probability view of a trial history.
// TotalDistribution covers every total 3..18, zero when unobserved.
// FaceCounts maps face -> times seen in a roll -> probability and holds only
// counts that occurred. Pairs is keyed by "a,b" with a < b.
type Snapshot struct {
	Trials            int                     `json:"trials"`
	Hi                float64                 `json:"hi"`
	Lo                float64                 `json:"lo"`
	Eleven            float64                 `json:"eleven"`
	Triple            float64                 `json:"triple"`
	TotalDistribution map[int]float64         `json:"total_distribution"`
	FaceCounts        map[int]map[int]float64 `json:"face_counts"`
	Pairs             map[string]float64      `json:"pairs"`
	LowCombo          TierProbabilities       `json:"low_combo"`
	HighCombo         TierProbabilities       `json:"high_combo"`
	XLo               map[int]float64         `json:"x_lo"`
	XHi               map[int]float64         `json:"x_hi"`
}

// FaceCountProbability returns P(face appears exactly k times).
func (s *Snapshot) FaceCountProbability(face, k int) float64 {
	return s.FaceCounts[face][k]
}

// PairProbability returns P(both a and b appear), in either order.
func (s *Snapshot) PairProbability(a, b int) float64 {
	if a > b {
		a, b = b, a
	}
	return s.Pairs[games.Pair{A: a, B: b}.String()]
}

// Combo returns the tier probabilities of a group.
func (s *Snapshot) Combo(g games.ComboGroup) TierProbabilities {
	if g == games.HighGroup {
		return s.HighCombo
	}
	return s.LowCombo
}

type tally struct {
	hi, lo, eleven, triple int
	totals                 [games.MaxTotal + 1]int
	faceCounts             [engine.Faces + 1][engine.DicePerRoll + 1]int
	pairs                  [engine.Faces + 1][engine.Faces + 1]int
	lowTwo, lowAll         int
	highTwo, highAll       int
	xlo, xhi               [engine.Faces + 1]int
}

func (t *tally) add(o *games.Outcome) {
	if o.IsHi {
		t.hi++
	}
	if o.IsLo {
		t.lo++
	}
	if o.IsHiLo11 {
		t.eleven++
	}
	if o.IsTriple {
		t.triple++
	}
	t.totals[o.Total]++

	for face := 1; face <= engine.Faces; face++ {
		t.faceCounts[face][o.Counts[face]]++
		if o.XLo[face] {
			t.xlo[face]++
		}
		if o.XHi[face] {
			t.xhi[face]++
		}
		if o.Counts[face] == 0 {
			continue
		}
		for other := face + 1; other <= engine.Faces; other++ {
			if o.Counts[other] > 0 {
				t.pairs[face][other]++
			}
		}
	}

	switch o.LowCombo {
	case games.ComboTwoOfThree:
		t.lowTwo++
	case games.ComboAllThree:
		t.lowAll++
	}
	switch o.HighCombo {
	case games.ComboTwoOfThree:
		t.highTwo++
	case games.ComboAllThree:
		t.highAll++
	}
}

// Aggregate computes a Snapshot in one pass over history.
func Aggregate(history []games.Outcome) (*Snapshot, error) {
	if len(history) == 0 {
		return nil, ErrNoData
	}

	var t tally
	for i := range history {
		t.add(&history[i])
	}

	n := float64(len(history))
	p := func(c int) float64 { return float64(c) / n }

	s := &Snapshot{
		Trials:            len(history),
		Hi:                p(t.hi),
		Lo:                p(t.lo),
		Eleven:            p(t.eleven),
		Triple:            p(t.triple),
		TotalDistribution: make(map[int]float64, games.MaxTotal-games.MinTotal+1),
		FaceCounts:        make(map[int]map[int]float64, engine.Faces),
		Pairs:             make(map[string]float64, 15),
		LowCombo:          TierProbabilities{TwoOfThree: p(t.lowTwo), AllThree: p(t.lowAll)},
		HighCombo:         TierProbabilities{TwoOfThree: p(t.highTwo), AllThree: p(t.highAll)},
		XLo:               make(map[int]float64, engine.Faces),
		XHi:               make(map[int]float64, engine.Faces),
	}

	for total := games.MinTotal; total <= games.MaxTotal; total++ {
		s.TotalDistribution[total] = p(t.totals[total])
	}
	for face := 1; face <= engine.Faces; face++ {
		dist := make(map[int]float64)
		for k, c := range t.faceCounts[face] {
			if c > 0 {
				dist[k] = p(c)
			}
		}
		s.FaceCounts[face] = dist
		s.XLo[face] = p(t.xlo[face])
		s.XHi[face] = p(t.xhi[face])
	}
	for _, pair := range games.AllPairs() {
		s.Pairs[pair.String()] = p(t.pairs[pair.A][pair.B])
	}
	return s, nil
}
