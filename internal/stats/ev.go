package stats

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/MJE43/sicbo-sim/internal/catalog"
	"github.com/MJE43/sicbo-sim/internal/engine"
	"github.com/MJE43/sicbo-sim/internal/games"
)

// ErrInvalidDistribution is returned for unusable caller-supplied payout
// weights or representative multipliers.
var ErrInvalidDistribution = errors.New("invalid payout distribution")

// EVEntry is the expected return of one wager selection per unit staked,
// principal included.
type EVEntry struct {
	WagerID     string         `json:"wager_id"`
	Market      catalog.Market `json:"market"`
	Selection   string         `json:"selection,omitempty"`
	Count       int            `json:"count,omitempty"`
	Probability float64        `json:"probability"`
	Multiplier  float64        `json:"multiplier"`
	EV          float64        `json:"ev"`
}

// EVTable lists entries in catalogue order. Excluded holds randomized
// wagers that had no representative multiplier or weights.
type EVTable struct {
	Entries  []EVEntry `json:"entries"`
	Excluded []string  `json:"excluded,omitempty"`
}

// Lookup finds the entry for a wager selection. Selection and count are
// empty/zero for wagers that have none.
func (t *EVTable) Lookup(wagerID, selection string, count int) (EVEntry, bool) {
	for _, e := range t.Entries {
		if e.WagerID == wagerID && e.Selection == selection && e.Count == count {
			return e, true
		}
	}
	return EVEntry{}, false
}

// EVOptions resolves randomized payouts. Representative replaces the table
// with one multiplier (every count for randomized schedules). Weights are
// selection weights aligned index-by-index with the table and take
// precedence over Representative.
type EVOptions struct {
	Representative map[string]float64   `json:"representative,omitempty"`
	Weights        map[string][]float64 `json:"weights,omitempty"`
}

// ExpectedValues computes EV = probability x (1 + multiplier) for every
// wager of cat using the probabilities in snap.
func ExpectedValues(snap *Snapshot, cat *catalog.Catalog, opts EVOptions) (*EVTable, error) {
	if snap == nil || snap.Trials == 0 {
		return nil, ErrNoData
	}

	if err := validateOptions(cat, opts); err != nil {
		return nil, err
	}

	table := &EVTable{Entries: make([]EVEntry, 0, cat.Len()*4)}
	for _, w := range cat.List() {
		mult, ok, err := resolveMultipliers(w, opts)
		if err != nil {
			return nil, err
		}
		if !ok {
			table.Excluded = append(table.Excluded, w.ID)
			continue
		}
		table.Entries = append(table.Entries, wagerEntries(snap, w, mult)...)
	}
	return table, nil
}

// validateOptions rejects option keys that name no wager or a wager whose
// payout is not randomized.
func validateOptions(cat *catalog.Catalog, opts EVOptions) error {
	ids := slices.Sorted(maps.Keys(opts.Weights))
	ids = append(ids, slices.Sorted(maps.Keys(opts.Representative))...)
	for _, id := range ids {
		w, ok := cat.Get(id)
		if !ok {
			return fmt.Errorf("%w: %q", catalog.ErrUnknownWager, id)
		}
		if !w.Randomized() {
			return fmt.Errorf("%w: %s has a %s payout", ErrInvalidDistribution, id, w.Payout.Kind)
		}
	}
	return nil
}

// multipliers maps times-matched -> multiplier. Non-schedule wagers use
// key 0.
type multipliers map[int]float64

func resolveMultipliers(w catalog.Wager, opts EVOptions) (multipliers, bool, error) {
	p := w.Payout
	switch p.Kind {
	case catalog.PayoutFixed:
		return multipliers{0: p.Multiplier}, true, nil
	case catalog.PayoutSchedule:
		m := make(multipliers, catalog.MaxMatches)
		for k := 1; k <= catalog.MaxMatches; k++ {
			m[k] = p.Schedule[k]
		}
		return m, true, nil
	}

	if weights, ok := opts.Weights[w.ID]; ok {
		if p.Kind == catalog.PayoutRandomized {
			v, err := weightedMultiplier(w.ID, p.Table, weights)
			if err != nil {
				return nil, false, err
			}
			return multipliers{0: v}, true, nil
		}
		m := make(multipliers, catalog.MaxMatches)
		for k := 1; k <= catalog.MaxMatches; k++ {
			v, err := weightedMultiplier(w.ID, p.ScheduleTable[k], weights)
			if err != nil {
				return nil, false, err
			}
			m[k] = v
		}
		return m, true, nil
	}

	if rep, ok := opts.Representative[w.ID]; ok {
		if rep < 0 || !finite(rep) {
			return nil, false, fmt.Errorf("%w: %s: representative multiplier %v", ErrInvalidDistribution, w.ID, rep)
		}
		if p.Kind == catalog.PayoutRandomized {
			return multipliers{0: rep}, true, nil
		}
		m := make(multipliers, catalog.MaxMatches)
		for k := 1; k <= catalog.MaxMatches; k++ {
			m[k] = rep
		}
		return m, true, nil
	}
	return nil, false, nil
}

func weightedMultiplier(id string, table, weights []float64) (float64, error) {
	if len(weights) != len(table) {
		return 0, fmt.Errorf("%w: %s: %d weights for %d multipliers", ErrInvalidDistribution, id, len(weights), len(table))
	}
	var sum, acc float64
	for i, w := range weights {
		if w < 0 || !finite(w) {
			return 0, fmt.Errorf("%w: %s: weight %v", ErrInvalidDistribution, id, w)
		}
		sum += w
		acc += w * table[i]
	}
	if sum <= 0 {
		return 0, fmt.Errorf("%w: %s: weights sum to zero", ErrInvalidDistribution, id)
	}
	return acc / sum, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func wagerEntries(snap *Snapshot, w catalog.Wager, mult multipliers) []EVEntry {
	entry := func(selection string, count int, prob, m float64) EVEntry {
		return EVEntry{
			WagerID:     w.ID,
			Market:      w.Market,
			Selection:   selection,
			Count:       count,
			Probability: prob,
			Multiplier:  m,
			EV:          prob * (1 + m),
		}
	}

	switch w.Market {
	case catalog.MarketHi:
		return []EVEntry{entry("", 0, snap.Hi, mult[0])}
	case catalog.MarketLo:
		return []EVEntry{entry("", 0, snap.Lo, mult[0])}
	case catalog.MarketEleven:
		return []EVEntry{entry("", 0, snap.Eleven, mult[0])}
	case catalog.MarketSingle:
		out := make([]EVEntry, 0, engine.Faces*catalog.MaxMatches)
		for face := 1; face <= engine.Faces; face++ {
			for k := 1; k <= catalog.MaxMatches; k++ {
				out = append(out, entry(strconv.Itoa(face), k, snap.FaceCountProbability(face, k), mult[k]))
			}
		}
		return out
	case catalog.MarketPair:
		pairs := games.AllPairs()
		out := make([]EVEntry, 0, len(pairs))
		for _, pair := range pairs {
			out = append(out, entry(pair.String(), 0, snap.PairProbability(pair.A, pair.B), mult[0]))
		}
		return out
	case catalog.MarketComboTwo:
		return []EVEntry{
			entry(games.LowGroup.String(), 0, snap.LowCombo.TwoOfThree, mult[0]),
			entry(games.HighGroup.String(), 0, snap.HighCombo.TwoOfThree, mult[0]),
		}
	case catalog.MarketComboAll:
		return []EVEntry{
			entry(games.LowGroup.String(), 0, snap.LowCombo.AllThree, mult[0]),
			entry(games.HighGroup.String(), 0, snap.HighCombo.AllThree, mult[0]),
		}
	case catalog.MarketXLo:
		return []EVEntry{entry(strconv.Itoa(w.Face), 0, snap.XLo[w.Face], mult[0])}
	case catalog.MarketXHi:
		return []EVEntry{entry(strconv.Itoa(w.Face), 0, snap.XHi[w.Face], mult[0])}
	}
	return nil
}
