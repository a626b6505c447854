// Package catalog holds the immutable table of Sic Bo wager definitions.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed wagers.yaml
var defaultCatalogYAML []byte

// Market identifies the qualifying-condition family of a wager.
type Market string

const (
	MarketHi       Market = "hi"
	MarketLo       Market = "lo"
	MarketEleven   Market = "eleven"
	MarketSingle   Market = "single"
	MarketPair     Market = "pair"
	MarketComboTwo Market = "combo_two"
	MarketComboAll Market = "combo_all"
	MarketXLo      Market = "x_lo"
	MarketXHi      Market = "x_hi"
)

var knownMarkets = []Market{
	MarketHi, MarketLo, MarketEleven, MarketSingle, MarketPair,
	MarketComboTwo, MarketComboAll, MarketXLo, MarketXHi,
}

// PayoutKind selects which fields of Payout are meaningful.
type PayoutKind string

const (
	PayoutFixed              PayoutKind = "fixed"
	PayoutSchedule           PayoutKind = "schedule"
	PayoutRandomized         PayoutKind = "randomized"
	PayoutRandomizedSchedule PayoutKind = "randomized_schedule"
)

// MaxMatches is the highest times-matched count a schedule can key on.
const MaxMatches = 3

var (
	ErrUnknownWager   = errors.New("unknown wager")
	ErrInvalidWager   = errors.New("invalid wager definition")
	ErrNotFixedPayout = errors.New("wager has no fixed payout")
)

// Payout is a net multiplier specification.
type Payout struct {
	Kind          PayoutKind        `yaml:"kind" json:"kind"`
	Multiplier    float64           `yaml:"multiplier,omitempty" json:"multiplier,omitempty"`
	Schedule      map[int]float64   `yaml:"schedule,omitempty" json:"schedule,omitempty"`
	Table         []float64         `yaml:"table,omitempty" json:"table,omitempty"`
	ScheduleTable map[int][]float64 `yaml:"schedule_table,omitempty" json:"schedule_table,omitempty"`
}

// Wager is one betting option.
type Wager struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
	Market      Market `yaml:"market" json:"market"`
	// Face is set for x_lo and x_hi wagers only.
	Face   int    `yaml:"face,omitempty" json:"face,omitempty"`
	Payout Payout `yaml:"payout" json:"payout"`
}

// Randomized reports whether the payout is drawn from a table with no
// documented selection distribution.
func (w Wager) Randomized() bool {
	return w.Payout.Kind == PayoutRandomized || w.Payout.Kind == PayoutRandomizedSchedule
}

// Catalog is safe for concurrent reads and never mutated after construction.
type Catalog struct {
	wagers []Wager
	byID   map[string]int
}

type document struct {
	Wagers []Wager `yaml:"wagers"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
})

// Default returns the built-in catalogue, parsed once per process.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded wagers.yaml is invalid: %v", err))
	}
	return c
}

// Load reads a catalogue document from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalogue document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Wagers) == 0 {
		return nil, fmt.Errorf("%w: catalog has no wagers", ErrInvalidWager)
	}

	c := &Catalog{
		wagers: make([]Wager, 0, len(doc.Wagers)),
		byID:   make(map[string]int, len(doc.Wagers)),
	}
	for _, w := range doc.Wagers {
		if err := validateWager(w); err != nil {
			return nil, err
		}
		if _, dup := c.byID[w.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidWager, w.ID)
		}
		c.byID[w.ID] = len(c.wagers)
		c.wagers = append(c.wagers, cloneWager(w))
	}

	// the bankroll simulator settles these three directly
	for _, id := range []string{"hi", "lo", "eleven"} {
		if _, err := c.FixedMultiplier(id); err != nil {
			return nil, fmt.Errorf("%w: basic wager %q: %v", ErrInvalidWager, id, err)
		}
	}
	return c, nil
}

func validateWager(w Wager) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %q: %s", ErrInvalidWager, w.ID, fmt.Sprintf(format, args...))
	}
	if w.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidWager)
	}
	if !slices.Contains(knownMarkets, w.Market) {
		return fail("unknown market %q", w.Market)
	}
	if w.Market == MarketXLo || w.Market == MarketXHi {
		if w.Face < 1 || w.Face > 6 {
			return fail("face %d out of range", w.Face)
		}
	} else if w.Face != 0 {
		return fail("face is only valid for x_lo/x_hi markets")
	}

	p := w.Payout
	switch p.Kind {
	case PayoutFixed:
		if p.Multiplier < 0 {
			return fail("negative multiplier")
		}
	case PayoutSchedule:
		if w.Market != MarketSingle {
			return fail("schedule payouts only apply to the single market")
		}
		for k := 1; k <= MaxMatches; k++ {
			m, ok := p.Schedule[k]
			if !ok || m < 0 {
				return fail("schedule missing or negative for %d matches", k)
			}
		}
	case PayoutRandomized:
		if err := validateTable(p.Table); err != nil {
			return fail("%v", err)
		}
	case PayoutRandomizedSchedule:
		if w.Market != MarketSingle {
			return fail("schedule payouts only apply to the single market")
		}
		for k := 1; k <= MaxMatches; k++ {
			if err := validateTable(p.ScheduleTable[k]); err != nil {
				return fail("%d matches: %v", k, err)
			}
		}
	default:
		return fail("unknown payout kind %q", p.Kind)
	}
	return nil
}

func validateTable(table []float64) error {
	if len(table) == 0 {
		return errors.New("empty multiplier table")
	}
	for _, m := range table {
		if m < 0 {
			return errors.New("negative multiplier in table")
		}
	}
	return nil
}

// Get returns a copy of the wager with the given id.
func (c *Catalog) Get(id string) (Wager, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Wager{}, false
	}
	return cloneWager(c.wagers[i]), true
}

// List returns copies of all wagers in document order.
func (c *Catalog) List() []Wager {
	out := make([]Wager, len(c.wagers))
	for i, w := range c.wagers {
		out[i] = cloneWager(w)
	}
	return out
}

// Len returns the number of wagers.
func (c *Catalog) Len() int {
	return len(c.wagers)
}

// FixedMultiplier returns the multiplier of a fixed-payout wager.
func (c *Catalog) FixedMultiplier(id string) (float64, error) {
	i, ok := c.byID[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWager, id)
	}
	w := c.wagers[i]
	if w.Payout.Kind != PayoutFixed {
		return 0, fmt.Errorf("%w: %q is %s", ErrNotFixedPayout, id, w.Payout.Kind)
	}
	return w.Payout.Multiplier, nil
}

func cloneWager(w Wager) Wager {
	w.Payout.Table = slices.Clone(w.Payout.Table)
	if w.Payout.Schedule != nil {
		s := make(map[int]float64, len(w.Payout.Schedule))
		for k, v := range w.Payout.Schedule {
			s[k] = v
		}
		w.Payout.Schedule = s
	}
	if w.Payout.ScheduleTable != nil {
		st := make(map[int][]float64, len(w.Payout.ScheduleTable))
		for k, v := range w.Payout.ScheduleTable {
			st[k] = slices.Clone(v)
		}
		w.Payout.ScheduleTable = st
	}
	return w
}
