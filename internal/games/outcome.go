package games

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MJE43/sicbo-sim/internal/engine"
)

// ErrInvalidDie is returned when a face value is outside [1, 6] or the roll
// does not have exactly three dice.
var ErrInvalidDie = errors.New("invalid die value")

// Total boundaries of the basic wagers.
const (
	LoMax    = 10
	Eleven   = 11
	HiMin    = 12
	MinTotal = 3
	MaxTotal = 18
)

// ComboTier grades how much of a three-face group appears in a roll.
type ComboTier string

const (
	ComboNone       ComboTier = "NONE"
	ComboTwoOfThree ComboTier = "TWO_OF_THREE"
	ComboAllThree   ComboTier = "ALL_THREE"
)

// ComboGroup is one of the two three-face target sets.
type ComboGroup int

const (
	LowGroup  ComboGroup = iota // {1,2,3}
	HighGroup                   // {4,5,6}
)

func (g ComboGroup) String() string {
	if g == HighGroup {
		return "high"
	}
	return "low"
}

// Faces returns the target set of the group.
func (g ComboGroup) Faces() [3]int {
	if g == HighGroup {
		return [3]int{4, 5, 6}
	}
	return [3]int{1, 2, 3}
}

// Outcome is the classification of one roll. Arrays indexed by face use
// index 0 as padding so Counts[f] is the tally of face f.
type Outcome struct {
	Dice      [engine.DicePerRoll]int `json:"dice"`
	Total     int                     `json:"total"`
	IsTriple  bool                    `json:"is_triple"`
	IsHi      bool                    `json:"is_hi"`
	IsLo      bool                    `json:"is_lo"`
	IsHiLo11  bool                    `json:"is_hi_lo_11"`
	Counts    [engine.Faces + 1]int   `json:"counts"`
	LowCombo  ComboTier               `json:"low_combo"`
	HighCombo ComboTier               `json:"high_combo"`
	XLo       [engine.Faces + 1]bool  `json:"x_lo"`
	XHi       [engine.Faces + 1]bool  `json:"x_hi"`
}

// Has reports whether face appears at least once.
func (o Outcome) Has(face int) bool {
	return face >= 1 && face <= engine.Faces && o.Counts[face] > 0
}

// Combo returns the tier for the given group.
func (o Outcome) Combo(g ComboGroup) ComboTier {
	if g == HighGroup {
		return o.HighCombo
	}
	return o.LowCombo
}

// Classify evaluates every wager condition for one roll. Faces outside
// [1, 6] violate the caller contract and panic; validate untrusted input
// with NewRoll first.
func Classify(dice [engine.DicePerRoll]int) Outcome {
	o := Outcome{Dice: dice}
	for _, d := range dice {
		if d < 1 || d > engine.Faces {
			panic(fmt.Sprintf("games: die value %d out of range in %v", d, dice))
		}
		o.Total += d
		o.Counts[d]++
	}

	o.IsTriple = dice[0] == dice[1] && dice[1] == dice[2]
	o.IsHi = o.Total >= HiMin && o.Total <= MaxTotal
	o.IsLo = o.Total >= MinTotal && o.Total <= LoMax
	o.IsHiLo11 = o.Total == Eleven

	o.LowCombo = comboTier(&o.Counts, LowGroup.Faces())
	o.HighCombo = comboTier(&o.Counts, HighGroup.Faces())

	for face := 1; face <= engine.Faces; face++ {
		present := o.Counts[face] > 0
		o.XLo[face] = present && o.Total <= LoMax
		o.XHi[face] = present && o.Total >= HiMin
	}
	return o
}

// comboTier intersects the distinct faces of the roll with target.
// Duplicates never raise the intersection size.
func comboTier(counts *[engine.Faces + 1]int, target [3]int) ComboTier {
	n := 0
	for _, f := range target {
		if counts[f] > 0 {
			n++
		}
	}
	switch {
	case n == len(target):
		return ComboAllThree
	case n >= 2:
		return ComboTwoOfThree
	default:
		return ComboNone
	}
}

// NewRoll validates untrusted face values.
func NewRoll(faces []int) ([engine.DicePerRoll]int, error) {
	var dice [engine.DicePerRoll]int
	if len(faces) != engine.DicePerRoll {
		return dice, fmt.Errorf("%w: need %d dice, got %d", ErrInvalidDie, engine.DicePerRoll, len(faces))
	}
	for i, f := range faces {
		if f < 1 || f > engine.Faces {
			return dice, fmt.Errorf("%w: die %d is %d", ErrInvalidDie, i+1, f)
		}
		dice[i] = f
	}
	return dice, nil
}

// ParseDice reads a roll written as "a,b,c". Spaces around faces are
// ignored.
func ParseDice(s string) ([engine.DicePerRoll]int, error) {
	parts := strings.Split(s, ",")
	faces := make([]int, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return [engine.DicePerRoll]int{}, fmt.Errorf("%w: %q", ErrInvalidDie, part)
		}
		faces = append(faces, f)
	}
	return NewRoll(faces)
}

// Pair is an unordered pair of distinct faces with A < B.
type Pair struct {
	A, B int
}

func (p Pair) String() string {
	return fmt.Sprintf("%d,%d", p.A, p.B)
}

// AllPairs lists the 15 two-distinct-face combinations in ascending order.
func AllPairs() []Pair {
	pairs := make([]Pair, 0, 15)
	for a := 1; a <= engine.Faces; a++ {
		for b := a + 1; b <= engine.Faces; b++ {
			pairs = append(pairs, Pair{A: a, B: b})
		}
	}
	return pairs
}
