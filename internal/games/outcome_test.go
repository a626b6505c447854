package games

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/sicbo-sim/internal/engine"
)

// everyRoll enumerates all 216 ordered rolls.
func everyRoll() [][engine.DicePerRoll]int {
	rolls := make([][engine.DicePerRoll]int, 0, 216)
	for a := 1; a <= 6; a++ {
		for b := 1; b <= 6; b++ {
			for c := 1; c <= 6; c++ {
				rolls = append(rolls, [engine.DicePerRoll]int{a, b, c})
			}
		}
	}
	return rolls
}

func TestClassifyBasicTotalsPartition(t *testing.T) {
	for _, dice := range everyRoll() {
		o := Classify(dice)
		hits := 0
		for _, b := range []bool{o.IsHi, o.IsLo, o.IsHiLo11} {
			if b {
				hits++
			}
		}
		require.Equal(t, 1, hits, "roll %v total %d must be exactly one of HI/LO/11", dice, o.Total)
		require.GreaterOrEqual(t, o.Total, MinTotal)
		require.LessOrEqual(t, o.Total, MaxTotal)
	}
}

func TestClassifyCountsAndTriples(t *testing.T) {
	for _, dice := range everyRoll() {
		o := Classify(dice)

		sum, threes, zeros := 0, 0, 0
		for face := 1; face <= engine.Faces; face++ {
			sum += o.Counts[face]
			switch o.Counts[face] {
			case 3:
				threes++
			case 0:
				zeros++
			}
		}
		require.Equal(t, 3, sum, "roll %v", dice)
		assert.Zero(t, o.Counts[0], "padding slot stays empty")
		assert.Equal(t, threes == 1 && zeros == 5, o.IsTriple, "roll %v", dice)
	}
}

func TestClassifyKnownRolls(t *testing.T) {
	tests := []struct {
		name      string
		dice      [3]int
		total     int
		hi, lo    bool
		eleven    bool
		lowCombo  ComboTier
		highCombo ComboTier
	}{
		{"duplicates do not widen combo", [3]int{1, 1, 2}, 4, false, true, false, ComboTwoOfThree, ComboNone},
		{"high straight", [3]int{4, 5, 6}, 15, true, false, false, ComboNone, ComboAllThree},
		{"low straight", [3]int{1, 2, 3}, 6, false, true, false, ComboAllThree, ComboNone},
		{"eleven", [3]int{5, 4, 2}, 11, false, false, true, ComboNone, ComboTwoOfThree},
		{"triple one", [3]int{1, 1, 1}, 3, false, true, false, ComboNone, ComboNone},
		{"triple six is still hi", [3]int{6, 6, 6}, 18, true, false, false, ComboNone, ComboNone},
		{"mixed groups", [3]int{3, 4, 1}, 8, false, true, false, ComboTwoOfThree, ComboNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Classify(tt.dice)
			assert.Equal(t, tt.dice, o.Dice)
			assert.Equal(t, tt.total, o.Total)
			assert.Equal(t, tt.hi, o.IsHi)
			assert.Equal(t, tt.lo, o.IsLo)
			assert.Equal(t, tt.eleven, o.IsHiLo11)
			assert.Equal(t, tt.lowCombo, o.LowCombo)
			assert.Equal(t, tt.highCombo, o.HighCombo)
			assert.Equal(t, tt.lowCombo, o.Combo(LowGroup))
			assert.Equal(t, tt.highCombo, o.Combo(HighGroup))
		})
	}
}

func TestClassifyFaceWithTotal(t *testing.T) {
	lo := Classify([3]int{2, 2, 5})
	assert.True(t, lo.XLo[2])
	assert.True(t, lo.XLo[5])
	assert.False(t, lo.XLo[1])
	for face := 1; face <= 6; face++ {
		assert.False(t, lo.XHi[face], "total 9 is never HI")
	}

	hi := Classify([3]int{6, 3, 4})
	assert.True(t, hi.XHi[3])
	assert.True(t, hi.XHi[4])
	assert.True(t, hi.XHi[6])
	assert.False(t, hi.XHi[5])

	eleven := Classify([3]int{6, 3, 2})
	for face := 1; face <= 6; face++ {
		assert.False(t, eleven.XLo[face])
		assert.False(t, eleven.XHi[face])
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	dice := [3]int{3, 6, 3}
	a, err := json.Marshal(Classify(dice))
	require.NoError(t, err)
	b, err := json.Marshal(Classify(dice))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestClassifyPanicsOnContractViolation(t *testing.T) {
	assert.Panics(t, func() { Classify([3]int{0, 1, 2}) })
	assert.Panics(t, func() { Classify([3]int{1, 7, 2}) })
}

func TestNewRoll(t *testing.T) {
	dice, err := NewRoll([]int{6, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, [3]int{6, 1, 3}, dice)

	for _, bad := range [][]int{{1, 2}, {1, 2, 3, 4}, {0, 1, 1}, {1, 1, 9}} {
		_, err := NewRoll(bad)
		assert.ErrorIs(t, err, ErrInvalidDie, "%v", bad)
	}
}

func TestParseDice(t *testing.T) {
	dice, err := ParseDice(" 4, 5,6")
	require.NoError(t, err)
	assert.Equal(t, [3]int{4, 5, 6}, dice)

	for _, bad := range []string{"", "1,2", "1,2,x", "1,2,7"} {
		_, err := ParseDice(bad)
		assert.ErrorIs(t, err, ErrInvalidDie, bad)
	}
}

func TestAllPairs(t *testing.T) {
	pairs := AllPairs()
	require.Len(t, pairs, 15)
	assert.Equal(t, Pair{1, 2}, pairs[0])
	assert.Equal(t, Pair{5, 6}, pairs[14])
	assert.Equal(t, "2,5", Pair{2, 5}.String())
}
