package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.Same(t, c, Default(), "default catalog is parsed once")

	tests := []struct {
		id   string
		want float64
	}{
		{"hi", 1},
		{"lo", 0.95},
		{"eleven", 5},
		{"pair", 5},
		{"combo_all", 5},
		{"lo_1", 1.8},
		{"lo_6", 7},
		{"hi_6", 2},
	}
	for _, tt := range tests {
		m, err := c.FixedMultiplier(tt.id)
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.want, m, tt.id)
	}

	single, ok := c.Get("single")
	require.True(t, ok)
	assert.Equal(t, map[int]float64{1: 1, 2: 2, 3: 3}, single.Payout.Schedule)

	random, ok := c.Get("single_random")
	require.True(t, ok)
	assert.True(t, random.Randomized())
	assert.Equal(t, []float64{3, 6, 9}, random.Payout.ScheduleTable[3])

	xlo, ok := c.Get("lo_4_random")
	require.True(t, ok)
	assert.Equal(t, MarketXLo, xlo.Market)
	assert.Equal(t, 4, xlo.Face)
}

func TestFixedMultiplierErrors(t *testing.T) {
	c := Default()

	_, err := c.FixedMultiplier("no_such_wager")
	assert.ErrorIs(t, err, ErrUnknownWager)

	_, err = c.FixedMultiplier("single")
	assert.ErrorIs(t, err, ErrNotFixedPayout)

	_, err = c.FixedMultiplier("pair_random")
	assert.ErrorIs(t, err, ErrNotFixedPayout)
}

func TestCatalogIsImmutable(t *testing.T) {
	c := Default()

	w, _ := c.Get("pair_random")
	w.Payout.Table[0] = 1000
	w.Description = "changed"

	again, _ := c.Get("pair_random")
	assert.Equal(t, 5.0, again.Payout.Table[0])
	assert.NotEqual(t, "changed", again.Description)

	list := c.List()
	list[0].Payout.Multiplier = 99
	m, _ := c.FixedMultiplier(list[0].ID)
	assert.NotEqual(t, 99.0, m)
}

func TestParseRejectsInvalid(t *testing.T) {
	basics := `
  - {id: hi, description: h, market: hi, payout: {kind: fixed, multiplier: 1}}
  - {id: lo, description: l, market: lo, payout: {kind: fixed, multiplier: 1}}
  - {id: eleven, description: e, market: eleven, payout: {kind: fixed, multiplier: 5}}
`
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "wagers: []"},
		{"missing basics", "wagers:\n  - {id: pair, description: p, market: pair, payout: {kind: fixed, multiplier: 5}}"},
		{"duplicate id", "wagers:" + basics + "  - {id: hi, description: h, market: hi, payout: {kind: fixed, multiplier: 1}}\n"},
		{"unknown market", "wagers:" + basics + "  - {id: x, description: x, market: big, payout: {kind: fixed, multiplier: 1}}\n"},
		{"bad face", "wagers:" + basics + "  - {id: x, description: x, market: x_lo, face: 7, payout: {kind: fixed, multiplier: 1}}\n"},
		{"negative multiplier", "wagers:" + basics + "  - {id: x, description: x, market: pair, payout: {kind: fixed, multiplier: -1}}\n"},
		{"short schedule", "wagers:" + basics + "  - {id: x, description: x, market: single, payout: {kind: schedule, schedule: {1: 1, 2: 2}}}\n"},
		{"empty table", "wagers:" + basics + "  - {id: x, description: x, market: pair, payout: {kind: randomized, table: []}}\n"},
		{"unknown kind", "wagers:" + basics + "  - {id: x, description: x, market: pair, payout: {kind: lottery}}\n"},
		{"not yaml", "wagers: [}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wagers.yaml")
	require.NoError(t, os.WriteFile(path, defaultCatalogYAML, 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Len(), c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
