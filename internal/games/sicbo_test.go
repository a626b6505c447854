package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/sicbo-sim/internal/engine"
)

func TestSicBoGameSpec(t *testing.T) {
	game := &SicBoGame{}
	spec := game.Spec()
	assert.Equal(t, "sicbo", spec.ID)
	assert.Equal(t, "Sic Bo", spec.Name)
	assert.Equal(t, "total", spec.MetricLabel)
	assert.Equal(t, 3, game.FloatCount(nil))
}

func TestSicBoEvaluateWithFloats(t *testing.T) {
	game := &SicBoGame{}

	res, err := game.EvaluateWithFloats([]float64{0.0, 0.5, 0.99}, nil)
	require.NoError(t, err)
	outcome, ok := res.Details.(Outcome)
	require.True(t, ok)
	assert.Equal(t, [3]int{1, 4, 6}, outcome.Dice)
	assert.Equal(t, 11.0, res.Metric)
	assert.True(t, outcome.IsHiLo11)

	_, err = game.EvaluateWithFloats([]float64{0.1}, nil)
	assert.Error(t, err)
}

func TestSicBoEvaluateMatchesHMACSource(t *testing.T) {
	game := &SicBoGame{}
	seeds := Seeds{Server: "test_server", Client: "test_client"}
	src := engine.NewHMACSource(seeds.Server, seeds.Client, 100)

	for nonce := uint64(100); nonce < 110; nonce++ {
		res, err := game.Evaluate(seeds, nonce, nil)
		require.NoError(t, err)
		want := Classify(engine.Roll(src))
		assert.Equal(t, want, res.Details, "nonce %d", nonce)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	g, ok := r.Get("sicbo")
	require.True(t, ok)
	assert.Equal(t, "sicbo", g.Spec().ID)

	_, ok = r.Get("limbo")
	assert.False(t, ok)
	assert.Equal(t, []string{"sicbo"}, r.IDs())
	assert.Len(t, r.Specs(), 1)
}
