package games

import (
	"fmt"

	"github.com/MJE43/sicbo-sim/internal/engine"
)

// SicBoGame implements the provably-fair three-dice round
type SicBoGame struct{}

// Spec returns metadata about the Sic Bo game
func (g *SicBoGame) Spec() GameSpec {
	return GameSpec{
		ID:          "sicbo",
		Name:        "Sic Bo",
		MetricLabel: "total",
	}
}

// FloatCount returns the number of floats required
func (g *SicBoGame) FloatCount(params map[string]any) int {
	return engine.DicePerRoll
}

// Evaluate rolls the three dice for one nonce
func (g *SicBoGame) Evaluate(seeds Seeds, nonce uint64, params map[string]any) (GameResult, error) {
	floats := engine.Floats(seeds.Server, seeds.Client, nonce, 0, engine.DicePerRoll)
	return g.EvaluateWithFloats(floats, params)
}

// EvaluateWithFloats maps each float onto a face with floor(f*6)+1
func (g *SicBoGame) EvaluateWithFloats(floats []float64, params map[string]any) (GameResult, error) {
	if len(floats) < engine.DicePerRoll {
		return GameResult{}, fmt.Errorf("sicbo requires at least %d floats, got %d", engine.DicePerRoll, len(floats))
	}

	var dice [engine.DicePerRoll]int
	for i := range dice {
		dice[i] = engine.FaceFromFloat(floats[i])
	}
	outcome := Classify(dice)

	return GameResult{
		Metric:      float64(outcome.Total),
		MetricLabel: "total",
		Details:     outcome,
	}, nil
}
