package games

import (
	"slices"
	"sort"
)

// Seeds identifies one provably-fair stream.
type Seeds struct {
	Server string `json:"server"` // ASCII; do NOT hex-decode
	Client string `json:"client"`
}

// GameSpec describes a registered game.
type GameSpec struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MetricLabel string `json:"metric_label"`
}

// GameResult is the outcome of evaluating one nonce.
type GameResult struct {
	Metric      float64 `json:"metric"`
	MetricLabel string  `json:"metric_label"`
	Details     any     `json:"details,omitempty"`
}

// Game is a provably-fair game evaluated from seeds and a nonce.
type Game interface {
	Spec() GameSpec
	// FloatCount is how many floats one evaluation consumes
	FloatCount(params map[string]any) int
	Evaluate(seeds Seeds, nonce uint64, params map[string]any) (GameResult, error)
	EvaluateWithFloats(floats []float64, params map[string]any) (GameResult, error)
}

// Registry is a read-only set of games built once at startup.
type Registry struct {
	games map[string]Game
}

// NewRegistry indexes the given games by spec ID.
func NewRegistry(gs ...Game) *Registry {
	r := &Registry{games: make(map[string]Game, len(gs))}
	for _, g := range gs {
		r.games[g.Spec().ID] = g
	}
	return r
}

// DefaultRegistry holds every game this engine implements.
func DefaultRegistry() *Registry {
	return NewRegistry(&SicBoGame{})
}

// Get retrieves a game by ID
func (r *Registry) Get(id string) (Game, bool) {
	g, ok := r.games[id]
	return g, ok
}

// IDs returns the registered game IDs in sorted order
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Specs returns all game specs sorted by ID
func (r *Registry) Specs() []GameSpec {
	specs := make([]GameSpec, 0, len(r.games))
	for _, g := range r.games {
		specs = append(specs, g.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}
