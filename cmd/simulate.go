package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/MJE43/sicbo-sim/internal/engine"
	"github.com/MJE43/sicbo-sim/internal/logger"
	"github.com/MJE43/sicbo-sim/internal/report"
	"github.com/MJE43/sicbo-sim/internal/sim"
	"github.com/MJE43/sicbo-sim/internal/stats"
)

var (
	simTrials         int
	simSeed           uint64
	simJSON           bool
	simBet            float64
	simWeights        []string
	simRepresentative []string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Roll a batch of trials and report probabilities and expected values",
	Example: `  sicbo simulate --trials 1000000 --seed 42
  sicbo simulate --weights pair_random=5,4,3,2,1 --representative lo_1_random=3`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.IntVarP(&simTrials, "trials", "n", 0, "number of trials (default from defaults.trials)")
	f.Uint64Var(&simSeed, "seed", 0, "master seed (0 = simulation.seed or random)")
	f.BoolVar(&simJSON, "json", false, "print the snapshot and EV table as JSON")
	f.Float64Var(&simBet, "bet", report.DefaultBet, "nominal stake for the EV section")
	f.StringArrayVar(&simWeights, "weights", nil, "selection weights for a randomized wager, id=w1,w2,...")
	f.StringArrayVar(&simRepresentative, "representative", nil, "single multiplier for a randomized wager, id=m")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	count := simTrials
	if count == 0 {
		count = cfg.Defaults.Trials
	}
	if count < 0 {
		return fmt.Errorf("trials must be >= 0, got %d", count)
	}
	seed := resolveSeed(simSeed)

	opts, err := parseEVOptions(simWeights, simRepresentative)
	if err != nil {
		return err
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	// The sample roll is an independent demo draw, not part of the batch.
	trials := sim.New(engine.NewRandomSource())
	if err := trials.SimulateTrials(1); err != nil {
		return err
	}
	sample := trials.History()[0]
	trials.Reset()

	params := sim.BatchParams{Count: count, Seed: seed, Workers: cfg.Simulation.Workers}
	if !simJSON {
		bar := progressbar.Default(int64(count), "Rolling")
		params.OnProgress = func(done int) { _ = bar.Add(done) }
		defer bar.Close()
	}

	start := time.Now()
	batch, err := sim.RunBatch(cmd.Context(), params)
	if err != nil {
		return err
	}
	trials.Extend(batch)
	logger.Debug("batch complete", "trials", trials.Len(), "seed", seed, "duration", time.Since(start))

	snap, err := stats.Aggregate(trials.History())
	if err != nil {
		return err
	}
	ev, err := stats.ExpectedValues(snap, cat, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if simJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"trials":   snap.Trials,
			"seed":     seed,
			"snapshot": snap,
			"ev":       ev,
			"sample":   sample,
		})
	}

	fmt.Fprintf(out, "\nSeed: %d\n\nSample roll\n", seed)
	if err := report.Roll(out, sample); err != nil {
		return err
	}
	return report.Batch(out, snap, ev, cat, report.Options{Bet: simBet})
}

// resolveSeed prefers the flag, then the configured seed, then a fresh one.
func resolveSeed(flag uint64) uint64 {
	if flag != 0 {
		return flag
	}
	if cfg.Simulation.Seed != 0 {
		return cfg.Simulation.Seed
	}
	return engine.RandomSeed()
}

func parseEVOptions(weights, representative []string) (stats.EVOptions, error) {
	opts := stats.EVOptions{}
	for _, raw := range weights {
		id, list, ok := strings.Cut(raw, "=")
		if !ok || id == "" {
			return opts, fmt.Errorf("invalid --weights %q: want id=w1,w2,...", raw)
		}
		var ws []float64
		for _, part := range strings.Split(list, ",") {
			w, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return opts, fmt.Errorf("invalid --weights %q: %w", raw, err)
			}
			ws = append(ws, w)
		}
		if opts.Weights == nil {
			opts.Weights = make(map[string][]float64)
		}
		opts.Weights[id] = ws
	}
	for _, raw := range representative {
		id, val, ok := strings.Cut(raw, "=")
		if !ok || id == "" {
			return opts, fmt.Errorf("invalid --representative %q: want id=multiplier", raw)
		}
		m, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return opts, fmt.Errorf("invalid --representative %q: %w", raw, err)
		}
		if opts.Representative == nil {
			opts.Representative = make(map[string]float64)
		}
		opts.Representative[id] = m
	}
	return opts, nil
}
