package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MJE43/sicbo-sim/internal/api"
	"github.com/MJE43/sicbo-sim/internal/bankroll"
	"github.com/MJE43/sicbo-sim/internal/logger"
	"github.com/MJE43/sicbo-sim/internal/report"
	"github.com/MJE43/sicbo-sim/internal/store"
)

var (
	cohortSessions int
	cohortGames    int
	cohortBet      string
	cohortCapital  string
	cohortWager    string
	cohortSeed     uint64
	cohortJSON     bool
	cohortSave     bool
)

var cohortCmd = &cobra.Command{
	Use:   "cohort",
	Short: "Simulate bankroll sessions and report return-to-player",
	Example: `  sicbo cohort --sessions 100 --games 1000 --wager LO --bet 50 --capital 5000
  sicbo cohort --seed 7 --json --save`,
	RunE: runCohort,
}

func init() {
	f := cohortCmd.Flags()
	f.IntVar(&cohortSessions, "sessions", 0, "number of sessions (default from defaults.sessions)")
	f.IntVar(&cohortGames, "games", 0, "games per session (default from defaults.games)")
	f.StringVar(&cohortBet, "bet", "", "bet per game (default from defaults.bet_amount)")
	f.StringVar(&cohortCapital, "capital", "", "starting capital (default from defaults.initial_capital)")
	f.StringVar(&cohortWager, "wager", "", "HI, LO or ELEVEN (default from defaults.wager_type)")
	f.Uint64Var(&cohortSeed, "seed", 0, "master seed (0 = simulation.seed or random)")
	f.BoolVar(&cohortJSON, "json", false, "print the cohort as JSON")
	f.BoolVar(&cohortSave, "save", false, "store the run summary in database.path")
	rootCmd.AddCommand(cohortCmd)
}

func runCohort(cmd *cobra.Command, args []string) error {
	req := api.SimulateRequest{WagerType: cohortWager}
	if cmd.Flags().Changed("sessions") {
		req.NumSessions = &cohortSessions
	}
	if cmd.Flags().Changed("games") {
		req.NumGames = &cohortGames
	}
	if cohortBet != "" {
		bet, err := decimal.NewFromString(cohortBet)
		if err != nil {
			return fmt.Errorf("invalid --bet: %w", err)
		}
		req.BetAmount = &bet
	}
	if cohortCapital != "" {
		capital, err := decimal.NewFromString(cohortCapital)
		if err != nil {
			return fmt.Errorf("invalid --capital: %w", err)
		}
		req.InitialCapital = &capital
	}

	params, err := api.BuildCohortParams(&req, cfg)
	if err != nil {
		return err
	}
	for _, c := range clampedFlags(req, params) {
		logger.Warn("value above configured limit, clamped",
			"flag", c.flag, "requested", c.requested, "used", c.used)
	}
	params.Seed = resolveSeed(cohortSeed)
	if params.Catalog, err = loadCatalog(); err != nil {
		return err
	}

	if !cohortJSON && params.Sessions > 0 {
		bar := progressbar.Default(int64(params.Sessions), "Sessions")
		params.OnProgress = func() { _ = bar.Add(1) }
		defer bar.Close()
	}

	cohort, err := bankroll.RunCohort(cmd.Context(), params)
	if err != nil {
		return err
	}
	logger.Debug("cohort complete", "sessions", params.Sessions, "seed", params.Seed, "overall_rtp", cohort.OverallRTP)

	runID := ""
	if cohortSave {
		if runID, err = saveRun(cohort); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if cohortJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(api.SimulateResponse{Cohort: cohort, RunID: runID, EngineVersion: api.EngineVersion})
	}

	fmt.Fprintln(out)
	if err := report.Cohort(out, cohort); err != nil {
		return err
	}
	if runID != "" {
		fmt.Fprintf(out, "\nRun saved: %s\n", runID)
	}
	return nil
}

type clampedFlag struct {
	flag      string
	requested int
	used      int
}

// clampedFlags lists the count flags that BuildCohortParams lowered to the
// configured limits.
func clampedFlags(req api.SimulateRequest, p bankroll.CohortParams) []clampedFlag {
	var out []clampedFlag
	if req.NumSessions != nil && *req.NumSessions != p.Sessions {
		out = append(out, clampedFlag{"--sessions", *req.NumSessions, p.Sessions})
	}
	if req.NumGames != nil && *req.NumGames != p.Games {
		out = append(out, clampedFlag{"--games", *req.NumGames, p.Games})
	}
	return out
}

func saveRun(c *bankroll.Cohort) (string, error) {
	if cfg.Database.Path == "" {
		return "", errors.New("--save needs database.path to be configured")
	}
	db, err := store.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return "", fmt.Errorf("migrate database: %w", err)
	}

	run := store.RunFromCohort(c, api.EngineVersion)
	if err := db.SaveRun(run); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	logger.Info("run saved", "id", run.ID, "path", cfg.Database.Path)
	return run.ID, nil
}
