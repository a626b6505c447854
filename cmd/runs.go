package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MJE43/sicbo-sim/internal/store"
)

var (
	runsWager   string
	runsPage    int
	runsPerPage int
)

var runsCmd = &cobra.Command{
	Use:   "runs [id]",
	Short: "List stored run summaries, or show one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Path == "" {
			return errors.New("database.path is not configured")
		}
		db, err := store.NewSQLiteDB(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if len(args) == 1 {
			run, err := db.GetRun(args[0])
			if err != nil {
				return err
			}
			return enc.Encode(run)
		}

		list, err := db.ListRuns(store.RunsQuery{WagerType: runsWager, Page: runsPage, PerPage: runsPerPage})
		if err != nil {
			return err
		}
		return enc.Encode(list)
	},
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsWager, "wager", "", "filter by wager type")
	f.IntVar(&runsPage, "page", 1, "page number")
	f.IntVar(&runsPerPage, "per-page", 20, "runs per page")
	rootCmd.AddCommand(runsCmd)
}
