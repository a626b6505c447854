package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/MJE43/sicbo-sim/internal/games"
	"github.com/MJE43/sicbo-sim/internal/report"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:     "classify a,b,c",
	Short:   "Classify a single roll",
	Example: "  sicbo classify 1,2,3",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dice, err := games.ParseDice(args[0])
		if err != nil {
			return err
		}
		outcome := games.Classify(dice)
		if classifyJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(outcome)
		}
		return report.Roll(cmd.OutOrStdout(), outcome)
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the outcome as JSON")
	rootCmd.AddCommand(classifyCmd)
}
