package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MJE43/sicbo-sim/internal/catalog"
)

var wagersJSON bool

var wagersCmd = &cobra.Command{
	Use:   "wagers",
	Short: "List the wager catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if wagersJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(cat.List())
		}
		for _, w := range cat.List() {
			fmt.Fprintf(out, "%-20s %-10s %-20s %s\n", w.ID, w.Market, payoutLabel(w.Payout), w.Description)
		}
		return nil
	},
}

func init() {
	wagersCmd.Flags().BoolVar(&wagersJSON, "json", false, "print the catalogue as JSON")
	rootCmd.AddCommand(wagersCmd)
}

func payoutLabel(p catalog.Payout) string {
	switch p.Kind {
	case catalog.PayoutFixed:
		return fmt.Sprintf("%gx", p.Multiplier)
	case catalog.PayoutSchedule:
		return fmt.Sprintf("%gx/%gx/%gx", p.Schedule[1], p.Schedule[2], p.Schedule[3])
	default:
		return string(p.Kind)
	}
}
