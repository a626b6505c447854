package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MJE43/sicbo-sim/internal/catalog"
	"github.com/MJE43/sicbo-sim/internal/config"
	"github.com/MJE43/sicbo-sim/internal/logger"
)

var (
	cfgFile string
	v       = viper.New()
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sicbo",
	Short: "Sic Bo Monte Carlo simulator",
	Long: `sicbo rolls three-dice Sic Bo trials, estimates the probability and
expected value of every wager in the catalogue, and simulates bankroll
sessions to measure return-to-player.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")

	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("simulation.workers", flags.Lookup("workers"))
}

func initConfig() error {
	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logger.Init(&logger.Options{
		Level:      level,
		TimeFormat: c.Log.TimeFormat,
		NoColor:    c.Log.NoColor,
	})
	cfg = c
	logger.Debug("config loaded", "file", cfgFile, "database", cfg.Database.Path != "")
	return nil
}

func loadCatalog() (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded", "path", cfg.Catalog.Path, "wagers", cat.Len())
	return cat, nil
}
