// Package config loads service and CLI settings from defaults, an optional
// YAML file and SICBO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/MJE43/sicbo-sim/internal/bankroll"
	"github.com/MJE43/sicbo-sim/internal/logger"
)

// EnvPrefix namespaces environment overrides, e.g. SICBO_LIMITS_MAX_GAMES.
const EnvPrefix = "SICBO"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Limits     LimitsConfig     `mapstructure:"limits"`
	Defaults   DefaultsConfig   `mapstructure:"defaults"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
}

// LimitsConfig caps request sizes before they reach the simulator.
type LimitsConfig struct {
	MaxSessions int `mapstructure:"max_sessions"`
	MaxGames    int `mapstructure:"max_games"`
	MaxTrials   int `mapstructure:"max_trials"`
}

// DefaultsConfig fills fields a request leaves out.
type DefaultsConfig struct {
	Sessions       int     `mapstructure:"sessions"`
	Games          int     `mapstructure:"games"`
	BetAmount      float64 `mapstructure:"bet_amount"`
	InitialCapital float64 `mapstructure:"initial_capital"`
	WagerType      string  `mapstructure:"wager_type"`
	Trials         int     `mapstructure:"trials"`
}

// Bet returns BetAmount as a decimal.
func (d DefaultsConfig) Bet() decimal.Decimal {
	return decimal.NewFromFloat(d.BetAmount)
}

// Capital returns InitialCapital as a decimal.
func (d DefaultsConfig) Capital() decimal.Decimal {
	return decimal.NewFromFloat(d.InitialCapital)
}

// DatabaseConfig enables run persistence when Path is set.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	TimeFormat string `mapstructure:"time_format"`
	NoColor    bool   `mapstructure:"no_color"`
}

// SimulationConfig: Seed 0 draws a fresh crypto-random seed per run and
// Workers 0 means GOMAXPROCS.
type SimulationConfig struct {
	Seed    uint64 `mapstructure:"seed"`
	Workers int    `mapstructure:"workers"`
}

// CatalogConfig replaces the embedded wager catalogue when Path is set.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// SetDefaults registers every key so environment overrides resolve.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("limits.max_sessions", 1000)
	v.SetDefault("limits.max_games", 10000)
	v.SetDefault("limits.max_trials", 1_000_000)

	v.SetDefault("defaults.sessions", 10)
	v.SetDefault("defaults.games", 100)
	v.SetDefault("defaults.bet_amount", 100.0)
	v.SetDefault("defaults.initial_capital", 10000.0)
	v.SetDefault("defaults.wager_type", "HI")
	v.SetDefault("defaults.trials", 100_000)

	v.SetDefault("database.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.time_format", time.RFC3339)
	v.SetDefault("log.no_color", false)

	v.SetDefault("simulation.seed", uint64(0))
	v.SetDefault("simulation.workers", 0)

	v.SetDefault("catalog.path", "")
}

// Default returns the built-in settings, ignoring files and environment.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: decoding defaults: %v", err))
	}
	return &cfg
}

// Load resolves configuration into v. path may be empty. A bare PORT
// variable sets the listen port unless SICBO_SERVER_ADDR is present.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvPrefix+"_SERVER_ADDR") == "" {
		v.Set("server.addr", ":"+port)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.Addr != "", "server.addr is required")
	check(c.Server.ReadTimeout > 0, "server.read_timeout must be positive")
	check(c.Server.WriteTimeout > 0, "server.write_timeout must be positive")
	check(c.Server.RequestTimeout > 0, "server.request_timeout must be positive")

	check(c.Limits.MaxSessions > 0, "limits.max_sessions must be positive")
	check(c.Limits.MaxGames > 0, "limits.max_games must be positive")
	check(c.Limits.MaxTrials > 0, "limits.max_trials must be positive")

	check(c.Defaults.Sessions > 0 && c.Defaults.Sessions <= c.Limits.MaxSessions,
		"defaults.sessions must be in [1, %d]", c.Limits.MaxSessions)
	check(c.Defaults.Games > 0 && c.Defaults.Games <= c.Limits.MaxGames,
		"defaults.games must be in [1, %d]", c.Limits.MaxGames)
	check(c.Defaults.Trials > 0 && c.Defaults.Trials <= c.Limits.MaxTrials,
		"defaults.trials must be in [1, %d]", c.Limits.MaxTrials)
	check(c.Defaults.BetAmount > 0, "defaults.bet_amount must be positive")
	check(c.Defaults.InitialCapital >= 0, "defaults.initial_capital must not be negative")
	if _, err := bankroll.ParseWagerType(c.Defaults.WagerType); err != nil {
		errs = append(errs, fmt.Errorf("defaults.wager_type: %w", err))
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	check(c.Simulation.Workers >= 0, "simulation.workers must not be negative")

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
