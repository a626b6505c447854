package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 1000, cfg.Limits.MaxSessions)
	assert.Equal(t, 10000, cfg.Limits.MaxGames)
	assert.Equal(t, 1_000_000, cfg.Limits.MaxTrials)
	assert.Equal(t, 10, cfg.Defaults.Sessions)
	assert.Equal(t, 100, cfg.Defaults.Games)
	assert.Equal(t, "100", cfg.Defaults.Bet().String())
	assert.Equal(t, "10000", cfg.Defaults.Capital().String())
	assert.Equal(t, "HI", cfg.Defaults.WagerType)
	assert.Empty(t, cfg.Database.Path)
	assert.Zero(t, cfg.Simulation.Seed)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SICBO_LIMITS_MAX_SESSIONS", "50")
	t.Setenv("SICBO_DEFAULTS_WAGER_TYPE", "eleven")
	t.Setenv("SICBO_DATABASE_PATH", "/tmp/runs.db")
	t.Setenv("SICBO_SIMULATION_SEED", "1234")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Limits.MaxSessions)
	assert.Equal(t, "eleven", cfg.Defaults.WagerType)
	assert.Equal(t, "/tmp/runs.db", cfg.Database.Path)
	assert.Equal(t, uint64(1234), cfg.Simulation.Seed)
}

func TestLoadPort(t *testing.T) {
	t.Setenv("PORT", "8080")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	t.Setenv("SICBO_SERVER_ADDR", "127.0.0.1:9000")
	cfg, err = Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "sicbo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7000"
  request_timeout: 5s
defaults:
  games: 250
  wager_type: LO
log:
  level: debug
`), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 250, cfg.Defaults.Games)
	assert.Equal(t, "LO", cfg.Defaults.WagerType)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Defaults.Sessions)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("PORT", "")
	tests := []struct {
		name   string
		modify func(c *Config)
		msg    string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"defaults above limit", func(c *Config) { c.Defaults.Games = c.Limits.MaxGames + 1 }, "defaults.games"},
		{"zero bet", func(c *Config) { c.Defaults.BetAmount = 0 }, "defaults.bet_amount"},
		{"bad wager", func(c *Config) { c.Defaults.WagerType = "PAIR" }, "defaults.wager_type"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"negative workers", func(c *Config) { c.Simulation.Workers = -2 }, "simulation.workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(viper.New(), "")
			require.NoError(t, err)
			tt.modify(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDefaultIgnoresEnvironment(t *testing.T) {
	t.Setenv("SICBO_LIMITS_MAX_GAMES", "3")
	cfg := Default()
	assert.Equal(t, 10000, cfg.Limits.MaxGames)
	assert.NoError(t, cfg.Validate())
}
