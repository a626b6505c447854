package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/sicbo-sim/internal/api"
	"github.com/MJE43/sicbo-sim/internal/catalog"
	"github.com/MJE43/sicbo-sim/internal/config"
	"github.com/MJE43/sicbo-sim/internal/engine"
	"github.com/MJE43/sicbo-sim/internal/games"
)

func TestParseEVOptions(t *testing.T) {
	opts, err := parseEVOptions(
		[]string{"pair_random=5,4,3,2,1"},
		[]string{"lo_1_random= 3"},
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 4, 3, 2, 1}, opts.Weights["pair_random"])
	assert.Equal(t, 3.0, opts.Representative["lo_1_random"])

	for _, bad := range [][2][]string{
		{{"pair_random"}, nil},
		{{"=1,2"}, nil},
		{{"pair_random=1,x"}, nil},
		{nil, {"lo_1_random"}},
		{nil, {"lo_1_random=big"}},
	} {
		_, err := parseEVOptions(bad[0], bad[1])
		assert.Error(t, err, bad)
	}
}

func TestPayoutLabel(t *testing.T) {
	cat := catalog.Default()
	hi, _ := cat.Get("hi")
	single, _ := cat.Get("single")
	pairRandom, _ := cat.Get("pair_random")

	assert.Equal(t, "1x", payoutLabel(hi.Payout))
	assert.Contains(t, payoutLabel(single.Payout), "/")
	assert.Equal(t, "randomized", payoutLabel(pairRandom.Payout))
}

func TestSimulateCommandJSON(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"simulate", "--trials", "2000", "--seed", "5", "--json", "--log-level", "error"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var resp struct {
		Trials int    `json:"trials"`
		Seed   uint64 `json:"seed"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, 2000, resp.Trials)
	assert.Equal(t, uint64(5), resp.Seed)
}

func TestClampedFlags(t *testing.T) {
	c := config.Default()
	c.Limits.MaxSessions = 10
	c.Limits.MaxGames = 100

	sessions, numGames := 50, 5
	req := api.SimulateRequest{NumSessions: &sessions, NumGames: &numGames}
	p, err := api.BuildCohortParams(&req, c)
	require.NoError(t, err)

	got := clampedFlags(req, p)
	require.Len(t, got, 1)
	assert.Equal(t, clampedFlag{"--sessions", 50, 10}, got[0])

	sessions, numGames = 0, 500
	p, err = api.BuildCohortParams(&req, c)
	require.NoError(t, err)
	assert.Equal(t, []clampedFlag{{"--games", 500, 100}}, clampedFlags(req, p))

	assert.Empty(t, clampedFlags(api.SimulateRequest{}, p))
}

func TestVerifyCommandConsecutiveNonces(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"verify", "--server-seed", "server", "--client-seed", "client",
		"--nonce", "7", "--count", "3", "--json", "--log-level", "error"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var rows []struct {
		Nonce   uint64        `json:"nonce"`
		Outcome games.Outcome `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 3)

	game := &games.SicBoGame{}
	for i, r := range rows {
		nonce := uint64(7 + i)
		assert.Equal(t, nonce, r.Nonce)
		want, err := game.Evaluate(games.Seeds{Server: "server", Client: "client"}, nonce, nil)
		require.NoError(t, err)
		assert.Equal(t, want.Details, r.Outcome, "nonce %d", nonce)
		assert.Equal(t, games.Classify(engine.Roll(engine.NewHMACSource("server", "client", nonce))), r.Outcome)
	}
}
