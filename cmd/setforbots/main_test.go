package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setforbots/internal/config"
	"github.com/lox/setforbots/internal/game"
)

const fastHCL = `
game {
  feature_count  = 3
  turn_timeout   = "50ms"
  warning_threshold = "10ms"
  point_freeze   = "1ms"
  penalty_freeze = "1ms"
  freeze_tick    = "1ms"
  tick           = "5ms"
  warning_tick   = "1ms"
  bot_delay      = "1ms"
}

log {
  level = "error"
}
`

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "setforbots.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestParseCommands(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("setforbots"), kong.Exit(func(int) {}))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"play", "--humans", "2", "--bots", "0", "--turn-timeout", "30s", "--seed", "9"})
	require.NoError(t, err)
	assert.Equal(t, "play", ctx.Command())
	require.NotNil(t, cli.Play.Humans)
	assert.Equal(t, 2, *cli.Play.Humans)
	assert.Equal(t, 30*time.Second, *cli.Play.TurnTimeout)

	ctx, err = parser.Parse([]string{"-f", "x.hcl", "config", "check"})
	require.NoError(t, err)
	assert.Equal(t, "config check", ctx.Command())
	assert.Equal(t, "x.hcl", cli.File)
}

func TestPlayOverrides(t *testing.T) {
	cfg := config.Default()
	humans, bots := 2, 1
	seed := int64(77)
	timeout := time.Duration(0)
	cmd := PlayCmd{Humans: &humans, Bots: &bots, Seed: &seed, TurnTimeout: &timeout, Spectate: ":9000"}
	cmd.apply(cfg)

	require.Len(t, cfg.Players, 3)
	assert.Equal(t, []int{0, 1}, cfg.Humans())
	assert.Equal(t, int64(77), cfg.Game.Seed)
	assert.Equal(t, time.Duration(0), cfg.Game.TurnTimeout)
	assert.Equal(t, ":9000", cfg.Spectator)
	require.NoError(t, cfg.Validate())

	// Only bots given: the configured human count is kept.
	cfg = config.Default()
	bots = 3
	(&PlayCmd{Bots: &bots}).apply(cfg)
	assert.Len(t, cfg.Players, 4)
	assert.Equal(t, []int{0}, cfg.Humans())
}

func TestSim(t *testing.T) {
	var out bytes.Buffer
	results := filepath.Join(t.TempDir(), "results.json")
	cmd := SimCmd{Games: 3, Bots: 2, Parallel: 2, Seed: 5, Out: results, out: &out}
	require.NoError(t, cmd.Run(&Globals{File: writeConfig(t, fastHCL)}))

	data, err := os.ReadFile(results)
	require.NoError(t, err)
	var outcomes []simOutcome
	require.NoError(t, json.Unmarshal(data, &outcomes))
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.NotEmpty(t, o.Result.GameID)
		assert.NotEmpty(t, o.Result.Winners)
		assert.Len(t, o.Result.Scores, 2)
	}

	text := out.String()
	assert.Contains(t, text, "3 games")
	assert.Contains(t, text, "bot1")
	assert.Contains(t, text, "bot2")
	assert.Contains(t, text, "sets collected")
	assert.NotContains(t, text, "terminated")
}

func TestSimRejectsBadCounts(t *testing.T) {
	cmd := SimCmd{Games: 0, Bots: 2, Parallel: 1, out: &bytes.Buffer{}}
	assert.Error(t, cmd.Run(&Globals{File: writeConfig(t, fastHCL)}))
}

func TestConfigCheck(t *testing.T) {
	var out bytes.Buffer
	path := writeConfig(t, fastHCL)
	cmd := ConfigCheckCmd{out: &out}
	require.NoError(t, cmd.Run(&Globals{File: path}))

	text := out.String()
	assert.Contains(t, text, "is valid")
	assert.Contains(t, text, "3 features x 3 values (27 cards)")
	assert.Contains(t, text, "countdown   50ms")
	assert.Contains(t, text, "player1 (human keys")

	bad := writeConfig(t, `game { table_size = 1 }`)
	assert.ErrorIs(t, (&ConfigCheckCmd{out: &out}).Run(&Globals{File: bad}), game.ErrInvalidConfig)
}

func TestPrintResult(t *testing.T) {
	var out bytes.Buffer
	printResult(&out, game.Result{
		Winners: []int{0, 2},
		Scores:  []int{3, 1, 3},
		Sets:    7,
	}, []string{"alice", "bob", "carol"})

	text := out.String()
	assert.Contains(t, text, "Tied winners: alice, carol")
	assert.Contains(t, text, "sets 7")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Len(t, lines, 6)
}

func TestGlobalOverrides(t *testing.T) {
	cfg, err := loadConfig(&Globals{File: writeConfig(t, fastHCL), LogLevel: "debug", LogFile: "x.log"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "x.log", cfg.LogFile)
}
