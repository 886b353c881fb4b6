package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/game"
)

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	require.NoError(t, c.Validate())
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, game.DefaultConfig(), c.Game)
	require.Len(t, c.Players, 2)
	assert.True(t, c.Players[0].Human)
	assert.Equal(t, DefaultKeys[0], c.Players[0].Keys)
	assert.False(t, c.Players[1].Human)
	assert.Equal(t, []int{0}, c.Humans())
	assert.Equal(t, "", c.Spectator)
}

func TestParse(t *testing.T) {
	src := `
game {
  table_size        = 9
  columns           = 3
  feature_count     = 3
  turn_timeout      = "30s"
  warning_threshold = "3s"
  penalty_freeze    = "2s"
  bot_delay         = "250ms"
  exclusive_tokens  = true
  seed              = 1234
}

player "alice" {
  human = true
  keys  = ["1", "2", "3", "q", "w", "e", "a", "s", "d"]
}

player "robot" {
  delay = "100ms"
}

spectator {
  address = "127.0.0.1:8081"
}

log {
  level = "debug"
}
`
	c, err := Parse([]byte(src), "test.hcl")
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, 9, c.Game.TableSize)
	assert.Equal(t, 3, c.Columns)
	assert.Equal(t, cards.Rules{FeatureCount: 3, FeatureSize: 3}, c.Game.Rules)
	assert.Equal(t, 30*time.Second, c.Game.TurnTimeout)
	assert.Equal(t, 3*time.Second, c.Game.WarningThreshold)
	assert.Equal(t, 2*time.Second, c.Game.PenaltyFreeze)
	assert.Equal(t, time.Second, c.Game.PointFreeze, "unset durations keep their defaults")
	assert.Equal(t, 250*time.Millisecond, c.Game.BotDelay)
	assert.True(t, c.Game.ExclusiveTokens)
	assert.Equal(t, int64(1234), c.Game.Seed)

	require.Len(t, c.Players, 2)
	assert.Equal(t, "alice", c.Players[0].Name)
	assert.Equal(t, "3", c.Players[0].Keys[2])
	assert.Equal(t, game.Seat{Name: "robot", BotDelay: 100 * time.Millisecond}, c.Seats()[1])

	assert.Equal(t, "127.0.0.1:8081", c.Spectator)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "setforbots.log", c.LogFile)
}

func TestParseHumanDefaultKeys(t *testing.T) {
	c, err := Parse([]byte(`
player "a" { human = true }
player "b" { human = true }
`), "keys.hcl")
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, DefaultKeys[0], c.Players[0].Keys)
	assert.Equal(t, DefaultKeys[1], c.Players[1].Keys)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `game {`},
		{"unknown attribute", `game { colour = "red" }`},
		{"bad duration", `game { tick = "soon" }`},
		{"bad player delay", `player "b" { delay = "x" }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no players", func(c *Config) { c.Players = nil }},
		{"table too small", func(c *Config) { c.Game.TableSize = 2 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero columns", func(c *Config) { c.Columns = 0 }},
		{"wrong key count", func(c *Config) { c.Players[0].Keys = []string{"a"} }},
		{"duplicate names", func(c *Config) { c.Players[1].Name = c.Players[0].Name }},
		{"shared key", func(c *Config) {
			c.SetSeats(2, 0)
			c.Players[1].Keys = append([]string{"q"}, DefaultKeys[1][1:]...)
		}},
		{"negative bot delay", func(c *Config) { c.Players[1].BotDelay = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestSetSeats(t *testing.T) {
	c := Default()
	c.SetSeats(3, 2)
	require.Len(t, c.Players, 5)
	assert.Equal(t, []int{0, 1, 2}, c.Humans())
	assert.Empty(t, c.Players[2].Keys, "only two default key rows exist")
	assert.Equal(t, "bot2", c.Players[4].Name)
	assert.Error(t, c.Validate(), "third human has no keys")

	c.SetSeats(0, 4)
	require.NoError(t, c.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(`log { file = "game.log" }`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "game.log", c.LogFile)
	assert.Len(t, c.Players, 2)
}
