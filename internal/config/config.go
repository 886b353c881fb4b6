package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/game"
)

// DefaultFile is the config file read when none is named.
const DefaultFile = "setforbots.hcl"

var ErrInvalidConfig = errors.New("invalid config")

// DefaultKeys are the slot keys handed to human seats that set none, one
// row of four keys per table row.
var DefaultKeys = [][]string{
	strings.Fields("q w e r a s d f z x c v"),
	strings.Fields("u i o p j k l ; m , . /"),
}

// File is the HCL layout of a config file
type File struct {
	Game      *GameSettings      `hcl:"game,block"`
	Players   []PlayerConfig     `hcl:"player,block"`
	Spectator *SpectatorSettings `hcl:"spectator,block"`
	Log       *LogSettings       `hcl:"log,block"`
}

// GameSettings holds rules and timings. Durations are Go duration strings.
type GameSettings struct {
	TableSize        int    `hcl:"table_size,optional"`
	Columns          int    `hcl:"columns,optional"`
	FeatureCount     int    `hcl:"feature_count,optional"`
	FeatureSize      int    `hcl:"feature_size,optional"`
	TurnTimeout      string `hcl:"turn_timeout,optional"`
	WarningThreshold string `hcl:"warning_threshold,optional"`
	PointFreeze      string `hcl:"point_freeze,optional"`
	PenaltyFreeze    string `hcl:"penalty_freeze,optional"`
	FreezeTick       string `hcl:"freeze_tick,optional"`
	Tick             string `hcl:"tick,optional"`
	WarningTick      string `hcl:"warning_tick,optional"`
	BotDelay         string `hcl:"bot_delay,optional"`
	ExclusiveTokens  bool   `hcl:"exclusive_tokens,optional"`
	Seed             int64  `hcl:"seed,optional"`
}

// PlayerConfig defines one seat
type PlayerConfig struct {
	Name  string   `hcl:"name,label"`
	Human bool     `hcl:"human,optional"`
	Keys  []string `hcl:"keys,optional"`
	Delay string   `hcl:"delay,optional"`
}

// SpectatorSettings enables the websocket feed when Address is set
type SpectatorSettings struct {
	Address string `hcl:"address,optional"`
}

// LogSettings controls where logs go
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// Player is a resolved seat with its slot keys.
type Player struct {
	game.Seat
	Keys []string
}

// Config is a fully resolved configuration.
type Config struct {
	Game      game.Config
	Players   []Player
	Columns   int
	Spectator string
	LogLevel  string
	LogFile   string
}

// Default returns one human seat against one bot on the classic rules.
func Default() *Config {
	c := &Config{
		Game:     game.DefaultConfig(),
		Columns:  4,
		LogLevel: "info",
		LogFile:  "setforbots.log",
	}
	c.SetSeats(1, 1)
	return c
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source, applying defaults for anything left unset.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var f File
	diags = gohcl.DecodeBody(file.Body, nil, &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	return f.resolve()
}

func (f *File) resolve() (*Config, error) {
	c := Default()

	if g := f.Game; g != nil {
		if g.TableSize != 0 {
			c.Game.TableSize = g.TableSize
		}
		if g.Columns != 0 {
			c.Columns = g.Columns
		}
		if g.FeatureCount != 0 || g.FeatureSize != 0 {
			c.Game.Rules = cards.Rules{FeatureCount: g.FeatureCount, FeatureSize: g.FeatureSize}
			if g.FeatureCount == 0 {
				c.Game.Rules.FeatureCount = cards.Classic().FeatureCount
			}
			if g.FeatureSize == 0 {
				c.Game.Rules.FeatureSize = cards.Classic().FeatureSize
			}
		}
		c.Game.ExclusiveTokens = g.ExclusiveTokens
		c.Game.Seed = g.Seed

		durations := []struct {
			name  string
			value string
			dst   *time.Duration
		}{
			{"turn_timeout", g.TurnTimeout, &c.Game.TurnTimeout},
			{"warning_threshold", g.WarningThreshold, &c.Game.WarningThreshold},
			{"point_freeze", g.PointFreeze, &c.Game.PointFreeze},
			{"penalty_freeze", g.PenaltyFreeze, &c.Game.PenaltyFreeze},
			{"freeze_tick", g.FreezeTick, &c.Game.FreezeTick},
			{"tick", g.Tick, &c.Game.Tick},
			{"warning_tick", g.WarningTick, &c.Game.WarningTick},
			{"bot_delay", g.BotDelay, &c.Game.BotDelay},
		}
		for _, d := range durations {
			if err := parseDuration(d.name, d.value, d.dst); err != nil {
				return nil, err
			}
		}
	}

	if len(f.Players) > 0 {
		c.Players = c.Players[:0]
		humans := 0
		for _, pc := range f.Players {
			p := Player{Seat: game.Seat{Name: pc.Name, Human: pc.Human}, Keys: pc.Keys}
			if err := parseDuration("player "+pc.Name+" delay", pc.Delay, &p.BotDelay); err != nil {
				return nil, err
			}
			if p.Human {
				if len(p.Keys) == 0 && humans < len(DefaultKeys) {
					p.Keys = DefaultKeys[humans]
				}
				humans++
			}
			c.Players = append(c.Players, p)
		}
	}

	if f.Spectator != nil {
		c.Spectator = f.Spectator.Address
	}
	if f.Log != nil {
		if f.Log.Level != "" {
			c.LogLevel = f.Log.Level
		}
		if f.Log.File != "" {
			c.LogFile = f.Log.File
		}
	}

	return c, nil
}

func parseDuration(name, value string, dst *time.Duration) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
	}
	*dst = d
	return nil
}

// SetSeats replaces the configured players with humans human seats followed
// by bots automated ones, using default names and keys.
func (c *Config) SetSeats(humans, bots int) {
	c.Players = nil
	for i := range humans {
		p := Player{Seat: game.Seat{Name: fmt.Sprintf("player%d", i+1), Human: true}}
		if i < len(DefaultKeys) {
			p.Keys = DefaultKeys[i]
		}
		c.Players = append(c.Players, p)
	}
	for i := range bots {
		c.Players = append(c.Players, Player{Seat: game.Seat{Name: fmt.Sprintf("bot%d", i+1)}})
	}
}

// Seats returns the game seats in player order.
func (c *Config) Seats() []game.Seat {
	seats := make([]game.Seat, len(c.Players))
	for i, p := range c.Players {
		seats[i] = p.Seat
	}
	return seats
}

// Humans returns the indices of the human seats.
func (c *Config) Humans() []int {
	var ids []int
	for i, p := range c.Players {
		if p.Human {
			ids = append(ids, i)
		}
	}
	return ids
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return err
	}
	if len(c.Players) == 0 {
		return fmt.Errorf("%w: at least one player must be configured", ErrInvalidConfig)
	}
	if c.Columns < 1 {
		return fmt.Errorf("%w: columns must be positive", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %w", ErrInvalidConfig, err)
	}

	names := make(map[string]bool)
	owner := make(map[string]string)
	for _, p := range c.Players {
		if names[p.Name] {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalidConfig, p.Name)
		}
		names[p.Name] = true

		if p.BotDelay < 0 {
			return fmt.Errorf("%w: player %s: delay must not be negative", ErrInvalidConfig, p.Name)
		}
		if !p.Human {
			continue
		}
		if len(p.Keys) != c.Game.TableSize {
			return fmt.Errorf("%w: player %s: %d keys for %d slots", ErrInvalidConfig, p.Name, len(p.Keys), c.Game.TableSize)
		}
		for _, k := range p.Keys {
			if other, ok := owner[k]; ok {
				return fmt.Errorf("%w: key %q bound by both %s and %s", ErrInvalidConfig, k, other, p.Name)
			}
			owner[k] = p.Name
		}
	}
	return nil
}
