package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/lox/setforbots/internal/cards"
)

// Config holds the rules and timings of a game. The core only reads it.
type Config struct {
	Rules     cards.Rules
	TableSize int

	// TurnTimeout is the time before the table is reshuffled. Zero or less
	// disables the countdown: the clock then shows elapsed time and the
	// dealer reshuffles only when the table holds no set.
	TurnTimeout      time.Duration
	WarningThreshold time.Duration

	PointFreeze   time.Duration
	PenaltyFreeze time.Duration
	FreezeTick    time.Duration

	// Tick bounds how long the dealer waits on the claim queue between
	// countdown refreshes; WarningTick applies inside the warning window.
	Tick        time.Duration
	WarningTick time.Duration

	BotDelay        time.Duration
	ExclusiveTokens bool
	Seed            int64
}

var ErrInvalidConfig = errors.New("invalid game config")

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Rules:            cards.Classic(),
		TableSize:        12,
		TurnTimeout:      60 * time.Second,
		WarningThreshold: 5 * time.Second,
		PointFreeze:      time.Second,
		PenaltyFreeze:    3 * time.Second,
		FreezeTick:       time.Second,
		Tick:             time.Second,
		WarningTick:      10 * time.Millisecond,
		BotDelay:         500 * time.Millisecond,
	}
}

// Validate checks the config for values the dealer cannot work with.
func (c Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.TableSize < 3 {
		return fmt.Errorf("%w: table size %d is below 3", ErrInvalidConfig, c.TableSize)
	}
	if c.TableSize > c.Rules.DeckSize() {
		return fmt.Errorf("%w: table size %d exceeds deck size %d", ErrInvalidConfig, c.TableSize, c.Rules.DeckSize())
	}
	if c.WarningThreshold < 0 {
		return fmt.Errorf("%w: warning threshold must not be negative", ErrInvalidConfig)
	}
	if c.PointFreeze < 0 || c.PenaltyFreeze < 0 {
		return fmt.Errorf("%w: freeze durations must not be negative", ErrInvalidConfig)
	}
	if c.FreezeTick <= 0 || c.Tick <= 0 || c.WarningTick <= 0 {
		return fmt.Errorf("%w: ticks must be positive", ErrInvalidConfig)
	}
	if c.BotDelay <= 0 {
		return fmt.Errorf("%w: bot delay must be positive", ErrInvalidConfig)
	}
	return nil
}

// timed reports whether the countdown forces reshuffles.
func (c Config) timed() bool {
	return c.TurnTimeout > 0
}
