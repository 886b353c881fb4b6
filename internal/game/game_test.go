package game

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/display"
)

func fastConfig() Config {
	return Config{
		Rules:            cards.Rules{FeatureCount: 3, FeatureSize: 3},
		TableSize:        12,
		TurnTimeout:      50 * time.Millisecond,
		WarningThreshold: 10 * time.Millisecond,
		PointFreeze:      time.Millisecond,
		PenaltyFreeze:    time.Millisecond,
		FreezeTick:       time.Millisecond,
		Tick:             5 * time.Millisecond,
		WarningTick:      time.Millisecond,
		BotDelay:         time.Millisecond,
		Seed:             7,
	}
}

func bots(n int) []Seat {
	seats := make([]Seat, n)
	for i := range seats {
		seats[i] = Seat{Name: "bot"}
	}
	return seats
}

func TestNew(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TableSize = 2
		_, err := New(cfg, bots(1), Options{Logger: logger})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects an empty table", func(t *testing.T) {
		_, err := New(DefaultConfig(), nil, Options{Logger: logger})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects cards outside the deck", func(t *testing.T) {
		_, err := New(fastConfig(), bots(1), Options{Deck: []cards.Card{0, 27}})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects a card dealt twice", func(t *testing.T) {
		_, err := New(fastConfig(), bots(1), Options{Deck: []cards.Card{0, 5, 9, 5}})
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorContains(t, err, "card 5 appears twice")
	})

	t.Run("defaults", func(t *testing.T) {
		g, err := New(DefaultConfig(), []Seat{{Name: "alice", Human: true}, {Name: "bot"}}, Options{})
		require.NoError(t, err)
		assert.NotEmpty(t, g.ID)
		assert.Len(t, g.Players(), 2)
		assert.Equal(t, "alice", g.Players()[0].Name())
		assert.True(t, g.Players()[0].Human())
		assert.False(t, g.Players()[1].Human())
		assert.Equal(t, 1, g.Players()[1].ID())
		assert.Equal(t, 12, g.Table().Size())
		assert.Equal(t, PhaseDealing, g.Phase())
		assert.Equal(t, DefaultConfig(), g.Config())
	})
}

// assertFinished checks the end state of a game that ran to completion.
func assertFinished(t *testing.T, g *Game, result Result) {
	t.Helper()
	assert.False(t, result.Terminated)
	assert.Equal(t, g.ID, result.GameID)

	total := 0
	best := 0
	for _, s := range result.Scores {
		total += s
		best = max(best, s)
	}
	assert.Equal(t, result.Sets, total)
	require.NotEmpty(t, result.Winners)
	for _, w := range result.Winners {
		assert.Equal(t, best, result.Scores[w])
	}

	pool := append(g.dealer.deck.Cards(), g.table.Snapshot()...)
	assert.False(t, g.cfg.Rules.AnySet(pool), "game ended with a set still in play")
	inPlay := 0
	for _, c := range pool {
		if c != cards.None {
			inPlay++
		}
	}
	assert.Equal(t, 27, inPlay+3*result.Sets, "every card is in play or collected")
	require.NoError(t, g.table.CheckInvariants())
}

func TestGameWithBots(t *testing.T) {
	t.Run("countdown", func(t *testing.T) {
		board := display.NewBoard(12)
		g, err := New(fastConfig(), bots(3), Options{
			Display: board,
			Logger:  log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
		})
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		result, err := g.Run(ctx)
		require.NoError(t, err)

		assertFinished(t, g, result)
		assert.Positive(t, result.Sets)

		state := board.Snapshot()
		assert.True(t, state.Finished)
		assert.Equal(t, result.Winners, state.Winners)
	})

	t.Run("elapsed", func(t *testing.T) {
		cfg := fastConfig()
		cfg.TurnTimeout = 0
		g, err := New(cfg, bots(2), Options{
			Logger: log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
		})
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		result, err := g.Run(ctx)
		require.NoError(t, err)

		assertFinished(t, g, result)
	})

	t.Run("terminate mid game", func(t *testing.T) {
		cfg := fastConfig()
		cfg.Rules = cards.Classic()
		cfg.BotDelay = 20 * time.Millisecond
		cfg.TurnTimeout = time.Hour
		g, err := New(cfg, bots(4), Options{
			Logger: log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
		})
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		go func() {
			time.Sleep(50 * time.Millisecond)
			g.Terminate()
		}()

		result, err := g.Run(ctx)
		require.NoError(t, err)
		assert.True(t, result.Terminated)
		assert.NoError(t, ctx.Err(), "terminate should stop the game well before the deadline")
		require.NoError(t, g.table.CheckInvariants())
	})
}
