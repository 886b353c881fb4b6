package game

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/randutil"
	"github.com/lox/setforbots/internal/table"
)

// Seat describes one player at the table.
type Seat struct {
	Name  string
	Human bool
	// BotDelay overrides Config.BotDelay for an automated seat.
	BotDelay time.Duration
}

// Options carries the collaborators of a game. Every field is optional.
type Options struct {
	Display display.Display
	Clock   quartz.Clock
	Logger  *log.Logger
	// Deck fixes the initial card order, head first. The deck is not
	// shuffled before the first deal; reshuffles still use Config.Seed.
	Deck []cards.Card
}

// Game wires a dealer, its players and the shared table together.
type Game struct {
	ID      string
	cfg     Config
	table   *table.Table
	players []*Player
	dealer  *Dealer
}

// New creates a game for seats. Nothing runs until Run is called.
func New(cfg Config, seats []Seat, opts Options) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, fmt.Errorf("%w: no players", ErrInvalidConfig)
	}
	seen := make(map[cards.Card]bool, len(opts.Deck))
	for _, c := range opts.Deck {
		if !cfg.Rules.Valid(c) {
			return nil, fmt.Errorf("%w: card %d is not in a %d-card deck", ErrInvalidConfig, c, cfg.Rules.DeckSize())
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: card %d appears twice in the deck", ErrInvalidConfig, c)
		}
		seen[c] = true
	}

	if opts.Display == nil {
		opts.Display = display.Nop{}
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating game id: %w", err)
	}
	logger := opts.Logger.With("game", id.String()[:8])
	rng := randutil.New(cfg.Seed)

	tbl := table.New(cfg.TableSize, opts.Display, table.Options{ExclusiveTokens: cfg.ExclusiveTokens})
	claims := NewClaimQueue(len(seats))

	players := make([]*Player, len(seats))
	for i, seat := range seats {
		p := newPlayer(i, seat, cfg, tbl, claims, opts.Display, opts.Clock, logger)
		if !seat.Human {
			delay := cfg.BotDelay
			if seat.BotDelay > 0 {
				delay = seat.BotDelay
			}
			p.bot = newBot(p, randutil.Derive(rng, i), delay)
		}
		players[i] = p
	}

	var deck *cards.Deck
	if opts.Deck != nil {
		deck = cards.NewDeckFrom(opts.Deck, rng)
	} else {
		deck = cards.NewDeck(cfg.Rules, rng)
	}

	dealer := &Dealer{
		gameID:         id.String(),
		cfg:            cfg,
		table:          tbl,
		players:        players,
		deck:           deck,
		claims:         claims,
		display:        opts.Display,
		clock:          opts.Clock,
		logger:         logger.WithPrefix("dealer"),
		shuffleOnStart: opts.Deck == nil,
		terminate:      make(chan struct{}),
	}

	return &Game{
		ID:      id.String(),
		cfg:     cfg,
		table:   tbl,
		players: players,
		dealer:  dealer,
	}, nil
}

// Run plays the game to the end. It returns once every player goroutine
// has stopped.
func (g *Game) Run(ctx context.Context) (Result, error) {
	return g.dealer.Run(ctx)
}

// Terminate ends the game early. Queued claims are cancelled.
func (g *Game) Terminate() {
	g.dealer.Terminate()
}

// MarkSlot delivers a mark event for player. It reports whether the event
// was accepted.
func (g *Game) MarkSlot(player, slot int) bool {
	if player < 0 || player >= len(g.players) {
		return false
	}
	return g.players[player].MarkSlot(slot)
}

// Players returns the seats in id order.
func (g *Game) Players() []*Player {
	return g.players
}

// Table returns the shared table.
func (g *Game) Table() *table.Table {
	return g.table
}

// Phase returns the dealer's current phase.
func (g *Game) Phase() Phase {
	return g.dealer.Phase()
}

// Config returns the config the game was created with.
func (g *Game) Config() Config {
	return g.cfg
}
