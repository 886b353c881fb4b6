package game

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/table"
)

// Cooldown is a player's freeze state. The dealer sets it when settling a
// claim; the player's own loop performs the hold and resets it to Active.
type Cooldown int32

const (
	Active Cooldown = iota
	AwaitingPoint
	AwaitingPenalty
)

func (c Cooldown) String() string {
	switch c {
	case Active:
		return "active"
	case AwaitingPoint:
		return "awaiting-point"
	case AwaitingPenalty:
		return "awaiting-penalty"
	default:
		return "unknown"
	}
}

// Player is one seat at the table. It turns mark events into tokens and
// hands completed claims to the dealer.
type Player struct {
	id    int
	name  string
	human bool

	table   *table.Table
	claims  *ClaimQueue
	display display.Display
	clock   quartz.Clock
	logger  *log.Logger
	cfg     Config

	input     chan int
	accepting atomic.Bool
	score     atomic.Int64
	cooldown  atomic.Int32

	bot *Bot
}

func newPlayer(id int, seat Seat, cfg Config, tbl *table.Table, claims *ClaimQueue, d display.Display, clock quartz.Clock, logger *log.Logger) *Player {
	return &Player{
		id:      id,
		name:    seat.Name,
		human:   seat.Human,
		table:   tbl,
		claims:  claims,
		display: d,
		clock:   clock,
		logger:  logger.WithPrefix("player").With("player", id),
		cfg:     cfg,
		input:   make(chan int, table.MaxTokens),
	}
}

// ID returns the seat index.
func (p *Player) ID() int { return p.id }

// Name returns the configured seat name.
func (p *Player) Name() string { return p.name }

// Human reports whether input comes from a person.
func (p *Player) Human() bool { return p.human }

// Score returns the number of sets the player has collected.
func (p *Player) Score() int { return int(p.score.Load()) }

// Cooldown returns the player's current freeze state.
func (p *Player) Cooldown() Cooldown { return Cooldown(p.cooldown.Load()) }

func (p *Player) setCooldown(c Cooldown) { p.cooldown.Store(int32(c)) }

func (p *Player) addPoint() int { return int(p.score.Add(1)) }

// MarkSlot delivers a mark event for slot. Events are rejected while the
// player waits for a verdict or holds after one, and when three events are
// already waiting to be processed.
func (p *Player) MarkSlot(slot int) bool {
	if !p.accepting.Load() || p.Cooldown() != Active {
		return false
	}
	if slot < 0 || slot >= p.table.Size() {
		return false
	}

	select {
	case p.input <- slot:
		return true
	default:
		return false
	}
}

// Run processes mark events until ctx is done. An automated player also runs
// its input generator and waits for it before returning.
func (p *Player) Run(ctx context.Context) error {
	p.logger.Info("Player starting", "name", p.name, "human", p.human)

	p.accepting.Store(true)
	g, ctx := errgroup.WithContext(ctx)
	if p.bot != nil {
		g.Go(func() error { return p.bot.Run(ctx) })
	}
	g.Go(func() error { return p.loop(ctx) })

	err := g.Wait()
	p.accepting.Store(false)
	p.logger.Info("Player terminated", "score", p.Score())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *Player) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case slot := <-p.input:
			p.handleMark(ctx, slot)
		}
	}
}

// handleMark toggles a token on slot. The third token submits a claim and
// blocks until it is settled and the following hold is over.
func (p *Player) handleMark(ctx context.Context, slot int) {
	if p.Cooldown() != Active {
		return
	}

	if p.table.HasToken(p.id, slot) {
		p.table.RemoveToken(p.id, slot)
		p.logger.Debug("Token removed", "slot", slot)
		return
	}

	n, err := p.table.PlaceToken(p.id, slot)
	if err != nil {
		p.logger.Debug("Mark dropped", "slot", slot, "reason", err)
		return
	}
	p.logger.Debug("Token placed", "slot", slot, "tokens", n)
	if n == table.MaxTokens {
		p.submit(ctx)
	}
}

func (p *Player) submit(ctx context.Context) {
	marked := p.table.ClaimOf(p.id)
	if len(marked.Cards) != table.MaxTokens {
		// The dealer removed one of the cards between placing the token and here.
		return
	}

	p.accepting.Store(false)
	defer p.resume()

	claim := newClaim(p, marked.Slots, marked.Cards)
	claim.Epoch = marked.Epoch
	if err := p.claims.Enqueue(ctx, claim); err != nil {
		p.logger.Debug("Claim not submitted", "error", err)
		return
	}
	p.logger.Debug("Claim submitted", "slots", marked.Slots, "cards", marked.Cards)

	var verdict Verdict
	select {
	case verdict = <-claim.Verdict():
	case <-ctx.Done():
		return
	}
	p.logger.Debug("Claim settled", "verdict", verdict)

	switch p.Cooldown() {
	case AwaitingPoint:
		p.display.SetScore(p.id, p.Score())
		p.hold(ctx, p.cfg.PointFreeze)
	case AwaitingPenalty:
		p.hold(ctx, p.cfg.PenaltyFreeze)
	}
	p.setCooldown(Active)
}

// hold freezes the player for d, publishing the remaining time once per
// FreezeTick.
func (p *Player) hold(ctx context.Context, d time.Duration) {
	defer p.display.SetFreeze(p.id, display.NotFrozen)

	for remaining := d; remaining > 0; {
		p.display.SetFreeze(p.id, remaining)
		step := min(remaining, p.cfg.FreezeTick)
		timer := p.clock.NewTimer(step, "player", "hold")
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		remaining -= step
	}
}

// resume discards marks that arrived during a wait and accepts input again.
func (p *Player) resume() {
	for {
		select {
		case <-p.input:
		default:
			p.accepting.Store(true)
			return
		}
	}
}
