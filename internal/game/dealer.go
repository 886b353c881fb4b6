package game

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/table"
)

// Phase is the dealer's position in the round loop.
type Phase int32

const (
	PhaseDealing Phase = iota
	PhaseRunning
	PhaseReshuffling
	PhaseEnding
)

func (p Phase) String() string {
	switch p {
	case PhaseDealing:
		return "dealing"
	case PhaseRunning:
		return "running"
	case PhaseReshuffling:
		return "reshuffling"
	case PhaseEnding:
		return "ending"
	default:
		return "unknown"
	}
}

// Result summarises a finished game.
type Result struct {
	GameID     string `json:"gameId"`
	Winners    []int  `json:"winners"`
	Scores     []int  `json:"scores"`
	Sets       int    `json:"sets"`
	Penalties  int    `json:"penalties"`
	Stale      int    `json:"stale"`
	Reshuffles int    `json:"reshuffles"`
	Terminated bool   `json:"terminated"`
}

// Dealer owns the deck and the round loop. It is the only consumer of the
// claim queue and the only goroutine that removes cards from the table.
type Dealer struct {
	gameID  string
	cfg     Config
	table   *table.Table
	players []*Player
	deck    *cards.Deck
	claims  *ClaimQueue
	display display.Display
	clock   quartz.Clock
	logger  *log.Logger

	shuffleOnStart bool
	phase          atomic.Int32
	deadline       time.Time // reshuffle time in timed mode, round start otherwise

	terminate     chan struct{}
	terminateOnce sync.Once

	sets, penalties, stale, reshuffles int
}

// Phase returns the current phase of the round loop.
func (d *Dealer) Phase() Phase {
	return Phase(d.phase.Load())
}

func (d *Dealer) setPhase(p Phase) {
	if Phase(d.phase.Swap(int32(p))) != p {
		d.logger.Debug("Phase", "phase", p)
	}
}

// Terminate asks the dealer to end the game. It is safe to call any number
// of times from any goroutine, before or during Run.
func (d *Dealer) Terminate() {
	d.terminateOnce.Do(func() {
		d.logger.Info("Termination requested")
		close(d.terminate)
	})
}

// Run starts every player, plays rounds until no set can be formed or the
// game is terminated, announces the winners, then stops the players and
// waits for them.
func (d *Dealer) Run(ctx context.Context) (Result, error) {
	d.logger.Info("Dealer starting", "game", d.gameID, "players", len(d.players), "deck", d.deck.Len())

	playersCtx, stopPlayers := context.WithCancel(ctx)
	defer stopPlayers()
	g, playersCtx := errgroup.WithContext(playersCtx)
	for _, p := range d.players {
		g.Go(func() error { return p.Run(playersCtx) })
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-d.terminate:
			cancel()
		case <-loopCtx.Done():
		}
	}()

	if d.shuffleOnStart {
		d.deck.Shuffle()
	}
	for !d.shouldFinish(loopCtx) {
		d.dealPhase()
		d.runPhase(loopCtx)
		if d.shouldFinish(loopCtx) {
			break
		}
		// Claims that arrived with the countdown are judged on the table
		// they were made on.
		d.settleRemaining(true)
		if d.shouldFinish(loopCtx) {
			break
		}
		d.reshufflePhase()
	}

	d.setPhase(PhaseEnding)
	terminated := loopCtx.Err() != nil
	d.claims.Close()
	d.settleRemaining(!terminated)

	result := d.result(terminated)
	d.logger.Info("Game over", "winners", result.Winners, "scores", result.Scores, "sets", result.Sets, "terminated", terminated)
	d.display.AnnounceWinners(result.Winners)

	stopPlayers()
	err := g.Wait()
	d.logger.Info("Dealer terminated")
	return result, err
}

// shouldFinish reports whether the game is over: terminated, or no set can
// be formed from the cards still in play.
func (d *Dealer) shouldFinish(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	pool := append(d.deck.Cards(), d.table.Snapshot()...)
	return !d.cfg.Rules.AnySet(pool)
}

func (d *Dealer) dealPhase() {
	d.setPhase(PhaseDealing)
	d.fillTable()
}

// fillTable places cards from the deck head into empty slots in slot order.
// Slots stay empty once the deck runs out.
func (d *Dealer) fillTable() {
	for _, slot := range d.table.EmptySlots() {
		card, ok := d.deck.Draw()
		if !ok {
			return
		}
		if err := d.table.PlaceCard(card, slot); err != nil {
			d.logger.Error("Failed to place card", "card", card, "slot", slot, "error", err)
			d.deck.Return(card)
		}
	}
}

// runPhase settles claims until the countdown expires, the game is
// terminated or no set is left to find.
func (d *Dealer) runPhase(ctx context.Context) {
	d.setPhase(PhaseRunning)
	d.resetDeadline()
	d.updateCountdown(d.clock.Now())

	for {
		now := d.clock.Now()
		if d.cfg.timed() && !now.Before(d.deadline) {
			d.updateCountdown(now)
			return
		}

		timer := d.clock.NewTimer(d.pollInterval(now), "dealer", "poll")
		claim, err := d.claims.Dequeue(ctx, timer.C)
		timer.Stop()
		d.updateCountdown(d.clock.Now())
		if err != nil {
			return
		}

		if claim != nil && d.handle(claim) {
			return
		}
		if !d.cfg.timed() && !d.cfg.Rules.AnySet(d.table.Snapshot()) {
			d.logger.Debug("No set on the table")
			return
		}
	}
}

// handle settles claim and tops up the table. It reports whether the game
// can no longer continue.
func (d *Dealer) handle(claim *Claim) bool {
	if !d.settle(claim) {
		return false
	}
	d.fillTable()
	return d.shouldFinish(context.Background())
}

// settle validates claim against the current table and answers its player.
// It reports whether the claim scored.
func (d *Dealer) settle(claim *Claim) bool {
	p := claim.Player
	logger := d.logger.With("player", p.id, "seq", claim.Seq)

	if claim.Epoch != d.table.Epoch() {
		logger.Debug("Claim voided by reshuffle", "cards", claim.Cards)
		claim.resolve(VerdictCancelled)
		return false
	}

	current := len(claim.Cards) == table.MaxTokens && d.table.Holds(p.id, claim.Cards)
	valid := current && d.cfg.Rules.IsSet(claim.Cards[0], claim.Cards[1], claim.Cards[2])

	if valid {
		for _, card := range claim.Cards {
			if slot, ok := d.table.SlotOf(card); ok {
				d.table.RemoveCard(slot)
			}
		}
		score := p.addPoint()
		d.sets++
		p.setCooldown(AwaitingPoint)
		d.resetDeadline()
		logger.Info("Set collected", "cards", claim.Cards, "score", score)
	} else {
		if !current {
			d.stale++
			logger.Warn("Stale claim", "cards", claim.Cards)
		} else {
			logger.Info("Not a set", "cards", claim.Cards)
		}
		d.penalties++
		p.setCooldown(AwaitingPenalty)
	}

	if err := d.table.CheckInvariants(); err != nil {
		logger.Error("Table invariant violated", "error", err)
	}

	if valid {
		claim.resolve(VerdictPoint)
	} else {
		claim.resolve(VerdictPenalty)
	}
	return valid
}

// settleRemaining answers every claim still queued: settled in order when
// settle is set, cancelled otherwise.
func (d *Dealer) settleRemaining(settle bool) {
	for _, claim := range d.claims.Drain() {
		if settle {
			d.settle(claim)
			continue
		}
		claim.resolve(VerdictCancelled)
	}
}

// reshufflePhase returns every table card to the deck, which also clears
// all tokens, and shuffles.
func (d *Dealer) reshufflePhase() {
	d.setPhase(PhaseReshuffling)
	d.deck.Return(d.table.Clear()...)
	d.deck.Shuffle()
	d.reshuffles++
	d.logger.Debug("Reshuffled", "deck", d.deck.Len())
}

func (d *Dealer) resetDeadline() {
	d.deadline = d.clock.Now().Add(d.cfg.TurnTimeout)
}

// pollInterval bounds the wait on the claim queue by the refresh interval
// and the time left on the countdown.
func (d *Dealer) pollInterval(now time.Time) time.Duration {
	if !d.cfg.timed() {
		return d.cfg.Tick
	}
	remaining := d.deadline.Sub(now)
	interval := d.cfg.Tick
	if remaining <= d.cfg.WarningThreshold {
		interval = d.cfg.WarningTick
	}
	return max(min(interval, remaining), time.Millisecond)
}

func (d *Dealer) updateCountdown(now time.Time) {
	if !d.cfg.timed() {
		d.display.SetCountdown(now.Sub(d.deadline.Add(-d.cfg.TurnTimeout)), false)
		return
	}
	remaining := max(d.deadline.Sub(now), 0)
	d.display.SetCountdown(remaining, remaining <= d.cfg.WarningThreshold)
}

// Winners returns every player holding the highest score.
func (d *Dealer) Winners() []int {
	best := 0
	for _, p := range d.players {
		best = max(best, p.Score())
	}
	var winners []int
	for _, p := range d.players {
		if p.Score() == best {
			winners = append(winners, p.id)
		}
	}
	return winners
}

func (d *Dealer) result(terminated bool) Result {
	scores := make([]int, len(d.players))
	for i, p := range d.players {
		scores[i] = p.Score()
	}
	return Result{
		GameID:     d.gameID,
		Winners:    slices.Clone(d.Winners()),
		Scores:     scores,
		Sets:       d.sets,
		Penalties:  d.penalties,
		Stale:      d.stale,
		Reshuffles: d.reshuffles,
		Terminated: terminated,
	}
}
