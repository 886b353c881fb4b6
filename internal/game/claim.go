package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lox/setforbots/internal/cards"
)

// Verdict is the dealer's answer to a claim.
type Verdict int

const (
	VerdictPoint Verdict = iota
	VerdictPenalty
	// VerdictCancelled answers claims still queued when the game is
	// terminated and claims read from the table before a reshuffle. It
	// carries no point and no penalty.
	VerdictCancelled
)

func (v Verdict) String() string {
	switch v {
	case VerdictPoint:
		return "point"
	case VerdictPenalty:
		return "penalty"
	case VerdictCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Claim is a player's three marked cards submitted for validation.
type Claim struct {
	Player *Player
	Slots  []int
	Cards  []cards.Card
	Seq    uint64 // position in settlement order, assigned on dequeue
	Epoch  uint64 // table epoch the cards were read in

	verdict chan Verdict
	once    sync.Once
}

func newClaim(p *Player, slots []int, cs []cards.Card) *Claim {
	return &Claim{
		Player:  p,
		Slots:   slots,
		Cards:   cs,
		verdict: make(chan Verdict, 1),
	}
}

// resolve delivers v to the waiting player. Only the first call has effect.
func (c *Claim) resolve(v Verdict) {
	c.once.Do(func() {
		c.verdict <- v
	})
}

// Verdict returns the channel the claiming player waits on.
func (c *Claim) Verdict() <-chan Verdict {
	return c.verdict
}

var ErrQueueClosed = errors.New("claim queue closed")

// ClaimQueue is a FIFO of pending claims with many producers (players) and
// one consumer (the dealer).
type ClaimQueue struct {
	// mu is held shared by senders and exclusively by Close, so a send
	// either lands before Close returns or is rejected.
	mu        sync.RWMutex
	claims    chan *Claim
	closed    chan struct{}
	closeOnce sync.Once
	seq       atomic.Uint64
}

// NewClaimQueue creates a queue that can hold capacity claims without
// blocking. Each player has at most one claim outstanding, so the number of
// players is enough.
func NewClaimQueue(capacity int) *ClaimQueue {
	return &ClaimQueue{
		claims: make(chan *Claim, max(capacity, 1)),
		closed: make(chan struct{}),
	}
}

// Enqueue adds c to the tail of the queue.
func (q *ClaimQueue) Enqueue(ctx context.Context, c *Claim) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	select {
	case <-q.closed:
		return ErrQueueClosed
	default:
	}

	select {
	case q.claims <- c:
		return nil
	case <-q.closed:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue pops the head claim, waiting until one arrives, timeout fires or
// ctx is done. A timeout returns a nil claim and nil error. A nil timeout
// channel waits without limit.
func (q *ClaimQueue) Dequeue(ctx context.Context, timeout <-chan time.Time) (*Claim, error) {
	select {
	case c := <-q.claims:
		c.Seq = q.seq.Add(1)
		return c, nil
	case <-timeout:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting claims and waits for senders already in Enqueue.
// Every claim Enqueue accepted is then available to Drain.
func (q *ClaimQueue) Close() {
	q.closeOnce.Do(func() { close(q.closed) })
	q.mu.Lock()
	q.mu.Unlock()
}

// Drain removes and returns every queued claim without waiting.
func (q *ClaimQueue) Drain() []*Claim {
	var drained []*Claim
	for {
		select {
		case c := <-q.claims:
			drained = append(drained, c)
		default:
			return drained
		}
	}
}

// Len returns the number of queued claims.
func (q *ClaimQueue) Len() int {
	return len(q.claims)
}
