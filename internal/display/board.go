package display

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/lox/setforbots/internal/cards"
)

// State is a point-in-time copy of everything a Board has been told.
type State struct {
	Slots     []cards.Card          `json:"slots"`
	Tokens    map[int][]int         `json:"tokens"` // slot -> players in mark order
	Scores    map[int]int           `json:"scores"`
	Freezes   map[int]time.Duration `json:"freezes"`
	Countdown time.Duration         `json:"countdown"`
	Warn      bool                  `json:"warn"`
	Winners   []int                 `json:"winners,omitempty"`
	Finished  bool                  `json:"finished"`
}

// Frozen reports whether player is currently in a hold.
func (s State) Frozen(player int) bool {
	d, ok := s.Freezes[player]
	return ok && d != NotFrozen
}

// Board mirrors the game as seen through Display notifications. Renderers
// read consistent snapshots from it and wait on Changed for redraws.
type Board struct {
	mu      sync.RWMutex
	state   State
	changed chan struct{}
}

// NewBoard creates a mirror for a table with the given number of slots.
func NewBoard(tableSize int) *Board {
	slots := make([]cards.Card, tableSize)
	for i := range slots {
		slots[i] = cards.None
	}
	return &Board{
		state: State{
			Slots:   slots,
			Tokens:  make(map[int][]int),
			Scores:  make(map[int]int),
			Freezes: make(map[int]time.Duration),
		},
		changed: make(chan struct{}, 1),
	}
}

// Changed is signalled (coalesced) after every mutation.
func (b *Board) Changed() <-chan struct{} {
	return b.changed
}

// Snapshot returns a deep copy of the current state.
func (b *Board) Snapshot() State {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := b.state
	s.Slots = slices.Clone(b.state.Slots)
	s.Tokens = make(map[int][]int, len(b.state.Tokens))
	for slot, players := range b.state.Tokens {
		s.Tokens[slot] = slices.Clone(players)
	}
	s.Scores = maps.Clone(b.state.Scores)
	s.Freezes = maps.Clone(b.state.Freezes)
	s.Winners = slices.Clone(b.state.Winners)
	return s
}

func (b *Board) update(fn func(s *State)) {
	b.mu.Lock()
	fn(&b.state)
	b.mu.Unlock()

	select {
	case b.changed <- struct{}{}:
	default:
	}
}

func (b *Board) PlaceCard(card cards.Card, slot int) {
	b.update(func(s *State) {
		if slot >= 0 && slot < len(s.Slots) {
			s.Slots[slot] = card
		}
	})
}

func (b *Board) RemoveCard(slot int) {
	b.update(func(s *State) {
		if slot >= 0 && slot < len(s.Slots) {
			s.Slots[slot] = cards.None
		}
		delete(s.Tokens, slot)
	})
}

func (b *Board) PlaceToken(player, slot int) {
	b.update(func(s *State) {
		if !slices.Contains(s.Tokens[slot], player) {
			s.Tokens[slot] = append(s.Tokens[slot], player)
		}
	})
}

func (b *Board) RemoveToken(player, slot int) {
	b.update(func(s *State) {
		players := slices.DeleteFunc(s.Tokens[slot], func(p int) bool { return p == player })
		if len(players) == 0 {
			delete(s.Tokens, slot)
			return
		}
		s.Tokens[slot] = players
	})
}

func (b *Board) SetScore(player, score int) {
	b.update(func(s *State) { s.Scores[player] = score })
}

func (b *Board) SetFreeze(player int, remaining time.Duration) {
	b.update(func(s *State) { s.Freezes[player] = remaining })
}

func (b *Board) SetCountdown(remaining time.Duration, warn bool) {
	b.update(func(s *State) {
		s.Countdown = remaining
		s.Warn = warn
	})
}

func (b *Board) AnnounceWinners(players []int) {
	b.update(func(s *State) {
		s.Winners = slices.Clone(players)
		s.Finished = true
	})
}
