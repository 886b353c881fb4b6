// Package table holds the shared slot state of a game: which card lies in
// which slot and which slots each player has marked with a token.
package table

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lox/setforbots/internal/cards"
	"github.com/lox/setforbots/internal/display"
)

// MaxTokens is the number of slots a player may mark at once.
const MaxTokens = 3

var (
	ErrSlotOutOfRange = errors.New("slot out of range")
	ErrSlotOccupied   = errors.New("slot already holds a card")
	ErrCardOnTable    = errors.New("card already on the table")
	ErrSlotEmpty      = errors.New("slot holds no card")
	ErrTokenLimit     = errors.New("token limit reached")
	ErrSlotReserved   = errors.New("slot marked by another player")
)

// Options tune token placement rules.
type Options struct {
	// ExclusiveTokens rejects a token on a slot another player has marked.
	ExclusiveTokens bool
}

// Table is safe for concurrent use. One mutex guards the slot/card pairing
// and the token lists so readers never observe them out of step.
type Table struct {
	mu         sync.Mutex
	slotToCard []cards.Card
	cardToSlot map[cards.Card]int
	tokens     map[int][]int // player -> slots in mark order
	epoch      uint64        // bumped by Clear
	opts       Options
	display    display.Display
}

// New creates an empty table with size slots. Every mutation is forwarded to
// d, which may be nil.
func New(size int, d display.Display, opts Options) *Table {
	if d == nil {
		d = display.Nop{}
	}
	slots := make([]cards.Card, size)
	for i := range slots {
		slots[i] = cards.None
	}
	return &Table{
		slotToCard: slots,
		cardToSlot: make(map[cards.Card]int),
		tokens:     make(map[int][]int),
		opts:       opts,
		display:    d,
	}
}

// Size returns the number of slots.
func (t *Table) Size() int {
	return len(t.slotToCard)
}

func (t *Table) inRange(slot int) bool {
	return slot >= 0 && slot < len(t.slotToCard)
}

// PlaceCard puts card into an empty slot.
func (t *Table) PlaceCard(card cards.Card, slot int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.inRange(slot) {
		return fmt.Errorf("place card %d: %w: %d", card, ErrSlotOutOfRange, slot)
	}
	if t.slotToCard[slot] != cards.None {
		return fmt.Errorf("place card %d: %w: %d", card, ErrSlotOccupied, slot)
	}
	if s, ok := t.cardToSlot[card]; ok {
		return fmt.Errorf("place card %d: %w at slot %d", card, ErrCardOnTable, s)
	}

	t.slotToCard[slot] = card
	t.cardToSlot[card] = slot
	t.display.PlaceCard(card, slot)
	return nil
}

// RemoveCard clears slot and drops every token on it. Removing from an empty
// slot is a no-op.
func (t *Table) RemoveCard(slot int) (cards.Card, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.inRange(slot) || t.slotToCard[slot] == cards.None {
		return cards.None, false
	}

	for _, player := range t.playersOnLocked(slot) {
		t.removeTokenLocked(player, slot)
	}
	card := t.slotToCard[slot]
	t.slotToCard[slot] = cards.None
	delete(t.cardToSlot, card)
	t.display.RemoveCard(slot)
	return card, true
}

// PlaceToken marks slot for player and returns the player's token count.
// Marking a slot the player already holds is a no-op.
func (t *Table) PlaceToken(player, slot int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	held := t.tokens[player]
	if slices.Contains(held, slot) {
		return len(held), nil
	}
	if !t.inRange(slot) {
		return len(held), ErrSlotOutOfRange
	}
	if t.slotToCard[slot] == cards.None {
		return len(held), ErrSlotEmpty
	}
	if len(held) >= MaxTokens {
		return len(held), ErrTokenLimit
	}
	if t.opts.ExclusiveTokens && len(t.playersOnLocked(slot)) > 0 {
		return len(held), ErrSlotReserved
	}

	t.tokens[player] = append(held, slot)
	t.display.PlaceToken(player, slot)
	return len(held) + 1, nil
}

// RemoveToken unmarks slot for player. It reports whether a token was removed.
func (t *Table) RemoveToken(player, slot int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeTokenLocked(player, slot)
}

func (t *Table) removeTokenLocked(player, slot int) bool {
	held := t.tokens[player]
	i := slices.Index(held, slot)
	if i < 0 {
		return false
	}
	held = slices.Delete(held, i, i+1)
	if len(held) == 0 {
		delete(t.tokens, player)
	} else {
		t.tokens[player] = held
	}
	t.display.RemoveToken(player, slot)
	return true
}

// ClearTokens removes every token player holds.
func (t *Table) ClearTokens(player int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, slot := range slices.Clone(t.tokens[player]) {
		t.removeTokenLocked(player, slot)
	}
}

// Clear removes every card and token and returns the removed cards in slot
// order. It starts a new epoch.
func (t *Table) Clear() []cards.Card {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.epoch++
	removed := make([]cards.Card, 0, len(t.cardToSlot))
	for slot, card := range t.slotToCard {
		if card == cards.None {
			continue
		}
		for _, player := range t.playersOnLocked(slot) {
			t.removeTokenLocked(player, slot)
		}
		t.slotToCard[slot] = cards.None
		delete(t.cardToSlot, card)
		t.display.RemoveCard(slot)
		removed = append(removed, card)
	}
	return removed
}

func (t *Table) playersOnLocked(slot int) []int {
	var players []int
	for player, held := range t.tokens {
		if slices.Contains(held, slot) {
			players = append(players, player)
		}
	}
	slices.Sort(players)
	return players
}

// CardAt returns the card in slot.
func (t *Table) CardAt(slot int) (cards.Card, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.inRange(slot) || t.slotToCard[slot] == cards.None {
		return cards.None, false
	}
	return t.slotToCard[slot], true
}

// SlotOf returns the slot holding card.
func (t *Table) SlotOf(card cards.Card) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	slot, ok := t.cardToSlot[card]
	return slot, ok
}

// CountCards returns the number of occupied slots.
func (t *Table) CountCards() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cardToSlot)
}

// Snapshot returns a copy of the slot to card mapping; empty slots are None.
func (t *Table) Snapshot() []cards.Card {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.slotToCard)
}

// OccupiedSlots returns the indexes of slots that hold a card.
func (t *Table) OccupiedSlots() []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	slots := make([]int, 0, len(t.cardToSlot))
	for slot, card := range t.slotToCard {
		if card != cards.None {
			slots = append(slots, slot)
		}
	}
	return slots
}

// EmptySlots returns the indexes of slots without a card, in slot order.
func (t *Table) EmptySlots() []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var slots []int
	for slot, card := range t.slotToCard {
		if card == cards.None {
			slots = append(slots, slot)
		}
	}
	return slots
}

// Tokens returns the slots player has marked, in mark order.
func (t *Table) Tokens(player int) []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.tokens[player])
}

// HasToken reports whether player has marked slot.
func (t *Table) HasToken(player, slot int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Contains(t.tokens[player], slot)
}

// PlayersOn returns the players with a token on slot, sorted by id.
func (t *Table) PlayersOn(slot int) []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playersOnLocked(slot)
}

// Epoch counts the calls to Clear. A claim taken in an earlier epoch refers
// to a layout that no longer exists.
func (t *Table) Epoch() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.epoch
}

// Claim describes the cards a player has marked, resolved under one lock.
type Claim struct {
	Slots []int
	Cards []cards.Card
	Epoch uint64
}

// ClaimOf resolves the player's tokens to the cards they mark, in mark order.
func (t *Table) ClaimOf(player int) Claim {
	t.mu.Lock()
	defer t.mu.Unlock()

	held := t.tokens[player]
	c := Claim{Slots: slices.Clone(held), Cards: make([]cards.Card, len(held)), Epoch: t.epoch}
	for i, slot := range held {
		c.Cards[i] = t.slotToCard[slot]
	}
	return c
}

// Holds reports whether every card in cs is still on the table on a slot
// player has marked.
func (t *Table) Holds(player int, cs []cards.Card) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, card := range cs {
		slot, ok := t.cardToSlot[card]
		if !ok || !slices.Contains(t.tokens[player], slot) {
			return false
		}
	}
	return true
}

// CheckInvariants verifies the slot/card pairing and token rules.
func (t *Table) CheckInvariants() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	occupied := 0
	for slot, card := range t.slotToCard {
		if card == cards.None {
			continue
		}
		occupied++
		if s, ok := t.cardToSlot[card]; !ok || s != slot {
			return fmt.Errorf("slot %d holds card %d but card maps to slot %d (present=%v)", slot, card, s, ok)
		}
	}
	if occupied != len(t.cardToSlot) {
		return fmt.Errorf("%d occupied slots but %d cards mapped", occupied, len(t.cardToSlot))
	}
	for player, held := range t.tokens {
		if len(held) == 0 || len(held) > MaxTokens {
			return fmt.Errorf("player %d holds %d tokens", player, len(held))
		}
		for i, slot := range held {
			if !t.inRange(slot) || t.slotToCard[slot] == cards.None {
				return fmt.Errorf("player %d token on empty slot %d", player, slot)
			}
			if slices.Contains(held[i+1:], slot) {
				return fmt.Errorf("player %d holds slot %d twice", player, slot)
			}
		}
	}
	return nil
}
