package display

import (
	"time"

	"github.com/lox/setforbots/internal/cards"
)

// NotFrozen is passed to SetFreeze when a player's hold has ended.
const NotFrozen time.Duration = -1

// Display receives notifications from the game core. Every method is
// fire-and-forget: implementations must return promptly and never call back
// into the game.
type Display interface {
	PlaceCard(card cards.Card, slot int)
	RemoveCard(slot int)
	PlaceToken(player, slot int)
	RemoveToken(player, slot int)
	SetScore(player, score int)
	SetFreeze(player int, remaining time.Duration)
	SetCountdown(remaining time.Duration, warn bool)
	AnnounceWinners(players []int)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) PlaceCard(cards.Card, int) {}
func (Nop) RemoveCard(int) {}
func (Nop) PlaceToken(int, int) {}
func (Nop) RemoveToken(int, int) {}
func (Nop) SetScore(int, int) {}
func (Nop) SetFreeze(int, time.Duration) {}
func (Nop) SetCountdown(time.Duration, bool) {}
func (Nop) AnnounceWinners([]int) {}

// Multi fans every notification out to several displays in order.
type Multi []Display

// NewMulti builds a Multi, dropping nil entries.
func NewMulti(displays ...Display) Multi {
	m := make(Multi, 0, len(displays))
	for _, d := range displays {
		if d != nil {
			m = append(m, d)
		}
	}
	return m
}

func (m Multi) PlaceCard(card cards.Card, slot int) {
	for _, d := range m {
		d.PlaceCard(card, slot)
	}
}

func (m Multi) RemoveCard(slot int) {
	for _, d := range m {
		d.RemoveCard(slot)
	}
}

func (m Multi) PlaceToken(player, slot int) {
	for _, d := range m {
		d.PlaceToken(player, slot)
	}
}

func (m Multi) RemoveToken(player, slot int) {
	for _, d := range m {
		d.RemoveToken(player, slot)
	}
}

func (m Multi) SetScore(player, score int) {
	for _, d := range m {
		d.SetScore(player, score)
	}
}

func (m Multi) SetFreeze(player int, remaining time.Duration) {
	for _, d := range m {
		d.SetFreeze(player, remaining)
	}
}

func (m Multi) SetCountdown(remaining time.Duration, warn bool) {
	for _, d := range m {
		d.SetCountdown(remaining, warn)
	}
}

func (m Multi) AnnounceWinners(players []int) {
	for _, d := range m {
		d.AnnounceWinners(players)
	}
}
