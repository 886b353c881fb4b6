package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// SeatKeys binds one key per table slot for a human player.
type SeatKeys struct {
	Player int
	Slots  []key.Binding
}

// KeyMap holds every human's slot bindings plus the quit key.
type KeyMap struct {
	Seats []SeatKeys
	Quit  key.Binding
}

// NewKeyMap builds bindings from per-player key lists, where keys[i] marks
// slot i.
func NewKeyMap(players map[int][]string) KeyMap {
	km := KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}

	ids := make([]int, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		seat := SeatKeys{Player: id}
		for slot, k := range players[id] {
			seat.Slots = append(seat.Slots, key.NewBinding(
				key.WithKeys(k),
				key.WithHelp(k, fmt.Sprintf("slot %d", slot+1)),
			))
		}
		km.Seats = append(km.Seats, seat)
	}
	return km
}

// Resolve maps a key press to the player and slot it marks.
func (k KeyMap) Resolve(msg tea.KeyMsg) (player, slot int, ok bool) {
	for _, seat := range k.Seats {
		for i, b := range seat.Slots {
			if key.Matches(msg, b) {
				return seat.Player, i, true
			}
		}
	}
	return 0, 0, false
}

// hints returns the keys that mark slot, one per human.
func (k KeyMap) hints(slot int) []string {
	var hints []string
	for _, seat := range k.Seats {
		if slot < len(seat.Slots) {
			hints = append(hints, seat.Slots[slot].Help().Key)
		}
	}
	return hints
}
