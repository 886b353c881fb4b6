package cards

import (
	"math/rand/v2"
	"slices"
)

// Deck holds the cards that are not on the table. Cards are dealt from the
// head and returned to the tail.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a deck holding every card of r in id order.
func NewDeck(r Rules, rng *rand.Rand) *Deck {
	return NewDeckFrom(r.All(), rng)
}

// NewDeckFrom creates a deck with a fixed card order.
func NewDeckFrom(cards []Card, rng *rand.Rand) *Deck {
	return &Deck{cards: slices.Clone(cards), rng: rng}
}

// Shuffle randomizes the order of the remaining cards.
func (d *Deck) Shuffle() {
	if d.rng == nil {
		return
	}
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the head card.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return None, false
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, true
}

// Return puts cards back at the tail of the deck.
func (d *Deck) Return(cards ...Card) {
	for _, c := range cards {
		if c != None {
			d.cards = append(d.cards, c)
		}
	}
}

// Len returns the number of cards left.
func (d *Deck) Len() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left.
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining cards, head first.
func (d *Deck) Cards() []Card {
	return slices.Clone(d.cards)
}
