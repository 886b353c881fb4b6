package cards

import (
	"fmt"
	"strconv"
	"strings"
)

// Card identifies one card of the deck. Its features are the base-FeatureSize
// digits of the id, least significant first.
type Card int

// None marks the absence of a card.
const None Card = -1

func (c Card) String() string {
	if c < 0 {
		return "--"
	}
	return strconv.Itoa(int(c))
}

// Feature indexes for the classic four-feature deck.
const (
	Number = iota
	Colour
	Shape
	Shading
)

var (
	colourNames  = []string{"red", "green", "purple"}
	shapeNames   = []string{"diamond", "oval", "squiggle"}
	shadingNames = []string{"solid", "striped", "open"}
)

// Describe renders a card for logs, e.g. "2 green striped ovals". Decks that
// are not the classic 4x3 fall back to the raw feature digits.
func (r Rules) Describe(c Card) string {
	if !r.Valid(c) {
		return c.String()
	}
	f := r.Features(c)
	if !r.IsClassic() {
		var b strings.Builder
		for _, v := range f {
			b.WriteString(strconv.Itoa(v))
		}
		return b.String()
	}

	count := f[Number] + 1
	shape := shapeNames[f[Shape]]
	if count > 1 {
		shape += "s"
	}
	return fmt.Sprintf("%d %s %s %s", count, colourNames[f[Colour]], shadingNames[f[Shading]], shape)
}
