package cards

import (
	"errors"
	"fmt"
)

// Rules describes the deck composition: every combination of FeatureCount
// features, each taking one of FeatureSize values, appears exactly once.
type Rules struct {
	FeatureCount int
	FeatureSize  int
}

var ErrInvalidRules = errors.New("invalid deck rules")

// Classic returns the standard 81 card deck.
func Classic() Rules {
	return Rules{FeatureCount: 4, FeatureSize: 3}
}

// Validate reports whether the rules describe a playable deck.
func (r Rules) Validate() error {
	if r.FeatureCount < 1 || r.FeatureCount > 8 {
		return fmt.Errorf("%w: feature count %d outside 1..8", ErrInvalidRules, r.FeatureCount)
	}
	if r.FeatureSize < 3 || r.FeatureSize > 5 {
		return fmt.Errorf("%w: feature size %d outside 3..5", ErrInvalidRules, r.FeatureSize)
	}
	return nil
}

// IsClassic reports whether r is the 4x3 deck.
func (r Rules) IsClassic() bool {
	return r == Classic()
}

// DeckSize returns FeatureSize^FeatureCount.
func (r Rules) DeckSize() int {
	n := 1
	for range r.FeatureCount {
		n *= r.FeatureSize
	}
	return n
}

// All returns every card of the deck in id order.
func (r Rules) All() []Card {
	all := make([]Card, r.DeckSize())
	for i := range all {
		all[i] = Card(i)
	}
	return all
}

// Valid reports whether c is a card of this deck.
func (r Rules) Valid(c Card) bool {
	return c >= 0 && int(c) < r.DeckSize()
}

// Features decodes the feature values of c.
func (r Rules) Features(c Card) []int {
	f := make([]int, r.FeatureCount)
	n := int(c)
	for i := range f {
		f[i] = n % r.FeatureSize
		n /= r.FeatureSize
	}
	return f
}

// IsSet reports whether three distinct cards form a set: every feature is
// either the same on all three cards or different on all three.
func (r Rules) IsSet(a, b, c Card) bool {
	if a == b || b == c || a == c {
		return false
	}
	if !r.Valid(a) || !r.Valid(b) || !r.Valid(c) {
		return false
	}

	x, y, z := int(a), int(b), int(c)
	for range r.FeatureCount {
		fx, fy, fz := x%r.FeatureSize, y%r.FeatureSize, z%r.FeatureSize
		same := fx == fy && fy == fz
		distinct := fx != fy && fy != fz && fx != fz
		if !same && !distinct {
			return false
		}
		x, y, z = x/r.FeatureSize, y/r.FeatureSize, z/r.FeatureSize
	}
	return true
}

// Complete returns the unique card that forms a set with a and b. It is only
// defined for three-valued features; other decks return None.
func (r Rules) Complete(a, b Card) Card {
	if r.FeatureSize != 3 || a == b || !r.Valid(a) || !r.Valid(b) {
		return None
	}

	x, y := int(a), int(b)
	third, place := 0, 1
	for range r.FeatureCount {
		fx, fy := x%3, y%3
		third += ((6 - fx - fy) % 3) * place
		x, y, place = x/3, y/3, place*3
	}
	return Card(third)
}

// AnySet reports whether some three cards of pool form a set.
func (r Rules) AnySet(pool []Card) bool {
	if r.FeatureSize != 3 {
		return len(r.FindSets(pool, 1)) > 0
	}

	present := make(map[Card]bool, len(pool))
	for _, c := range pool {
		if c != None {
			present[c] = true
		}
	}
	for i, a := range pool {
		if a == None {
			continue
		}
		for _, b := range pool[i+1:] {
			if b == None || b == a {
				continue
			}
			if c := r.Complete(a, b); c != None && present[c] {
				return true
			}
		}
	}
	return false
}

// FindSets enumerates up to limit sets in pool (all of them when limit <= 0).
// Empty positions (None) are skipped.
func (r Rules) FindSets(pool []Card, limit int) [][3]Card {
	var sets [][3]Card
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			for k := j + 1; k < len(pool); k++ {
				if !r.IsSet(pool[i], pool[j], pool[k]) {
					continue
				}
				sets = append(sets, [3]Card{pool[i], pool[j], pool[k]})
				if limit > 0 && len(sets) >= limit {
					return sets
				}
			}
		}
	}
	return sets
}
