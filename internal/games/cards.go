package games

import (
	"context"
	"fmt"
)

// Card is a playing card. Rank is one of A, 2-10, J, Q, K; Suit is one of S, H, D, C.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// String returns a short code like "7S" or "KH".
func (c Card) String() string {
	return c.Rank + c.Suit
}

var (
	cardSuits = []string{"S", "H", "D", "C"}
	cardRanks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

// RankValue maps a rank to 1..13 (Ace low, King high). Unknown ranks return 0.
func (c Card) RankValue() int {
	for i, r := range cardRanks {
		if r == c.Rank {
			return i + 1
		}
	}
	return 0
}

// ParseCard reads a code produced by Card.String.
func ParseCard(code string) (Card, error) {
	if len(code) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", code)
	}
	c := Card{Rank: code[:len(code)-1], Suit: code[len(code)-1:]}
	if c.RankValue() == 0 {
		return Card{}, fmt.Errorf("invalid card rank %q", c.Rank)
	}
	for _, s := range cardSuits {
		if s == c.Suit {
			return c, nil
		}
	}
	return Card{}, fmt.Errorf("invalid card suit %q", c.Suit)
}

// Comparison is the outcome of comparing the next card against the current one.
type Comparison string

const (
	Higher Comparison = "higher"
	Lower  Comparison = "lower"
	Tie    Comparison = "tie"
)

// Compare reports whether next ranks higher, lower or equal to current.
// Suits never matter.
func Compare(current, next Card) Comparison {
	switch a, b := current.RankValue(), next.RankValue(); {
	case b > a:
		return Higher
	case b < a:
		return Lower
	default:
		return Tie
	}
}

// CardSource deals cards without replacement. Draw may fail when the source is
// remote; the error is surfaced unchanged.
type CardSource interface {
	Draw(ctx context.Context) (Card, error)
	Remaining() int
}

// Deck is a single 52-card deck consumed from the front.
type Deck struct {
	cards []Card
	next  int
}

// NewDeck returns a freshly shuffled 52-card deck.
func NewDeck(r Rand) *Deck {
	cards := make([]Card, 0, len(cardSuits)*len(cardRanks))
	for _, suit := range cardSuits {
		for _, rank := range cardRanks {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	shuffle(r, cards)
	return &Deck{cards: cards}
}

// NewDeckFrom returns a deck dealing exactly the given cards in order.
func NewDeckFrom(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

func (d *Deck) Draw(ctx context.Context) (Card, error) {
	if err := ctx.Err(); err != nil {
		return Card{}, err
	}
	if d.next >= len(d.cards) {
		return Card{}, ErrDeckExhausted
	}
	c := d.cards[d.next]
	d.next++
	return c, nil
}

func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
