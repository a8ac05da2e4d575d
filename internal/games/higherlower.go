package games

import (
	"context"
	"fmt"
)

// Guess is a higher-or-lower prediction about the next card.
type Guess string

const (
	GuessHigher Guess = "higher"
	GuessLower  Guess = "lower"
)

// ParseGuess validates a guess coming from a client.
func ParseGuess(s string) (Guess, error) {
	switch g := Guess(s); g {
	case GuessHigher, GuessLower:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGuess, s)
	}
}

// HigherLower is one play-through of the higher-or-lower card game. A tie is
// neutral: it neither scores nor ends the session. The session ends only when
// the deck runs out.
type HigherLower struct {
	source CardSource

	Current  Card  `json:"current"`
	Next     *Card `json:"next,omitempty"`
	Score    int   `json:"score"`
	Round    int   `json:"round"`
	Finished bool  `json:"finished"`
}

// Turn describes how a single guess resolved.
type Turn struct {
	Guess      Guess      `json:"guess"`
	Previous   Card       `json:"previous"`
	Drawn      Card       `json:"drawn"`
	Comparison Comparison `json:"comparison"`
	Correct    bool       `json:"correct"`
	Report     Report     `json:"-"`
}

// NewHigherLower deals the opening card from src.
func NewHigherLower(ctx context.Context, src CardSource) (*HigherLower, error) {
	first, err := src.Draw(ctx)
	if err != nil {
		return nil, fmt.Errorf("deal opening card: %w", err)
	}
	return &HigherLower{source: src, Current: first}, nil
}

// Guess deals the next card and scores the prediction. On a draw failure the
// session is left exactly as it was.
func (g *HigherLower) Guess(ctx context.Context, guess Guess) (Turn, error) {
	if g.Finished {
		return Turn{}, ErrSessionFinished
	}
	if _, err := ParseGuess(string(guess)); err != nil {
		return Turn{}, err
	}

	current := g.Current
	if g.Next != nil {
		current = *g.Next
	}
	drawn, err := g.source.Draw(ctx)
	if err != nil {
		return Turn{}, err
	}

	cmp := Compare(current, drawn)
	correct := (guess == GuessHigher && cmp == Higher) || (guess == GuessLower && cmp == Lower)

	g.Current = current
	g.Next = &drawn
	g.Round++
	if correct {
		g.Score++
	}

	turn := Turn{Guess: guess, Previous: current, Drawn: drawn, Comparison: cmp, Correct: correct}
	if g.source.Remaining() == 0 {
		g.Finished = true
		turn.Report = Report{
			Result:  &ResultRecord{Game: GameHigherLower, Points: g.Score, Details: map[string]any{"rounds": g.Round}},
			Ranking: points(g.Score),
		}
	}
	return turn, nil
}

// Remaining returns how many cards are left to deal.
func (g *HigherLower) Remaining() int {
	return g.source.Remaining()
}
