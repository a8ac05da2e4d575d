package games

import (
	"math"
	"slices"
)

// SequenceKind is the recurrence used to build a numeric series.
type SequenceKind string

const (
	KindArithmetic  SequenceKind = "arithmetic"
	KindGeometric   SequenceKind = "geometric"
	KindFibonacci   SequenceKind = "fibonacci"
	KindAlternating SequenceKind = "alternating"
)

var sequenceKinds = []SequenceKind{KindArithmetic, KindGeometric, KindFibonacci, KindAlternating}

const (
	// SequenceCeiling caps the answer of a series; larger answers fall back to arithmetic.
	SequenceCeiling = 200
	// OptionCount is the number of candidate answers offered per round.
	OptionCount = 4

	decoyAttempts = 20
)

// SequenceRound asks for the fifth value of a four element series.
type SequenceRound struct {
	Kind    SequenceKind `json:"kind"`
	Series  [4]int       `json:"series"`
	Answer  int          `json:"-"`
	Options []int        `json:"options"`
}

// IsCorrect reports whether the option at index i is the answer.
func (r SequenceRound) IsCorrect(i int) bool {
	return i >= 0 && i < len(r.Options) && r.Options[i] == r.Answer
}

// NumOptions returns the number of options offered.
func (r SequenceRound) NumOptions() int { return len(r.Options) }

// GenerateSequenceRound builds a playable round. It never fails.
func GenerateSequenceRound(r Rand) SequenceRound {
	kind := sequenceKinds[r.IntN(len(sequenceKinds))]
	series, answer := buildSeries(r, kind)
	if answer > SequenceCeiling {
		kind = KindArithmetic
		series, answer = buildSeries(r, kind)
	}
	return SequenceRound{
		Kind:    kind,
		Series:  series,
		Answer:  answer,
		Options: sequenceOptions(r, series, answer),
	}
}

func buildSeries(r Rand, kind SequenceKind) ([4]int, int) {
	switch kind {
	case KindGeometric:
		a := between(r, 1, 4)
		q := between(r, 2, 3)
		return [4]int{a, a * q, a * q * q, a * q * q * q}, a * q * q * q * q
	case KindFibonacci:
		a := between(r, 1, 10)
		b := between(r, a+1, a+5)
		n3 := a + b
		n4 := b + n3
		return [4]int{a, b, n3, n4}, n3 + n4
	case KindAlternating:
		a1 := between(r, 10, 20)
		d1 := between(r, 1, 3)
		a2 := between(r, 30, 40)
		d2 := between(r, 4, 6)
		return [4]int{a1, a2, a1 + d1, a2 + d2}, a1 + 2*d1
	default:
		a := between(r, 1, 20)
		d := between(r, 2, 9)
		return [4]int{a, a + d, a + 2*d, a + 3*d}, a + 4*d
	}
}

func sequenceOptions(r Rand, series [4]int, answer int) []int {
	opts := []int{answer}
	usable := func(v int) bool {
		return v > 0 && v != answer && !slices.Contains(opts, v) && !slices.Contains(series[:], v)
	}

	spread := max(1, int(math.Round(float64(answer)*0.1)))
	for attempt := 0; attempt < decoyAttempts && len(opts) < OptionCount; attempt++ {
		delta := between(r, -spread, spread)
		if delta == 0 {
			delta = between(r, 1, 3)
		}
		if v := answer + delta; usable(v) {
			opts = append(opts, v)
		}
	}

	// Deterministic filler: answer+1, answer-1, answer+2, ... always terminates
	// because the upward side is unbounded.
	for step := 1; len(opts) < OptionCount; step++ {
		for _, v := range []int{answer + step, answer - step} {
			if len(opts) < OptionCount && usable(v) {
				opts = append(opts, v)
			}
		}
	}

	shuffle(r, opts)
	return opts
}
