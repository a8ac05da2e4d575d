package games

import (
	"slices"
	"testing"
)

func TestGenerateSequenceRoundOptions(t *testing.T) {
	for seed := uint64(0); seed < 2000; seed++ {
		r := GenerateSequenceRound(seeded(seed))

		if len(r.Options) != OptionCount {
			t.Fatalf("seed %d: got %d options, want %d", seed, len(r.Options), OptionCount)
		}
		seen := map[int]bool{}
		for _, o := range r.Options {
			if o <= 0 {
				t.Fatalf("seed %d: non-positive option %d in %v", seed, o, r.Options)
			}
			if seen[o] {
				t.Fatalf("seed %d: duplicate option %d in %v", seed, o, r.Options)
			}
			seen[o] = true
		}
		if !seen[r.Answer] {
			t.Fatalf("seed %d: answer %d missing from %v", seed, r.Answer, r.Options)
		}
		if r.Answer > SequenceCeiling {
			t.Fatalf("seed %d: answer %d above ceiling", seed, r.Answer)
		}
	}
}

func TestGenerateSequenceRoundSeries(t *testing.T) {
	for seed := uint64(0); seed < 500; seed++ {
		r := GenerateSequenceRound(seeded(seed))
		s := r.Series
		switch r.Kind {
		case KindArithmetic:
			d := s[1] - s[0]
			if s[2]-s[1] != d || s[3]-s[2] != d || r.Answer-s[3] != d {
				t.Errorf("seed %d: arithmetic series %v -> %d is not evenly spaced", seed, s, r.Answer)
			}
		case KindGeometric:
			q := s[1] / s[0]
			if s[2] != s[1]*q || s[3] != s[2]*q || r.Answer != s[3]*q {
				t.Errorf("seed %d: geometric series %v -> %d", seed, s, r.Answer)
			}
		case KindFibonacci:
			if s[2] != s[0]+s[1] || s[3] != s[1]+s[2] || r.Answer != s[2]+s[3] {
				t.Errorf("seed %d: fibonacci series %v -> %d", seed, s, r.Answer)
			}
		case KindAlternating:
			if r.Answer-s[2] != s[2]-s[0] {
				t.Errorf("seed %d: alternating series %v -> %d", seed, s, r.Answer)
			}
		default:
			t.Errorf("seed %d: unknown kind %q", seed, r.Kind)
		}
	}
}

func TestGenerateSequenceRoundFallsBackAboveCeiling(t *testing.T) {
	// geometric with a=4, r=3 gives 324, which must fall back to arithmetic.
	r := GenerateSequenceRound(&scriptedRand{vals: []int{1, 3, 1}})

	if r.Kind != KindArithmetic {
		t.Fatalf("kind = %q, want arithmetic", r.Kind)
	}
	if r.Series != [4]int{1, 3, 5, 7} || r.Answer != 9 {
		t.Fatalf("got %v -> %d, want [1 3 5 7] -> 9", r.Series, r.Answer)
	}
}

func TestSequenceOptionsFiller(t *testing.T) {
	// A source stuck at zero keeps proposing the same decoy, forcing the filler.
	r := GenerateSequenceRound(&scriptedRand{})

	got := slices.Clone(r.Options)
	slices.Sort(got)
	if want := []int{8, 9, 10, 11}; !slices.Equal(got, want) {
		t.Fatalf("options = %v, want %v", got, want)
	}
}

func TestSequenceRoundIsCorrect(t *testing.T) {
	r := SequenceRound{Answer: 5, Options: []int{3, 5, 7, 9}}
	if !r.IsCorrect(1) || r.IsCorrect(0) || r.IsCorrect(-1) || r.IsCorrect(4) {
		t.Errorf("IsCorrect mismatch for %v", r.Options)
	}
}
