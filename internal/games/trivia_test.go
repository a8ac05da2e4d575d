package games

import (
	"errors"
	"fmt"
	"testing"

	"gamehall/internal/types"
)

func testSubjects(n int) []types.Subject {
	out := make([]types.Subject, n)
	for i := range out {
		out[i] = types.Subject{ID: fmt.Sprintf("S%02d", i), Name: fmt.Sprintf("Subject %d", i)}
	}
	return out
}

func TestTriviaRoundNeverUsesExcludedSubject(t *testing.T) {
	subjects := testSubjects(20)
	exclude := map[string]struct{}{}
	for i := 0; i < 8; i++ {
		exclude[subjects[i].ID] = struct{}{}
	}
	for seed := uint64(0); seed < 300; seed++ {
		p := NewTriviaPicker(subjects, seeded(seed))
		r, err := p.GenerateRound(exclude)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if _, bad := exclude[r.SubjectID]; bad {
			t.Fatalf("seed %d: excluded subject %s returned", seed, r.SubjectID)
		}
		if len(r.Options) != OptionCount {
			t.Fatalf("seed %d: %d options", seed, len(r.Options))
		}
		seen := map[string]bool{}
		for _, o := range r.Options {
			if seen[o] {
				t.Fatalf("seed %d: duplicate option %s", seed, o)
			}
			seen[o] = true
		}
		if !seen[r.Answer] {
			t.Fatalf("seed %d: answer %s not in options %v", seed, r.Answer, r.Options)
		}
		if r.ImageURL != fmt.Sprintf(FlagImageURL, r.SubjectID) {
			t.Fatalf("seed %d: image url %s", seed, r.ImageURL)
		}
	}
}

func TestTriviaRoundPreconditionFailure(t *testing.T) {
	subjects := testSubjects(20)
	exclude := map[string]struct{}{}
	for i := 0; i < 17; i++ {
		exclude[subjects[i].ID] = struct{}{}
	}
	p := NewTriviaPicker(subjects, seeded(1))
	if _, err := p.GenerateRound(exclude); !errors.Is(err, ErrInsufficientSubjects) {
		t.Fatalf("GenerateRound = %v, want ErrInsufficientSubjects", err)
	}

	delete(exclude, subjects[0].ID)
	r, err := p.GenerateRound(exclude)
	if err != nil {
		t.Fatalf("exactly four eligible should work: %v", err)
	}
	if _, bad := exclude[r.SubjectID]; bad {
		t.Fatalf("excluded subject %s returned", r.SubjectID)
	}
}

func TestTriviaPickerDoesNotMutatePool(t *testing.T) {
	subjects := testSubjects(6)
	p := NewTriviaPicker(subjects, seeded(9))
	for i := 0; i < 20; i++ {
		if _, err := p.GenerateRound(nil); err != nil {
			t.Fatal(err)
		}
	}
	for i, s := range subjects {
		if s.ID != fmt.Sprintf("S%02d", i) {
			t.Fatalf("pool reordered at %d: %v", i, subjects)
		}
	}
}
