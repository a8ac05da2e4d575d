package main

import (
	"strings"
	"testing"
	"unicode"

	"gamehall/internal/games"
)

func TestWordsNoDuplicates(t *testing.T) {
	words, err := loadWords("data/words.json")
	if err != nil {
		t.Fatalf("failed to load words.json: %v", err)
	}
	seen := make(map[string]struct{})
	for _, entry := range words {
		w := strings.ToUpper(strings.TrimSpace(entry.Word))
		if _, ok := seen[w]; ok {
			t.Errorf("duplicate word in words.json: %s", w)
		}
		seen[w] = struct{}{}
	}
}

func TestWordsAreLettersWithHints(t *testing.T) {
	words, err := loadWords("data/words.json")
	if err != nil {
		t.Fatalf("failed to load words.json: %v", err)
	}
	for _, entry := range words {
		if strings.IndexFunc(entry.Word, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
			t.Errorf("word %q contains non-letters", entry.Word)
		}
		if strings.TrimSpace(entry.Hint) == "" {
			t.Errorf("word %q has no hint", entry.Word)
		}
	}
}

func TestCountriesAreUniqueAlpha2(t *testing.T) {
	subjects, err := loadSubjects("data/countries.json")
	if err != nil {
		t.Fatalf("failed to load countries.json: %v", err)
	}
	if len(subjects) < 2*games.OptionCount {
		t.Fatalf("only %d subjects, trivia needs a deeper pool", len(subjects))
	}
	names := make(map[string]struct{})
	for _, s := range subjects {
		if len(s.ID) != 2 || strings.ToUpper(s.ID) != s.ID {
			t.Errorf("subject id %q is not an upper-case alpha-2 code", s.ID)
		}
		if _, ok := names[s.Name]; ok {
			t.Errorf("duplicate subject name %q", s.Name)
		}
		names[s.Name] = struct{}{}
	}
}
