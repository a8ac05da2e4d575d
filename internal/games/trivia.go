package games

import (
	"fmt"

	"github.com/samber/lo"

	"gamehall/internal/types"
)

// FlagImageURL is the CDN pattern used to render a subject's flag.
const FlagImageURL = "https://flagsapi.com/%s/flat/64.png"

// TriviaRound asks which subject a flag belongs to.
type TriviaRound struct {
	SubjectID string   `json:"-"`
	ImageURL  string   `json:"imageUrl"`
	Answer    string   `json:"-"`
	Options   []string `json:"options"`
}

// IsCorrect reports whether the option at index i is the answer.
func (r TriviaRound) IsCorrect(i int) bool {
	return i >= 0 && i < len(r.Options) && r.Options[i] == r.Answer
}

// NumOptions returns the number of options offered.
func (r TriviaRound) NumOptions() int { return len(r.Options) }

// TriviaPicker draws rounds from a fixed pool of subjects.
type TriviaPicker struct {
	subjects []types.Subject
	rng      Rand
}

// NewTriviaPicker returns a picker over subjects.
func NewTriviaPicker(subjects []types.Subject, r Rand) *TriviaPicker {
	return &TriviaPicker{subjects: subjects, rng: r}
}

// Size returns the number of subjects in the pool.
func (p *TriviaPicker) Size() int { return len(p.subjects) }

// GenerateRound samples a round whose subject is not in exclude. It fails with
// ErrInsufficientSubjects when fewer than OptionCount subjects are eligible.
func (p *TriviaPicker) GenerateRound(exclude map[string]struct{}) (TriviaRound, error) {
	eligible := lo.Filter(p.subjects, func(s types.Subject, _ int) bool {
		_, skip := exclude[s.ID]
		return !skip
	})
	if len(eligible) < OptionCount {
		return TriviaRound{}, fmt.Errorf("%w: %d eligible, need %d", ErrInsufficientSubjects, len(eligible), OptionCount)
	}

	// Partial Fisher–Yates: the first OptionCount slots become a uniform sample.
	for i := 0; i < OptionCount; i++ {
		j := i + p.rng.IntN(len(eligible)-i)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}
	picked := eligible[:OptionCount]
	correct := picked[0]

	options := lo.Map(picked, func(s types.Subject, _ int) string { return s.Name })
	shuffle(p.rng, options)

	return TriviaRound{
		SubjectID: correct.ID,
		ImageURL:  fmt.Sprintf(FlagImageURL, correct.ID),
		Answer:    correct.Name,
		Options:   options,
	}, nil
}
