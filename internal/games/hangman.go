package games

import (
	"errors"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"

	"gamehall/internal/types"
)

const (
	// MaxWrongGuesses ends a puzzle as lost.
	MaxWrongGuesses = 6
	// MaxStreak is the number of consecutive wins that banks the streak automatically.
	MaxStreak = 5
)

// WordPuzzle tracks the letters guessed against one target word.
type WordPuzzle struct {
	Target       string
	Guessed      map[rune]struct{}
	WrongGuesses int
	MaxWrong     int
}

// NewWordPuzzle starts a puzzle for target (upper-cased).
func NewWordPuzzle(target string) *WordPuzzle {
	return &WordPuzzle{
		Target:   strings.ToUpper(target),
		Guessed:  make(map[rune]struct{}),
		MaxWrong: MaxWrongGuesses,
	}
}

// Guess records letter. changed is false when the letter was already guessed.
func (p *WordPuzzle) Guess(letter rune) (hit, changed bool) {
	letter = unicode.ToUpper(letter)
	if _, seen := p.Guessed[letter]; seen {
		return strings.ContainsRune(p.Target, letter), false
	}
	p.Guessed[letter] = struct{}{}
	if strings.ContainsRune(p.Target, letter) {
		return true, true
	}
	p.WrongGuesses++
	return false, true
}

// Solved reports whether every letter of the target has been guessed.
func (p *WordPuzzle) Solved() bool {
	if p.Target == "" {
		return false
	}
	for _, c := range p.Target {
		if _, ok := p.Guessed[c]; !ok {
			return false
		}
	}
	return true
}

// Mask renders the target with unguessed letters as underscores, e.g. "C _ T".
func (p *WordPuzzle) Mask() string {
	parts := make([]string, 0, utf8.RuneCountInString(p.Target))
	for _, c := range p.Target {
		if _, ok := p.Guessed[c]; ok {
			parts = append(parts, string(c))
		} else {
			parts = append(parts, "_")
		}
	}
	return strings.Join(parts, " ")
}

// Letters returns the guessed letters in alphabetical order.
func (p *WordPuzzle) Letters() []string {
	letters := lo.MapToSlice(p.Guessed, func(c rune, _ struct{}) string { return string(c) })
	slices.Sort(letters)
	return letters
}

// Hangman is the letter-guessing game with its win-streak machine.
type Hangman struct {
	words []types.WordEntry
	rng   Rand

	Puzzle *WordPuzzle
	Hint   string
	Streak int
	State  State
	// Banked is the streak most recently paid out to the ranking.
	Banked int
}

// NewHangman starts a hangman session with a random word from words.
func NewHangman(words []types.WordEntry, r Rand) (*Hangman, error) {
	if len(words) == 0 {
		return nil, errors.New("hangman needs at least one word")
	}
	h := &Hangman{words: words, rng: r}
	h.newWord()
	return h, nil
}

// newWord picks a word different from the current one when possible.
func (h *Hangman) newWord() {
	pool := h.words
	if h.Puzzle != nil && len(h.words) > 1 {
		prev := h.Puzzle.Target
		pool = lo.Filter(h.words, func(e types.WordEntry, _ int) bool {
			return !strings.EqualFold(e.Word, prev)
		})
	}
	entry := pool[h.rng.IntN(len(pool))]
	h.Puzzle = NewWordPuzzle(entry.Word)
	h.Hint = entry.Hint
	h.State = StatePlaying
}

// Guess submits a single letter. Repeating a letter is a no-op.
func (h *Hangman) Guess(letter string) (Report, error) {
	if h.State != StatePlaying {
		return Report{}, ErrNotPlaying
	}
	c, size := utf8.DecodeRuneInString(strings.TrimSpace(letter))
	if c == utf8.RuneError || size != len(strings.TrimSpace(letter)) || !unicode.IsLetter(c) {
		return Report{}, ErrInvalidGuess
	}

	hit, changed := h.Puzzle.Guess(c)
	if !changed {
		return Report{}, nil
	}
	switch {
	case !hit && h.Puzzle.WrongGuesses >= h.Puzzle.MaxWrong:
		return h.lose(), nil
	case hit && h.Puzzle.Solved():
		return h.win(), nil
	}
	return Report{}, nil
}

func (h *Hangman) result(points int) *ResultRecord {
	return &ResultRecord{
		Game:   GameHangman,
		Points: points,
		Details: map[string]any{
			"word":   h.Puzzle.Target,
			"errors": h.Puzzle.WrongGuesses,
		},
	}
}

func (h *Hangman) lose() Report {
	rep := Report{Result: h.result(0), Ranking: points(0)}
	h.Streak = 0
	h.State = StateLost
	return rep
}

func (h *Hangman) win() Report {
	rep := Report{Result: h.result(1)}
	h.Streak++
	if h.Streak >= MaxStreak {
		rep.Ranking = points(h.Streak)
		h.Banked = h.Streak
		h.Streak = 0
		h.State = StateMaxStreak
		return rep
	}
	h.State = StateWon
	return rep
}

// Continue keeps the streak alive with a new word.
func (h *Hangman) Continue() error {
	if h.State != StateWon {
		return ErrInvalidTransition
	}
	h.newWord()
	return nil
}

// Bank pays the current streak into the ranking and asks whether to replay.
func (h *Hangman) Bank() (Report, error) {
	if h.State != StateWon {
		return Report{}, ErrInvalidTransition
	}
	rep := Report{Ranking: points(h.Streak)}
	h.Banked = h.Streak
	h.Streak = 0
	h.State = StateAskReplay
	return rep, nil
}

// Replay starts over with a zero streak.
func (h *Hangman) Replay() error {
	switch h.State {
	case StateLost, StateAskReplay, StateMaxStreak, StatePlaying:
		h.Streak = 0
		h.newWord()
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Quit ends the session after the replay prompt.
func (h *Hangman) Quit() error {
	if h.State != StateAskReplay {
		return ErrInvalidTransition
	}
	h.State = StateFinished
	return nil
}
