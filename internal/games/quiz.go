package games

import "fmt"

// QuizRounds is the fixed number of rounds in a quiz session.
const QuizRounds = 10

// Question is a multiple choice round.
type Question interface {
	IsCorrect(option int) bool
	NumOptions() int
}

// QuizSource produces the next question of a session.
type QuizSource[Q Question] func() (Q, error)

// Quiz drives a fixed-length multiple choice session:
//
//	playing -> showing_result -> playing ... -> showing_result -> finished -> ask_replay
type Quiz[Q Question] struct {
	name   string
	rounds int
	source QuizSource[Q]
	// restart is called before a session begins so sources can drop per-session state.
	restart func()

	Round   int   `json:"round"`
	Score   int   `json:"score"`
	State   State `json:"state"`
	Current Q     `json:"question"`
	Picked  *int  `json:"picked,omitempty"`
	Correct *bool `json:"correct,omitempty"`
}

// NewQuiz starts a session named name with the first question from source.
func NewQuiz[Q Question](name string, rounds int, source QuizSource[Q], restart func()) (*Quiz[Q], error) {
	if rounds <= 0 {
		return nil, fmt.Errorf("quiz %s needs a positive round count", name)
	}
	q := &Quiz[Q]{name: name, rounds: rounds, source: source, restart: restart}
	if err := q.begin(); err != nil {
		return nil, err
	}
	return q, nil
}

// Name returns the game name used when saving results.
func (q *Quiz[Q]) Name() string { return q.name }

// Rounds returns the session length.
func (q *Quiz[Q]) Rounds() int { return q.rounds }

func (q *Quiz[Q]) begin() error {
	if q.restart != nil {
		q.restart()
	}
	first, err := q.source()
	if err != nil {
		return err
	}
	q.Round = 0
	q.Score = 0
	q.Current = first
	q.Picked = nil
	q.Correct = nil
	q.State = StatePlaying
	return nil
}

// Pick answers the current question.
func (q *Quiz[Q]) Pick(option int) (bool, error) {
	if q.State != StatePlaying {
		return false, ErrNotPlaying
	}
	if option < 0 || option >= q.Current.NumOptions() {
		return false, ErrInvalidOption
	}
	ok := q.Current.IsCorrect(option)
	if ok {
		q.Score++
	}
	q.Picked = &option
	q.Correct = &ok
	q.State = StateShowingResult
	return ok, nil
}

// Advance moves past a shown result. After the last round the session is
// finished and the returned Report carries the cumulative score; it is only
// ever produced once per session.
func (q *Quiz[Q]) Advance() (Report, error) {
	if q.State != StateShowingResult {
		return Report{}, ErrNotShowingResult
	}
	if q.Round >= q.rounds-1 {
		q.State = StateFinished
		return Report{
			Result:  &ResultRecord{Game: q.name, Points: q.Score, Details: map[string]any{"rounds": q.rounds}},
			Ranking: points(q.Score),
		}, nil
	}
	next, err := q.source()
	if err != nil {
		return Report{}, err
	}
	q.Round++
	q.Current = next
	q.Picked = nil
	q.Correct = nil
	q.State = StatePlaying
	return Report{}, nil
}

// Acknowledge records that the final report was persisted.
func (q *Quiz[Q]) Acknowledge() error {
	if q.State != StateFinished {
		return ErrInvalidTransition
	}
	q.State = StateAskReplay
	return nil
}

// Replay starts a new session after the previous one ended.
func (q *Quiz[Q]) Replay() error {
	if q.State != StateAskReplay && q.State != StateFinished {
		return ErrInvalidTransition
	}
	return q.begin()
}

// Reset abandons the current session and starts a new one.
func (q *Quiz[Q]) Reset() error {
	return q.begin()
}

// NewSequenceQuiz returns a number-sequence quiz.
func NewSequenceQuiz(r Rand) *Quiz[SequenceRound] {
	q, _ := NewQuiz(GameSequence, QuizRounds, func() (SequenceRound, error) {
		return GenerateSequenceRound(r), nil
	}, nil)
	return q
}

// NewTriviaQuiz returns a flag quiz where no subject repeats within a session.
func NewTriviaQuiz(p *TriviaPicker) (*Quiz[TriviaRound], error) {
	seen := make(map[string]struct{})
	source := func() (TriviaRound, error) {
		round, err := p.GenerateRound(seen)
		if err != nil {
			return TriviaRound{}, err
		}
		seen[round.SubjectID] = struct{}{}
		return round, nil
	}
	restart := func() { clear(seen) }
	return NewQuiz(GameTrivia, QuizRounds, source, restart)
}
