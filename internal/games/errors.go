package games

import "errors"

var (
	ErrNotPlaying           = errors.New("no round is waiting for an answer")
	ErrNotShowingResult     = errors.New("round result has not been shown yet")
	ErrInvalidOption        = errors.New("option out of range")
	ErrInvalidGuess         = errors.New("invalid guess")
	ErrInvalidTransition    = errors.New("action not allowed in the current state")
	ErrInsufficientSubjects = errors.New("not enough unique subjects left for a round")
	ErrDeckExhausted        = errors.New("deck exhausted")
	ErrSessionFinished      = errors.New("session already finished")
)
