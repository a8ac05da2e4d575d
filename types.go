package main

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"gamehall/internal/auth"
	"gamehall/internal/chat"
	"gamehall/internal/config"
	"gamehall/internal/games"
	"gamehall/internal/store"
	"gamehall/internal/types"
)

type contextKey string

// ResultSaver receives finished game results.
type ResultSaver interface {
	SaveResult(ctx context.Context, r *store.Result) error
}

// RankingUpdater accumulates points per player. Zero points are allowed.
type RankingUpdater interface {
	AddPoints(ctx context.Context, uid, email string, points int) error
}

// Store is everything the HTTP layer persists.
type Store interface {
	ResultSaver
	RankingUpdater
	chat.Store
	ListResults(ctx context.Context, game string, limit int) ([]store.Result, error)
	Leaderboard(ctx context.Context, limit int) ([]store.RankingEntry, error)
	SaveSurvey(ctx context.Context, sv *store.Survey) error
	ListSurveys(ctx context.Context, limit int) ([]store.Survey, error)
	DeleteAllSurveys(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// App holds shared state for the server.
type App struct {
	Config       config.Config
	IsProduction bool
	StartTime    time.Time

	WordList []types.WordEntry
	Subjects []types.Subject
	Picker   *games.TriviaPicker
	Rand     games.Rand
	// NewDeck deals a fresh card source for a higher-lower session.
	NewDeck func() games.CardSource

	Players     map[string]*Player
	PlayerMutex sync.RWMutex

	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex

	Store    Store
	Verifier *auth.Verifier
	Chat     *chat.Hub
}

// Player is the per-session game state. mu is held for the whole of an action,
// collaborator calls included, so actions of one player never interleave.
type Player struct {
	mu sync.Mutex

	Hangman     *games.Hangman
	HigherLower *games.HigherLower
	Sequence    *games.Quiz[games.SequenceRound]
	Trivia      *games.Quiz[games.TriviaRound]

	// Pending holds reports whose save failed, keyed by game name.
	Pending map[string]games.Report

	// LastAccessTime is guarded by App.PlayerMutex.
	LastAccessTime time.Time
}

// HangmanGuessRequest is the body of a hangman guess.
type HangmanGuessRequest struct {
	Letter string `json:"letter" binding:"required"`
}

// HigherLowerGuessRequest is the body of a higher-lower guess.
type HigherLowerGuessRequest struct {
	Guess string `json:"guess" binding:"required,oneof=higher lower"`
}

// PickRequest answers a quiz round. Option is a pointer so 0 is accepted.
type PickRequest struct {
	Option *int `json:"option" binding:"required,min=0"`
}

// ChatRequest posts a chat message.
type ChatRequest struct {
	Text string `json:"text" binding:"required"`
}

// PlayedGamesRequest lists the games a survey respondent has played.
type PlayedGamesRequest struct {
	Hangman     bool `json:"hangman"`
	HigherLower bool `json:"higherLower"`
	Trivia      bool `json:"trivia"`
	Sequences   bool `json:"sequences"`
}

// SurveyRequest is the survey form. At least one played game is required;
// that rule is checked at struct level.
type SurveyRequest struct {
	Name         string             `json:"name" binding:"required,min=3,personname"`
	Age          int                `json:"age" binding:"required,min=18,max=99"`
	Phone        string             `json:"phone" binding:"required,max=10,digits"`
	Satisfaction string             `json:"satisfaction" binding:"required"`
	Played       PlayedGamesRequest `json:"played"`
	FavoriteGame string             `json:"favoriteGame" binding:"required,max=255"`
	Suggestion   string             `json:"suggestion" binding:"max=255"`
	Comment      string             `json:"comment" binding:"required,min=5,max=255"`
}
