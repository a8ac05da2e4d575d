package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a stored chat line.
type ChatMessage struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Email     string    `json:"email,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// SaveMessage inserts m, assigning its ID and server timestamp.
func (s *SQLiteDB) SaveMessage(ctx context.Context, m *ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, uid, email, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.UID, nullable(m.Email), m.Text, toMillis(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// RecentMessages returns the newest limit messages in ascending time order.
func (s *SQLiteDB) RecentMessages(ctx context.Context, limit int) ([]ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uid, email, text, created_at FROM (
			SELECT id, uid, email, text, created_at, rowid AS seq FROM chat_messages
			ORDER BY created_at DESC, seq DESC LIMIT ?
		) ORDER BY created_at ASC, seq ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var (
			m       ChatMessage
			email   sql.NullString
			created int64
		)
		if err := rows.Scan(&m.ID, &m.UID, &email, &m.Text, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Email = email.String
		m.CreatedAt = fromMillis(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

// PlayedGames records which games a survey respondent has tried.
type PlayedGames struct {
	Hangman     bool `json:"hangman"`
	HigherLower bool `json:"higherLower"`
	Trivia      bool `json:"trivia"`
	Sequences   bool `json:"sequences"`
}

// Any reports whether at least one game was played.
func (p PlayedGames) Any() bool {
	return p.Hangman || p.HigherLower || p.Trivia || p.Sequences
}

// Summary lists the played games for display, or "None".
func (p PlayedGames) Summary() string {
	var out []string
	if p.Hangman {
		out = append(out, "Hangman")
	}
	if p.HigherLower {
		out = append(out, "Higher/Lower")
	}
	if p.Trivia {
		out = append(out, "Trivia")
	}
	if p.Sequences {
		out = append(out, "Sequences")
	}
	if len(out) == 0 {
		return "None"
	}
	return strings.Join(out, ", ")
}

// Survey is a submitted satisfaction survey.
type Survey struct {
	ID           string      `json:"id"`
	UID          string      `json:"uid"`
	Email        string      `json:"email,omitempty"`
	Name         string      `json:"name"`
	Age          int         `json:"age"`
	Phone        string      `json:"phone"`
	Satisfaction string      `json:"satisfaction"`
	Played       PlayedGames `json:"played"`
	FavoriteGame string      `json:"favoriteGame"`
	Suggestion   string      `json:"suggestion,omitempty"`
	Comment      string      `json:"comment"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// SaveSurvey inserts sv, assigning its ID and server timestamp.
func (s *SQLiteDB) SaveSurvey(ctx context.Context, sv *Survey) error {
	if sv.ID == "" {
		sv.ID = uuid.NewString()
	}
	sv.CreatedAt = s.now().UTC()
	played, err := json.Marshal(sv.Played)
	if err != nil {
		return fmt.Errorf("encode played games: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO surveys (id, uid, email, name, age, phone, satisfaction, played, favorite_game, suggestion, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.UID, nullable(sv.Email), sv.Name, sv.Age, sv.Phone, sv.Satisfaction, string(played),
		sv.FavoriteGame, nullable(sv.Suggestion), sv.Comment, toMillis(sv.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save survey: %w", err)
	}
	return nil
}

// ListSurveys returns the newest surveys first.
func (s *SQLiteDB) ListSurveys(ctx context.Context, limit int) ([]Survey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uid, email, name, age, phone, satisfaction, played, favorite_game, suggestion, comment, created_at
		FROM surveys ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	var out []Survey
	for rows.Next() {
		var (
			sv         Survey
			email      sql.NullString
			suggestion sql.NullString
			played     string
			created    int64
		)
		if err := rows.Scan(&sv.ID, &sv.UID, &email, &sv.Name, &sv.Age, &sv.Phone, &sv.Satisfaction,
			&played, &sv.FavoriteGame, &suggestion, &sv.Comment, &created); err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		if err := json.Unmarshal([]byte(played), &sv.Played); err != nil {
			return nil, fmt.Errorf("decode played games: %w", err)
		}
		sv.Email = email.String
		sv.Suggestion = suggestion.String
		sv.CreatedAt = fromMillis(created)
		out = append(out, sv)
	}
	return out, rows.Err()
}

// DeleteAllSurveys removes every survey in a single transaction.
func (s *SQLiteDB) DeleteAllSurveys(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM surveys`)
	if err != nil {
		return 0, fmt.Errorf("delete surveys: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit survey delete: %w", err)
	}
	return n, nil
}
