package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Result is one saved game outcome.
type Result struct {
	ID        string         `json:"id"`
	UID       string         `json:"uid"`
	Email     string         `json:"email,omitempty"`
	Game      string         `json:"game"`
	Points    int            `json:"points"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// RankingEntry is a player's accumulated points.
type RankingEntry struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email,omitempty"`
	Points    int       `json:"points"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveResult inserts r, assigning its ID and server timestamp.
func (s *SQLiteDB) SaveResult(ctx context.Context, r *Result) error {
	if r.UID == "" {
		return fmt.Errorf("save result: missing uid")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = s.now().UTC()

	var details sql.NullString
	if r.Details != nil {
		b, err := json.Marshal(r.Details)
		if err != nil {
			return fmt.Errorf("encode result details: %w", err)
		}
		details = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (id, uid, email, game, points, details, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UID, nullable(r.Email), r.Game, r.Points, details, toMillis(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// ListResults returns the newest results, optionally only for game.
func (s *SQLiteDB) ListResults(ctx context.Context, game string, limit int) ([]Result, error) {
	query := `SELECT id, uid, email, game, points, details, created_at FROM results`
	args := []any{}
	if game != "" {
		query += ` WHERE game = ?`
		args = append(args, game)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			r       Result
			email   sql.NullString
			details sql.NullString
			created int64
		)
		if err := rows.Scan(&r.ID, &r.UID, &email, &r.Game, &r.Points, &details, &created); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Email = email.String
		r.CreatedAt = fromMillis(created)
		if details.Valid {
			if err := json.Unmarshal([]byte(details.String), &r.Details); err != nil {
				return nil, fmt.Errorf("decode result details: %w", err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AddPoints increments uid's ranking total, creating the row on first use.
// Zero points still touch the row so the player appears on the board.
func (s *SQLiteDB) AddPoints(ctx context.Context, uid, email string, points int) error {
	if uid == "" {
		return fmt.Errorf("add points: missing uid")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ranking (uid, email, points, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			points = ranking.points + excluded.points,
			email = COALESCE(excluded.email, ranking.email),
			updated_at = excluded.updated_at`,
		uid, nullable(email), points, toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("add points: %w", err)
	}
	return nil
}

// Leaderboard returns the top ranking entries.
func (s *SQLiteDB) Leaderboard(ctx context.Context, limit int) ([]RankingEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uid, email, points, updated_at FROM ranking ORDER BY points DESC, updated_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var out []RankingEntry
	for rows.Next() {
		var (
			e       RankingEntry
			email   sql.NullString
			updated int64
		)
		if err := rows.Scan(&e.UID, &email, &e.Points, &updated); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		e.Email = email.String
		e.UpdatedAt = fromMillis(updated)
		out = append(out, e)
	}
	return out, rows.Err()
}
