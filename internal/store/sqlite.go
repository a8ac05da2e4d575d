package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDB persists results, ranking, chat messages and surveys.
type SQLiteDB struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteDB opens (or creates) the database at path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database lives per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &SQLiteDB{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Ping checks the connection is usable.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the schema.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			uid TEXT NOT NULL,
			email TEXT,
			game TEXT NOT NULL,
			points INTEGER NOT NULL,
			details TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ranking (
			uid TEXT PRIMARY KEY,
			email TEXT,
			points INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			uid TEXT NOT NULL,
			email TEXT,
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS surveys (
			id TEXT PRIMARY KEY,
			uid TEXT NOT NULL,
			email TEXT,
			name TEXT NOT NULL,
			age INTEGER NOT NULL,
			phone TEXT NOT NULL,
			satisfaction TEXT NOT NULL,
			played TEXT NOT NULL,
			favorite_game TEXT NOT NULL,
			suggestion TEXT,
			comment TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_game_created ON results(game, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_results_created ON results(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_ranking_points ON ranking(points DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_created ON chat_messages(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_surveys_created ON surveys(created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
