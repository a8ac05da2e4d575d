// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the server.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	Env     string `env:"ENV" envDefault:"development"`
	GinMode string `env:"GIN_MODE"`

	SessionTimeout time.Duration `env:"SESSION_TIMEOUT" envDefault:"2h"`
	CookieMaxAge   time.Duration `env:"COOKIE_MAX_AGE" envDefault:"2h"`
	StaticCacheAge time.Duration `env:"STATIC_CACHE_AGE" envDefault:"5m"`
	RateLimitRPS   int           `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"10"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/gamehall.db"`
	WordsPath    string `env:"WORDS_PATH" envDefault:"data/words.json"`
	SubjectsPath string `env:"SUBJECTS_PATH" envDefault:"data/countries.json"`
	StaticDir    string `env:"STATIC_DIR" envDefault:"static"`

	JWTSecret string `env:"AUTH_JWT_SECRET"`
	JWTIssuer string `env:"AUTH_JWT_ISSUER" envDefault:"gamehall"`

	ChatHistoryLimit int `env:"CHAT_HISTORY_LIMIT" envDefault:"200"`
	LeaderboardLimit int `env:"LEADERBOARD_LIMIT" envDefault:"50"`
}

// IsProduction reports whether the server runs in release mode.
func (c Config) IsProduction() bool {
	return c.GinMode == "release" || strings.EqualFold(c.Env, "production")
}

// Load reads an optional .env file and parses the environment.
func Load(files ...string) (Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load(files...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %d", c.RateLimitRPS)
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimitBurst)
	}
	if c.ChatHistoryLimit <= 0 || c.LeaderboardLimit <= 0 {
		return fmt.Errorf("CHAT_HISTORY_LIMIT and LEADERBOARD_LIMIT must be positive")
	}
	return nil
}
