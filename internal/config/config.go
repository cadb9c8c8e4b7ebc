package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	RedisURL    string
	DatabaseURL string

	ListenAddr string

	MessageDir string

	MaxGenerateBatch int
	UndoWindowSec    int
	RandomSeed       int64
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:       ":8780",
		MaxGenerateBatch: 10,
		UndoWindowSec:    6,
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessageDir = strings.TrimSpace(os.Getenv("MESSAGE_DIR"))

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("MAX_GENERATE_BATCH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxGenerateBatch = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("UNDO_WINDOW_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.UndoWindowSec = n
		}
	}
	// RANDOM_SEED pins generation randomness; 0 (unset) means time-seeded.
	if v := strings.TrimSpace(os.Getenv("RANDOM_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.RandomSeed = n
		}
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}
