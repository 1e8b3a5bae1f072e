package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr  string
	StaticDir string

	StockfishPath       string
	EngineReplyTimeout  time.Duration
	EngineSettleDelay   time.Duration
	EnginePoolIdle      int
	SessionTTL          time.Duration
	SessionSweepEvery   time.Duration
	ShutdownGracePeriod time.Duration

	DatabaseURL   string
	RedisURL      string
	ScoreTopLimit int

	MessagesDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:            ":8000",
		StaticDir:           "static",
		EngineReplyTimeout:  10 * time.Second,
		EnginePoolIdle:      1,
		SessionTTL:          time.Hour,
		SessionSweepEvery:   time.Minute,
		ShutdownGracePeriod: 10 * time.Second,
		ScoreTopLimit:       10,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("STATIC_DIR")); v != "" {
		cfg.StaticDir = v
	}

	cfg.StockfishPath = strings.TrimSpace(os.Getenv("STOCKFISH_PATH"))
	if n, ok := positiveInt("ENGINE_REPLY_TIMEOUT_MS"); ok {
		cfg.EngineReplyTimeout = time.Duration(n) * time.Millisecond
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_SETTLE_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.EngineSettleDelay = time.Duration(n) * time.Millisecond
		}
	}
	// 0 disables warming; the pool treats negative as disabled.
	if v := strings.TrimSpace(os.Getenv("ENGINE_POOL_IDLE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.EnginePoolIdle = n
			if n == 0 {
				cfg.EnginePoolIdle = -1
			}
		}
	}
	if n, ok := positiveInt("SESSION_TTL"); ok {
		cfg.SessionTTL = time.Duration(n) * time.Second
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	if n, ok := positiveInt("SCORE_TOP_LIMIT"); ok {
		cfg.ScoreTopLimit = n
	}
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if cfg.StockfishPath == "" {
		return nil, errors.New("STOCKFISH_PATH is required")
	}
	return cfg, nil
}

func positiveInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
