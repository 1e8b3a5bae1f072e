package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "STATIC_DIR", "STOCKFISH_PATH", "ENGINE_REPLY_TIMEOUT_MS",
		"ENGINE_SETTLE_DELAY_MS", "ENGINE_POOL_IDLE", "SESSION_TTL",
		"DATABASE_URL", "REDIS_URL", "SCORE_TOP_LIMIT", "MESSAGES_DIR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_RequiresStockfish(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without STOCKFISH_PATH")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOCKFISH_PATH", "/usr/games/stockfish")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8000" || cfg.StaticDir != "static" {
		t.Fatalf("unexpected http defaults %+v", cfg)
	}
	if cfg.EngineReplyTimeout != 10*time.Second || cfg.EngineSettleDelay != 0 {
		t.Fatalf("unexpected engine defaults %+v", cfg)
	}
	if cfg.SessionTTL != time.Hour || cfg.ScoreTopLimit != 10 {
		t.Fatalf("unexpected session defaults %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOCKFISH_PATH", " stockfish ")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("ENGINE_REPLY_TIMEOUT_MS", "2500")
	t.Setenv("ENGINE_SETTLE_DELAY_MS", "100")
	t.Setenv("ENGINE_POOL_IDLE", "0")
	t.Setenv("SESSION_TTL", "60")
	t.Setenv("SCORE_TOP_LIMIT", "junk")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StockfishPath != "stockfish" || cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Fatalf("unexpected %+v", cfg)
	}
	if cfg.EngineReplyTimeout != 2500*time.Millisecond || cfg.EngineSettleDelay != 100*time.Millisecond {
		t.Fatalf("unexpected engine timing %+v", cfg)
	}
	if cfg.EnginePoolIdle >= 0 {
		t.Fatalf("ENGINE_POOL_IDLE=0 must disable warming, got %d", cfg.EnginePoolIdle)
	}
	if cfg.SessionTTL != time.Minute || cfg.ScoreTopLimit != 10 {
		t.Fatalf("unexpected %+v", cfg)
	}
	if cfg.RedisURL == "" {
		t.Fatalf("REDIS_URL not loaded")
	}
}
