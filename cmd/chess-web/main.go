package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Arena/internal/chess"
	appcfg "github.com/park285/Cheese-Arena/internal/config"
	"github.com/park285/Cheese-Arena/internal/httpapi"
	"github.com/park285/Cheese-Arena/internal/ledger"
	"github.com/park285/Cheese-Arena/internal/msgcat"
	"github.com/park285/Cheese-Arena/internal/obslog"
	"github.com/park285/Cheese-Arena/internal/session"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Fatal("config_error", zap.Error(err))
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("messages_load_failed", zap.Error(err))
	}

	engine, err := chess.NewEngine(chess.EngineConfig{
		BinaryPath:        cfg.StockfishPath,
		ReplyTimeout:      cfg.EngineReplyTimeout,
		SettleDelay:       cfg.EngineSettleDelay,
		IdlePerDifficulty: cfg.EnginePoolIdle,
		Logger:            logger,
	})
	if err != nil {
		logger.Fatal("engine_init_failed", zap.String("path", cfg.StockfishPath), zap.Error(err))
	}
	engine.Warm()

	octx, ocancel := context.WithTimeout(context.Background(), 10*time.Second)
	scores, err := ledger.Open(octx, ledger.OpenConfig{
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		Logger:      logger,
	})
	ocancel()
	if err != nil {
		logger.Fatal("ledger_open_failed", zap.Error(err))
	}

	registry := session.NewRegistry(logger)
	server := httpapi.New(httpapi.Deps{
		Registry: registry,
		Engines:  engine,
		Ledger:   scores,
		Catalog:  catalog,
		Logger:   logger,
	}, httpapi.Config{
		StaticDir:     cfg.StaticDir,
		ScoreTopLimit: cfg.ScoreTopLimit,
		SessionTTL:    cfg.SessionTTL,
	})

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		runJanitor(janitorCtx, registry, cfg.SessionTTL, cfg.SessionSweepEvery, logger)
	}()

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.ListenAndServe(cfg.HTTPAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			logger.Error("http_serve_failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	stopJanitor()
	<-janitorDone

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("http_shutdown_failed", zap.Error(err))
	}
	if err := registry.Close(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("session_close_failed", zap.Error(err))
	}
	if err := engine.Close(); err != nil {
		logger.Warn("engine_close_failed", zap.Error(err))
	}
	if err := scores.Close(); err != nil {
		logger.Warn("ledger_close_failed", zap.Error(err))
	}
	logger.Info("shutdown_complete")
}

// runJanitor ends sessions idle for longer than ttl.
func runJanitor(ctx context.Context, registry *session.Registry, ttl, every time.Duration, logger *zap.Logger) {
	if ttl <= 0 || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Sweep(ttl); n > 0 {
				logger.Debug("sessions_live", zap.Int("live", registry.Len()))
			}
		}
	}
}
