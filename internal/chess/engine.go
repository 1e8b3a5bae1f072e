package chess

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Arena/internal/chess/uci"
)

type EngineConfig struct {
	BinaryPath   string
	ReplyTimeout time.Duration
	SettleDelay  time.Duration
	// IdlePerDifficulty warm engines are kept per difficulty. Negative disables.
	IdlePerDifficulty int
	Logger            *zap.Logger
}

// Engine spawns Stockfish adapters from a shared warm pool.
type Engine struct {
	pool   *uci.Pool
	logger *zap.Logger
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := uci.NewPool(uci.PoolConfig{
		Base: uci.Options{
			Path:         cfg.BinaryPath,
			ReplyTimeout: cfg.ReplyTimeout,
			SettleDelay:  cfg.SettleDelay,
		},
		IdlePerBucket: cfg.IdlePerDifficulty,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	return &Engine{pool: pool, logger: logger}, nil
}

func (e *Engine) Spawn(ctx context.Context, difficulty Difficulty) (MoveEngine, error) {
	preset := difficulty.Preset()
	a, err := e.pool.Acquire(ctx, preset.Depth, preset.Elo)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Warm starts spare engines for every difficulty.
func (e *Engine) Warm() {
	for _, d := range Difficulties() {
		if err := e.pool.Warm(d.Depth(), d.Elo()); err != nil {
			e.logger.Warn("engine_warm_failed", zap.Stringer("difficulty", d), zap.Error(err))
		}
	}
}

func (e *Engine) Close() error {
	if e.pool == nil {
		return nil
	}
	return e.pool.Close()
}
