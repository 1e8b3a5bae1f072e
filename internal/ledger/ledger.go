package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

var ErrInvalidEntry = errors.New("invalid score entry")

const DefaultTopLimit = 10

type ScoreEntry struct {
	Winner string  `json:"winner"`
	Score  float64 `json:"score"`
}

// Repository keeps the best score per winner.
type Repository interface {
	// Record stores e, or raises the winner's score when e.Score is higher.
	Record(ctx context.Context, e ScoreEntry) error
	// Top returns up to n entries by score descending, ties by winner.
	Top(ctx context.Context, n int) ([]ScoreEntry, error)
	Close() error
}

// NewScore computes the score of a won game.
func NewScore(winner string, playerMoves, depth int) ScoreEntry {
	return ScoreEntry{
		Winner: strings.TrimSpace(winner),
		Score:  float64(playerMoves * depth),
	}
}

func validate(e ScoreEntry) error {
	if strings.TrimSpace(e.Winner) == "" {
		return fmt.Errorf("%w: empty winner", ErrInvalidEntry)
	}
	if e.Score < 0 {
		return fmt.Errorf("%w: negative score %v", ErrInvalidEntry, e.Score)
	}
	return nil
}

func normalizeLimit(n int) int {
	if n <= 0 {
		return DefaultTopLimit
	}
	return n
}

func sortEntries(entries []ScoreEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Winner < entries[j].Winner
	})
}

type OpenConfig struct {
	DatabaseURL string
	RedisURL    string
	Logger      *zap.Logger
}

// Open picks PostgreSQL, then Redis, then memory, by what is configured.
func Open(ctx context.Context, cfg OpenConfig) (Repository, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case strings.TrimSpace(cfg.DatabaseURL) != "":
		repo, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("score_ledger_ready", zap.String("backend", "postgres"))
		return repo, nil
	case strings.TrimSpace(cfg.RedisURL) != "":
		repo, err := NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("score_ledger_ready", zap.String("backend", "redis"))
		return repo, nil
	default:
		logger.Warn("score_ledger_ready", zap.String("backend", "memory"))
		return NewMemory(), nil
	}
}
