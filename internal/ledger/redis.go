package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const scoresKey = "cheese_arena:scores"

type redisLedger struct {
	rdb *redis.Client
	key string
}

func NewRedis(ctx context.Context, redisURL string) (Repository, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisLedger{rdb: rdb, key: scoresKey}, nil
}

func (r *redisLedger) Record(ctx context.Context, e ScoreEntry) error {
	if err := validate(e); err != nil {
		return err
	}
	err := r.rdb.ZAddArgs(ctx, r.key, redis.ZAddArgs{
		GT:      true,
		Members: []redis.Z{{Score: e.Score, Member: e.Winner}},
	}).Err()
	if err != nil {
		return fmt.Errorf("record score: %w", err)
	}
	return nil
}

// Top re-sorts the fetched page since Redis orders equal scores by member
// descending.
func (r *redisLedger) Top(ctx context.Context, n int) ([]ScoreEntry, error) {
	n = normalizeLimit(n)
	zs, err := r.rdb.ZRevRangeWithScores(ctx, r.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	entries := make([]ScoreEntry, 0, len(zs))
	for _, z := range zs {
		winner, ok := z.Member.(string)
		if !ok {
			winner = fmt.Sprint(z.Member)
		}
		entries = append(entries, ScoreEntry{Winner: winner, Score: z.Score})
	}
	sortEntries(entries)
	return entries, nil
}

func (r *redisLedger) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}
