package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const scoreSchema = `
	CREATE TABLE IF NOT EXISTS scores (
		winner     TEXT PRIMARY KEY,
		score      DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

type postgres struct {
	db *sql.DB
}

func NewPostgres(ctx context.Context, databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(pingCtx, scoreSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure scores schema: %w", err)
	}
	return &postgres{db: db}, nil
}

func (p *postgres) Record(ctx context.Context, e ScoreEntry) error {
	if err := validate(e); err != nil {
		return err
	}
	const query = `
		INSERT INTO scores (winner, score)
		VALUES ($1, $2)
		ON CONFLICT (winner) DO UPDATE SET
			score = GREATEST(scores.score, EXCLUDED.score),
			updated_at = now()
		WHERE EXCLUDED.score > scores.score`
	if _, err := p.db.ExecContext(ctx, query, e.Winner, e.Score); err != nil {
		return fmt.Errorf("record score: %w", err)
	}
	return nil
}

func (p *postgres) Top(ctx context.Context, n int) ([]ScoreEntry, error) {
	const query = `
		SELECT winner, score
		FROM scores
		ORDER BY score DESC, winner ASC
		LIMIT $1`
	rows, err := p.db.QueryContext(ctx, query, normalizeLimit(n))
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.Winner, &e.Score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return entries, nil
}

func (p *postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
