package ledger

import (
	"context"
	"sync"
)

// memory is the in-process ledger used when no store is configured.
type memory struct {
	mu     sync.RWMutex
	scores map[string]float64
}

func NewMemory() Repository {
	return &memory{scores: make(map[string]float64)}
}

func (m *memory) Record(_ context.Context, e ScoreEntry) error {
	if err := validate(e); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.scores[e.Winner]; ok && old >= e.Score {
		return nil
	}
	m.scores[e.Winner] = e.Score
	return nil
}

func (m *memory) Top(_ context.Context, n int) ([]ScoreEntry, error) {
	n = normalizeLimit(n)
	m.mu.RLock()
	entries := make([]ScoreEntry, 0, len(m.scores))
	for winner, score := range m.scores {
		entries = append(entries, ScoreEntry{Winner: winner, Score: score})
	}
	m.mu.RUnlock()

	sortEntries(entries)
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func (m *memory) Close() error { return nil }
