package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/Cheese-Arena/internal/chess"
)

// Registry maps session ids to entries. Its lock covers map access only;
// game work happens under each entry's guard.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Entry
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[uuid.UUID]*Entry),
		logger:   logger,
	}
}

func (r *Registry) Create(game *chess.GameState) (uuid.UUID, *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(game)
}

func (r *Registry) insertLocked(game *chess.GameState) (uuid.UUID, *Entry) {
	entry := newEntry(game, r.logger)
	for {
		id := uuid.New()
		if _, exists := r.sessions[id]; exists {
			continue
		}
		r.sessions[id] = entry
		return id, entry
	}
}

func (r *Registry) Find(id uuid.UUID) (*Entry, bool) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	return entry, ok
}

// Remove drops the session and retires its entry. Unknown ids are ignored.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if ok {
		entry.retire()
		r.logger.Debug("session_removed", zap.String("session_id", id.String()))
	}
}

// Replace removes old, if present, and registers game under a fresh id.
func (r *Registry) Replace(old uuid.UUID, game *chess.GameState) (uuid.UUID, *Entry) {
	r.mu.Lock()
	prev, ok := r.sessions[old]
	if ok {
		delete(r.sessions, old)
	}
	id, entry := r.insertLocked(game)
	r.mu.Unlock()

	if ok {
		prev.retire()
		r.logger.Debug("session_replaced", zap.String("old_session_id", old.String()), zap.String("session_id", id.String()))
	}
	return id, entry
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions unused for longer than maxIdle and returns how many
// were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-maxIdle)

	var stale []*Entry
	r.mu.Lock()
	for id, entry := range r.sessions {
		if entry.IdleSince().Before(cutoff) {
			delete(r.sessions, id)
			stale = append(stale, entry)
		}
	}
	r.mu.Unlock()

	for _, entry := range stale {
		entry.retire()
	}
	if len(stale) > 0 {
		r.logger.Info("sessions_evicted", zap.Int("count", len(stale)), zap.Duration("max_idle", maxIdle))
	}
	return len(stale)
}

// Close retires every session and waits until their games are closed or ctx
// is done.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	entries := make([]*Entry, 0, len(r.sessions))
	for id, entry := range r.sessions {
		entries = append(entries, entry)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, entry := range entries {
		entry.retire()
	}
	for _, entry := range entries {
		select {
		case <-entry.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
