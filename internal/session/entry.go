package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Arena/internal/chess"
)

var ErrSessionClosed = errors.New("session closed")

// Entry guards one game. At most one Guard is live at a time.
//
// Once retired, whoever next holds the slot closes the game and keeps the
// slot, so later acquires fail with ErrSessionClosed.
type Entry struct {
	game   *chess.GameState
	logger *zap.Logger

	slot    chan struct{}
	retired chan struct{}
	closed  chan struct{}

	retireOnce sync.Once
	closeOnce  sync.Once
	lastUsed   atomic.Int64
}

func newEntry(game *chess.GameState, logger *zap.Logger) *Entry {
	e := &Entry{
		game:    game,
		logger:  logger,
		slot:    make(chan struct{}, 1),
		retired: make(chan struct{}),
		closed:  make(chan struct{}),
	}
	e.touch()
	return e
}

// Acquire blocks until the game is free, ctx is done or the entry is retired.
func (e *Entry) Acquire(ctx context.Context) (*Guard, error) {
	select {
	case <-e.retired:
		return nil, ErrSessionClosed
	default:
	}

	select {
	case e.slot <- struct{}{}:
	case <-e.retired:
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case <-e.retired:
		e.closeGame()
		return nil, ErrSessionClosed
	default:
	}
	e.touch()
	return &Guard{entry: e}, nil
}

// Do runs fn with exclusive access to the game.
func (e *Entry) Do(ctx context.Context, fn func(*chess.GameState) error) error {
	g, err := e.Acquire(ctx)
	if err != nil {
		return err
	}
	defer g.Release()
	return fn(g.Game())
}

// Done is closed once the game has been closed.
func (e *Entry) Done() <-chan struct{} {
	return e.closed
}

func (e *Entry) Retired() bool {
	select {
	case <-e.retired:
		return true
	default:
		return false
	}
}

func (e *Entry) IdleSince() time.Time {
	return time.Unix(0, e.lastUsed.Load())
}

func (e *Entry) touch() {
	e.lastUsed.Store(time.Now().UnixNano())
}

func (e *Entry) retire() {
	e.retireOnce.Do(func() {
		close(e.retired)
		e.closeIfIdle()
	})
}

func (e *Entry) closeIfIdle() {
	select {
	case e.slot <- struct{}{}:
		e.closeGame()
	default:
	}
}

func (e *Entry) closeGame() {
	e.closeOnce.Do(func() {
		if e.game != nil {
			if err := e.game.Close(); err != nil {
				e.logger.Debug("session_game_close_failed", zap.Error(err))
			}
		}
		close(e.closed)
	})
}

func (e *Entry) release() {
	e.touch()
	<-e.slot
	select {
	case <-e.retired:
		e.closeIfIdle()
	default:
	}
}

// Guard is exclusive access to an entry's game until Release.
type Guard struct {
	entry *Entry
	once  sync.Once
}

func (g *Guard) Game() *chess.GameState {
	return g.entry.game
}

func (g *Guard) Release() {
	g.once.Do(g.entry.release)
}
