package chess

import (
	"context"
	"errors"
	"sync"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/Cheese-Arena/internal/chess/uci"
)

type scriptedEngine struct {
	mu     sync.Mutex
	moves  []string
	err    error
	calls  int
	closed bool
}

func (s *scriptedEngine) NextMove(_ context.Context, game *nchess.Game) (*nchess.Move, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.moves) == 0 {
		return nil, errors.New("script exhausted")
	}
	next := s.moves[0]
	s.moves = s.moves[1:]
	return uci.Resolve(next, game.Position())
}

func (s *scriptedEngine) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

type scriptedFactory struct {
	engine *scriptedEngine
	err    error
	asked  []Difficulty
}

func (f *scriptedFactory) Spawn(_ context.Context, d Difficulty) (MoveEngine, error) {
	f.asked = append(f.asked, d)
	if f.err != nil {
		return nil, f.err
	}
	return f.engine, nil
}
