package chess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/Cheese-Arena/internal/chess/uci"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
)

// MoveEngine produces the opponent's replies for one game. Returned moves
// must be legal in the game's current position; they are applied unchecked.
type MoveEngine interface {
	NextMove(ctx context.Context, game *nchess.Game) (*nchess.Move, error)
	Close() error
}

type EngineFactory interface {
	Spawn(ctx context.Context, difficulty Difficulty) (MoveEngine, error)
}

// GameState is one game against the engine. It is not safe for concurrent
// use; the owning session serialises access.
type GameState struct {
	Position    *nchess.Game
	Engine      MoveEngine
	Difficulty  Difficulty
	PlayerColor nchess.Color
	Username    string
	StartedAt   time.Time

	playerMoves int
}

// NewGame starts a game from the initial position. When the player takes
// black the engine opens.
func NewGame(ctx context.Context, factory EngineFactory, color nchess.Color, difficulty Difficulty, username string) (*GameState, error) {
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(difficulty))
	}
	if color != nchess.White && color != nchess.Black {
		return nil, fmt.Errorf("%w: %v", ErrInvalidColor, color)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: no engine factory", uci.ErrEngineUnavailable)
	}

	engine, err := factory.Spawn(ctx, difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", uci.ErrEngineUnavailable, err)
	}

	g := &GameState{
		Position:    nchess.NewGame(),
		Engine:      engine,
		Difficulty:  difficulty,
		PlayerColor: color,
		Username:    strings.TrimSpace(username),
		StartedAt:   time.Now(),
	}

	if color == nchess.Black {
		if err := g.EngineReply(ctx); err != nil {
			_ = g.Close()
			return nil, fmt.Errorf("%w: opening move: %w", uci.ErrEngineUnavailable, err)
		}
	}
	return g, nil
}

// PlayerMove applies the player's UCI move. Unparsable or illegal input
// leaves the position unchanged and yields ErrIllegalMove.
func (g *GameState) PlayerMove(raw string) error {
	if g.Finished() {
		return ErrGameOver
	}
	if g.Position.Position().Turn() != g.PlayerColor {
		return fmt.Errorf("%w: not the player's turn", ErrIllegalMove)
	}
	wire, err := uci.ParseWireMove(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}
	mv, err := uci.Resolve(wire, g.Position.Position())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}
	// Resolve only returns legal moves.
	if err := g.Position.UnsafeMove(mv, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}
	g.playerMoves++
	return nil
}

// EngineReply asks the engine for its move and applies it.
func (g *GameState) EngineReply(ctx context.Context) error {
	if g.Finished() {
		return ErrGameOver
	}
	mv, err := g.Engine.NextMove(ctx, g.Position)
	if err != nil {
		return err
	}
	if err := g.Position.UnsafeMove(mv, nil); err != nil {
		return fmt.Errorf("%w: %w", uci.ErrNoLegalResolution, err)
	}
	return nil
}

// Play runs one full turn: the player's move, then the engine's reply unless
// the player's move ended the game.
func (g *GameState) Play(ctx context.Context, raw string) error {
	if err := g.PlayerMove(raw); err != nil {
		return err
	}
	if g.Finished() {
		return nil
	}
	return g.EngineReply(ctx)
}

func (g *GameState) FEN() string {
	return EncodeFEN(g.Position)
}

func (g *GameState) Finished() bool {
	return g.Position.Outcome() != nchess.NoOutcome
}

func (g *GameState) PlayerWon() bool {
	switch g.Position.Outcome() {
	case nchess.WhiteWon:
		return g.PlayerColor == nchess.White
	case nchess.BlackWon:
		return g.PlayerColor == nchess.Black
	default:
		return false
	}
}

func (g *GameState) PlayerMoves() int { return g.playerMoves }

// Score rewards long resistance against stronger settings.
func (g *GameState) Score() float64 {
	return float64(g.playerMoves * g.Difficulty.Depth())
}

func (g *GameState) Close() error {
	if g.Engine == nil {
		return nil
	}
	return g.Engine.Close()
}
