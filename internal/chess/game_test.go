package chess

import (
	"context"
	"errors"
	"testing"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/Cheese-Arena/internal/chess/uci"
)

func TestNewGame_BlackPlayerEngineOpens(t *testing.T) {
	engine := &scriptedEngine{moves: []string{"e2e4"}}
	factory := &scriptedFactory{engine: engine}

	g, err := NewGame(context.Background(), factory, nchess.Black, Medium, "  alice ")
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if g.Username != "alice" {
		t.Fatalf("username not trimmed: %q", g.Username)
	}
	if len(factory.asked) != 1 || factory.asked[0] != Medium {
		t.Fatalf("factory asked for %v", factory.asked)
	}
	if g.Position.Position().Turn() != nchess.Black {
		t.Fatalf("engine did not open for a black player")
	}
	if engine.calls != 1 {
		t.Fatalf("engine called %d times", engine.calls)
	}
}

func TestNewGame_WhitePlayerStartsFromInitialPosition(t *testing.T) {
	engine := &scriptedEngine{}
	g, err := NewGame(context.Background(), &scriptedFactory{engine: engine}, nchess.White, Easy, "bob")
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if g.FEN() != nchess.NewGame().FEN() {
		t.Fatalf("unexpected start position %s", g.FEN())
	}
	if engine.calls != 0 {
		t.Fatalf("engine must not move first for a white player")
	}
}

func TestNewGame_EngineFailureClosesEngine(t *testing.T) {
	engine := &scriptedEngine{err: uci.ErrProtocolRead}
	_, err := NewGame(context.Background(), &scriptedFactory{engine: engine}, nchess.Black, Hard, "carol")
	if !errors.Is(err, uci.ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
	if !engine.closed {
		t.Fatalf("engine not closed after failed opening move")
	}

	_, err = NewGame(context.Background(), &scriptedFactory{err: errors.New("spawn")}, nchess.White, Hard, "carol")
	if !errors.Is(err, uci.ErrEngineUnavailable) {
		t.Fatalf("spawn failure: expected ErrEngineUnavailable, got %v", err)
	}
}

func TestNewGame_RejectsInvalidSettings(t *testing.T) {
	f := &scriptedFactory{engine: &scriptedEngine{}}
	if _, err := NewGame(context.Background(), f, nchess.White, Difficulty(9), "x"); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
	if _, err := NewGame(context.Background(), f, nchess.NoColor, Easy, "x"); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
}

func TestPlay_IllegalMoveLeavesPositionUnchanged(t *testing.T) {
	engine := &scriptedEngine{moves: []string{"e7e5"}}
	g, err := NewGame(context.Background(), &scriptedFactory{engine: engine}, nchess.White, Easy, "dave")
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	before := g.FEN()
	for _, bad := range []string{"e2e5", "hello", "e7e5", ""} {
		if err := g.Play(context.Background(), bad); !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("Play(%q): expected ErrIllegalMove, got %v", bad, err)
		}
		if g.FEN() != before {
			t.Fatalf("position changed after illegal move %q", bad)
		}
	}
	if engine.calls != 0 {
		t.Fatalf("engine consulted for an illegal move")
	}

	if err := g.Play(context.Background(), "e2e4"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if g.Position.Position().Turn() != nchess.White || g.PlayerMoves() != 1 {
		t.Fatalf("expected player to move again after engine reply")
	}
}

func TestPlay_EngineFailurePropagates(t *testing.T) {
	engine := &scriptedEngine{err: uci.ErrProtocolRead}
	g, err := NewGame(context.Background(), &scriptedFactory{engine: engine}, nchess.White, Easy, "erin")
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if err := g.Play(context.Background(), "d2d4"); !errors.Is(err, uci.ErrProtocolRead) {
		t.Fatalf("expected ErrProtocolRead, got %v", err)
	}
}

func TestPlay_PlayerWinsAndScores(t *testing.T) {
	engine := &scriptedEngine{moves: []string{"e7e5", "b8c6", "g8f6"}}
	g, err := NewGame(context.Background(), &scriptedFactory{engine: engine}, nchess.White, Medium, "frank")
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	for _, mv := range []string{"e2e4", "f1c4", "d1h5", "h5f7"} {
		if err := g.Play(context.Background(), mv); err != nil {
			t.Fatalf("Play(%s): %v", mv, err)
		}
	}
	if !g.Finished() || !g.PlayerWon() {
		t.Fatalf("expected a finished game won by the player, outcome=%v", g.Position.Outcome())
	}
	if engine.calls != 3 {
		t.Fatalf("engine asked to move after mate: %d calls", engine.calls)
	}
	if got := g.Score(); got != 12 {
		t.Fatalf("score = %v, want 12", got)
	}
	if err := g.Play(context.Background(), "a2a3"); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestPlay_AppliesResolvedPromotion(t *testing.T) {
	pos, err := DecodeFEN("8/4P3/8/8/8/8/k7/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("DecodeFEN: %v", err)
	}
	engine := &scriptedEngine{moves: []string{"a2a1"}}
	g := &GameState{Position: pos, Engine: engine, Difficulty: Easy, PlayerColor: nchess.White, Username: "gus"}

	if err := g.Play(context.Background(), "e7e8"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	board := g.Position.Position().Board()
	if got := board.Piece(nchess.E8); got.Color() != nchess.White || got.Type() == nchess.Pawn {
		t.Fatalf("expected a promoted white piece on e8, got %v", got)
	}
	if got := board.Piece(nchess.A1); got != nchess.BlackKing {
		t.Fatalf("engine reply not applied, a1 holds %v", got)
	}
	if g.PlayerMoves() != 1 {
		t.Fatalf("player moves = %d", g.PlayerMoves())
	}
}
