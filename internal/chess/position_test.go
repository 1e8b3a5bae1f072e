package chess

import (
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func TestFEN_RoundTrip(t *testing.T) {
	fens := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"8/4P3/8/8/8/8/k7/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		game, err := DecodeFEN(fen)
		if err != nil {
			t.Fatalf("DecodeFEN(%q): %v", fen, err)
		}
		if got := EncodeFEN(game); got != fen {
			t.Fatalf("round trip mismatch:\n got %s\nwant %s", got, fen)
		}
	}
}

func TestFEN_RoundTripAfterMoves(t *testing.T) {
	game := nchess.NewGame()
	for _, mv := range []string{"e2e4", "c7c5", "g1f3"} {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			t.Fatalf("push %s: %v", mv, err)
		}
	}
	fen := EncodeFEN(game)
	decoded, err := DecodeFEN(fen)
	if err != nil {
		t.Fatalf("DecodeFEN: %v", err)
	}
	if EncodeFEN(decoded) != fen {
		t.Fatalf("positions differ after round trip")
	}
	if decoded.Position().Turn() != nchess.Black {
		t.Fatalf("side to move lost in round trip")
	}
}

func TestDecodeFEN_Invalid(t *testing.T) {
	if _, err := DecodeFEN("not a fen"); err == nil {
		t.Fatalf("expected error for invalid fen")
	}
}
