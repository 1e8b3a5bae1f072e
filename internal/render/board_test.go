package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func TestBoardPNG_Decodes(t *testing.T) {
	game := nchess.NewGame()
	raw, err := BoardPNG(context.Background(), game.Position().Board(), Options{})
	if err != nil {
		t.Fatalf("BoardPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	want := boardSize + margin*2
	if b := img.Bounds(); b.Dx() != want || b.Dy() != want {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestBoardPNG_OrientationAndHighlight(t *testing.T) {
	game := nchess.NewGame()
	if err := game.PushNotationMove("e2e4", nchess.UCINotation{}, nil); err != nil {
		t.Fatalf("push: %v", err)
	}
	board := game.Position().Board()
	moves := game.Moves()
	last := moves[len(moves)-1]

	white, err := BoardPNG(context.Background(), board, Options{Orientation: nchess.White, LastMove: last})
	if err != nil {
		t.Fatalf("white: %v", err)
	}
	black, err := BoardPNG(context.Background(), board, Options{Orientation: nchess.Black, LastMove: last})
	if err != nil {
		t.Fatalf("black: %v", err)
	}
	plain, err := BoardPNG(context.Background(), board, Options{Orientation: nchess.White})
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if bytes.Equal(white, black) {
		t.Fatalf("orientation did not change the image")
	}
	if bytes.Equal(white, plain) {
		t.Fatalf("last move highlight not drawn")
	}
}

func TestBoardPNG_Errors(t *testing.T) {
	if _, err := BoardPNG(context.Background(), nil, Options{}); err == nil {
		t.Fatalf("expected error for nil board")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BoardPNG(ctx, nchess.NewGame().Position().Board(), Options{}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestPieceSVG_AllPieces(t *testing.T) {
	for _, c := range []nchess.Color{nchess.White, nchess.Black} {
		for _, pt := range []nchess.PieceType{nchess.King, nchess.Queen, nchess.Rook, nchess.Bishop, nchess.Knight, nchess.Pawn} {
			piece := nchess.NewPiece(pt, c)
			if _, err := renderPieceImage(piece, 32); err != nil {
				t.Fatalf("render %v: %v", piece, err)
			}
		}
	}
}
