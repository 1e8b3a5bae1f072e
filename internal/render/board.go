package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	squareSize = 64
	margin     = 24
	boardSize  = squareSize * 8
)

var (
	lightSquare     = color.RGBA{233, 207, 163, 255}
	darkSquare      = color.RGBA{187, 136, 96, 255}
	backgroundColor = color.RGBA{28, 31, 46, 255}
	lastMoveColor   = color.NRGBA{R: 255, G: 228, B: 120, A: 120}
	coordinateColor = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
)

type Options struct {
	// Orientation is the side drawn at the bottom. NoColor means white.
	Orientation nchess.Color
	LastMove    *nchess.Move
}

// BoardPNG draws the position and encodes it as PNG.
func BoardPNG(ctx context.Context, board *nchess.Board, opts Options) ([]byte, error) {
	if board == nil {
		return nil, errors.New("board is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flipped := opts.Orientation == nchess.Black
	total := boardSize + margin*2
	img := image.NewRGBA(image.Rect(0, 0, total, total))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)
	origin := image.Point{X: margin, Y: margin}

	squares := board.SquareMap()
	for i := 0; i < 64; i++ {
		sq := nchess.Square(i)
		rect := squareRect(sq, origin, flipped)
		draw.Draw(img, rect, image.NewUniform(squareColor(sq)), image.Point{}, draw.Src)
		if opts.LastMove != nil && (sq == opts.LastMove.S1() || sq == opts.LastMove.S2()) {
			draw.Draw(img, rect, image.NewUniform(lastMoveColor), image.Point{}, draw.Over)
		}
		piece, ok := squares[sq]
		if !ok || piece == nchess.NoPiece {
			continue
		}
		pieceImg, err := renderPieceImage(piece, squareSize)
		if err != nil {
			return nil, err
		}
		draw.Draw(img, rect, pieceImg, image.Point{}, draw.Over)
	}
	drawCoordinates(img, origin, flipped)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func squareRect(sq nchess.Square, origin image.Point, flipped bool) image.Rectangle {
	col := int(sq.File())
	row := 7 - int(sq.Rank())
	if flipped {
		col = 7 - col
		row = 7 - row
	}
	x := origin.X + col*squareSize
	y := origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func squareColor(sq nchess.Square) color.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func drawCoordinates(dst draw.Image, origin image.Point, flipped bool) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Src: image.NewUniform(coordinateColor), Face: face}
	ascent := face.Metrics().Ascent.Ceil()

	for i := 0; i < 8; i++ {
		file := nchess.File(i)
		rank := nchess.Rank(i)
		col, row := i, 7-i
		if flipped {
			col, row = 7-i, i
		}
		fileCenter := origin.X + col*squareSize + squareSize/2
		rankCenter := origin.Y + row*squareSize + squareSize/2

		drawCentered(drawer, file.String(), fileCenter, origin.Y+boardSize+ascent+4)
		drawCentered(drawer, rank.String(), origin.X-margin/2, rankCenter+ascent/2)
	}
}

func drawCentered(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Ceil()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}
