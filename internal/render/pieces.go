package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Piece outlines on a 100x100 canvas.
var pieceShapes = map[nchess.PieceType]string{
	nchess.Pawn: `<circle cx="50" cy="34" r="13"/>
		<path d="M38 48 L62 48 L68 78 L32 78 Z"/>
		<rect x="24" y="78" width="52" height="10" rx="3"/>`,
	nchess.Rook: `<path d="M26 20 L36 20 L36 28 L45 28 L45 20 L55 20 L55 28 L64 28 L64 20 L74 20 L74 36 L66 42 L66 72 L34 72 L34 42 L26 36 Z"/>
		<rect x="22" y="74" width="56" height="14" rx="3"/>`,
	nchess.Knight: `<path d="M30 86 L72 86 L70 72 C70 52 66 30 48 18 L44 10 L38 20 C30 24 22 36 20 48 L26 54 L36 48 C40 50 42 54 36 62 C32 68 30 76 30 86 Z"/>`,
	nchess.Bishop: `<circle cx="50" cy="15" r="6"/>
		<path d="M50 22 C36 34 34 48 40 60 L60 60 C66 48 64 34 50 22 Z"/>
		<path d="M36 62 L64 62 L68 76 L32 76 Z"/>
		<rect x="24" y="78" width="52" height="10" rx="3"/>`,
	nchess.Queen: `<circle cx="18" cy="26" r="6"/><circle cx="34" cy="18" r="6"/><circle cx="50" cy="14" r="6"/><circle cx="66" cy="18" r="6"/><circle cx="82" cy="26" r="6"/>
		<path d="M18 32 L30 66 L70 66 L82 32 L66 50 L60 24 L50 46 L40 24 L34 50 Z"/>
		<rect x="24" y="70" width="52" height="16" rx="4"/>`,
	nchess.King: `<path d="M46 6 L54 6 L54 14 L62 14 L62 22 L54 22 L54 30 L46 30 L46 22 L38 22 L38 14 L46 14 Z"/>
		<path d="M50 32 C30 30 14 44 24 62 L30 70 L70 70 L76 62 C86 44 70 30 50 32 Z"/>
		<rect x="24" y="72" width="52" height="14" rx="4"/>`,
}

type pieceCacheKey struct {
	piece nchess.Piece
	size  int
}

var (
	pieceCacheMu sync.RWMutex
	pieceCache   = map[pieceCacheKey]image.Image{}
)

func pieceSVG(piece nchess.Piece) (string, error) {
	shape, ok := pieceShapes[piece.Type()]
	if !ok {
		return "", fmt.Errorf("no shape for piece %v", piece)
	}
	fill, stroke := "#f8f8f2", "#1b1b1b"
	if piece.Color() == nchess.Black {
		fill, stroke = "#262626", "#e6e6e6"
	}
	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">`)
	fmt.Fprintf(&sb, `<g fill="%s" stroke="%s" stroke-width="3" stroke-linejoin="round">`, fill, stroke)
	sb.WriteString(shape)
	sb.WriteString(`</g></svg>`)
	return sb.String(), nil
}

func renderPieceImage(piece nchess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}
	pieceCacheMu.RLock()
	img, ok := pieceCache[key]
	pieceCacheMu.RUnlock()
	if ok {
		return img, nil
	}

	src, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = rgba
	pieceCacheMu.Unlock()
	return rgba, nil
}
