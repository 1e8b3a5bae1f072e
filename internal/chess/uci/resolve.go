package uci

import (
	"fmt"
	"regexp"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

var wireMovePattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// ParseWireMove normalises an engine move token and checks its shape.
func ParseWireMove(token string) (string, error) {
	mv := strings.ToLower(strings.TrimSpace(token))
	if !wireMovePattern.MatchString(mv) {
		return "", fmt.Errorf("%w: %q", ErrMoveParse, token)
	}
	return mv, nil
}

// Resolve maps a wire move onto a legal move of pos. Promotion moves the
// direct decode rejects are matched by origin and destination against the
// legal promotions, first match in enumeration order.
func Resolve(wire string, pos *nchess.Position) (*nchess.Move, error) {
	if pos == nil {
		return nil, fmt.Errorf("%w: nil position", ErrNoLegalResolution)
	}
	notation := nchess.UCINotation{}
	if mv, err := notation.Decode(pos, wire); err == nil && isLegal(pos, mv) {
		return mv, nil
	}

	if len(wire) < 4 {
		return nil, fmt.Errorf("%w: %q", ErrNoLegalResolution, wire)
	}
	from, to := wire[:2], wire[2:4]
	legal := pos.ValidMoves()
	for i := range legal {
		candidate := legal[i]
		if candidate.Promo() == nchess.NoPieceType {
			continue
		}
		if candidate.S1().String() != from || candidate.S2().String() != to {
			continue
		}
		mv, err := notation.Decode(pos, candidate.String())
		if err != nil {
			return nil, fmt.Errorf("%w: decode candidate %s: %v", ErrNoLegalResolution, candidate.String(), err)
		}
		return mv, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoLegalResolution, wire)
}

func isLegal(pos *nchess.Position, mv *nchess.Move) bool {
	if mv == nil {
		return false
	}
	legal := pos.ValidMoves()
	for i := range legal {
		candidate := legal[i]
		if candidate.S1() == mv.S1() && candidate.S2() == mv.S2() && candidate.Promo() == mv.Promo() {
			return true
		}
	}
	return false
}
