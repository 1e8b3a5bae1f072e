package chess

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"
)

func EncodeFEN(game *nchess.Game) string {
	if game == nil {
		return ""
	}
	return game.FEN()
}

func DecodeFEN(fen string) (*nchess.Game, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("decode fen: %w", err)
	}
	return nchess.NewGame(opt), nil
}
