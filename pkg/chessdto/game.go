package chessdto

// GameResponse answers GET /game.
type GameResponse struct {
	Username string `json:"username"`
	// Difficulty is the opponent's display name.
	Difficulty string `json:"difficulty"`
	Color      string `json:"color"`
	FEN        string `json:"fen"`
}

// GameEndResponse answers GET /game_end for a finished game.
type GameEndResponse struct {
	Outcome   string  `json:"outcome"`
	Method    string  `json:"method"`
	PlayerWon bool    `json:"player_won"`
	Score     float64 `json:"score,omitempty"`
	FEN       string  `json:"fen"`
}

type ScoreEntry struct {
	Winner string  `json:"winner"`
	Score  float64 `json:"score"`
}
