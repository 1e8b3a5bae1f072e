package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/park285/Cheese-Arena/internal/arenaclient"
	"github.com/park285/Cheese-Arena/pkg/chessdto"
)

func main() {
	baseURL := os.Getenv("ARENA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}
	move := os.Getenv("ARENA_MOVE")
	if move == "" {
		move = "e2e4"
	}

	client := arenaclient.NewClient(baseURL, arenaclient.WithTimeout(30*time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if scores, err := client.Scores(ctx, 5); err != nil {
		log.Printf("/scores error: %v", err)
	} else {
		log.Printf("/scores ok: %d entries", len(scores))
	}

	game, err := client.NewGame(ctx, arenaclient.NewGameRequest{Color: "w", Difficulty: "1", Username: "arenacheck"})
	if err != nil {
		log.Fatalf("/game error: %v", err)
	}
	log.Printf("/game ok: opponent=%s color=%s fen=%s", game.Difficulty, game.Color, game.FEN)

	fen, err := client.Move(ctx, move)
	if err != nil {
		var apiErr *chessdto.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 406 {
			log.Fatalf("/move rejected %s at %s", move, apiErr.Body)
		}
		log.Fatalf("/move error: %v", err)
	}
	log.Printf("/move ok: fen=%s", fen)

	png, err := client.Board(ctx)
	if err != nil {
		log.Printf("/board.png error: %v", err)
	} else {
		log.Printf("/board.png ok: %d bytes", len(png))
	}

	if _, err := client.GameEnd(ctx); err != nil {
		log.Printf("/game_end (expected 406 mid-game): %v", err)
	}
}
