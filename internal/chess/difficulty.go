package chess

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

var (
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidColor      = errors.New("invalid color")
)

type Difficulty int

const (
	Easy Difficulty = iota + 1
	Medium
	Hard
)

// DifficultyPreset is the engine strength bound to a difficulty.
type DifficultyPreset struct {
	Difficulty   Difficulty
	Depth        int
	Elo          int
	OpponentName string
}

var difficultyPresets = map[Difficulty]DifficultyPreset{
	Easy:   {Difficulty: Easy, Depth: 1, Elo: 400, OpponentName: "Martin"},
	Medium: {Difficulty: Medium, Depth: 3, Elo: 900, OpponentName: "Maggus Reischl"},
	Hard:   {Difficulty: Hard, Depth: 10, Elo: 3500, OpponentName: "Maggus Carlsen"},
}

// Difficulties lists every difficulty in ascending strength.
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// ParseDifficulty accepts the form values 1-3 and the names easy/medium/hard.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "easy":
		return Easy, nil
	case "2", "medium":
		return Medium, nil
	case "3", "hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDifficulty, raw)
}

func (d Difficulty) Preset() DifficultyPreset {
	return difficultyPresets[d]
}

func (d Difficulty) Valid() bool {
	_, ok := difficultyPresets[d]
	return ok
}

func (d Difficulty) Depth() int           { return d.Preset().Depth }
func (d Difficulty) Elo() int             { return d.Preset().Elo }
func (d Difficulty) OpponentName() string { return d.Preset().OpponentName }

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "EASY"
	case Medium:
		return "MEDIUM"
	case Hard:
		return "HARD"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

// ParseColor maps w, b and r onto a side. r picks a side at random.
func ParseColor(raw string) (nchess.Color, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "w", "white":
		return nchess.White, nil
	case "b", "black":
		return nchess.Black, nil
	case "r", "random":
		return randomColor()
	}
	return nchess.NoColor, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
}

// ColorCode is the single-letter form used on the wire.
func ColorCode(c nchess.Color) string {
	switch c {
	case nchess.White:
		return "w"
	case nchess.Black:
		return "b"
	default:
		return ""
	}
}

func randomColor() (nchess.Color, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return nchess.NoColor, fmt.Errorf("random color: %w", err)
	}
	if n.Int64() == 0 {
		return nchess.White, nil
	}
	return nchess.Black, nil
}
