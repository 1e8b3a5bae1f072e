package chess

import (
	"errors"
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func TestParseDifficulty_Table(t *testing.T) {
	cases := []struct {
		raw      string
		want     Difficulty
		depth    int
		elo      int
		opponent string
	}{
		{"1", Easy, 1, 400, "Martin"},
		{"2", Medium, 3, 900, "Maggus Reischl"},
		{"3", Hard, 10, 3500, "Maggus Carlsen"},
		{" hard ", Hard, 10, 3500, "Maggus Carlsen"},
	}
	for _, tc := range cases {
		d, err := ParseDifficulty(tc.raw)
		if err != nil {
			t.Fatalf("ParseDifficulty(%q): %v", tc.raw, err)
		}
		if d != tc.want || d.Depth() != tc.depth || d.Elo() != tc.elo || d.OpponentName() != tc.opponent {
			t.Fatalf("ParseDifficulty(%q) = %v depth=%d elo=%d name=%q", tc.raw, d, d.Depth(), d.Elo(), d.OpponentName())
		}
	}
	for _, bad := range []string{"", "0", "4", "expert"} {
		if _, err := ParseDifficulty(bad); !errors.Is(err, ErrInvalidDifficulty) {
			t.Fatalf("ParseDifficulty(%q): expected ErrInvalidDifficulty, got %v", bad, err)
		}
	}
}

func TestParseColor(t *testing.T) {
	if c, err := ParseColor("w"); err != nil || c != nchess.White {
		t.Fatalf("w: %v %v", c, err)
	}
	if c, err := ParseColor("b"); err != nil || c != nchess.Black {
		t.Fatalf("b: %v %v", c, err)
	}
	seen := map[nchess.Color]bool{}
	for i := 0; i < 200; i++ {
		c, err := ParseColor("r")
		if err != nil {
			t.Fatalf("r: %v", err)
		}
		if c != nchess.White && c != nchess.Black {
			t.Fatalf("random produced %v", c)
		}
		seen[c] = true
	}
	if len(seen) != 2 {
		t.Fatalf("random color never varied: %v", seen)
	}
	if _, err := ParseColor("x"); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
	if ColorCode(nchess.White) != "w" || ColorCode(nchess.Black) != "b" {
		t.Fatalf("unexpected color codes")
	}
}
