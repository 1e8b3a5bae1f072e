package uci

import (
	"fmt"
	"strconv"
	"strings"
)

func buildPositionCommand(fen string) string {
	var sb strings.Builder
	if strings.TrimSpace(fen) == "" || fen == "startpos" {
		sb.WriteString("position startpos")
	} else {
		sb.WriteString("position fen ")
		sb.WriteString(fen)
	}
	sb.WriteString("\n")
	return sb.String()
}

func buildGoCommand(depth int) (string, error) {
	if depth <= 0 {
		return "", fmt.Errorf("search depth must be > 0: %d", depth)
	}
	return "go depth " + strconv.Itoa(depth) + "\n", nil
}

// eloRange is the UCI_Elo spin range an engine advertised during the uci
// handshake. The zero value means the engine did not say.
type eloRange struct {
	min, max int
}

func (r eloRange) known() bool { return r.max > 0 && r.min <= r.max }

// parseEloOption reads "option name UCI_Elo type spin default D min A max B".
func parseEloOption(line string) (eloRange, bool) {
	fields := strings.Fields(line)
	var r eloRange
	var haveMin, haveMax bool
	for i := 0; i+1 < len(fields); i++ {
		switch fields[i] {
		case "min":
			if n, err := strconv.Atoi(fields[i+1]); err == nil {
				r.min, haveMin = n, true
			}
		case "max":
			if n, err := strconv.Atoi(fields[i+1]); err == nil {
				r.max, haveMax = n, true
			}
		}
	}
	if !haveMin || !haveMax || !r.known() {
		return eloRange{}, false
	}
	return r, true
}

// strengthCommands limits the engine to elo. Engines ignore UCI_Elo values
// outside their advertised range, so targets below it are raised to the
// minimum and targets at or above the maximum play at full strength.
// A non-positive elo also means full strength.
func strengthCommands(elo int, r eloRange) []string {
	if elo <= 0 || (r.known() && elo >= r.max) {
		return []string{"setoption name UCI_LimitStrength value false\n"}
	}
	if r.known() && elo < r.min {
		elo = r.min
	}
	return []string{
		"setoption name UCI_LimitStrength value true\n",
		fmt.Sprintf("setoption name UCI_Elo value %d\n", elo),
	}
}
