package uci

import (
	"bufio"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	bestMoveMarker    = "bestmove"
	moveBufferSize    = 1024
	controlBufferSize = 64
)

// engineOutput is what the reader hands to the adapter.
type engineOutput struct {
	// moves carries bestmove tokens.
	moves <-chan string
	// control carries handshake lines: uciok, readyok and the UCI_Elo option.
	control <-chan string
	// done is closed before moves and control.
	done <-chan struct{}
}

// startReader scans engine output until EOF. done is closed before the data
// channels, so a receiver that observes a closed channel also sees the engine
// as gone.
func startReader(r io.Reader, logger *zap.Logger) engineOutput {
	moves := make(chan string, moveBufferSize)
	control := make(chan string, controlBufferSize)
	done := make(chan struct{})

	go func() {
		defer close(control)
		defer close(moves)
		defer close(done)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if token, ok := parseBestMove(line); ok {
				select {
				case moves <- token:
				default:
					logger.Warn("engine_move_dropped", zap.String("token", token))
				}
				continue
			}
			if !isControlLine(line) {
				continue
			}
			select {
			case control <- line:
			default:
				logger.Debug("engine_control_dropped", zap.String("line", line))
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Debug("engine_output_closed", zap.Error(err))
		}
	}()

	return engineOutput{moves: moves, control: control, done: done}
}

// parseBestMove returns the token following the bestmove marker. A marker line
// without a token yields an empty token so the caller reports a parse failure.
func parseBestMove(line string) (string, bool) {
	idx := strings.Index(line, bestMoveMarker)
	if idx < 0 {
		return "", false
	}
	fields := strings.Fields(line[idx+len(bestMoveMarker):])
	if len(fields) == 0 {
		return "", true
	}
	return fields[0], true
}

func isControlLine(line string) bool {
	switch {
	case line == "uciok", line == "readyok":
		return true
	case strings.HasPrefix(line, "option name UCI_Elo "):
		return true
	default:
		return false
	}
}
