package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/Cheese-Arena/internal/chess"
	"github.com/park285/Cheese-Arena/internal/ledger"
	"github.com/park285/Cheese-Arena/internal/render"
	"github.com/park285/Cheese-Arena/internal/session"
	"github.com/park285/Cheese-Arena/pkg/chessdto"
)

func (s *Server) handleGame(ctx *fasthttp.RequestCtx) {
	oldID, _, hasSession := s.lookupSession(ctx)
	replace, _ := strconv.ParseBool(formValue(ctx, "new_session"))
	if hasSession && !replace {
		s.writeMessage(ctx, fasthttp.StatusBadRequest, "session.exists", nil)
		return
	}

	rawColor := formValue(ctx, "color")
	color, err := chess.ParseColor(rawColor)
	if err != nil {
		s.writeMessage(ctx, fasthttp.StatusBadRequest, "game.invalid_color", map[string]any{"Value": rawColor})
		return
	}
	rawDifficulty := formValue(ctx, "difficulty")
	difficulty, err := chess.ParseDifficulty(rawDifficulty)
	if err != nil {
		s.writeMessage(ctx, fasthttp.StatusBadRequest, "game.invalid_difficulty", map[string]any{"Value": rawDifficulty})
		return
	}
	username := strings.TrimSpace(formValue(ctx, "username"))
	if username == "" {
		s.writeMessage(ctx, fasthttp.StatusBadRequest, "game.missing_username", nil)
		return
	}

	game, err := chess.NewGame(ctx, s.engines, color, difficulty, username)
	if err != nil {
		s.logger.Error("game_create_failed", zap.String("username", username), zap.Stringer("difficulty", difficulty), zap.Error(err))
		s.writeMessage(ctx, fasthttp.StatusInternalServerError, "game.create_failed", nil)
		return
	}

	var id uuid.UUID
	if hasSession {
		id, _ = s.registry.Replace(oldID, game)
	} else {
		id, _ = s.registry.Create(game)
	}
	s.setSessionCookie(ctx, id)
	s.logger.Info("game_started",
		zap.String("session_id", id.String()),
		zap.String("username", username),
		zap.Stringer("difficulty", difficulty),
		zap.String("color", chess.ColorCode(color)),
	)

	s.writeJSON(ctx, fasthttp.StatusOK, chessdto.GameResponse{
		Username:   username,
		Difficulty: difficulty.OpponentName(),
		Color:      chess.ColorCode(color),
		FEN:        game.FEN(),
	})
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx) {
	id, entry, ok := s.lookupSession(ctx)
	if !ok {
		s.writeMessage(ctx, fasthttp.StatusBadRequest, "session.missing", nil)
		return
	}
	raw := strings.TrimSpace(string(ctx.PostBody()))

	var fen string
	err := entry.Do(ctx, func(g *chess.GameState) error {
		err := g.Play(ctx, raw)
		fen = g.FEN()
		return err
	})
	switch {
	case err == nil:
		s.writeText(ctx, fasthttp.StatusOK, fen)
	case errors.Is(err, session.ErrSessionClosed):
		s.writeMessage(ctx, fasthttp.StatusBadRequest, "session.closed", nil)
	case errors.Is(err, chess.ErrIllegalMove), errors.Is(err, chess.ErrGameOver):
		s.writeText(ctx, fasthttp.StatusNotAcceptable, fen)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeMessage(ctx, fasthttp.StatusServiceUnavailable, "game.busy", nil)
	default:
		s.logger.Error("engine_move_failed", zap.String("session_id", id.String()), zap.String("fen", fen), zap.Error(err))
		s.writeMessage(ctx, fasthttp.StatusInternalServerError, "game.engine_failed", nil)
	}
}

func (s *Server) handleGameEnd(ctx *fasthttp.RequestCtx) {
	id, entry, ok := s.lookupSession(ctx)
	if !ok {
		s.writeMessage(ctx, fasthttp.StatusBadRequest, "session.missing", nil)
		return
	}

	var (
		finished bool
		result   chessdto.GameEndResponse
		score    *ledger.ScoreEntry
	)
	err := entry.Do(ctx, func(g *chess.GameState) error {
		result.FEN = g.FEN()
		finished = g.Finished()
		if !finished {
			return nil
		}
		result.Outcome = g.Position.Outcome().String()
		result.Method = fmt.Sprint(g.Position.Method())
		result.PlayerWon = g.PlayerWon()
		if result.PlayerWon {
			e := ledger.NewScore(g.Username, g.PlayerMoves(), g.Difficulty.Depth())
			result.Score = e.Score
			score = &e
		}
		return nil
	})
	if errors.Is(err, session.ErrSessionClosed) {
		s.writeMessage(ctx, fasthttp.StatusBadRequest, "session.closed", nil)
		return
	}
	if err != nil {
		s.writeMessage(ctx, fasthttp.StatusServiceUnavailable, "game.busy", nil)
		return
	}
	if !finished {
		s.writeText(ctx, fasthttp.StatusNotAcceptable, result.FEN)
		return
	}

	if score != nil && s.ledger != nil {
		if err := s.ledger.Record(ctx, *score); err != nil {
			s.logger.Warn("score_record_failed", zap.String("winner", score.Winner), zap.Error(err))
		}
	}
	s.registry.Remove(id)
	ctx.Response.Header.DelClientCookie(sessionCookie)
	s.logger.Info("game_finished",
		zap.String("session_id", id.String()),
		zap.String("outcome", result.Outcome),
		zap.Bool("player_won", result.PlayerWon),
	)
	s.writeJSON(ctx, fasthttp.StatusOK, result)
}

func (s *Server) handleScores(ctx *fasthttp.RequestCtx) {
	limit := s.cfg.ScoreTopLimit
	if raw := strings.TrimSpace(string(ctx.QueryArgs().Peek("limit"))); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeMessage(ctx, fasthttp.StatusBadRequest, "scores.invalid_limit", map[string]any{"Value": raw})
			return
		}
		limit = min(n, maxScoresLimit)
	}
	if s.ledger == nil {
		s.writeJSON(ctx, fasthttp.StatusOK, []chessdto.ScoreEntry{})
		return
	}
	entries, err := s.ledger.Top(ctx, limit)
	if err != nil {
		s.logger.Error("score_query_failed", zap.Error(err))
		s.writeMessage(ctx, fasthttp.StatusInternalServerError, "scores.unavailable", nil)
		return
	}
	out := make([]chessdto.ScoreEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, chessdto.ScoreEntry{Winner: e.Winner, Score: e.Score})
	}
	s.writeJSON(ctx, fasthttp.StatusOK, out)
}

func (s *Server) handleBoard(ctx *fasthttp.RequestCtx) {
	_, entry, ok := s.lookupSession(ctx)
	if !ok {
		s.writeMessage(ctx, fasthttp.StatusBadRequest, "session.missing", nil)
		return
	}
	var png []byte
	err := entry.Do(ctx, func(g *chess.GameState) error {
		opts := render.Options{Orientation: g.PlayerColor}
		if moves := g.Position.Moves(); len(moves) > 0 {
			opts.LastMove = moves[len(moves)-1]
		}
		var err error
		png, err = render.BoardPNG(ctx, g.Position.Position().Board(), opts)
		return err
	})
	switch {
	case err == nil:
		ctx.SetContentType("image/png")
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBody(png)
	case errors.Is(err, session.ErrSessionClosed):
		s.writeMessage(ctx, fasthttp.StatusBadRequest, "session.closed", nil)
	default:
		s.logger.Error("board_render_failed", zap.Error(err))
		s.writeMessage(ctx, fasthttp.StatusInternalServerError, "render.failed", nil)
	}
}

func (s *Server) lookupSession(ctx *fasthttp.RequestCtx) (uuid.UUID, *session.Entry, bool) {
	raw := ctx.Request.Header.Cookie(sessionCookie)
	if len(raw) == 0 {
		return uuid.Nil, nil, false
	}
	id, err := uuid.ParseBytes(raw)
	if err != nil {
		return uuid.Nil, nil, false
	}
	entry, ok := s.registry.Find(id)
	if !ok {
		return uuid.Nil, nil, false
	}
	return id, entry, true
}

func (s *Server) setSessionCookie(ctx *fasthttp.RequestCtx, id uuid.UUID) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(sessionCookie)
	c.SetValue(id.String())
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	if s.cfg.SessionTTL > 0 {
		c.SetMaxAge(int(s.cfg.SessionTTL.Seconds()))
	}
	ctx.Response.Header.SetCookie(c)
}

func formValue(ctx *fasthttp.RequestCtx, key string) string {
	if v := ctx.QueryArgs().Peek(key); len(v) > 0 {
		return string(v)
	}
	if ctx.IsPost() {
		return string(ctx.PostArgs().Peek(key))
	}
	return ""
}

func (s *Server) writeMessage(ctx *fasthttp.RequestCtx, status int, key string, data any) {
	s.writeText(ctx, status, s.catalog.Text(key, data))
}

func (s *Server) writeText(ctx *fasthttp.RequestCtx, status int, body string) {
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(body)
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("json_encode_failed", zap.Error(err))
		ctx.Error("internal error", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(b)
}
