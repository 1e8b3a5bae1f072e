package httpapi

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/Cheese-Arena/internal/chess"
	"github.com/park285/Cheese-Arena/internal/ledger"
	"github.com/park285/Cheese-Arena/internal/msgcat"
	"github.com/park285/Cheese-Arena/internal/session"
)

const (
	sessionCookie  = "session_key"
	welcomePage    = "/welcome_page.html"
	maxScoresLimit = 100
)

type Config struct {
	StaticDir     string
	ScoreTopLimit int
	SessionTTL    time.Duration
}

type Deps struct {
	Registry *session.Registry
	Engines  chess.EngineFactory
	Ledger   ledger.Repository
	Catalog  *msgcat.Catalog
	Logger   *zap.Logger
}

type Server struct {
	registry *session.Registry
	engines  chess.EngineFactory
	ledger   ledger.Repository
	catalog  *msgcat.Catalog
	logger   *zap.Logger
	cfg      Config

	static fasthttp.RequestHandler
	srv    *fasthttp.Server
}

func New(deps Deps, cfg Config) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ScoreTopLimit <= 0 {
		cfg.ScoreTopLimit = ledger.DefaultTopLimit
	}
	s := &Server{
		registry: deps.Registry,
		engines:  deps.Engines,
		ledger:   deps.Ledger,
		catalog:  deps.Catalog,
		logger:   logger,
		cfg:      cfg,
	}
	if strings.TrimSpace(cfg.StaticDir) != "" {
		fs := &fasthttp.FS{
			Root:            cfg.StaticDir,
			IndexNames:      []string{"index.html"},
			AcceptByteRange: true,
			PathNotFound:    func(ctx *fasthttp.RequestCtx) { ctx.Error("not found", fasthttp.StatusNotFound) },
		}
		s.static = fs.NewRequestHandler()
	}
	s.srv = &fasthttp.Server{
		Handler:      s.Handler(),
		Name:         "cheese-arena",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

// Handler routes requests and logs each one.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		s.route(ctx)
		s.logger.Debug("http_request",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	switch {
	case path == "/" && ctx.IsGet():
		ctx.Redirect(welcomePage, fasthttp.StatusSeeOther)
	case path == "/game" && (ctx.IsGet() || ctx.IsPost()):
		s.handleGame(ctx)
	case path == "/move" && ctx.IsPost():
		s.handleMove(ctx)
	case path == "/game_end" && ctx.IsGet():
		s.handleGameEnd(ctx)
	case path == "/scores" && ctx.IsGet():
		s.handleScores(ctx)
	case path == "/board.png" && ctx.IsGet():
		s.handleBoard(ctx)
	case s.static != nil && (ctx.IsGet() || ctx.IsHead()):
		s.static(ctx)
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http_listening", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}
