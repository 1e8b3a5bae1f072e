package uci

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	nchess "github.com/corentings/chess/v2"
	"go.uber.org/zap"
)

type Options struct {
	Path string
	Args []string
	Env  []string

	Depth int
	Elo   int

	// ReplyTimeout bounds the wait for a bestmove. Zero derives it from Depth.
	ReplyTimeout time.Duration
	// SettleDelay is slept after the go command before waiting. Zero disables it.
	SettleDelay time.Duration

	Logger *zap.Logger
}

// Adapter drives a single engine subprocess. It is not safe for concurrent
// NextMove calls; callers hold the owning game's guard.
type Adapter struct {
	proc    *Process
	moves   <-chan string
	control <-chan string
	done    <-chan struct{}

	depth        int
	elo          int
	replyTimeout time.Duration
	settleDelay  time.Duration
	logger       *zap.Logger

	mu     sync.Mutex
	closed bool
	// stale counts bestmove replies still owed by searches that timed out.
	stale int
}

func New(ctx context.Context, opt Options) (*Adapter, error) {
	if err := validateOptions(opt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	logger := opt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	proc, err := StartProcess(opt.Path, opt.Args, opt.Env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	out := startReader(proc.stdout, logger)

	replyTimeout := opt.ReplyTimeout
	if replyTimeout <= 0 {
		replyTimeout = computeReplyTimeout(opt.Depth)
	}

	a := &Adapter{
		proc:         proc,
		moves:        out.moves,
		control:      out.control,
		done:         out.done,
		depth:        opt.Depth,
		elo:          opt.Elo,
		replyTimeout: replyTimeout,
		settleDelay:  opt.SettleDelay,
		logger:       logger.With(zap.Int("engine_pid", proc.Pid())),
	}

	if err := a.initialize(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	a.logger.Debug("engine_started", zap.Int("depth", opt.Depth), zap.Int("elo", opt.Elo))
	return a, nil
}

// initialize runs the uci handshake, applies the strength limit and waits
// until the engine reports ready.
func (a *Adapter) initialize(ctx context.Context) error {
	if err := a.send("uci\n"); err != nil {
		return fmt.Errorf("send uci: %w", err)
	}
	var bounds eloRange
	err := a.awaitControl(ctx, "uciok", func(line string) {
		if r, ok := parseEloOption(line); ok {
			bounds = r
		}
	})
	if err != nil {
		return fmt.Errorf("wait uciok: %w", err)
	}

	cmds := strengthCommands(a.elo, bounds)
	for _, cmd := range cmds {
		if err := a.send(cmd); err != nil {
			return fmt.Errorf("configure strength: %w", err)
		}
	}
	if bounds.known() {
		a.logger.Debug("engine_strength",
			zap.Int("elo", a.elo),
			zap.Int("elo_min", bounds.min),
			zap.Int("elo_max", bounds.max),
			zap.Bool("limited", len(cmds) > 1),
		)
	}
	return a.EnsureReady(ctx)
}

// EnsureReady sends isready and waits for readyok. It must not overlap a
// NextMove call.
func (a *Adapter) EnsureReady(ctx context.Context) error {
	a.drainControl()
	if err := a.send("isready\n"); err != nil {
		return fmt.Errorf("send isready: %w", err)
	}
	if err := a.awaitControl(ctx, "readyok", nil); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}
	return nil
}

// awaitControl waits up to the reply timeout for the control line token.
// Other control lines are passed to seen when it is non-nil.
func (a *Adapter) awaitControl(ctx context.Context, token string, seen func(string)) error {
	timer := time.NewTimer(a.replyTimeout)
	defer timer.Stop()
	for {
		select {
		case line, ok := <-a.control:
			if !ok {
				return errors.New("engine output closed")
			}
			if line == token {
				return nil
			}
			if seen != nil {
				seen(line)
			}
		case <-timer.C:
			return fmt.Errorf("no %s within %s", token, a.replyTimeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drainControl drops leftover control lines, e.g. a readyok that arrived
// after an earlier wait gave up.
func (a *Adapter) drainControl() {
	for {
		select {
		case _, ok := <-a.control:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func validateOptions(opt Options) error {
	if strings.TrimSpace(opt.Path) == "" {
		return errors.New("engine binary path required")
	}
	if opt.Depth <= 0 {
		return fmt.Errorf("search depth must be > 0: %d", opt.Depth)
	}
	if opt.Elo < 0 {
		return fmt.Errorf("elo must be >= 0: %d", opt.Elo)
	}
	return nil
}

func computeReplyTimeout(depth int) time.Duration {
	base := time.Duration(depth) * 300 * time.Millisecond
	if base < 6*time.Second {
		base = 6 * time.Second
	}
	if base > 20*time.Second {
		base = 20 * time.Second
	}
	return base
}

func (a *Adapter) Depth() int { return a.depth }
func (a *Adapter) Elo() int   { return a.elo }

// Alive reports whether the engine output stream is still open.
func (a *Adapter) Alive() bool {
	select {
	case <-a.done:
		return false
	default:
		return true
	}
}

// NextMove asks the engine for its reply in game's current position and
// resolves it against that position.
func (a *Adapter) NextMove(ctx context.Context, game *nchess.Game) (*nchess.Move, error) {
	if game == nil {
		return nil, errors.New("nil game")
	}
	pos := game.Position()

	if err := a.discardStale(ctx); err != nil {
		return nil, err
	}

	if err := a.send(buildPositionCommand(game.FEN())); err != nil {
		return nil, fmt.Errorf("%w: send position: %w", ErrProtocolWrite, err)
	}
	goCmd, err := buildGoCommand(a.depth)
	if err != nil {
		return nil, err
	}
	if err := a.send(goCmd); err != nil {
		return nil, fmt.Errorf("%w: send go: %w", ErrProtocolWrite, err)
	}

	if a.settleDelay > 0 {
		if err := sleepWithContext(ctx, a.settleDelay); err != nil {
			a.markStale()
			return nil, fmt.Errorf("%w: %w", ErrProtocolRead, err)
		}
	}

	token, err := a.receive(ctx)
	if err != nil {
		return nil, err
	}

	wire, err := ParseWireMove(token)
	if err != nil {
		return nil, err
	}
	mv, err := Resolve(wire, pos)
	if err != nil {
		a.logger.Warn("engine_move_unresolved", zap.String("move", wire), zap.String("fen", game.FEN()))
		return nil, err
	}
	return mv, nil
}

func (a *Adapter) receive(ctx context.Context) (string, error) {
	timer := time.NewTimer(a.replyTimeout)
	defer timer.Stop()

	select {
	case token, ok := <-a.moves:
		if !ok {
			return "", fmt.Errorf("%w: engine output closed", ErrProtocolRead)
		}
		return token, nil
	case <-timer.C:
		a.markStale()
		a.logger.Warn("engine_reply_timeout", zap.Duration("timeout", a.replyTimeout))
		return "", fmt.Errorf("%w: no reply within %s", ErrProtocolRead, a.replyTimeout)
	case <-ctx.Done():
		a.markStale()
		return "", fmt.Errorf("%w: %w", ErrProtocolRead, ctx.Err())
	}
}

// markStale asks the engine to cut the abandoned search short; its reply is
// discarded before the next request.
func (a *Adapter) markStale() {
	a.stale++
	if err := a.send("stop\n"); err != nil {
		a.logger.Debug("engine_stop_failed", zap.Error(err))
	}
}

func (a *Adapter) discardStale(ctx context.Context) error {
	if a.stale == 0 {
		return nil
	}
	timer := time.NewTimer(a.replyTimeout)
	defer timer.Stop()
	for a.stale > 0 {
		select {
		case token, ok := <-a.moves:
			if !ok {
				return fmt.Errorf("%w: engine output closed", ErrProtocolRead)
			}
			a.stale--
			a.logger.Debug("engine_stale_reply_discarded", zap.String("token", token))
		case <-timer.C:
			return fmt.Errorf("%w: engine still busy with an abandoned search", ErrProtocolRead)
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrProtocolRead, ctx.Err())
		}
	}
	return nil
}

func (a *Adapter) send(msg string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return io.ErrClosedPipe
	}
	_, err := io.WriteString(a.proc.stdin, msg)
	return err
}

// Close terminates the subprocess and waits for the reader to finish.
// Termination errors are logged and swallowed.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	if err := a.proc.Close(); err != nil {
		a.logger.Debug("engine_exit", zap.Error(err))
	}
	<-a.done
	return nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
