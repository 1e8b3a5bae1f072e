package uci

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

type PoolConfig struct {
	// Base carries the binary, timeouts and logger shared by every adapter.
	// Depth and Elo are taken per Acquire.
	Base Options
	// IdlePerBucket is the number of warm adapters kept per strength.
	// Negative disables warming.
	IdlePerBucket int
	Logger        *zap.Logger
}

// Pool hands out engine adapters grouped by search strength. An acquired
// adapter belongs to the caller until it is closed; the pool only keeps
// spare processes warm so new games do not wait on engine startup.
type Pool struct {
	base          Options
	idlePerBucket int
	logger        *zap.Logger

	mu      sync.Mutex
	closed  bool
	buckets map[string]*adapterBucket
	wg      sync.WaitGroup
}

func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Base.Path == "" {
		return nil, fmt.Errorf("%w: binary path required", ErrEngineUnavailable)
	}
	path, err := exec.LookPath(cfg.Base.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: stockfish binary check: %w", ErrEngineUnavailable, err)
	}
	base := cfg.Base
	base.Path = path

	logger := cfg.Logger
	if logger == nil {
		logger = base.Logger
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base.Logger = logger

	idle := cfg.IdlePerBucket
	if idle == 0 {
		idle = defaultIdlePerBucket()
	}
	if idle < 0 {
		idle = 0
	}

	return &Pool{
		base:          base,
		idlePerBucket: idle,
		logger:        logger,
		buckets:       make(map[string]*adapterBucket),
	}, nil
}

// Acquire returns a ready adapter searching at depth with the given Elo cap.
// Idle adapters that fail the readiness check are discarded.
func (p *Pool) Acquire(ctx context.Context, depth, elo int) (*Adapter, error) {
	bucket, err := p.getBucket(depth, elo)
	if err != nil {
		return nil, err
	}

	for {
		a, ok := bucket.take()
		if !ok {
			break
		}
		if !a.Alive() {
			_ = a.Close()
			continue
		}
		if err := a.EnsureReady(ctx); err != nil {
			if ctx.Err() != nil {
				if !bucket.put(a) {
					_ = a.Close()
				}
				return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, ctx.Err())
			}
			p.logger.Warn("engine_idle_not_ready", zap.String("bucket", bucket.key), zap.Error(err))
			_ = a.Close()
			continue
		}
		p.refill(bucket)
		return a, nil
	}

	a, err := New(ctx, bucket.opt)
	if err != nil {
		return nil, err
	}
	p.refill(bucket)
	return a, nil
}

// Warm fills the bucket for depth/elo in the background.
func (p *Pool) Warm(depth, elo int) error {
	bucket, err := p.getBucket(depth, elo)
	if err != nil {
		return err
	}
	p.refill(bucket)
	return nil
}

// Idle reports the warm adapters currently held for depth/elo.
func (p *Pool) Idle(depth, elo int) int {
	p.mu.Lock()
	bucket, ok := p.buckets[bucketKey(depth, elo)]
	p.mu.Unlock()
	if !ok {
		return 0
	}
	return len(bucket.idle)
}

func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	buckets := make([]*adapterBucket, 0, len(p.buckets))
	for _, b := range p.buckets {
		buckets = append(buckets, b)
	}
	p.mu.Unlock()

	p.wg.Wait()

	var errs []error
	for _, bucket := range buckets {
		for {
			a, ok := bucket.take()
			if !ok {
				break
			}
			if err := a.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (p *Pool) getBucket(depth, elo int) (*adapterBucket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("%w: pool closed", ErrEngineUnavailable)
	}
	key := bucketKey(depth, elo)
	bucket, ok := p.buckets[key]
	if !ok {
		opt := p.base
		opt.Depth = depth
		opt.Elo = elo
		bucket = &adapterBucket{
			key:  key,
			opt:  opt,
			idle: make(chan *Adapter, max(p.idlePerBucket, 1)),
		}
		p.buckets[key] = bucket
	}
	return bucket, nil
}

// refill spawns adapters until the bucket holds idlePerBucket warm ones.
func (p *Pool) refill(bucket *adapterBucket) {
	p.mu.Lock()
	if p.closed || p.idlePerBucket == 0 {
		p.mu.Unlock()
		return
	}
	missing := p.idlePerBucket - len(bucket.idle) - bucket.pending
	if missing <= 0 {
		p.mu.Unlock()
		return
	}
	bucket.pending += missing
	p.wg.Add(missing)
	p.mu.Unlock()

	for i := 0; i < missing; i++ {
		go func() {
			defer p.wg.Done()
			a, err := New(context.Background(), bucket.opt)

			p.mu.Lock()
			bucket.pending--
			closed := p.closed
			p.mu.Unlock()

			if err != nil {
				p.logger.Warn("engine_warm_failed", zap.String("bucket", bucket.key), zap.Error(err))
				return
			}
			if closed || !bucket.put(a) {
				_ = a.Close()
			}
		}()
	}
}

type adapterBucket struct {
	key     string
	opt     Options
	idle    chan *Adapter
	pending int
}

func (b *adapterBucket) take() (*Adapter, bool) {
	select {
	case a := <-b.idle:
		return a, a != nil
	default:
		return nil, false
	}
}

func (b *adapterBucket) put(a *Adapter) bool {
	select {
	case b.idle <- a:
		return true
	default:
		return false
	}
}

func bucketKey(depth, elo int) string {
	return fmt.Sprintf("depth=%d|elo=%d", depth, elo)
}

func defaultIdlePerBucket() int {
	if runtime.NumCPU() < 2 {
		return 0
	}
	return 1
}
