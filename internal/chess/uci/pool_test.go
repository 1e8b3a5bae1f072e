package uci

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	nchess "github.com/corentings/chess/v2"
)

func TestNewPool_MissingBinary(t *testing.T) {
	_, err := NewPool(PoolConfig{Base: Options{Path: filepath.Join(t.TempDir(), "missing")}})
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestPool_AcquireSpawnsAndWarms(t *testing.T) {
	pool, err := NewPool(PoolConfig{Base: fakeEngineOptions(t, "normal"), IdlePerBucket: 1})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	a, err := pool.Acquire(context.Background(), 3, 900)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer a.Close()
	if a.Depth() != 3 || a.Elo() != 900 {
		t.Fatalf("unexpected strength depth=%d elo=%d", a.Depth(), a.Elo())
	}
	if _, err := a.NextMove(context.Background(), nchess.NewGame()); err != nil {
		t.Fatalf("NextMove: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for pool.Idle(3, 900) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("pool did not warm a spare engine")
		}
		time.Sleep(20 * time.Millisecond)
	}

	b, err := pool.Acquire(context.Background(), 3, 900)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	defer b.Close()
	if a == b {
		t.Fatalf("pool handed out the same adapter twice")
	}
}

func TestPool_ClosedRejectsAcquire(t *testing.T) {
	pool, err := NewPool(PoolConfig{Base: fakeEngineOptions(t, "normal"), IdlePerBucket: -1})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := pool.Acquire(context.Background(), 1, 400); !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestPool_DiscardsIdleEngineThatIsNotReady(t *testing.T) {
	opt := fakeEngineOptions(t, "ready-once")
	opt.ReplyTimeout = 300 * time.Millisecond
	pool, err := NewPool(PoolConfig{Base: opt, IdlePerBucket: 1})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()
	if err := pool.Warm(3, 900); err != nil {
		t.Fatalf("Warm: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for pool.Idle(3, 900) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("pool did not warm a spare engine")
		}
		time.Sleep(20 * time.Millisecond)
	}
	pool.mu.Lock()
	bucket := pool.buckets[bucketKey(3, 900)]
	pool.mu.Unlock()
	stale, ok := bucket.take()
	if !ok || !bucket.put(stale) {
		t.Fatalf("could not inspect idle engine")
	}

	a, err := pool.Acquire(context.Background(), 3, 900)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer a.Close()
	if a == stale {
		t.Fatalf("pool handed out an engine that failed the readiness check")
	}
	if stale.Alive() {
		t.Fatalf("engine that failed the readiness check was not closed")
	}
}
