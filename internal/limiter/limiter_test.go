package limiter

import (
	"context"
	"testing"
	"time"
)

func TestTryAcquireRespectsConcurrency(t *testing.T) {
	l := New(1, 0)

	release, ok := l.TryAcquire()
	if !ok {
		t.Fatal("expected first acquire to succeed")
	}
	if _, ok := l.TryAcquire(); ok {
		t.Fatal("expected second acquire to fail while slot is held")
	}
	if l.InFlight() != 1 {
		t.Errorf("expected 1 in flight, got %d", l.InFlight())
	}

	release()
	if _, ok := l.TryAcquire(); !ok {
		t.Error("expected acquire to succeed after release")
	}
}

func TestAcquireHonoursContext(t *testing.T) {
	l := New(1, 0)
	release, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := l.Acquire(ctx); err == nil {
		t.Error("expected context error while limiter is saturated")
	}
}

func TestTryAcquireKeepsRateTokenWhenFull(t *testing.T) {
	l := New(1, 1)

	release, ok := l.TryAcquire()
	if !ok {
		t.Fatal("expected first acquire to succeed")
	}
	if _, ok := l.TryAcquire(); ok {
		t.Fatal("expected acquire to fail while slot is held")
	}
	if l.InFlight() != 1 {
		t.Errorf("expected failed acquire to leave 1 in flight, got %d", l.InFlight())
	}
	release()
}
