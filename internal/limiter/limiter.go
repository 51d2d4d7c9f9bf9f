// Package limiter bounds how many generations run at once and how fast new
// ones may start.
package limiter

import (
	"context"

	"golang.org/x/time/rate"
)

type Limiter struct {
	semaphore   chan struct{}
	rateLimiter *rate.Limiter
}

// New creates a limiter. ratePerSecond <= 0 disables the token bucket.
func New(maxConcurrent int, ratePerSecond float64) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	limit := rate.Inf
	burst := maxConcurrent
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
		if b := int(ratePerSecond); b > burst {
			burst = b
		}
	}

	return &Limiter{
		semaphore:   make(chan struct{}, maxConcurrent),
		rateLimiter: rate.NewLimiter(limit, burst),
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if err := l.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	select {
	case l.semaphore <- struct{}{}:
		return func() { <-l.semaphore }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free and the rate allows it now.
func (l *Limiter) TryAcquire() (release func(), ok bool) {
	select {
	case l.semaphore <- struct{}{}:
	default:
		return nil, false
	}
	if !l.rateLimiter.Allow() {
		<-l.semaphore
		return nil, false
	}
	return func() { <-l.semaphore }, true
}

// InFlight reports how many slots are currently held.
func (l *Limiter) InFlight() int {
	return len(l.semaphore)
}
