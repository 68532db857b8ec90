// Package ratelimit provides a sliding-window request limiter. Unlike a
// token bucket it enforces "at most N calls in any trailing window" at all
// times, not just on average.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter bounds the rate of outgoing requests. Safe for concurrent use.
type Limiter struct {
	maxRequests int
	window      time.Duration

	mu     sync.Mutex
	stamps []time.Time
	now    func() time.Time
}

// New creates a limiter allowing maxRequests acquisitions per trailing
// window.
func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Acquire blocks until a request slot is available within the trailing
// window, then records the call. Returns early if ctx is cancelled during
// the wait.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		now := l.now()
		l.prune(now)

		if len(l.stamps) < l.maxRequests {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}

		// Window is full: wait for the oldest entry to expire, then
		// re-evaluate.
		wait := l.window - now.Sub(l.stamps[0])
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// prune drops stamps older than the window. Caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	cut := 0
	for cut < len(l.stamps) && now.Sub(l.stamps[cut]) >= l.window {
		cut++
	}
	if cut > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[cut:]...)
	}
}
