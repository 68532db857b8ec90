// Package retry wraps operations with bounded exponential-backoff retry.
// Only transient failures are retried; terminal errors such as an empty
// search result surface immediately.
package retry

import (
	"context"
	"errors"
	"net"
	"time"
)

// Manager retries failed operations with exponential backoff capped at
// maxDelay. Total attempts = maxRetries + 1.
type Manager struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// New creates a retry manager. maxRetries is the number of additional
// attempts after the first.
func New(maxRetries int, baseDelay, maxDelay time.Duration) *Manager {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Manager{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
	}
}

// Do invokes op, retrying transient failures. The last error is returned
// unwrapped so the root cause stays visible. Cancellation of ctx aborts
// both the backoff sleep and further attempts.
func (m *Manager) Do(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(m.delay(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || !Retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// delay is the wait after the given zero-based failed attempt:
// min(baseDelay * 2^attempt, maxDelay).
func (m *Manager) delay(attempt int) time.Duration {
	d := m.baseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= m.maxDelay {
			return m.maxDelay
		}
	}
	if d > m.maxDelay {
		return m.maxDelay
	}
	return d
}

// transienter is implemented by errors that know their own retryability.
type transienter interface {
	Transient() bool
}

// Retryable reports whether err is worth retrying: errors that declare
// themselves transient, network errors, and request timeouts. Everything
// else, including cancellation and empty results, is terminal.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var tr transienter
	if errors.As(err, &tr) {
		return tr.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Per-request deadline hit; the crawl-level ctx case is filtered by the
	// caller before classification.
	return errors.Is(err, context.DeadlineExceeded)
}
