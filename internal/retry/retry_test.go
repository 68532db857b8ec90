package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cesargomez89/discograph/internal/domain"
)

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	m := New(3, time.Millisecond, 10*time.Millisecond)

	calls := 0
	err := m.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &domain.TransientError{Op: "test", Status: 503}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	m := New(2, time.Millisecond, 10*time.Millisecond)

	cause := &domain.TransientError{Op: "test", Err: errors.New("connection reset")}
	calls := 0
	err := m.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return cause
	})

	if calls != 3 {
		t.Errorf("calls = %d, want maxRetries+1 = 3", calls)
	}
	// error identity preserved, no extra wrapping
	if !errors.Is(err, cause) {
		t.Errorf("Do returned %v, want the last error unchanged", err)
	}
}

func TestDoDoesNotRetryTerminalErrors(t *testing.T) {
	m := New(5, time.Millisecond, 10*time.Millisecond)

	notFound := &domain.NotFoundError{Entity: "artist", Query: "nobody"}
	calls := 0
	err := m.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return notFound
	})

	if calls != 1 {
		t.Errorf("calls = %d, terminal error must not be retried", calls)
	}
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("Do returned %v, want NotFoundError", err)
	}
}

func TestDoBackoffGrows(t *testing.T) {
	m := New(3, 20*time.Millisecond, 200*time.Millisecond)

	var stamps []time.Time
	_ = m.Do(context.Background(), func(ctx context.Context) error {
		stamps = append(stamps, time.Now())
		return &domain.TransientError{Op: "test", Status: 500}
	})

	if len(stamps) != 4 {
		t.Fatalf("attempts = %d, want 4", len(stamps))
	}
	var prev time.Duration
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		if gap < prev {
			t.Errorf("backoff between attempts %d and %d shrank: %v < %v", i, i+1, gap, prev)
		}
		prev = gap
	}
}

func TestDelayCapped(t *testing.T) {
	m := New(10, time.Second, 4*time.Second)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 4 * time.Second},
		{9, 4 * time.Second},
	}
	for _, tt := range tests {
		if got := m.delay(tt.attempt); got != tt.want {
			t.Errorf("delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDoHonorsCancellation(t *testing.T) {
	m := New(5, 50*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := m.Do(ctx, func(ctx context.Context) error {
		calls++
		return &domain.TransientError{Op: "test", Status: 500}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do returned %v, want context.Canceled", err)
	}
	if calls > 2 {
		t.Errorf("calls = %d, cancellation should stop further attempts", calls)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient", &domain.TransientError{Op: "x", Status: 500}, true},
		{"wrapped transient", fmt.Errorf("request: %w", &domain.TransientError{Op: "x"}), true},
		{"not found", &domain.NotFoundError{Entity: "artist", Query: "x"}, false},
		{"parse", &domain.ParseError{Source: "lastfm", Item: "album"}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
