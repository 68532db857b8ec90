package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAcquireBelowLimit(t *testing.T) {
	l := New(3, time.Second)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("acquisitions below the limit took %v, expected no blocking", elapsed)
	}
}

func TestAcquireBlocksWhenFull(t *testing.T) {
	window := 200 * time.Millisecond
	l := New(2, window)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("third Acquire failed: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < window/2 {
		t.Errorf("third Acquire blocked %v, expected at least %v", elapsed, window/2)
	}
}

func TestAcquireNeverExceedsWindow(t *testing.T) {
	window := 150 * time.Millisecond
	l := New(3, window)
	ctx := context.Background()

	var stamps []time.Time
	for i := 0; i < 7; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
		stamps = append(stamps, time.Now())
	}

	// In any trailing window there must be at most 3 acquisitions. A small
	// tolerance absorbs timer scheduling jitter.
	for i := 3; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-3]); gap < window-20*time.Millisecond {
			t.Errorf("acquisitions %d..%d spanned %v, want >= %v", i-3, i, gap, window)
		}
	}
}

func TestAcquireHonorsCancellation(t *testing.T) {
	l := New(1, time.Minute)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := l.Acquire(ctx)
	if err == nil {
		t.Fatal("Acquire should fail when ctx is cancelled during the wait")
	}
	if time.Since(start) > time.Second {
		t.Error("Acquire did not return promptly after cancellation")
	}
}

func TestConcurrentAcquire(t *testing.T) {
	l := New(5, 100*time.Millisecond)
	ctx := context.Background()

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			done <- l.Acquire(ctx)
		}()
	}

	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent Acquire failed: %v", err)
		}
	}
}
