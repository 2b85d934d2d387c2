package tasktree

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Ensure non-positive maxAttempts is normalized to 1.
func TestRetry_NonPositiveMaxAttemptsDefaultsToOne(t *testing.T) {
	p := Retry(0).Policy()
	if p.MaxAttempts != 1 {
		t.Fatalf("expected MaxAttempts=1 for Retry(0), got %d", p.MaxAttempts)
	}

	p = Retry(-5).Policy()
	if p.MaxAttempts != 1 {
		t.Fatalf("expected MaxAttempts=1 for Retry(-5), got %d", p.MaxAttempts)
	}
}

// Ensure WithExponentialBackoff wires fields correctly and default multiplier is applied.
func TestRetry_WithExponentialBackoff_UsesDefaults(t *testing.T) {
	initial := 100 * time.Millisecond
	max := 2 * time.Second

	p := Retry(3).
		WithExponentialBackoff(initial, 0, max).
		Policy()

	if p.MaxAttempts != 3 {
		t.Fatalf("expected MaxAttempts=3, got %d", p.MaxAttempts)
	}
	if p.InitialBackoff != initial || p.MaxBackoff != max {
		t.Fatalf("unexpected backoff bounds: %+v", p)
	}
	if p.BackoffMultiplier != 2.0 {
		t.Fatalf("expected BackoffMultiplier=2.0 (default), got %v", p.BackoffMultiplier)
	}
}

// Ensure WithConstantBackoff sets a fixed delay and uses multiplier 1.0.
func TestRetry_WithConstantBackoff(t *testing.T) {
	delay := 250 * time.Millisecond

	p := Retry(5).WithConstantBackoff(delay).Policy()

	if p.InitialBackoff != delay || p.MaxBackoff != 0 || p.BackoffMultiplier != 1.0 {
		t.Fatalf("unexpected constant backoff policy: %+v", p)
	}
}

// Ensure Immediate clears all backoff-related timing without changing MaxAttempts.
func TestRetry_ImmediateClearsBackoff(t *testing.T) {
	p := Retry(7).
		WithExponentialBackoff(100*time.Millisecond, 2.0, 5*time.Second).
		Immediate().
		Policy()

	if p.MaxAttempts != 7 {
		t.Fatalf("expected MaxAttempts=7, got %d", p.MaxAttempts)
	}
	if p.InitialBackoff != 0 || p.MaxBackoff != 0 || p.BackoffMultiplier != 0 {
		t.Fatalf("expected zero backoff after Immediate, got %+v", p)
	}
}

func TestRetry_WrapRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	work := Retry(3).Immediate().Wrap(func(ctx context.Context, input any) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("flaky")
		}
		return input, nil
	})

	out, err := work(context.Background(), "payload")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "payload" || attempts != 3 {
		t.Fatalf("got out=%v after %d attempts", out, attempts)
	}
}

func TestRetry_WrapReturnsLastError(t *testing.T) {
	attempts := 0
	work := Retry(2).WithConstantBackoff(time.Millisecond).Wrap(func(ctx context.Context, input any) (any, error) {
		attempts++
		return nil, errors.New("down")
	})

	_, err := work(context.Background(), nil)
	if err == nil || err.Error() != "down" || attempts != 2 {
		t.Fatalf("expected 2 attempts ending in down, got %d attempts, err=%v", attempts, err)
	}
}

func TestRetry_WrapStopsWaitingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	work := Retry(5).WithConstantBackoff(time.Hour).Wrap(func(ctx context.Context, input any) (any, error) {
		attempts++
		cancel()
		return nil, errors.New("down")
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = work(ctx, nil)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("retry kept waiting after cancellation")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetry_ImmediateStopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	work := Retry(5).Immediate().Wrap(func(ctx context.Context, input any) (any, error) {
		attempts++
		cancel()
		return nil, errors.New("down")
	})

	_, err := work(ctx, nil)
	if err == nil || err.Error() != "down" {
		t.Fatalf("expected last error down, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt after cancellation, got %d", attempts)
	}
}

func TestNextBackoff_CapsAtMax(t *testing.T) {
	p := Retry(5).WithExponentialBackoff(100*time.Millisecond, 3, 500*time.Millisecond).Policy()

	d := nextBackoff(p.InitialBackoff, p)
	if d != 300*time.Millisecond {
		t.Fatalf("expected 300ms, got %v", d)
	}
	if d = nextBackoff(d, p); d != 500*time.Millisecond {
		t.Fatalf("expected cap at 500ms, got %v", d)
	}
}
