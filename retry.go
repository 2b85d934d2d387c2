package tasktree

import (
	"context"
	"time"
)

// RetryPolicy controls how a leaf's work is retried.
type RetryPolicy struct {
	// MaxAttempts counts the first call. Values <= 0 mean 1.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// BackoffMultiplier grows the delay after each retry. 0 means no growth.
	BackoffMultiplier float64

	// MaxBackoff caps the delay; 0 means no cap.
	MaxBackoff time.Duration
}

// RetryBuilder provides a fluent way to construct RetryPolicy values
// and apply them to leaf work.
type RetryBuilder struct {
	policy RetryPolicy
}

// Retry creates a RetryBuilder with the given maxAttempts.
//
// maxAttempts <= 0 is treated as 1 (no retries).
func Retry(maxAttempts int) RetryBuilder {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return RetryBuilder{
		policy: RetryPolicy{
			MaxAttempts: maxAttempts,
		},
	}
}

// WithExponentialBackoff configures exponential backoff:
//
//   - initial is the delay before the first retry.
//   - multiplier > 1 grows the delay each attempt (default 2.0 if <= 0).
//   - max caps the delay; if <= 0, there is no cap.
//
// Example:
//
//	Retry(3).WithExponentialBackoff(100*time.Millisecond, 2.0, 2*time.Second)
func (r RetryBuilder) WithExponentialBackoff(initial time.Duration, multiplier float64, max time.Duration) RetryBuilder {
	p := r.policy
	p.InitialBackoff = initial
	p.MaxBackoff = max
	if multiplier <= 0 {
		multiplier = 2.0
	}
	p.BackoffMultiplier = multiplier
	return RetryBuilder{policy: p}
}

// WithConstantBackoff configures a constant backoff between retries.
func (r RetryBuilder) WithConstantBackoff(delay time.Duration) RetryBuilder {
	p := r.policy
	p.InitialBackoff = delay
	p.MaxBackoff = 0
	p.BackoffMultiplier = 1.0
	return RetryBuilder{policy: p}
}

// Immediate disables any sleep between retries.
// Retries will still respect MaxAttempts.
func (r RetryBuilder) Immediate() RetryBuilder {
	p := r.policy
	p.InitialBackoff = 0
	p.MaxBackoff = 0
	p.BackoffMultiplier = 0
	return RetryBuilder{policy: p}
}

// Policy returns the underlying RetryPolicy.
func (r RetryBuilder) Policy() RetryPolicy {
	return r.policy
}

// Wrap returns work that retries fn according to the policy. Every attempt
// receives the same input. The last error is returned when attempts run
// out or ctx is done; no further attempt starts once ctx is done.
func (r RetryBuilder) Wrap(fn WorkFunc) WorkFunc {
	p := r.policy
	return func(ctx context.Context, input any) (any, error) {
		backoff := p.InitialBackoff
		var lastErr error

		for attempt := 1; attempt <= max(p.MaxAttempts, 1); attempt++ {
			if attempt > 1 && ctx.Err() != nil {
				return nil, lastErr
			}
			out, err := fn(ctx, input)
			if err == nil {
				return out, nil
			}
			lastErr = err

			if attempt == max(p.MaxAttempts, 1) || backoff <= 0 {
				continue
			}
			select {
			case <-ctx.Done():
				return nil, lastErr
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, p)
		}
		return nil, lastErr
	}
}

func nextBackoff(cur time.Duration, p RetryPolicy) time.Duration {
	if p.BackoffMultiplier > 0 {
		cur = time.Duration(float64(cur) * p.BackoffMultiplier)
	}
	if p.MaxBackoff > 0 && cur > p.MaxBackoff {
		cur = p.MaxBackoff
	}
	return cur
}
