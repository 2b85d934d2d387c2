package tasktree

import (
	"context"
	"fmt"
	"time"
)

// SleepStep returns work that waits for the given duration
// and passes the input through.
//
// It is context-aware: if the context is cancelled during the sleep,
// it returns ctx.Err.
func SleepStep(d time.Duration) WorkFunc {
	return func(ctx context.Context, input any) (any, error) {
		if d <= 0 {
			return input, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
			return input, nil
		}
	}
}

// Timeout runs fn with a context that expires after d. fn must honor its
// context for the deadline to take effect.
func Timeout(d time.Duration, fn WorkFunc) WorkFunc {
	return func(ctx context.Context, input any) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return fn(ctx, input)
	}
}

// TypedStep wraps a strongly-typed function into a WorkFunc.
// Example:
//
//	tasktree.TypedStep(func(ctx context.Context, s MyState) (MyState, error) { ... })
//
// A nil input is passed as the zero value of I.
func TypedStep[I, O any](fn func(context.Context, I) (O, error)) WorkFunc {
	return func(ctx context.Context, input any) (any, error) {
		var in I
		if input != nil {
			v, ok := input.(I)
			if !ok {
				return nil, fmt.Errorf("TypedStep: expected input of type %T, got %T", in, input)
			}
			in = v
		}
		return fn(ctx, in)
	}
}
