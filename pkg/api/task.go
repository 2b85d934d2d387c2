package api

import (
	"context"
	"sync/atomic"
)

// Task is an atomic unit of work. Run performs the work once per call and
// must not cache results between calls.
type Task interface {
	Run(ctx context.Context, input any) (any, error)
}

// WorkFunc is the function form of a Task. The input is the value handed
// down by the enclosing group; leaves that do not need it simply ignore it.
type WorkFunc func(ctx context.Context, input any) (any, error)

// Run lets a bare WorkFunc be used wherever a Task is expected.
func (f WorkFunc) Run(ctx context.Context, input any) (any, error) {
	return f(ctx, input)
}

// SimpleFunc is work that takes no input.
type SimpleFunc func(ctx context.Context) (any, error)

// FuncTask is the Task returned by Wrap. Constructing one does no work;
// each call to Run invokes the wrapped function again.
type FuncTask struct {
	work  WorkFunc
	calls atomic.Int64
}

// Ensure FuncTask implements Task.
var _ Task = (*FuncTask)(nil)

// Wrap returns a Task around work. A nil work function yields a task that
// passes its input through.
func Wrap(work WorkFunc) *FuncTask {
	if work == nil {
		work = func(ctx context.Context, input any) (any, error) { return input, nil }
	}
	return &FuncTask{work: work}
}

// WrapSimple is like Wrap for work that ignores its input.
func WrapSimple(work SimpleFunc) *FuncTask {
	if work == nil {
		return Wrap(nil)
	}
	return Wrap(func(ctx context.Context, _ any) (any, error) {
		return work(ctx)
	})
}

// Run invokes the wrapped work function.
func (t *FuncTask) Run(ctx context.Context, input any) (any, error) {
	t.calls.Add(1)
	return t.work(ctx, input)
}

// Calls reports how many times Run has been invoked on this task.
func (t *FuncTask) Calls() int64 {
	return t.calls.Load()
}
