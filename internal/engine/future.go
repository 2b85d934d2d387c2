package engine

import (
	"context"

	"github.com/petrijr/tasktree/pkg/api"
)

// Future is the pending outcome of a tree started with Start.
type Future struct {
	done  chan struct{}
	value any
	err   error
}

// Start runs node in a new goroutine and returns immediately.
func Start(ctx context.Context, node api.Node, input any) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = Run(ctx, node, input)
	}()
	return f
}

// Done is closed once the tree has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the tree has settled and returns its outcome.
func (f *Future) Wait() (any, error) {
	<-f.done
	return f.value, f.err
}

// WaitContext is like Wait but gives up when ctx is done. Giving up only
// stops the wait: tasks already dispatched keep running.
func (f *Future) WaitContext(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
