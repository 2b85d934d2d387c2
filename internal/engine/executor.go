package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/petrijr/tasktree/pkg/api"
)

// Run evaluates node with the given input and returns its result.
//
// Semantics per node kind:
//   - Leaf: the task's result. A failure is returned as *api.ExecutionError
//     wrapping the cause.
//   - Queue: children run strictly in order; each child's result is the
//     next child's input; the result is the last child's result, or input
//     unchanged when the queue is empty. The first failure skips the
//     remaining children and is returned as-is.
//   - Parallel: all children start concurrently with the same input. Run
//     waits for every child to settle, then returns []any in declaration
//     order, a single failure as-is, or *api.AggregateError when two or
//     more children failed.
//
// Run never cancels work it has already started. ctx is handed to every
// task; groups check it only before dispatching children.
func Run(ctx context.Context, node api.Node, input any) (any, error) {
	switch n := node.(type) {
	case *api.Leaf:
		return runLeaf(ctx, n, input)
	case *api.Queue:
		return runQueue(ctx, n, input)
	case *api.Parallel:
		return runParallel(ctx, n, input)
	case nil:
		return nil, &api.ConfigurationError{Reason: "node is nil"}
	default:
		return nil, &api.ConfigurationError{Reason: fmt.Sprintf("unknown node type %T", node)}
	}
}

func runLeaf(ctx context.Context, n *api.Leaf, input any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &api.ExecutionError{Task: n.Name(), Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	out, err = n.Task().Run(ctx, input)
	if err == nil {
		return out, nil
	}

	// Tasks that run a subtree of their own already report in the
	// taxonomy; keep their error intact.
	var ee *api.ExecutionError
	var ae *api.AggregateError
	if errors.As(err, &ee) || errors.As(err, &ae) {
		return nil, err
	}
	return nil, &api.ExecutionError{Task: n.Name(), Cause: err}
}

func runQueue(ctx context.Context, n *api.Queue, input any) (any, error) {
	current := input
	for i := 0; i < n.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := Run(ctx, n.Child(i), current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func runParallel(ctx context.Context, n *api.Parallel, input any) (any, error) {
	count := n.Len()
	results := make([]any, count)
	if count == 0 {
		return results, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	errs := make([]error, count)
	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Run(ctx, n.Child(i), input)
		}(i)
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}

	switch len(failed) {
	case 0:
		return results, nil
	case 1:
		return nil, failed[0]
	default:
		return nil, &api.AggregateError{Group: n.Name(), Errors: failed}
	}
}
