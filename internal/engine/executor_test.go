package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/tasktree/pkg/api"
)

// recorder is a test double that records every leaf invocation with the
// input it received.
type recorder struct {
	mu     sync.Mutex
	calls  []string
	inputs map[string][]any
}

func newRecorder() *recorder {
	return &recorder{inputs: make(map[string][]any)}
}

func (r *recorder) leaf(name string, out any, err error) api.Step {
	return api.Step{
		Name: name,
		Work: func(ctx context.Context, input any) (any, error) {
			r.mu.Lock()
			r.calls = append(r.calls, name)
			r.inputs[name] = append(r.inputs[name], input)
			r.mu.Unlock()
			return out, err
		},
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) inputOf(name string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.inputs[name]...)
}

func delayed(d time.Duration, out any) api.WorkFunc {
	return func(ctx context.Context, input any) (any, error) {
		time.Sleep(d)
		return out, nil
	}
}

func TestRun_EveryLeafInvokedExactlyOnce(t *testing.T) {
	var counters [6]atomic.Int64
	leaf := func(i int) api.WorkFunc {
		return func(ctx context.Context, input any) (any, error) {
			counters[i].Add(1)
			return i, nil
		}
	}

	desc := api.Composite{Kind: "queue", Tasks: []any{
		leaf(0),
		api.Composite{Kind: "parallel", Tasks: []any{
			leaf(1),
			api.Composite{Kind: "queue", Tasks: []any{
				leaf(2),
				api.Composite{Kind: "parallel", Tasks: []any{leaf(3), leaf(4)}},
			}},
		}},
		leaf(5),
	}}

	tree, err := Build(desc)
	require.NoError(t, err)

	_, err = Run(context.Background(), tree, nil)
	require.NoError(t, err)

	for i := range counters {
		require.Equal(t, int64(1), counters[i].Load(), "leaf %d", i)
	}
}

func TestRun_QueueChainsResults(t *testing.T) {
	rec := newRecorder()
	tree, err := Build(api.Composite{Kind: "queue", Tasks: []any{
		rec.leaf("A", "v", nil),
		rec.leaf("B", "w", nil),
		rec.leaf("C", "z", nil),
	}})
	require.NoError(t, err)

	out, err := Run(context.Background(), tree, "start")
	require.NoError(t, err)
	require.Equal(t, "z", out)

	require.Equal(t, []string{"A", "B", "C"}, rec.snapshot())
	require.Equal(t, []any{"start"}, rec.inputOf("A"))
	require.Equal(t, []any{"v"}, rec.inputOf("B"))
	require.Equal(t, []any{"w"}, rec.inputOf("C"))
}

func TestRun_QueueChainsResultsInsideParallel(t *testing.T) {
	rec := newRecorder()
	tree, err := Build(api.Composite{Kind: "parallel", Tasks: []any{
		api.Composite{Kind: "queue", Tasks: []any{
			rec.leaf("A", "v", nil),
			rec.leaf("B", "w", nil),
			rec.leaf("C", "z", nil),
		}},
		rec.leaf("D", "d", nil),
	}})
	require.NoError(t, err)

	out, err := Run(context.Background(), tree, "x")
	require.NoError(t, err)
	require.Equal(t, []any{"z", "d"}, out)

	require.Equal(t, []any{"x"}, rec.inputOf("A"))
	require.Equal(t, []any{"v"}, rec.inputOf("B"))
	require.Equal(t, []any{"w"}, rec.inputOf("C"))
	require.Equal(t, []any{"x"}, rec.inputOf("D"))
}

func TestRun_QueueShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	rec := newRecorder()
	tree, err := Build(api.Composite{Kind: "queue", Tasks: []any{
		rec.leaf("A", "v", nil),
		rec.leaf("B", nil, boom),
		rec.leaf("C", "z", nil),
	}})
	require.NoError(t, err)

	out, err := Run(context.Background(), tree, nil)
	require.Nil(t, out)
	require.ErrorIs(t, err, boom)

	var ee *api.ExecutionError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "B", ee.Task)

	require.Equal(t, []string{"A", "B"}, rec.snapshot())
	require.Empty(t, rec.inputOf("C"))
}

func TestRun_QueueShortCircuitsAtDepth(t *testing.T) {
	boom := errors.New("deep")
	rec := newRecorder()
	tree, err := Build(api.Composite{Kind: "queue", Tasks: []any{
		api.Composite{Kind: "queue", Tasks: []any{
			rec.leaf("A", 1, nil),
			api.Composite{Kind: "queue", Tasks: []any{
				rec.leaf("B", nil, boom),
				rec.leaf("C", 3, nil),
			}},
			rec.leaf("D", 4, nil),
		}},
		rec.leaf("E", 5, nil),
	}})
	require.NoError(t, err)

	_, err = Run(context.Background(), tree, nil)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"A", "B"}, rec.snapshot())
}

func TestRun_ParallelChildrenReceiveSameInput(t *testing.T) {
	rec := newRecorder()
	tree, err := Build(api.Composite{Kind: "parallel", Tasks: []any{
		rec.leaf("A", "a-out", nil),
		rec.leaf("B", "b-out", nil),
	}})
	require.NoError(t, err)

	out, err := Run(context.Background(), tree, "x")
	require.NoError(t, err)
	require.Equal(t, []any{"a-out", "b-out"}, out)
	require.Equal(t, []any{"x"}, rec.inputOf("A"))
	require.Equal(t, []any{"x"}, rec.inputOf("B"))
}

func TestRun_ParallelResultsInDeclarationOrder(t *testing.T) {
	tree, err := Build(api.Composite{Kind: "parallel", Tasks: []any{
		delayed(50*time.Millisecond, "x"),
		delayed(10*time.Millisecond, "y"),
	}})
	require.NoError(t, err)

	out, err := Run(context.Background(), tree, nil)
	require.NoError(t, err)
	require.Equal(t, []any{"x", "y"}, out)
}

func TestRun_ParallelRunsChildrenConcurrently(t *testing.T) {
	tree, err := Build(api.Composite{Kind: "parallel", Tasks: []any{
		delayed(60*time.Millisecond, 1),
		delayed(60*time.Millisecond, 2),
		delayed(60*time.Millisecond, 3),
	}})
	require.NoError(t, err)

	start := time.Now()
	_, err = Run(context.Background(), tree, nil)
	require.NoError(t, err)
	require.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestRun_ParallelWaitsForFullSettlement(t *testing.T) {
	boom := errors.New("boom")
	var sideEffectDone atomic.Bool

	tree, err := Build(api.Composite{Kind: "parallel", Tasks: []any{
		api.Step{Name: "A", Work: func(ctx context.Context, input any) (any, error) {
			return nil, boom
		}},
		api.Step{Name: "B", Work: func(ctx context.Context, input any) (any, error) {
			time.Sleep(40 * time.Millisecond)
			sideEffectDone.Store(true)
			return "b", nil
		}},
	}})
	require.NoError(t, err)

	_, err = Run(context.Background(), tree, nil)
	require.ErrorIs(t, err, boom)
	require.True(t, sideEffectDone.Load(), "B must complete before the group fails")
}

func TestRun_ParallelSingleFailureIsNotAggregated(t *testing.T) {
	boom := errors.New("boom")
	rec := newRecorder()
	tree, err := Build(api.Composite{Kind: "parallel", Tasks: []any{
		rec.leaf("A", "a", nil),
		rec.leaf("B", nil, boom),
	}})
	require.NoError(t, err)

	_, err = Run(context.Background(), tree, nil)
	var ee *api.ExecutionError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "B", ee.Task)

	var ae *api.AggregateError
	require.False(t, errors.As(err, &ae))
}

func TestRun_ParallelAggregatesMultipleFailures(t *testing.T) {
	errA := errors.New("a failed")
	errC := errors.New("c failed")
	rec := newRecorder()
	tree, err := Build(api.Composite{Kind: "parallel", Name: "stage", Tasks: []any{
		api.Step{Name: "A", Work: func(ctx context.Context, input any) (any, error) {
			time.Sleep(30 * time.Millisecond)
			return nil, errA
		}},
		rec.leaf("B", "b", nil),
		rec.leaf("C", nil, errC),
	}})
	require.NoError(t, err)

	_, err = Run(context.Background(), tree, nil)

	var ae *api.AggregateError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "stage", ae.Group)
	require.Len(t, ae.Errors, 2)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errC)
	require.Equal(t, []string{"A", "C"}, api.FailedTasks(err))
	require.ElementsMatch(t, []string{"B", "C"}, rec.snapshot())
}

func TestRun_EmptyComposites(t *testing.T) {
	queue, err := Build(map[string]any{"kind": "queue", "tasks": []any{}})
	require.NoError(t, err)

	out, err := Run(context.Background(), queue, "in")
	require.NoError(t, err)
	require.Equal(t, "in", out, "empty queue passes its input through")

	parallel, err := Build(map[string]any{"kind": "parallel", "tasks": []any{}})
	require.NoError(t, err)

	out, err = Run(context.Background(), parallel, "in")
	require.NoError(t, err)
	require.Equal(t, []any{}, out, "empty parallel yields an empty result list")
}

func TestRun_LeafErrorsAreWrappedOnce(t *testing.T) {
	boom := errors.New("boom")
	inner := MustBuild(api.Step{Name: "inner", Work: func(ctx context.Context, input any) (any, error) {
		return nil, boom
	}})

	// A leaf that runs a subtree reports the subtree's error untouched.
	outer := MustBuild(api.Step{Name: "outer", Work: func(ctx context.Context, input any) (any, error) {
		return Run(ctx, inner, input)
	}})

	_, err := Run(context.Background(), outer, nil)
	var ee *api.ExecutionError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "inner", ee.Task)
	require.ErrorIs(t, err, boom)
}

func TestRun_LeafPanicBecomesExecutionError(t *testing.T) {
	tree := MustBuild(api.Composite{Kind: "parallel", Tasks: []any{
		api.Step{Name: "panics", Work: func(ctx context.Context, input any) (any, error) {
			panic("kaboom")
		}},
		func(ctx context.Context, input any) (any, error) { return 1, nil },
	}})

	_, err := Run(context.Background(), tree, nil)
	var ee *api.ExecutionError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "panics", ee.Task)
	require.Contains(t, err.Error(), "kaboom")
}

func TestRun_QueueStopsDispatchingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := newRecorder()

	tree := MustBuild(api.Composite{Kind: "queue", Tasks: []any{
		api.Step{Name: "A", Work: func(ctx context.Context, input any) (any, error) {
			cancel()
			return "a", nil
		}},
		rec.leaf("B", "b", nil),
	}})

	_, err := Run(ctx, tree, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, rec.snapshot())
}

func TestRun_NilNode(t *testing.T) {
	_, err := Run(context.Background(), nil, nil)
	require.True(t, api.IsConfigurationError(err))
}

func TestRun_ObserverSeesEveryLeaf(t *testing.T) {
	metrics := &api.BasicMetrics{}
	boom := errors.New("boom")

	tree, err := Build(api.Composite{Kind: "parallel", Tasks: []any{
		func(ctx context.Context) (any, error) { return 1, nil },
		func(ctx context.Context) (any, error) { return 2, nil },
		func(ctx context.Context) (any, error) { return nil, boom },
	}}, WithObserver(metrics))
	require.NoError(t, err)

	_, err = Run(context.Background(), tree, nil)
	require.ErrorIs(t, err, boom)

	snap := metrics.Snapshot()
	require.Equal(t, int64(3), snap.TasksStarted)
	require.Equal(t, int64(2), snap.TasksCompleted)
	require.Equal(t, int64(1), snap.TasksFailed)
	require.Equal(t, int64(0), snap.TasksInFlight)
}
