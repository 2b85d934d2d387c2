package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/tasktree/pkg/api"
)

func TestStart_WaitReturnsOutcome(t *testing.T) {
	tree := MustBuild(api.Composite{Kind: "queue", Tasks: []any{
		func(ctx context.Context, input any) (any, error) { return input.(int) + 1, nil },
		func(ctx context.Context, input any) (any, error) { return input.(int) * 2, nil },
	}})

	f := Start(context.Background(), tree, 1)
	out, err := f.Wait()
	require.NoError(t, err)
	require.Equal(t, 4, out)

	select {
	case <-f.Done():
	default:
		t.Fatal("Done must be closed after Wait returns")
	}
}

func TestStart_AbandonedWaitDoesNotStopWork(t *testing.T) {
	var finished atomic.Bool
	release := make(chan struct{})

	tree := MustBuild(func(ctx context.Context, input any) (any, error) {
		<-release
		finished.Store(true)
		return "done", nil
	})

	f := Start(context.Background(), tree, nil)

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.WaitContext(waitCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	out, err := f.Wait()
	require.NoError(t, err)
	require.Equal(t, "done", out)
	require.True(t, finished.Load())
}
