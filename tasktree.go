package tasktree

import (
	"context"

	"github.com/petrijr/tasktree/internal/engine"
	"github.com/petrijr/tasktree/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Task                 = api.Task
	WorkFunc             = api.WorkFunc
	SimpleFunc           = api.SimpleFunc
	FuncTask             = api.FuncTask
	Node                 = api.Node
	Kind                 = api.Kind
	Leaf                 = api.Leaf
	QueueNode            = api.Queue
	ParallelNode         = api.Parallel
	Composite            = api.Composite
	StepDescription      = api.Step
	ConfigurationError   = api.ConfigurationError
	ExecutionError       = api.ExecutionError
	AggregateError       = api.AggregateError
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
	Future               = engine.Future
	BuildOption          = engine.BuildOption
	LeafResolver         = engine.LeafResolver
)

// Re-export node kinds for convenience.

const (
	KindLeaf     = api.KindLeaf
	KindQueue    = api.KindQueue
	KindParallel = api.KindParallel
)

// Re-export common helpers.

var (
	Wrap                 = api.Wrap
	WrapSimple           = api.WrapSimple
	Walk                 = api.Walk
	FailedTasks          = api.FailedTasks
	IsConfigurationError = api.IsConfigurationError
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	Observe              = api.Observe

	WithObserver     = engine.WithObserver
	WithLeafResolver = engine.WithLeafResolver
	WithRootName     = engine.WithRootName
)

// Build converts a description into a tree. See engine.Build.
func Build(desc any, opts ...BuildOption) (Node, error) {
	return engine.Build(desc, opts...)
}

// MustBuild is like Build but panics on error.
// Useful for initialization in main().
func MustBuild(desc any, opts ...BuildOption) Node {
	return engine.MustBuild(desc, opts...)
}

// Run evaluates tree with input and blocks until it settles.
func Run(ctx context.Context, tree Node, input any) (any, error) {
	return engine.Run(ctx, tree, input)
}

// Start begins evaluating tree in the background.
func Start(ctx context.Context, tree Node, input any) *Future {
	return engine.Start(ctx, tree, input)
}

// BuildAndRun builds desc and runs the result.
func BuildAndRun(ctx context.Context, desc any, input any, opts ...BuildOption) (any, error) {
	tree, err := Build(desc, opts...)
	if err != nil {
		return nil, err
	}
	return Run(ctx, tree, input)
}
