package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks around leaf execution for logging and metrics.
// The executor never calls an Observer itself; leaves are decorated with one
// at build time (see Observe).
//
// Implementations must be safe for concurrent use: leaves inside a parallel
// group report from different goroutines.
type Observer interface {
	// OnTaskStart is called before the leaf's work is invoked.
	OnTaskStart(ctx context.Context, task string)

	// OnTaskCompleted is called after the work returns, for both successes
	// and failures (err != nil).
	OnTaskCompleted(ctx context.Context, task string, err error, duration time.Duration)
}

// Observe returns a Task that reports to obs around every call to task.
func Observe(name string, task Task, obs Observer) Task {
	if obs == nil {
		return task
	}
	return &observedTask{name: name, task: task, obs: obs}
}

type observedTask struct {
	name string
	task Task
	obs  Observer
}

func (t *observedTask) Run(ctx context.Context, input any) (any, error) {
	start := time.Now()
	t.obs.OnTaskStart(ctx, t.name)
	out, err := t.task.Run(ctx, input)
	t.obs.OnTaskCompleted(ctx, t.name, err, time.Since(start))
	return out, err
}

// Unwrap returns the decorated task.
func (t *observedTask) Unwrap() Task { return t.task }

// NoopObserver is an Observer that does nothing.
type NoopObserver struct{}

func (NoopObserver) OnTaskStart(ctx context.Context, task string) {}
func (NoopObserver) OnTaskCompleted(ctx context.Context, task string, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnTaskStart(ctx context.Context, task string) {
	for _, o := range c.observers {
		o.OnTaskStart(ctx, task)
	}
}

func (c *CompositeObserver) OnTaskCompleted(ctx context.Context, task string, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnTaskCompleted(ctx, task, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs task lifecycle events
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnTaskStart(ctx context.Context, task string) {
	o.Logger.InfoContext(ctx, "task_start",
		slog.String("task", task),
	)
}

func (o *LoggingObserver) OnTaskCompleted(ctx context.Context, task string, err error, d time.Duration) {
	if err != nil {
		o.Logger.ErrorContext(ctx, "task_failed",
			slog.String("task", task),
			slog.Duration("duration", d),
			slog.Any("error", err),
		)
		return
	}
	o.Logger.InfoContext(ctx, "task_completed",
		slog.String("task", task),
		slog.Duration("duration", d),
	)
}

// BasicMetrics collects simple counters and aggregate task durations.
type BasicMetrics struct {
	started       atomic.Int64
	completed     atomic.Int64
	failed        atomic.Int64
	totalDuration atomic.Int64 // nanoseconds, successful tasks only
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	TasksStarted   int64
	TasksCompleted int64
	TasksFailed    int64
	TasksInFlight  int64

	AvgTaskDuration time.Duration
}

func (m *BasicMetrics) OnTaskStart(ctx context.Context, task string) {
	m.started.Add(1)
}

func (m *BasicMetrics) OnTaskCompleted(ctx context.Context, task string, err error, d time.Duration) {
	if err != nil {
		m.failed.Add(1)
		return
	}
	m.completed.Add(1)
	m.totalDuration.Add(d.Nanoseconds())
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.started.Load()
	completed := m.completed.Load()
	failed := m.failed.Load()
	totalNs := m.totalDuration.Load()

	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(totalNs / completed)
	}

	return BasicMetricsSnapshot{
		TasksStarted:    started,
		TasksCompleted:  completed,
		TasksFailed:     failed,
		TasksInFlight:   started - completed - failed,
		AvgTaskDuration: avg,
	}
}
