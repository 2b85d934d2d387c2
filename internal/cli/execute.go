package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/petrijr/tasktree/internal/ctxlog"
	"github.com/petrijr/tasktree/internal/engine"
	"github.com/petrijr/tasktree/internal/history"
	"github.com/petrijr/tasktree/pkg/api"
)

// buildFunc builds a tree with the given extra options.
type buildFunc func(opts ...engine.BuildOption) (api.Node, error)

// execute builds and runs a tree with logging, metrics and, when
// configured, the history journal attached.
func (a *app) execute(ctx context.Context, build buildFunc) error {
	logger := ctxlog.FromContext(ctx)

	metrics := &api.BasicMetrics{}
	observers := []api.Observer{api.NewLoggingObserver(logger), metrics}

	var rec *history.Recorder
	if a.flags.historyDB != "" {
		store, db, err := history.OpenSQLite(a.flags.historyDB)
		if err != nil {
			return &ExitError{Code: exitFailure, Message: err.Error()}
		}
		defer db.Close()

		rec = history.NewRecorder(store)
		observers = append(observers, rec)
	}

	tree, err := build(engine.WithObserver(api.NewCompositeObserver(observers...)))
	if err != nil {
		return buildError(err)
	}

	if rec != nil {
		rec.RunStarted(ctx, tree.Name())
		ctx, logger = ctxlog.With(ctx, slog.String("run_id", rec.RunID()))
	}

	start := time.Now()
	_, runErr := engine.Run(ctx, tree, nil)
	elapsed := time.Since(start)

	if rec != nil {
		rec.RunFinished(ctx, runErr)
		if err := rec.Err(); err != nil {
			logger.WarnContext(ctx, "run history is incomplete", slog.Any("error", err))
		}
	}

	snap := metrics.Snapshot()
	if runErr != nil {
		logger.ErrorContext(ctx, "run_failed",
			slog.String("tree", tree.Name()),
			slog.Duration("duration", elapsed),
			slog.Any("failed_tasks", api.FailedTasks(runErr)),
		)
		return &ExitError{Code: exitFailure, Message: runErr.Error()}
	}

	logger.InfoContext(ctx, "run_completed",
		slog.String("tree", tree.Name()),
		slog.Duration("duration", elapsed),
		slog.Int64("tasks", snap.TasksCompleted),
		slog.Duration("avg_task_duration", snap.AvgTaskDuration),
	)
	if rec != nil {
		fmt.Fprintf(a.out, "run %s: %d tasks completed in %s\n", rec.RunID(), snap.TasksCompleted, elapsed.Round(time.Millisecond))
	} else {
		fmt.Fprintf(a.out, "%d tasks completed in %s\n", snap.TasksCompleted, elapsed.Round(time.Millisecond))
	}
	return nil
}

// buildError maps a build failure to an exit error. Malformed trees are
// usage errors.
func buildError(err error) error {
	if api.IsConfigurationError(err) {
		return &ExitError{Code: exitUsage, Message: err.Error()}
	}
	return &ExitError{Code: exitFailure, Message: err.Error()}
}
