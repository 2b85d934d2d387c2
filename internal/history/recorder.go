package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/tasktree/internal/ctxlog"
	"github.com/petrijr/tasktree/pkg/api"
)

// Recorder journals one run. It implements api.Observer.
//
// Observer callbacks cannot fail, so append errors are logged and the first
// one is kept for Err.
type Recorder struct {
	store Store
	runID string
	now   func() time.Time

	mu  sync.Mutex
	err error
}

// Ensure Recorder implements api.Observer.
var _ api.Observer = (*Recorder)(nil)

// NewRecorder returns a Recorder for a fresh run ID. A nil store discards
// events.
func NewRecorder(store Store) *Recorder {
	if store == nil {
		store = NoopStore{}
	}
	return &Recorder{
		store: store,
		runID: uuid.NewString(),
		now:   time.Now,
	}
}

// RunID identifies the run in the journal.
func (r *Recorder) RunID() string { return r.runID }

// RunStarted records the start of the run. name is usually the tree root.
func (r *Recorder) RunStarted(ctx context.Context, name string) {
	r.append(ctx, api.EventRunStarted, name, "")
}

// RunFinished records the outcome of the run.
func (r *Recorder) RunFinished(ctx context.Context, err error) {
	if err != nil {
		r.append(ctx, api.EventRunFailed, "", err.Error())
		return
	}
	r.append(ctx, api.EventRunCompleted, "", "")
}

func (r *Recorder) OnTaskStart(ctx context.Context, task string) {
	r.append(ctx, api.EventTaskStarted, task, "")
}

func (r *Recorder) OnTaskCompleted(ctx context.Context, task string, err error, d time.Duration) {
	if err != nil {
		r.append(ctx, api.EventTaskFailed, task, err.Error())
		return
	}
	r.append(ctx, api.EventTaskCompleted, task, d.String())
}

// Err returns the first error the store reported, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) append(ctx context.Context, typ api.EventType, task, detail string) {
	ev := api.RunEvent{
		RunID:  r.runID,
		At:     r.now(),
		Type:   typ,
		Task:   task,
		Detail: detail,
	}
	if err := r.store.AppendEvent(ctx, ev); err != nil {
		ctxlog.FromContext(ctx).WarnContext(ctx, "history append failed",
			slog.String("run_id", r.runID),
			slog.String("type", string(typ)),
			slog.Any("error", err),
		)
		r.mu.Lock()
		if r.err == nil {
			r.err = err
		}
		r.mu.Unlock()
	}
}
