package api

import "time"

// EventType identifies a run history event.
type EventType string

const (
	EventRunStarted   EventType = "run.started"
	EventRunCompleted EventType = "run.completed"
	EventRunFailed    EventType = "run.failed"

	EventTaskStarted   EventType = "task.started"
	EventTaskCompleted EventType = "task.completed"
	EventTaskFailed    EventType = "task.failed"
)

// RunEvent is a minimal append-only history record for audit/debugging.
// It is never read back to resume a run.
type RunEvent struct {
	RunID string
	At    time.Time
	Type  EventType

	// Task is the leaf name for task events; empty for run events.
	Task string

	// Small, human-oriented details (e.g. error string, duration).
	// Keep this low-volume: do NOT dump command output here.
	Detail string
}
