// Package history keeps an append-only journal of task tree runs.
//
// A Recorder is an api.Observer: attach it at build time and every leaf
// start and completion is appended to a Store together with the run's
// start and outcome. The journal is for audit and debugging only. Runs are
// never resumed from it.
package history
