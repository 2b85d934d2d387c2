// Package tasktree composes units of work into trees of sequential and
// concurrent groups and runs them.
//
// # Core Concepts
//
// The programming model is small:
//
//  1. Task: a unit of work, run once per call
//  2. Queue: children run one after another, each fed the previous result
//  3. Parallel: children run together on the same input
//  4. Description: plain data (Composite, Step, maps) that Build turns
//     into a tree
//
// # Building
//
// Descriptions are built into immutable trees. Building does no work:
//
//	desc := tasktree.Queue("release",
//	    tasktree.Step("install", install),
//	    tasktree.Parallel("checks", lint, test),
//	    tasktree.Step("publish", publish),
//	)
//
//	tree, err := tasktree.Build(desc, tasktree.WithObserver(tasktree.NewLoggingObserver(nil)))
//
// Unknown group kinds and groups without a task list are rejected with a
// *ConfigurationError. Every Build wraps raw work functions into fresh
// tasks, so trees built from the same description never share state.
//
// # Running
//
// Run evaluates a tree and blocks until it settles; Start returns a Future
// instead. A queue stops at its first failure and returns it unchanged. A
// parallel group always waits for every child, then returns results in
// declaration order, the single failure, or an *AggregateError holding
// every failure. Leaf failures are wrapped once in an *ExecutionError.
//
// Work that has started is never cancelled by the engine. Cancelling the
// context only stops groups from starting further children.
//
// # Leaf helpers
//
// Retry and timeouts are not engine features. They wrap leaf work:
//
//	tasktree.Step("upload", tasktree.Retry(3).WithConstantBackoff(time.Second).Wrap(upload))
//	tasktree.Step("healthcheck", tasktree.Timeout(5*time.Second, healthcheck))
package tasktree
