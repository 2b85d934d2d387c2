// Package api contains the core building blocks used by the tasktree engine:
// tasks, tree nodes, tree descriptions, the error taxonomy and the Observer
// hooks used to report leaf progress.
//
// Most users interact with the higher-level tasktree package, which
// re-exports selected types and helpers from this package.
//
// # Tasks
//
// A Task is an atomic unit of work with a single method:
//
//	Run(ctx context.Context, input any) (any, error)
//
// Wrap and WrapSimple turn plain functions into tasks. Wrapping is pure: no
// work happens until the executor calls Run, and every call runs the work
// again.
//
// # Nodes
//
// A tree is made of three node kinds:
//
//   - Leaf: a single Task
//   - Queue: children run one after another; each result becomes the next
//     child's input
//   - Parallel: children run concurrently with the same input; results are
//     collected in declaration order
//
// Nodes are immutable once constructed. The Node interface is sealed.
//
// # Descriptions
//
// Composite and Step describe trees declaratively; map[string]any values
// with "kind" and "tasks" keys are accepted too, so descriptions decoded
// from YAML or JSON can be built directly.
//
// # Errors
//
//   - ConfigurationError: the description is malformed
//   - ExecutionError: a leaf failed; wraps the original cause
//   - AggregateError: two or more children of a parallel group failed
package api
