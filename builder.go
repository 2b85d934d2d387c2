package tasktree

import (
	"fmt"

	"github.com/petrijr/tasktree/pkg/api"
)

// Queue describes a sequential group. Each task is any leaf material or
// nested description.
func Queue(name string, tasks ...any) Composite {
	return Composite{Kind: api.DescriptionQueue, Name: name, Tasks: nonNil(tasks)}
}

// Parallel describes a concurrent group.
func Parallel(name string, tasks ...any) Composite {
	return Composite{Kind: api.DescriptionParallel, Name: name, Tasks: nonNil(tasks)}
}

// Step describes a named leaf.
func Step(name string, work any) StepDescription {
	return StepDescription{Name: name, Work: work}
}

// An empty call still describes a group with a task list.
func nonNil(tasks []any) []any {
	if tasks == nil {
		return []any{}
	}
	return tasks
}

// TreeBuilder provides a fluent API for describing a tree:
//
//	tree := tasktree.New("OnboardUser").
//	    Step("createAccount", createAccount).
//	    Parallel("notify", sendWelcomeEmail, postToSlack).
//	    Step("activate", activate).
//	    MustBuild()
//
//	out, err := tasktree.Run(ctx, tree, input)
//
// The root is a queue.
type TreeBuilder struct {
	desc Composite
}

// New creates a new tree builder with the given root name.
func New(name string) *TreeBuilder {
	return &TreeBuilder{desc: Queue(name)}
}

// Name returns the root name.
func (b *TreeBuilder) Name() string {
	return b.desc.Name
}

// Description returns the description built so far.
func (b *TreeBuilder) Description() Composite {
	tasks := make([]any, len(b.desc.Tasks))
	copy(tasks, b.desc.Tasks)
	return Composite{Kind: b.desc.Kind, Name: b.desc.Name, Tasks: tasks}
}

// Step appends a named leaf to the root queue.
func (b *TreeBuilder) Step(name string, work any) *TreeBuilder {
	if name == "" {
		panic("tasktree: step name must not be empty")
	}
	if work == nil {
		panic(fmt.Sprintf("tasktree: step %q has nil work", name))
	}
	b.desc.Tasks = append(b.desc.Tasks, Step(name, work))
	return b
}

// Parallel appends a concurrent group to the root queue.
func (b *TreeBuilder) Parallel(name string, tasks ...any) *TreeBuilder {
	b.desc.Tasks = append(b.desc.Tasks, Parallel(name, tasks...))
	return b
}

// Queue appends a nested sequential group to the root queue.
func (b *TreeBuilder) Queue(name string, tasks ...any) *TreeBuilder {
	b.desc.Tasks = append(b.desc.Tasks, Queue(name, tasks...))
	return b
}

// Then appends any description or leaf material to the root queue.
func (b *TreeBuilder) Then(task any) *TreeBuilder {
	b.desc.Tasks = append(b.desc.Tasks, task)
	return b
}

// Build builds the described tree.
func (b *TreeBuilder) Build(opts ...BuildOption) (Node, error) {
	return Build(b.Description(), opts...)
}

// MustBuild is like Build but panics on error.
func (b *TreeBuilder) MustBuild(opts ...BuildOption) Node {
	return MustBuild(b.Description(), opts...)
}
