package api

// Kind identifies the variant of a Node.
type Kind string

const (
	KindLeaf     Kind = "leaf"
	KindQueue    Kind = "queue"
	KindParallel Kind = "parallel"
)

// Node is one element of a task tree. The set of implementations is closed:
// *Leaf, *Queue and *Parallel.
type Node interface {
	Kind() Kind
	Name() string

	sealed()
}

// Leaf wraps a single Task.
type Leaf struct {
	name string
	task Task
}

// NewLeaf returns a leaf node for task.
func NewLeaf(name string, task Task) *Leaf {
	return &Leaf{name: name, task: task}
}

func (l *Leaf) Kind() Kind   { return KindLeaf }
func (l *Leaf) Name() string { return l.name }
func (l *Leaf) Task() Task   { return l.task }
func (l *Leaf) sealed()      {}

// Queue runs its children one after another, piping each result into the
// next child.
type Queue struct {
	name     string
	children []Node
}

// NewQueue returns a queue node. The children slice is copied.
func NewQueue(name string, children ...Node) *Queue {
	return &Queue{name: name, children: cloneNodes(children)}
}

func (q *Queue) Kind() Kind   { return KindQueue }
func (q *Queue) Name() string { return q.name }
func (q *Queue) sealed()      {}

// Children returns a copy of the queue's children in declaration order.
func (q *Queue) Children() []Node { return cloneNodes(q.children) }

// Len returns the number of children.
func (q *Queue) Len() int { return len(q.children) }

// Child returns the i-th child.
func (q *Queue) Child(i int) Node { return q.children[i] }

// Parallel runs its children concurrently with the same input and collects
// their results in declaration order.
type Parallel struct {
	name     string
	children []Node
}

// NewParallel returns a parallel node. The children slice is copied.
func NewParallel(name string, children ...Node) *Parallel {
	return &Parallel{name: name, children: cloneNodes(children)}
}

func (p *Parallel) Kind() Kind   { return KindParallel }
func (p *Parallel) Name() string { return p.name }
func (p *Parallel) sealed()      {}

// Children returns a copy of the parallel node's children in declaration order.
func (p *Parallel) Children() []Node { return cloneNodes(p.children) }

// Len returns the number of children.
func (p *Parallel) Len() int { return len(p.children) }

// Child returns the i-th child.
func (p *Parallel) Child(i int) Node { return p.children[i] }

func cloneNodes(in []Node) []Node {
	out := make([]Node, len(in))
	copy(out, in)
	return out
}

// Walk visits n and all of its descendants depth-first in declaration order.
// Returning false from fn stops the descent below that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *Queue:
		for _, c := range v.children {
			Walk(c, fn)
		}
	case *Parallel:
		for _, c := range v.children {
			Walk(c, fn)
		}
	}
}
