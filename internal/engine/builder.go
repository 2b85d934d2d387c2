package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/petrijr/tasktree/pkg/api"
)

// LeafResolver converts leaf material the builder does not understand
// natively into a Task. It returns a nil task and nil error when raw is not
// its material either. The returned name, if non-empty, labels the leaf.
type LeafResolver func(raw any) (name string, task api.Task, err error)

// BuildOption customizes Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	observer api.Observer
	resolver LeafResolver
	rootName string
}

// WithObserver decorates every leaf so obs sees its start and completion.
func WithObserver(obs api.Observer) BuildOption {
	return func(c *buildConfig) { c.observer = obs }
}

// WithLeafResolver installs a resolver for custom leaf material.
func WithLeafResolver(r LeafResolver) BuildOption {
	return func(c *buildConfig) { c.resolver = r }
}

// WithRootName sets the path prefix used to name unnamed nodes
// (default "root").
func WithRootName(name string) BuildOption {
	return func(c *buildConfig) { c.rootName = name }
}

// Build converts a tree description into a canonical node tree.
//
// Building performs no execution and no I/O. Raw work functions are wrapped
// into fresh tasks on every call, so two trees built from the same
// description never share those leaves. Tasks passed in directly (a
// *api.FuncTask or any other api.Task) are used as-is and are shared by
// every tree built from that description, invocation count included.
func Build(desc any, opts ...BuildOption) (api.Node, error) {
	cfg := buildConfig{rootName: "root"}
	for _, opt := range opts {
		opt(&cfg)
	}
	b := &builder{cfg: cfg, active: make(map[any]struct{})}
	return b.build(desc, cfg.rootName)
}

// MustBuild is like Build but panics on error.
func MustBuild(desc any, opts ...BuildOption) api.Node {
	n, err := Build(desc, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

type builder struct {
	cfg buildConfig

	// active holds the composites on the current recursion path so that a
	// description containing itself is rejected instead of recursing forever.
	active map[any]struct{}
}

func (b *builder) build(desc any, path string) (api.Node, error) {
	switch v := desc.(type) {
	case nil:
		return nil, &api.ConfigurationError{Path: path, Reason: "description is nil"}
	case api.Composite:
		return b.compositeOnce(v, path)
	case *api.Composite:
		if v == nil {
			return nil, &api.ConfigurationError{Path: path, Reason: "description is nil"}
		}
		return b.compositeOnce(*v, path)
	case map[string]any:
		if _, ok := v[api.FieldKind]; !ok {
			return b.leaf(v, "", path)
		}
		key := reflect.ValueOf(v).Pointer()
		if err := b.enter(key, path); err != nil {
			return nil, err
		}
		defer b.leave(key)
		return b.fromMap(v, path)
	default:
		return b.leaf(desc, "", path)
	}
}

// compositeOnce builds c unless it is already being built further up the
// current path. Copies of a composite share their task list, so the list's
// backing array identifies it.
func (b *builder) compositeOnce(c api.Composite, path string) (api.Node, error) {
	if len(c.Tasks) > 0 {
		key := &c.Tasks[0]
		if err := b.enter(key, path); err != nil {
			return nil, err
		}
		defer b.leave(key)
	}
	return b.composite(c.Kind, c.Name, c.Tasks, path)
}

func (b *builder) enter(key any, path string) error {
	if _, ok := b.active[key]; ok {
		return &api.ConfigurationError{Path: path, Reason: "description contains itself"}
	}
	b.active[key] = struct{}{}
	return nil
}

func (b *builder) leave(key any) {
	delete(b.active, key)
}

func (b *builder) fromMap(m map[string]any, path string) (api.Node, error) {
	kind, ok := m[api.FieldKind].(string)
	if !ok {
		return nil, &api.ConfigurationError{
			Path:   path,
			Reason: fmt.Sprintf("%q must be a string, got %T", api.FieldKind, m[api.FieldKind]),
		}
	}

	var name string
	if raw, ok := m[api.FieldName]; ok && raw != nil {
		name, ok = raw.(string)
		if !ok {
			return nil, &api.ConfigurationError{
				Path:   path,
				Reason: fmt.Sprintf("%q must be a string, got %T", api.FieldName, raw),
			}
		}
	}

	var tasks []any
	if raw, ok := m[api.FieldTasks]; ok && raw != nil {
		tasks, ok = raw.([]any)
		if !ok {
			return nil, &api.ConfigurationError{
				Path:   path,
				Reason: fmt.Sprintf("%q must be a list, got %T", api.FieldTasks, raw),
			}
		}
	}

	return b.composite(kind, name, tasks, path)
}

func (b *builder) composite(kind, name string, tasks []any, path string) (api.Node, error) {
	if kind != api.DescriptionQueue && kind != api.DescriptionParallel {
		return nil, &api.ConfigurationError{
			Path:   path,
			Reason: fmt.Sprintf("unknown kind %q (want %q or %q)", kind, api.DescriptionQueue, api.DescriptionParallel),
		}
	}
	if tasks == nil {
		return nil, &api.ConfigurationError{
			Path:   path,
			Reason: fmt.Sprintf("%s is missing its %q list", kind, api.FieldTasks),
		}
	}

	if name == "" {
		name = path
	}

	// Unnamed descendants are named after their position below this node.
	children := make([]api.Node, 0, len(tasks))
	for i, t := range tasks {
		child, err := b.build(t, fmt.Sprintf("%s/%d", name, i))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	if kind == api.DescriptionQueue {
		return api.NewQueue(name, children...), nil
	}
	return api.NewParallel(name, children...), nil
}

func (b *builder) leaf(material any, name, path string) (api.Node, error) {
	task, label, err := b.task(material, path)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = label
	}
	if name == "" {
		name = path
	}
	if b.cfg.observer != nil {
		task = api.Observe(name, task, b.cfg.observer)
	}
	return api.NewLeaf(name, task), nil
}

// task converts leaf material into a Task, returning the label the material
// carries, if any.
func (b *builder) task(material any, path string) (api.Task, string, error) {
	nilWork := &api.ConfigurationError{Path: path, Reason: "leaf work function is nil"}

	switch w := material.(type) {
	case api.Step:
		task, label, err := b.task(w.Work, path)
		if w.Name != "" {
			label = w.Name
		}
		return task, label, err
	case *api.Step:
		if w == nil {
			return nil, "", nilWork
		}
		return b.task(*w, path)
	case *api.FuncTask:
		if w == nil {
			return nil, "", nilWork
		}
		return w, "", nil
	case api.WorkFunc:
		if w == nil {
			return nil, "", nilWork
		}
		return api.Wrap(w), "", nil
	case func(context.Context, any) (any, error):
		if w == nil {
			return nil, "", nilWork
		}
		return api.Wrap(w), "", nil
	case api.SimpleFunc:
		if w == nil {
			return nil, "", nilWork
		}
		return api.WrapSimple(w), "", nil
	case func(context.Context) (any, error):
		if w == nil {
			return nil, "", nilWork
		}
		return api.WrapSimple(w), "", nil
	case api.Task:
		if v := reflect.ValueOf(w); v.Kind() == reflect.Ptr && v.IsNil() {
			return nil, "", nilWork
		}
		return w, "", nil
	case nil:
		return nil, "", &api.ConfigurationError{Path: path, Reason: "leaf is nil"}
	}

	if b.cfg.resolver != nil {
		label, task, err := b.cfg.resolver(material)
		if err != nil {
			return nil, "", &api.ConfigurationError{Path: path, Reason: err.Error()}
		}
		if task != nil {
			return task, label, nil
		}
	}
	return nil, "", &api.ConfigurationError{
		Path:   path,
		Reason: fmt.Sprintf("cannot use %T as a task", material),
	}
}
