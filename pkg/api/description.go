package api

// Discriminator values accepted in tree descriptions.
const (
	DescriptionQueue    = "queue"
	DescriptionParallel = "parallel"
)

// Field names used by map-shaped descriptions, e.g. those decoded from YAML
// or JSON.
const (
	FieldKind  = "kind"
	FieldTasks = "tasks"
	FieldName  = "name"
)

// Composite describes a queue or parallel group. Tasks holds nested
// descriptions: further composites or leaf material. A nil Tasks slice is
// treated as a missing children list.
type Composite struct {
	Kind  string
	Name  string
	Tasks []any
}

// Step is leaf material with a display name. Work may be a Task, a WorkFunc,
// a SimpleFunc or a plain function of either shape.
type Step struct {
	Name string
	Work any
}
