package api

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports a malformed tree description.
type ConfigurationError struct {
	// Path locates the offending description, e.g. "root/tasks[2]".
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return "invalid task tree: " + e.Reason
	}
	return fmt.Sprintf("invalid task tree at %s: %s", e.Path, e.Reason)
}

// ExecutionError reports that a leaf's work failed.
type ExecutionError struct {
	Task  string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.Task, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// AggregateError is returned by a parallel group when two or more children
// fail. Errors are listed in declaration order of the failing children.
type AggregateError struct {
	Group  string
	Errors []error
}

func (e *AggregateError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d tasks failed in parallel group %q: %s",
		len(e.Errors), e.Group, strings.Join(msgs, "; "))
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// FailedTasks returns the names of every failed leaf recorded in err,
// flattening aggregates.
func FailedTasks(err error) []string {
	var out []string
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *ExecutionError:
			out = append(out, e.Task)
		case *AggregateError:
			for _, inner := range e.Errors {
				walk(inner)
			}
		default:
			var ee *ExecutionError
			if errors.As(err, &ee) {
				out = append(out, ee.Task)
			}
		}
	}
	walk(err)
	return out
}
