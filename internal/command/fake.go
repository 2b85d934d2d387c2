package command

import (
	"context"
	"sync"
)

// Call records one invocation seen by a Recorder.
type Call struct {
	Command string
	Options Options
}

// Recorder is a Runner that records invocations instead of executing them.
// It backs dry runs and tests.
type Recorder struct {
	// Respond, if set, produces the result for each call. The default
	// echoes the command line on stdout. Lines are masked.
	Respond func(line string, opts Options) (Result, error)

	mu    sync.Mutex
	calls []Call
}

// Ensure Recorder implements Runner.
var _ Runner = (*Recorder)(nil)

func (r *Recorder) Run(ctx context.Context, command string, opts Options) (Result, error) {
	line := Mask(Line(command, opts.Args), opts.Secrets)

	r.mu.Lock()
	r.calls = append(r.calls, Call{Command: line, Options: opts})
	r.mu.Unlock()

	if r.Respond != nil {
		return r.Respond(line, opts)
	}
	return Result{Command: line, Stdout: line + "\n"}, nil
}

// Calls returns the recorded invocations in the order they started.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Lines returns the command lines of the recorded invocations.
func (r *Recorder) Lines() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Command
	}
	return out
}
