// Package command runs shell commands as task tree leaves.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/petrijr/tasktree/internal/ctxlog"
	"github.com/petrijr/tasktree/pkg/api"
)

// Options controls a single command invocation.
type Options struct {
	// Dir is the working directory; empty means the current directory.
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the process environment.
	Env []string

	// Args are appended to the command line, separated by spaces.
	Args []string

	// Secrets are masked in the Result, errors and logs.
	Secrets []string
}

// Result is the outcome of a finished command.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, command string, opts Options) (Result, error)
}

// ExitError reports a command that ran but exited nonzero.
type ExitError struct {
	Result Result
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Result.Command, e.Result.ExitCode)
	if stderr := strings.TrimSpace(e.Result.Stderr); stderr != "" {
		msg += ": " + lastLine(stderr)
	}
	return msg
}

// ShellRunner runs commands through "sh -c" so that pipes, globs and
// quoting behave as they do in a terminal.
type ShellRunner struct {
	// Shell defaults to "sh".
	Shell string
}

// Ensure ShellRunner implements Runner.
var _ Runner = ShellRunner{}

func (s ShellRunner) Run(ctx context.Context, command string, opts Options) (Result, error) {
	line := Line(command, opts.Args)
	res := Result{Command: Mask(line, opts.Secrets)}

	shell := s.Shell
	if shell == "" {
		shell = "sh"
	}

	// ctx is not tied to the process: once started, a command runs to
	// completion even if the run is interrupted.
	cmd := exec.Command(shell, "-c", line)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	ctxlog.FromContext(ctx).DebugContext(ctx, "command_start",
		slog.String("command", res.Command),
		slog.String("dir", opts.Dir),
	)

	err := cmd.Run()
	res.Stdout = Mask(stdout.String(), opts.Secrets)
	res.Stderr = Mask(stderr.String(), opts.Secrets)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, &ExitError{Result: res}
	default:
		res.ExitCode = -1
		return res, fmt.Errorf("run %q: %w", res.Command, err)
	}
}

// Line joins command and args into one shell line.
func Line(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}

// Mask replaces every non-empty secret in s with "***".
func Mask(s string, secrets []string) string {
	for _, secret := range secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, "***")
		}
	}
	return s
}

// Task adapts a command into a leaf task. The task ignores its input and
// returns the Result.
func Task(r Runner, command string, opts Options) api.Task {
	return api.WorkFunc(func(ctx context.Context, _ any) (any, error) {
		res, err := r.Run(ctx, command, opts)
		if err != nil {
			return nil, err
		}
		return res, nil
	})
}

// LastLine returns the last non-empty line of the command's stdout.
func (r Result) LastLine() string {
	return lastLine(r.Stdout)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
