package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/tasktree/internal/engine"
	"github.com/petrijr/tasktree/pkg/api"
)

func TestShellRunner_CapturesOutput(t *testing.T) {
	res, err := ShellRunner{}.Run(context.Background(), "echo", Options{Args: []string{"hello", "world"}})
	require.NoError(t, err)
	require.Equal(t, "echo hello world", res.Command)
	require.Equal(t, "hello world\n", res.Stdout)
	require.Equal(t, 0, res.ExitCode)
	require.Equal(t, "hello world", res.LastLine())
}

func TestShellRunner_DirAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), nil, 0o644))

	res, err := ShellRunner{}.Run(context.Background(), `ls; echo "$GREETING"`, Options{
		Dir: dir,
		Env: []string{"GREETING=hi"},
	})
	require.NoError(t, err)
	require.Equal(t, "marker\nhi\n", res.Stdout)
}

func TestShellRunner_NonzeroExit(t *testing.T) {
	res, err := ShellRunner{}.Run(context.Background(), "echo oops >&2; exit 3", Options{})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 3, exitErr.Result.ExitCode)
	require.Equal(t, 3, res.ExitCode)
	require.Contains(t, err.Error(), "status 3: oops")
}

func TestShellRunner_MissingShell(t *testing.T) {
	_, err := ShellRunner{Shell: "/nonexistent/shell"}.Run(context.Background(), "true", Options{})
	require.Error(t, err)

	var exitErr *ExitError
	require.False(t, errors.As(err, &exitErr))
}

func TestTask_FailureBecomesExecutionError(t *testing.T) {
	tree, err := engine.Build(api.Composite{Kind: "queue", Tasks: []any{
		api.Step{Name: "ok", Work: Task(ShellRunner{}, "true", Options{})},
		api.Step{Name: "fail", Work: Task(ShellRunner{}, "false", Options{})},
	}})
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), tree, nil)

	var ee *api.ExecutionError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "fail", ee.Task)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.Result.ExitCode)
}

func TestTask_ReturnsResult(t *testing.T) {
	rec := &Recorder{}
	out, err := Task(rec, "vc link", Options{Args: []string{"--yes"}}).Run(context.Background(), "ignored")
	require.NoError(t, err)
	require.Equal(t, "vc link --yes", out.(Result).Command)
	require.Equal(t, []string{"vc link --yes"}, rec.Lines())
}

func TestShellRunner_MasksSecrets(t *testing.T) {
	res, err := ShellRunner{}.Run(context.Background(), "false", Options{
		Args:    []string{"--token=s3cret"},
		Secrets: []string{"s3cret", ""},
	})
	require.Error(t, err)
	require.Equal(t, "false --token=***", res.Command)
	require.NotContains(t, err.Error(), "s3cret")
}

func TestShellRunner_MasksSecretsInOutput(t *testing.T) {
	opts := Options{Secrets: []string{"s3cret"}}

	res, err := ShellRunner{}.Run(context.Background(), "echo bad token s3cret >&2; exit 1", opts)
	require.Error(t, err)
	require.Equal(t, "bad token ***\n", res.Stderr)
	require.NotContains(t, err.Error(), "s3cret")
	require.Contains(t, err.Error(), "bad token ***")

	res, err = ShellRunner{}.Run(context.Background(), "echo using s3cret", opts)
	require.NoError(t, err)
	require.Equal(t, "using ***\n", res.Stdout)
}

func TestShellRunner_CancelDoesNotKillStartedCommand(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := ShellRunner{}.Run(ctx, "sleep 0.3 && touch marker", Options{Dir: dir})
	require.NoError(t, err)
	require.Error(t, ctx.Err(), "ctx should have been cancelled while the command ran")

	_, err = os.Stat(filepath.Join(dir, "marker"))
	require.NoError(t, err, "command should have run to completion")
}
