package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/petrijr/tasktree/internal/ctxlog"
	"github.com/petrijr/tasktree/internal/envfile"
)

// Version is reported by the version command. Release builds set it with
// -ldflags "-X github.com/petrijr/tasktree/internal/cli.Version=...".
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes.
const (
	exitFailure = 1
	exitUsage   = 2
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel  string
	logFormat string
	envFiles  []string
	historyDB string
}

type app struct {
	out    io.Writer
	errOut io.Writer
	flags  globalFlags
}

// NewRootCommand builds the tasktree command tree. Normal output goes to
// out; logs go to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "tasktree",
		Short: "Run trees of sequential and parallel tasks",
		Long: `tasktree runs task trees: queues run their children one after another,
feeding each result into the next child, and parallel groups run their
children concurrently and wait for all of them.

Trees are read from YAML, JSON or HCL files whose leaves are shell
commands. The deploy command builds such a tree for a Vercel release.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&a.flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringSliceVar(&a.flags.envFiles, "env-file", nil, "Dotenv files to load (default .env).")
	pf.StringVar(&a.flags.historyDB, "history-db", "", "SQLite file to journal runs into. Empty disables the journal.")

	root.AddCommand(
		a.runCommand(),
		a.validateCommand(),
		a.deployCommand(),
		a.historyCommand(),
		a.versionCommand(),
	)
	return root
}

// Execute runs the command line args and returns the error to exit with.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// setup validates the global flags and installs the logger in the
// command's context.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := parseLogConfig(a.flags.logLevel, a.flags.logFormat)
	if err != nil {
		return &ExitError{Code: exitUsage, Message: err.Error()}
	}

	logger := newLogger(cfg, a.errOut)
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
	logger.Debug("CLI parameter validation complete.", "command", cmd.Name())
	return nil
}

func (a *app) loadEnv() (envfile.Env, error) {
	env, err := envfile.Load(a.flags.envFiles...)
	if err != nil {
		return envfile.Env{}, &ExitError{Code: exitUsage, Message: err.Error()}
	}
	return env, nil
}
