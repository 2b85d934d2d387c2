package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petrijr/tasktree/internal/command"
	"github.com/petrijr/tasktree/internal/deploy"
	"github.com/petrijr/tasktree/internal/engine"
	"github.com/petrijr/tasktree/internal/history"
	"github.com/petrijr/tasktree/internal/treefile"
	"github.com/petrijr/tasktree/pkg/api"
)

func (a *app) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run FILE",
		Short: "Run a tree file",
		Long: `Run the task tree in FILE (.yaml, .yml, .json or .hcl). Command leaves
run through sh from the directory holding FILE.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.loadEnv()
			if err != nil {
				return err
			}
			return a.execute(cmd.Context(), func(opts ...engine.BuildOption) (api.Node, error) {
				return treefile.Build(args[0], command.ShellRunner{}, env, opts...)
			})
		},
	}
}

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a tree file and print its outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.loadEnv()
			if err != nil {
				return err
			}
			tree, err := treefile.Build(args[0], command.ShellRunner{}, env)
			if err != nil {
				return buildError(err)
			}
			return printTree(a.out, tree)
		},
	}
}

func (a *app) deployCommand() *cobra.Command {
	var (
		configPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Link, build and deploy Vercel targets",
		Long: `Deploy every target in the config file to Vercel. Targets move through
the link, build, user command and deploy stages together; each stage runs
its targets concurrently.

VERCEL_TOKEN, VERCEL_ORG_ID and VERCEL_PROJECT_ID from the environment or
the env files override the values in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.loadEnv()
			if err != nil {
				return err
			}
			cfg, err := deploy.LoadConfig(configPath, env)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}

			if dryRun {
				rec := &command.Recorder{Respond: dryRunResponse}
				err := a.execute(cmd.Context(), func(opts ...engine.BuildOption) (api.Node, error) {
					return engine.Build(deploy.Plan(cfg, rec, deploy.SkipWrites()), opts...)
				})
				for _, line := range rec.Lines() {
					fmt.Fprintln(a.out, line)
				}
				return err
			}

			return a.execute(cmd.Context(), func(opts ...engine.BuildOption) (api.Node, error) {
				return engine.Build(deploy.Plan(cfg, command.ShellRunner{}), opts...)
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "deploy.yaml", "Path to the deploy configuration file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the commands instead of running them")
	return cmd
}

// dryRunResponse stands in for vc output so later steps have input.
func dryRunResponse(line string, opts command.Options) (command.Result, error) {
	res := command.Result{Command: line}
	if strings.HasPrefix(line, "vc deploy") {
		res.Stdout = "https://dry-run.vercel.app\n"
	}
	return res, nil
}

func (a *app) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history RUN_ID",
		Short: "Print the journal of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.historyDB == "" {
				return &ExitError{Code: exitUsage, Message: "history requires --history-db"}
			}
			store, db, err := history.OpenSQLite(a.flags.historyDB)
			if err != nil {
				return &ExitError{Code: exitFailure, Message: err.Error()}
			}
			defer db.Close()

			events, err := store.ListEvents(cmd.Context(), args[0])
			if err != nil {
				return &ExitError{Code: exitFailure, Message: err.Error()}
			}
			if len(events) == 0 {
				return &ExitError{Code: exitFailure, Message: fmt.Sprintf("no history for run %s", args[0])}
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tEVENT\tTASK\tDETAIL")
			for _, ev := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ev.At.Format("15:04:05.000"), ev.Type, ev.Task, ev.Detail)
			}
			return tw.Flush()
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tasktree",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "tasktree %s\n", Version)
		},
	}
}
