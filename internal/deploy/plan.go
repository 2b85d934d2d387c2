package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/petrijr/tasktree/internal/command"
	"github.com/petrijr/tasktree/internal/ctxlog"
	"github.com/petrijr/tasktree/pkg/api"
)

// vcOutputStatic is the directory the Vercel build output API publishes.
const vcOutputStatic = ".vercel/output/static"

// PlanOption customizes Plan.
type PlanOption func(*planner)

// SkipWrites makes the write-null-config step log instead of writing.
func SkipWrites() PlanOption {
	return func(p *planner) { p.skipWrites = true }
}

type planner struct {
	cfg        *Config
	runner     command.Runner
	nullConfig string
	skipWrites bool
}

// Plan describes the whole release of cfg as a task tree whose commands
// run through r.
func Plan(cfg *Config, r command.Runner, opts ...PlanOption) api.Composite {
	p := &planner{cfg: cfg, runner: r, nullConfig: cfg.NullConfigPath}
	if p.nullConfig == "" {
		p.nullConfig = DefaultNullConfigPath
	}
	for _, opt := range opts {
		opt(p)
	}

	return api.Composite{Kind: api.DescriptionQueue, Name: "deploy", Tasks: []any{
		api.Step{Name: "write-null-config", Work: p.writeNullConfig},
		p.stage("link", p.link),
		p.stage("build", p.build),
		p.userCommandStage(),
		p.stage("release", p.release),
	}}
}

func (p *planner) stage(name string, perTarget func(Target) any) api.Composite {
	tasks := make([]any, 0, len(p.cfg.Targets))
	for _, t := range p.cfg.Targets {
		tasks = append(tasks, perTarget(t))
	}
	return api.Composite{Kind: api.DescriptionParallel, Name: name, Tasks: tasks}
}

func (p *planner) userCommandStage() api.Composite {
	tasks := []any{}
	for _, t := range p.cfg.Targets {
		if t.Type == TargetUserCommands {
			tasks = append(tasks, p.userCommands(t))
		}
	}
	return api.Composite{Kind: api.DescriptionParallel, Name: "user-commands", Tasks: tasks}
}

func (p *planner) writeNullConfig(ctx context.Context, _ any) (any, error) {
	path := p.nullConfig
	if p.skipWrites {
		ctxlog.FromContext(ctx).InfoContext(ctx, "skipping write", "path", path)
		return path, nil
	}
	if err := WriteNullConfig(path); err != nil {
		return nil, err
	}
	return path, nil
}

// vc returns a leaf running a vc subcommand with the shared flags.
func (p *planner) vc(name, sub string, args ...string) api.Step {
	return api.Step{Name: name, Work: command.Task(p.runner, "vc "+sub, p.options(args...))}
}

func (p *planner) options(args ...string) command.Options {
	if p.cfg.Token != "" {
		args = append(args, "--token="+p.cfg.Token)
	}
	var env []string
	if p.cfg.OrgID != "" {
		env = append(env, EnvOrgID+"="+p.cfg.OrgID)
	}
	if p.cfg.ProjectID != "" {
		env = append(env, EnvProjectID+"="+p.cfg.ProjectID)
	}
	return command.Options{Args: args, Env: env, Secrets: []string{p.cfg.Token}}
}

func (p *planner) link(t Target) any {
	return p.vc("link:"+t.TargetCWD, "link",
		"--yes",
		"--cwd="+t.TargetCWD,
		"--project="+p.cfg.ProjectName,
	)
}

func (p *planner) build(t Target) any {
	return p.vc("build:"+t.TargetCWD, "build",
		"--yes",
		"--prod",
		"--cwd="+t.TargetCWD,
		"--local-config="+p.nullConfig,
	)
}

// userCommands runs the target's own commands, then replaces the static
// output with the files matched by OutputDirectory.
func (p *planner) userCommands(t Target) any {
	tasks := make([]any, 0, len(t.UserCommands)+4)
	for _, c := range t.UserCommands {
		tasks = append(tasks, api.Step{Name: c, Work: command.Task(p.runner, c, command.Options{})})
	}

	prefix := "pnpm -C=" + t.TargetCWD + " "
	for _, c := range []string{
		"rimraf " + vcOutputStatic,
		"mkdirp " + vcOutputStatic,
		fmt.Sprintf("cpx %q %s", t.OutputDirectory, vcOutputStatic),
		"shx ls -R " + vcOutputStatic,
	} {
		tasks = append(tasks, api.Step{Name: c + " (" + t.TargetCWD + ")", Work: command.Task(p.runner, prefix+c, command.Options{})})
	}

	return api.Composite{Kind: api.DescriptionQueue, Name: "user-commands:" + t.TargetCWD, Tasks: tasks}
}

// release deploys the prebuilt target, then aliases the deployment URL
// printed by vc deploy to every configured domain.
func (p *planner) release(t Target) any {
	deploy := p.vc("deploy:"+t.TargetCWD, "deploy",
		"--yes",
		"--prebuilt",
		"--prod",
		"--cwd="+t.TargetCWD,
	)
	if len(t.URLs) == 0 {
		return api.Composite{Kind: api.DescriptionQueue, Name: "release:" + t.TargetCWD, Tasks: []any{deploy}}
	}

	aliases := make([]any, 0, len(t.URLs))
	for _, url := range t.URLs {
		aliases = append(aliases, api.Step{Name: "alias:" + url, Work: p.alias(url)})
	}
	return api.Composite{Kind: api.DescriptionQueue, Name: "release:" + t.TargetCWD, Tasks: []any{
		deploy,
		api.Composite{Kind: api.DescriptionParallel, Name: "alias:" + t.TargetCWD, Tasks: aliases},
	}}
}

// alias consumes the vc deploy result handed down by the release queue.
func (p *planner) alias(userURL string) api.WorkFunc {
	return func(ctx context.Context, input any) (any, error) {
		res, ok := input.(command.Result)
		if !ok {
			return nil, fmt.Errorf("alias %s: want the deploy result as input, got %T", userURL, input)
		}
		deploymentURL := res.LastLine()
		if deploymentURL == "" {
			return nil, errors.New("alias " + userURL + ": vc deploy printed no deployment URL")
		}
		return p.runner.Run(ctx, "vc alias set", p.options(deploymentURL, userURL))
	}
}
