package deploy

import (
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/petrijr/tasktree/internal/envfile"
)

// TargetType selects how a target is prepared before deploying.
type TargetType string

const (
	// TargetStatic deploys the target directory as it is.
	TargetStatic TargetType = "static"

	// TargetUserCommands runs the target's commands first and deploys
	// their output.
	TargetUserCommands TargetType = "userCommands"
)

// Environment variables that override secrets in the config file.
const (
	EnvToken     = "VERCEL_TOKEN"
	EnvOrgID     = "VERCEL_ORG_ID"
	EnvProjectID = "VERCEL_PROJECT_ID"
)

// DefaultNullConfigPath is where the empty local Vercel config is written.
const DefaultNullConfigPath = "./vercel.null.def.json"

// Target is one directory to deploy.
type Target struct {
	Type      TargetType `yaml:"type"`
	TargetCWD string     `yaml:"targetCWD"`

	// URLs are the production domains aliased to the deployment.
	URLs []string `yaml:"url"`

	// OutputDirectory is a cpx glob of the files to publish, e.g.
	// "docs/.vitepress/dist/**/*". userCommands targets only.
	OutputDirectory string `yaml:"outputDirectory,omitempty"`

	// UserCommands run one after another before the output is copied.
	UserCommands []string `yaml:"userCommands,omitempty"`
}

// Config is a deploy configuration file.
type Config struct {
	ProjectName string `yaml:"vercelProjectName"`
	Token       string `yaml:"vercelToken"`
	OrgID       string `yaml:"vercelOrgId"`
	ProjectID   string `yaml:"vercelProjectId"`

	// NullConfigPath defaults to DefaultNullConfigPath.
	NullConfigPath string `yaml:"nullConfigPath,omitempty"`

	Targets []Target `yaml:"deployTargets"`
}

// LoadConfig reads the YAML config at path and overlays the Vercel
// credentials found in env.
func LoadConfig(path string, env envfile.Env) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deploy config: %w", err)
	}
	return ParseConfig(data, env)
}

// ParseConfig decodes YAML config data and overlays the Vercel credentials
// found in env. Values from env win over values in the file.
func ParseConfig(data []byte, env envfile.Env) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse deploy config: %w", err)
	}

	overlay := Config{
		Token:     env.Get(EnvToken),
		OrgID:     env.Get(EnvOrgID),
		ProjectID: env.Get(EnvProjectID),
	}
	if err := mergo.Merge(&cfg, overlay, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge deploy credentials: %w", err)
	}

	if cfg.NullConfigPath == "" {
		cfg.NullConfigPath = DefaultNullConfigPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem in the config.
func (c *Config) Validate() error {
	var errs []error
	if c.ProjectName == "" {
		errs = append(errs, errors.New("vercelProjectName is required"))
	}
	if len(c.Targets) == 0 {
		errs = append(errs, errors.New("deployTargets is empty"))
	}
	for i, t := range c.Targets {
		if t.TargetCWD == "" {
			errs = append(errs, fmt.Errorf("deployTargets[%d]: targetCWD is required", i))
		}
		switch t.Type {
		case TargetStatic:
		case TargetUserCommands:
			if t.OutputDirectory == "" {
				errs = append(errs, fmt.Errorf("deployTargets[%d]: outputDirectory is required for %s targets", i, t.Type))
			}
		default:
			errs = append(errs, fmt.Errorf("deployTargets[%d]: unknown type %q (want %q or %q)",
				i, t.Type, TargetStatic, TargetUserCommands))
		}
	}
	return errors.Join(errs...)
}
