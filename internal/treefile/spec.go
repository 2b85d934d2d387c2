package treefile

import (
	"fmt"
	"path/filepath"

	"github.com/petrijr/tasktree/internal/command"
	"github.com/petrijr/tasktree/internal/engine"
	"github.com/petrijr/tasktree/internal/envfile"
	"github.com/petrijr/tasktree/pkg/api"
)

// Leaf keys of a command mapping.
const (
	keyRun  = "run"
	keyName = "name"
	keyDir  = "dir"
	keyArgs = "args"
)

// Spec describes one command leaf.
type Spec struct {
	Name string
	Run  string
	Dir  string
	Args []string
}

// Label names the leaf: its explicit name, or the full command line.
func (s Spec) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return command.Line(s.Run, s.Args)
}

// specFromMap decodes a command mapping.
func specFromMap(m map[string]any) (Spec, error) {
	var s Spec
	for k, v := range m {
		switch k {
		case keyRun, keyName, keyDir:
			str, ok := v.(string)
			if !ok {
				return Spec{}, fmt.Errorf("%q must be a string, got %T", k, v)
			}
			switch k {
			case keyRun:
				s.Run = str
			case keyName:
				s.Name = str
			case keyDir:
				s.Dir = str
			}
		case keyArgs:
			list, ok := v.([]any)
			if !ok {
				return Spec{}, fmt.Errorf("%q must be a list, got %T", k, v)
			}
			for i, a := range list {
				str, ok := a.(string)
				if !ok {
					return Spec{}, fmt.Errorf("%s[%d] must be a string, got %T", keyArgs, i, a)
				}
				s.Args = append(s.Args, str)
			}
		default:
			return Spec{}, fmt.Errorf("unknown command field %q", k)
		}
	}
	if s.Run == "" {
		return Spec{}, fmt.Errorf("command is missing %q", keyRun)
	}
	return s, nil
}

// Resolver returns a leaf resolver that turns command material into tasks
// executed by r. Commands see env's file values on top of the process
// environment. Relative directories are resolved against baseDir.
func Resolver(r command.Runner, env envfile.Env, baseDir string) engine.LeafResolver {
	pairs := env.Pairs()

	return func(raw any) (string, api.Task, error) {
		var spec Spec
		switch v := raw.(type) {
		case Spec:
			spec = v
		case *Spec:
			if v == nil {
				return "", nil, fmt.Errorf("command is nil")
			}
			spec = *v
		case string:
			spec = Spec{Run: v}
		case map[string]any:
			s, err := specFromMap(v)
			if err != nil {
				return "", nil, err
			}
			spec = s
		default:
			return "", nil, nil
		}
		if spec.Run == "" {
			return "", nil, fmt.Errorf("command is empty")
		}

		dir := spec.Dir
		if dir == "" {
			dir = baseDir
		} else if !filepath.IsAbs(dir) && baseDir != "" {
			dir = filepath.Join(baseDir, dir)
		}

		return spec.Label(), command.Task(r, spec.Run, command.Options{
			Dir:  dir,
			Env:  pairs,
			Args: spec.Args,
		}), nil
	}
}
