package treefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petrijr/tasktree/internal/command"
	"github.com/petrijr/tasktree/internal/engine"
	"github.com/petrijr/tasktree/internal/envfile"
	"github.com/petrijr/tasktree/pkg/api"
)

// Format is a tree file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatOf infers the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported tree file %s (want .yaml, .yml, .json or .hcl)", path)
	}
}

// Load reads and parses the tree file at path. The result is a
// description ready for engine.Build with Resolver installed.
func Load(path string, env envfile.Env) (any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tree file: %w", err)
	}
	return Parse(data, format, path, env)
}

// Parse decodes a tree description. filename is used in diagnostics only.
func Parse(data []byte, format Format, filename string, env envfile.Env) (any, error) {
	switch format {
	case FormatYAML:
		var desc any
		if err := yaml.Unmarshal(data, &desc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
		return normalize(desc), nil
	case FormatJSON:
		var desc any
		if err := json.Unmarshal(data, &desc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
		return desc, nil
	case FormatHCL:
		return parseHCL(data, filename, env)
	default:
		return nil, fmt.Errorf("unknown tree file format %q", format)
	}
}

// Build loads the file at path and builds it into a tree whose command
// leaves run through r from the file's directory.
func Build(path string, r command.Runner, env envfile.Env, opts ...engine.BuildOption) (api.Node, error) {
	desc, err := Load(path, env)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	opts = append([]engine.BuildOption{
		engine.WithRootName(name),
		engine.WithLeafResolver(Resolver(r, env, filepath.Dir(path))),
	}, opts...)
	return engine.Build(desc, opts...)
}

// normalize converts the map[any]any values yaml.v3 produces for
// non-string keys so every mapping is a map[string]any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}
