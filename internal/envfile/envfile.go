// Package envfile reads dotenv files and layers them over the process
// environment.
package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultPath is read when Load is called without paths.
const DefaultPath = ".env"

// Env holds the values read from dotenv files.
type Env struct {
	values map[string]string
}

// Load reads the given dotenv files in order; later files override earlier
// ones. Files that do not exist are skipped. The process environment is
// not modified.
func Load(paths ...string) (Env, error) {
	if len(paths) == 0 {
		paths = []string{DefaultPath}
	}

	env := Env{values: make(map[string]string)}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		vals, err := godotenv.Read(p)
		if err != nil {
			return Env{}, fmt.Errorf("read env file %s: %w", p, err)
		}
		for k, v := range vals {
			env.values[k] = v
		}
	}
	return env, nil
}

// FromMap builds an Env from explicit values.
func FromMap(values map[string]string) Env {
	env := Env{values: make(map[string]string, len(values))}
	for k, v := range values {
		env.values[k] = v
	}
	return env
}

// Lookup returns the value for key from the files first, then from the
// process environment.
func (e Env) Lookup(key string) (string, bool) {
	if v, ok := e.values[key]; ok {
		return v, true
	}
	return os.LookupEnv(key)
}

// Get is Lookup without the presence flag.
func (e Env) Get(key string) string {
	v, _ := e.Lookup(key)
	return v
}

// Pairs returns the file values as sorted KEY=VALUE pairs, suitable for
// exec.Cmd.Env.
func (e Env) Pairs() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "=" + e.values[k]
	}
	return out
}

// Map returns every visible variable: the process environment overlaid
// with the file values.
func (e Env) Map() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			out[k] = v
		}
	}
	for k, v := range e.values {
		out[k] = v
	}
	return out
}
