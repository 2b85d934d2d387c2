package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// logConfig is the validated form of --log-level and --log-format.
type logConfig struct {
	level slog.Level
	json  bool
}

func parseLogConfig(level, format string) (logConfig, error) {
	var cfg logConfig

	switch strings.ToLower(format) {
	case "text":
	case "json":
		cfg.json = true
	default:
		return cfg, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", format)
	}

	lvl, ok := logLevels[strings.ToLower(level)]
	if !ok {
		return cfg, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", level)
	}
	cfg.level = lvl
	return cfg, nil
}

// newLogger builds the run logger. It leaves slog.Default untouched so
// tests can run commands side by side.
func newLogger(cfg logConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.level}
	if cfg.json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
