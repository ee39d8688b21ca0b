package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options describe one process's logger. Output defaults to stdout.
type Options struct {
	Service string
	Version string
	Level   string
	Output  io.Writer
}

// New returns a JSON logger tagged with the service and, when set, its version.
// Debug level also records the call site.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	level := levelOf(opts.Level)
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})).With("service", opts.Service)
	if v := strings.TrimSpace(opts.Version); v != "" {
		logger = logger.With("version", v)
	}
	return logger
}

func NewJSONLogger(service, level string) *slog.Logger {
	return New(Options{Service: service, Level: level})
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

func levelOf(name string) slog.Level {
	if level, ok := levels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level
	}
	return slog.LevelInfo
}
