package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Options overrides the defaults Init derives from env. Empty fields keep the default.
type Options struct {
	Env    string
	Level  string
	Format string
	Output io.Writer
}

func Init(env string) {
	InitWithOptions(Options{Env: env})
}

// InitWithOptions builds the process logger. Production defaults to JSON at info, anything
// else to text at debug.
func InitWithOptions(opts Options) *slog.Logger {
	level := slog.LevelDebug
	format := "text"
	if opts.Env == "production" {
		level = slog.LevelInfo
		format = "json"
	}
	if opts.Level != "" {
		level = parseLevel(opts.Level, level)
	}
	if opts.Format != "" {
		format = opts.Format
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}
