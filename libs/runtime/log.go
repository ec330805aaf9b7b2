package runtime

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LogOptions selects the handler behind NewLogger.
type LogOptions struct {
	Level  string // debug|info|warn|error
	Format string // json|text
}

func NewLogger(service string) *slog.Logger {
	return NewLoggerWithOptions(service, LogOptions{})
}

func NewLoggerWithOptions(service string, opts LogOptions) *slog.Logger {
	return newLogger(os.Stdout, service, opts)
}

func newLogger(w io.Writer, service string, opts LogOptions) *slog.Logger {
	level := ParseLevel(opts.Level)
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "text") {
		// Human-friendly colored output for local runs.
		h = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.New(h).With("service", service)
}

// ParseLevel maps a level name to slog.Level; unknown names fall back to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
