package internal

import (
	"io"
	"log/slog"
	"os"
)

// ParseLogLevel converts a string log level name to a slog.Level.
// Recognized values: "debug", "info", "warning"/"warn", "error".
// Defaults to slog.LevelInfo for unrecognized values.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", level)
		return slog.LevelInfo
	}
}

// NewLogger builds a text-handler logger writing to w at the named
// level. Every record carries an app attribute so clustertls lines are
// distinguishable when the library logs into a host process.
func NewLogger(w io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLogLevel(level),
	})
	return slog.New(handler).With("app", "clustertls")
}

// SetupLogger installs a stderr logger as the process default. Library
// warnings (for example a partial client identity configuration)
// surface through it.
func SetupLogger(level string) {
	slog.SetDefault(NewLogger(os.Stderr, level))
}
