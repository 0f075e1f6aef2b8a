package common

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLogLevel maps debug, info, warn and error to slog levels. Anything
// else yields info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func NewLogger(out io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: ParseLogLevel(level)}))
}

// SetDefaultLogger installs a text logger at the given level as the slog default.
func SetDefaultLogger(out io.Writer, level string) {
	slog.SetDefault(NewLogger(out, level))
}
