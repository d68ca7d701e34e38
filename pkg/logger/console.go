package logger

import (
	"log/slog"
	"os"
)

// NewConsoleHandler writes human-readable logs to stderr, keeping stdout
// free for command output.
func NewConsoleHandler(level slog.Level) slog.Handler {
	return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
}
