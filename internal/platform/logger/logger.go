package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a structured JSON logger using slog.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

// Discard returns a logger that drops everything. Used as the default for
// library components when the host application does not supply one.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
