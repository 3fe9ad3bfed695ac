package logger

import (
	"io"
	"log/slog"
	"os"
)

var Logger *slog.Logger

// Init builds the process logger on stdout and installs it as the slog default.
func Init(debug bool) *slog.Logger {
	Logger = New(os.Stdout, debug)
	slog.SetDefault(Logger)
	return Logger
}

// New returns a text logger writing to w.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard is used by tests and by components constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
