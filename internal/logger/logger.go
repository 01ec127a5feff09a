// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup builds a JSON logger writing to stdout and, when file is non-empty,
// to a rotated log file. The logger is also installed as slog's default.
// The returned closer releases the file handle.
func Setup(level slog.Level, file string) (*slog.Logger, io.Closer) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if file != "" {
		rotator := &lumberjack.Logger{
			Filename: file,
			MaxSize:  10, // MB
			MaxAge:   30, // days
		}
		w = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	log := New(w, level)
	slog.SetDefault(log)
	return log, closer
}

// New returns a JSON logger over w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
