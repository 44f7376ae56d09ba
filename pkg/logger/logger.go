package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with printf-style helpers
type Logger struct {
	*slog.Logger
}

// New creates a JSON logger writing to stdout at info level
func New() *Logger {
	return NewWithLevel(slog.LevelInfo)
}

// NewWithLevel creates a JSON logger writing to stdout at the given level
func NewWithLevel(level slog.Level) *Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewTextLogger creates a human readable logger writing to stdout
func NewTextLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

// NewWithWriter creates a JSON logger writing to w
func NewWithWriter(w io.Writer, level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Info logs informational messages
func (l *Logger) Info(format string, v ...any) {
	l.Logger.Info(sprintf(format, v...))
}

// Error logs error messages
func (l *Logger) Error(format string, v ...any) {
	l.Logger.Error(sprintf(format, v...))
}

// Warn logs warning messages
func (l *Logger) Warn(format string, v ...any) {
	l.Logger.Warn(sprintf(format, v...))
}

// Debug logs debug messages
func (l *Logger) Debug(format string, v ...any) {
	l.Logger.Debug(sprintf(format, v...))
}

// Fatal logs fatal messages and exits
func (l *Logger) Fatal(format string, v ...any) {
	l.Logger.Error(sprintf(format, v...), slog.String("level", "FATAL"))
	os.Exit(1)
}

// With returns a logger that adds args to every record
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithGroup returns a logger that nests subsequent attributes under name
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{Logger: l.Logger.WithGroup(name)}
}

func sprintf(format string, v ...any) string {
	if len(v) == 0 {
		return format
	}
	return fmt.Sprintf(format, v...)
}
