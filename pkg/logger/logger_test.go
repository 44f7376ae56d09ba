package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewWithWriter(buf, level), buf
}

func TestNew(t *testing.T) {
	log := New()
	require.NotNil(t, log)
	require.NotNil(t, log.Logger)
}

func TestNewWithLevel(t *testing.T) {
	log := NewWithLevel(slog.LevelDebug)
	require.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewTextLogger(t *testing.T) {
	log := NewTextLogger()
	require.NotNil(t, log)
	require.NotNil(t, log.Logger)
}

func TestInfo_FormatsAndEmitsJSON(t *testing.T) {
	log, buf := newBufferLogger(slog.LevelInfo)
	log.Info("Published message to %s", "orders")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Published message to orders", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInfo_NoArgsKeepsPercent(t *testing.T) {
	log, buf := newBufferLogger(slog.LevelInfo)
	log.Info("100% delivered")

	assert.Contains(t, buf.String(), "100% delivered")
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		logFn func(l *Logger)
		want  string
	}{
		{"error", func(l *Logger) { l.Error("pull failed: %v", "timeout") }, "ERROR"},
		{"warn", func(l *Logger) { l.Warn("skipped %d", 2) }, "WARN"},
		{"debug", func(l *Logger) { l.Debug("body %q", "{}") }, "DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newBufferLogger(slog.LevelDebug)
			tt.logFn(log)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestDebug_FilteredAtInfo(t *testing.T) {
	log, buf := newBufferLogger(slog.LevelInfo)
	log.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestInfoContext(t *testing.T) {
	log, buf := newBufferLogger(slog.LevelInfo)
	log.InfoContext(context.Background(), "exchange completed", "status", 200)

	out := buf.String()
	assert.Contains(t, out, "exchange completed")
	assert.Contains(t, out, `"status":200`)
}

func TestWithAndWithGroup(t *testing.T) {
	log, buf := newBufferLogger(slog.LevelInfo)
	log.With("project", "demo").WithGroup("pull").Logger.Info("done", "count", 3)

	out := buf.String()
	assert.Contains(t, out, `"project":"demo"`)
	assert.Contains(t, out, `"pull":{"count":3}`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestMultipleLoggerInstances(t *testing.T) {
	log1 := New()
	log2 := New()
	assert.NotSame(t, log1, log2)
	assert.NotSame(t, log1.Logger, log2.Logger)
}
