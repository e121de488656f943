package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		want    string
	}{
		{"basic path", "imlogs", filepath.Join("imlogs", "industrial_melee.20260212_213836.log")},
		{"relative path with dot", "./imlogs", filepath.Join(".", "imlogs", "industrial_melee.20260212_213836.log")},
		{"absolute path", filepath.Join("/var", "log", "im"), filepath.Join("/var", "log", "im", "industrial_melee.20260212_213836.log")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LogFilePath(tt.logsDir, "industrial_melee", sessionStart))
		})
	}
}

func captureStdout(t *testing.T) func() string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	return func() string {
		w.Close()
		os.Stdout = orig
		out, _ := io.ReadAll(r)
		return string(out)
	}
}

func TestSetup_FileOnly_NoStdout(t *testing.T) {
	done := captureStdout(t)

	var file bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{File: &file, Level: "info"})
	m.Logger().Info("hello file")

	stdout := done()
	assert.Contains(t, file.String(), "hello file")
	assert.Empty(t, stdout)
}

func TestSetup_NoFile_WritesToStdout(t *testing.T) {
	done := captureStdout(t)

	m := NewSlogManager()
	m.Setup(Options{Level: "info"})
	m.Logger().Info("hello console")

	assert.Contains(t, done(), "hello console")
}

func TestSetup_Levels(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{File: &buf, Level: "info"})
	m.Logger().Debug("should be filtered")
	m.Logger().Info("should appear")
	assert.NotContains(t, buf.String(), "should be filtered")
	assert.Contains(t, buf.String(), "should appear")

	buf.Reset()
	m.Setup(Options{File: &buf, Level: "DEBUG"})
	m.Logger().Debug("debug msg")
	assert.Contains(t, buf.String(), "debug msg")
}

type stubClock struct{ tick int }

func (c *stubClock) Tick() int { return c.tick }

func TestSetup_GraylogAndSession(t *testing.T) {
	var file, gelf bytes.Buffer
	clock := &stubClock{}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewSlogManager()
	m.Setup(Options{
		File:    &file,
		Level:   "info",
		Graylog: &gelf,
		Session: &Session{
			Start: start,
			Clock: clock,
			Now:   func() time.Time { return start.Add(90 * time.Second) },
		},
	})
	gelf.Reset()

	clock.tick = 4200
	m.Logger().Info("effect fired", "kind", "gore")

	assert.Contains(t, file.String(), "tick=4200")
	assert.Contains(t, file.String(), "uptime=1m30s")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(gelf.Bytes(), &entry))
	assert.Equal(t, "effect fired", entry["msg"])
	assert.Equal(t, "gore", entry["kind"])
	assert.Equal(t, float64(4200), entry["tick"])
}

func TestSessionHandler_OmitsUnsetParts(t *testing.T) {
	var buf bytes.Buffer
	h := NewSessionHandler(slog.NewTextHandler(&buf, nil), Session{})
	slog.New(h).With("actor", "pawn1").WithGroup("").Info("spawned")

	assert.Contains(t, buf.String(), "actor=pawn1")
	assert.NotContains(t, buf.String(), "tick=")
	assert.NotContains(t, buf.String(), "uptime=")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	assert.Equal(t, slog.Default(), NewSlogManager().Logger())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandler_ContinuesPastFailure(t *testing.T) {
	var buf bytes.Buffer
	text := slog.NewTextHandler(&buf, nil)
	h := NewMultiHandler(failingHandler{text}, nil, text)

	err := slog.New(h).Handler().Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still here", 0))
	assert.ErrorContains(t, err, "sink down")
	assert.Contains(t, buf.String(), "still here")
}

func TestMultiHandler_WithAttrsAndGroup(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))
	slog.New(h).With("actor", "pawn1").WithGroup("hit").Info("resolved", "weapon", "DrillSpear")

	for _, buf := range []*bytes.Buffer{&a, &b} {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "pawn1", entry["actor"])
		assert.Equal(t, map[string]any{"weapon": "DrillSpear"}, entry["hit"])
	}
	assert.Same(t, h, h.WithGroup(""))
}

func TestDispatcherLogger(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	dl.Debug("test message", "key1", "value1", "key2", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "test message", entry["message"])
	assert.Equal(t, "value1", entry["key1"])
	assert.Equal(t, float64(42), entry["key2"])

	buf.Reset()
	dl.Error("boom", "code", 500)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])

	var _ interface {
		Debug(msg string, keysAndValues ...any)
		Info(msg string, keysAndValues ...any)
		Error(msg string, keysAndValues ...any)
	} = dl
}

func TestNewZerolog(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerolog(&buf, "WARN", "storage")
	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Warn().Msg("shown")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "storage", entry["component"])

	buf.Reset()
	fallback := NewZerolog(&buf, "nonsense", "x")
	fallback.Info().Msg("default info")
	assert.Contains(t, buf.String(), "default info")
}
