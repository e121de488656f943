// Package logging sets up the extension's structured logging: a slog
// fan-out to console or session file, Graylog and OpenTelemetry, plus a
// zerolog adapter for the dispatcher and storage layers.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const instrumentationName = "industrial-melee"

// Options selects the sinks Setup wires. Zero values disable a sink.
type Options struct {
	// File receives text logs. When nil, logs go to stdout instead.
	File  io.Writer
	Level string
	// Graylog receives one GELF message per record.
	Graylog io.Writer
	// Provider exports records through OpenTelemetry.
	Provider *sdklog.LoggerProvider
	// Session stamps tick and uptime onto every record when set.
	Session *Session
}

// SlogManager owns the process logger.
type SlogManager struct {
	logger *slog.Logger
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// ParseLevel accepts debug/info/warn/error in any case, defaulting to info.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}

// Setup (re)builds the logger from opts.
func (m *SlogManager) Setup(opts Options) {
	handlerOpts := &slog.HandlerOptions{
		Level:       ParseLevel(opts.Level),
		ReplaceAttr: utcTime,
	}

	var sinks []slog.Handler
	if opts.File != nil {
		sinks = append(sinks, slog.NewTextHandler(opts.File, handlerOpts))
	} else {
		sinks = append(sinks, slog.NewTextHandler(os.Stdout, handlerOpts))
	}
	if opts.Graylog != nil {
		sinks = append(sinks, slog.NewJSONHandler(opts.Graylog, handlerOpts))
	}
	if opts.Provider != nil {
		sinks = append(sinks, otelslog.NewHandler(instrumentationName, otelslog.WithLoggerProvider(opts.Provider)))
	}

	var h slog.Handler = NewMultiHandler(sinks...)
	if opts.Session != nil {
		h = NewSessionHandler(h, *opts.Session)
	}
	m.logger = slog.New(h)
	m.logger.Info("Logging initialized", "level", ParseLevel(opts.Level).String())
}

// Logger returns the configured logger, slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}


