// Command industrial_melee is the extension process the host mod launches.
// It reads one call per line on stdin ("command|arg|arg") and answers each
// with a JSON array on stdout.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/industrialmelee/extension/internal/ability"
	"github.com/industrialmelee/extension/internal/charge"
	"github.com/industrialmelee/extension/internal/config"
	"github.com/industrialmelee/extension/internal/dispatcher"
	"github.com/industrialmelee/extension/internal/handlers"
	"github.com/industrialmelee/extension/internal/influx"
	"github.com/industrialmelee/extension/internal/logging"
	"github.com/industrialmelee/extension/internal/monitor"
	intOtel "github.com/industrialmelee/extension/internal/otel"
	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/internal/storage"
	"github.com/industrialmelee/extension/pkg/hostbridge"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentExtensionVersion = "0.1.0"
	BuildDate               = "unknown"
)

const (
	ExtensionName = "industrial_melee"

	maxLineSize     = 1 << 20
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", ExtensionName, err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	flags := pflag.NewFlagSet(ExtensionName, pflag.ContinueOnError)
	configDir := flags.String("config-dir", ".", "directory containing "+config.FileName)
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("logs-dir", "", "directory for session logs")
	flags.String("storage", "", "storage backend (memory, sqlite, postgres, gdata)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	for key, flag := range map[string]string{
		"logLevel":     "log-level",
		"logsDir":      "logs-dir",
		"storage.type": "storage",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	cfgErr := config.Load(*configDir)

	sessionStart := time.Now()
	app, err := setup(sessionStart)
	if err != nil {
		return err
	}
	defer app.close()

	if cfgErr != nil {
		app.logger.Warn("Failed to load config, using defaults!", "error", cfgErr)
	} else {
		app.logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}
	app.logger.Info("Extension started",
		"version", CurrentExtensionVersion,
		"build", BuildDate,
		"storage", config.GetStorageConfig().Type,
		"commands", len(app.dispatcher.Commands()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, app.bridge, in, out)
}

// serve answers calls until in is exhausted or ctx is cancelled.
func serve(ctx context.Context, bridge *hostbridge.Bridge, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	w := bufio.NewWriter(out)
	defer w.Flush()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if line == "" {
				continue
			}
			if _, err := fmt.Fprintln(w, bridge.Call(line)); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
}

type app struct {
	logger     *slog.Logger
	slog       *logging.SlogManager
	provider   *intOtel.Provider
	logFile    *os.File
	backend    storage.Backend
	influx     *influx.Manager
	monitor    *monitor.Service
	dispatcher *dispatcher.Dispatcher
	bridge     *hostbridge.Bridge
}

func setup(sessionStart time.Time) (*app, error) {
	a := &app{slog: logging.NewSlogManager()}
	level := viper.GetString("logLevel")

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs dir: %w", err)
	}
	logPath := logging.LogFilePath(logsDir, ExtensionName, sessionStart)
	if _, err := os.Stat(logPath); err == nil {
		_ = os.Rename(logPath, logPath+".old")
	}
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	a.logFile = logFile

	otelCfg := config.GetOTelConfig()
	var otelWriter io.Writer
	if otelCfg.Endpoint == "" {
		otelWriter = logFile
	}
	a.provider, err = intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    otelWriter,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up otel: %w", err)
	}

	world := sim.NewWorld()
	opts := logging.Options{
		File:     logFile,
		Level:    level,
		Provider: a.provider.LoggerProvider(),
		Session:  &logging.Session{Start: sessionStart, Clock: world.Clock},
	}
	var graylogErr error
	if viper.GetBool("graylog.enabled") {
		opts.Graylog, graylogErr = logging.NewGraylogWriter(viper.GetString("graylog.address"))
	}
	a.slog.Setup(opts)
	a.logger = a.slog.Logger()
	if graylogErr != nil {
		a.logger.Warn("Graylog disabled", "error", graylogErr)
	}

	storageCfg := config.GetStorageConfig()
	a.backend, err = storage.NewBackend(storageCfg, storage.Dependencies{
		DB:       config.GetDBConfig(),
		Logger:   a.logger,
		DBLogger: logging.NewZerolog(logFile, level, "storage"),
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := a.backend.Init(); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	a.logger.Info("Storage backend initialized", "type", storageCfg.Type)

	var recorder handlers.Recorder
	a.influx = influx.NewManager(
		config.GetInfluxConfig(),
		logging.NewZerolog(logFile, level, "influx"),
		filepath.Join(logsDir, fmt.Sprintf("%s_influx_backup.%s.gz", ExtensionName, sessionStart.Format("20060102_150405"))),
	)
	switch err := a.influx.Connect(context.Background()); {
	case errors.Is(err, influx.ErrDisabled):
		a.logger.Debug("InfluxDB disabled")
	case err != nil:
		a.logger.Warn("InfluxDB unavailable", "error", err)
	default:
		recorder = a.influx
	}

	abilities := config.GetAbilitiesConfig()
	svc, err := handlers.NewService(handlers.Dependencies{
		Abilities: ability.NewController(ability.Config{
			ChargeRange:         abilities.ChargeRange,
			ChargeCooldownTicks: abilities.ChargeCooldownTicks,
		}),
		Ticker:   charge.NewTicker(abilities.ChargeInterval),
		World:    world,
		Backend:  a.backend,
		Recorder: recorder,
		Logger:   a.logger,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create handler service: %w", err)
	}

	a.dispatcher, err = dispatcher.New(logging.NewDispatcherLogger(logging.NewZerolog(logFile, level, "dispatcher")))
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	svc.RegisterHandlers(a.dispatcher)

	monDeps := monitor.Dependencies{
		World: func() monitor.WorldStats {
			actors, tick := svc.WorldStats()
			return monitor.WorldStats{Actors: actors, Tick: tick}
		},
		StatusPath: filepath.Join(logsDir, "status.txt"),
		Interval:   viper.GetDuration("monitor.interval"),
		Logger:     a.logger,
	}
	if recorder != nil {
		monDeps.Points = a.influx
		monDeps.Bucket = influx.HostBucket
	}
	a.monitor = monitor.NewService(monDeps)
	a.monitor.RegisterHandlers(a.dispatcher)
	if viper.GetBool("monitor.enabled") {
		if err := a.monitor.Start(); err != nil {
			a.logger.Warn("Failed to start status monitor", "error", err)
		}
	}

	a.bridge = hostbridge.New(a.dispatcher, CurrentExtensionVersion, BuildDate)
	return a, nil
}

// close drains buffered commands before closing storage so queued
// metrics and effects are not lost.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Error("Failed to close storage backend", "error", err)
		}
	}
	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.logger.Error("Failed to close InfluxDB", "error", err)
		}
	}
	a.logger.Info("Extension stopped")
	if a.provider != nil {
		if err := a.provider.Flush(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
		_ = a.provider.Shutdown(ctx)
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

