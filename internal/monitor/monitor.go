// Package monitor periodically samples the extension's own health and
// writes it to a status file and the InfluxDB host bucket.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/industrialmelee/extension/internal/dispatcher"
)

// StatusMeasurement is the influx measurement status samples are written to.
const StatusMeasurement = "extension_status"

const defaultInterval = time.Second

// WorldStats are the simulation counters the monitor reports.
type WorldStats struct {
	Actors int `json:"actors"`
	Tick   int `json:"tick"`
}

// Status is one sample.
type Status struct {
	Time       time.Time `json:"time"`
	Actors     int       `json:"actors"`
	Tick       int       `json:"tick"`
	Goroutines int       `json:"goroutines"`
	HeapAlloc  uint64    `json:"heapAlloc"`
	NumGC      uint32    `json:"numGC"`
}

// PointWriter receives status points. The influx manager implements it.
type PointWriter interface {
	WritePoint(bucket string, point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	World func() WorldStats

	// Points and Bucket are optional; without them only the file is written.
	Points PointWriter
	Bucket string

	// StatusPath is rewritten on every sample when set.
	StatusPath string
	Interval   time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = defaultInterval
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.World == nil {
		deps.World = func() WorldStats { return WorldStats{} }
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Sample takes one status sample.
func (s *Service) Sample() Status {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	world := s.deps.World()
	return Status{
		Time:       s.deps.Now(),
		Actors:     world.Actors,
		Tick:       world.Tick,
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		NumGC:      mem.NumGC,
	}
}

// RegisterHandlers exposes :STATUS:, which answers with a fresh sample.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(":STATUS:", func(dispatcher.Event) (any, error) {
		return s.Sample(), nil
	})
}

// Point converts a sample into an influx point.
func Point(st Status) *influxdb2_write.Point {
	return influxdb2.NewPoint(StatusMeasurement,
		map[string]string{},
		map[string]any{
			"actors":     st.Actors,
			"tick":       st.Tick,
			"goroutines": st.Goroutines,
			"heap_alloc": st.HeapAlloc,
			"num_gc":     st.NumGC,
		},
		st.Time,
	)
}

// Record samples once and writes the sample to every configured sink.
func (s *Service) Record() (Status, error) {
	st := s.Sample()
	if s.deps.StatusPath != "" {
		if err := writeStatusFile(s.deps.StatusPath, st); err != nil {
			return st, err
		}
	}
	if s.deps.Points != nil {
		if err := s.deps.Points.WritePoint(s.deps.Bucket, Point(st)); err != nil {
			return st, fmt.Errorf("failed to write status point: %w", err)
		}
	}
	return st, nil
}

func writeStatusFile(path string, st Status) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.Logger
		logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, err := s.Record(); err != nil {
					logger.Warn("Failed to record status", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for the goroutine to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
