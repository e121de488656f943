// Package handlers connects host commands to the simulation: it owns the
// actor world, runs the effect pipeline on melee hits and persists actor
// state through the configured storage backend.
package handlers

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/industrialmelee/extension/internal/ability"
	"github.com/industrialmelee/extension/internal/charge"
	"github.com/industrialmelee/extension/internal/effect"
	"github.com/industrialmelee/extension/internal/parser"
	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/internal/storage"
	"github.com/industrialmelee/extension/pkg/core"
)

// ErrNoBackend is returned by :SAVE: and :LOAD: when storage is not configured.
var ErrNoBackend = errors.New("no storage backend configured")

// Recorder receives time-series points. The influx manager implements it.
type Recorder interface {
	RecordEffect(e core.EffectEvent) error
	RecordCharge(actorID, apparelID string, remaining, max, tick int, at time.Time) error
	WriteMetric(data []string) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	World     *sim.World
	Parser    *parser.Parser
	Resolver  *effect.Resolver
	Applier   *effect.Applier
	Abilities *ability.Controller
	Ticker    charge.Ticker

	// Backend and Recorder are optional.
	Backend  storage.Backend
	Recorder Recorder

	Logger *slog.Logger
	Now    func() time.Time
}

// Service provides handler methods for host commands. The world is not
// safe for concurrent use, so every handler touching it holds mu.
type Service struct {
	deps    Dependencies
	metrics *metrics
	mu      sync.Mutex
}

// NewService creates a new handler service. Missing dependencies get
// defaults: an empty world, a parser, a resolver on math/rand, the
// default charge cadence and default ability config.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.World == nil {
		deps.World = sim.NewWorld()
	}
	if deps.Parser == nil {
		deps.Parser = parser.NewParser(deps.Logger)
	}
	if deps.Resolver == nil {
		deps.Resolver = effect.NewResolver(nil)
	}
	if deps.Applier == nil {
		deps.Applier = effect.NewApplier(nil)
	}
	if deps.Abilities == nil {
		deps.Abilities = ability.NewController(ability.Config{})
	}
	if deps.Ticker.Interval <= 0 {
		deps.Ticker = charge.NewTicker(0)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	return &Service{deps: deps, metrics: m}, nil
}

// World returns the simulated world.
func (s *Service) World() *sim.World {
	return s.deps.World
}

func (s *Service) actor(id string) (*sim.Actor, error) {
	return s.deps.World.MustActor(id)
}

// WorldStats reports the actor count and current tick.
func (s *Service) WorldStats() (actors, tick int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deps.World.Len(), s.deps.World.Clock.Tick()
}
