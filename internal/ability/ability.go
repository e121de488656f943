// Package ability exposes the player-invocable abilities of special
// weapons: the RocketLance charge dash and the ImpactBow explosive arrows.
package ability

import (
	"errors"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/pkg/core"
)

const (
	DefaultChargeRange         = 20.0
	DefaultChargeCooldownTicks = 2500

	// ReasonChargeCooldown is the host translation key shown on a disabled Charge gizmo.
	ReasonChargeCooldown = "IM.ChargeCooldown"
)

var (
	ErrNotAvailable  = errors.New("ability not available")
	ErrOnCooldown    = errors.New("ability on cooldown")
	ErrInvalidTarget = errors.New("invalid target")
)

// Gizmo describes one ability button for the host UI.
type Gizmo struct {
	Attack         core.AttackType `json:"attack"`
	Toggle         bool            `json:"toggle"`
	Active         bool            `json:"active"`
	Disabled       bool            `json:"disabled"`
	DisabledReason string          `json:"disabledReason,omitempty"`
	// CooldownTicks is how long a disabled gizmo stays disabled.
	CooldownTicks int `json:"cooldownTicks,omitempty"`
}

// Config tunes the charge ability.
type Config struct {
	ChargeRange         float64
	ChargeCooldownTicks int
}

// Controller runs ability invocations against actors.
type Controller struct {
	cfg Config
}

// NewController fills zero config values with defaults.
func NewController(cfg Config) *Controller {
	if cfg.ChargeRange <= 0 {
		cfg.ChargeRange = DefaultChargeRange
	}
	if cfg.ChargeCooldownTicks <= 0 {
		cfg.ChargeCooldownTicks = DefaultChargeCooldownTicks
	}
	return &Controller{cfg: cfg}
}

// Gate reports whether a may use abilities at all: a player colonist not
// under a mental state.
func Gate(a *sim.Actor) bool {
	return a.MentalState == "" && a.Faction == core.PlayerFaction
}

// Available lists the gizmos a's weapon offers. Empty when the gate fails
// or the actor has no cooldown component.
func Available(a *sim.Actor) []Gizmo {
	if !Gate(a) {
		return nil
	}
	cd, ok := a.Cooldowns()
	if !ok {
		return nil
	}
	switch a.Primary {
	case core.RocketLance:
		g := Gizmo{Attack: core.Charge}
		if cd.HasCooldownFor(core.Charge) {
			g.Disabled = true
			g.DisabledReason = ReasonChargeCooldown
			g.CooldownTicks = cd.CooldownRemaining(core.Charge)
		}
		return []Gizmo{g}
	case core.ImpactBow:
		return []Gizmo{{
			Attack: core.ExplosiveArrows,
			Toggle: true,
			Active: cd.AttackIsEnabled(core.ExplosiveArrows),
		}}
	}
	return nil
}

// BeginCharge starts a Charge job from a towards target.
func (c *Controller) BeginCharge(a, target *sim.Actor) error {
	if !offers(a, core.Charge) {
		return fmt.Errorf("%w: charge for %s", ErrNotAvailable, a.ID)
	}
	cd, _ := a.Cooldowns()
	if cd.HasCooldownFor(core.Charge) {
		return fmt.Errorf("%w: charge for %s", ErrOnCooldown, a.ID)
	}
	if err := c.ValidateChargeTarget(a, target); err != nil {
		return err
	}
	a.CurrentJob = sim.JobCharge
	a.JobTarget = target.ID
	return nil
}

// ValidateChargeTarget accepts a living, standing actor within range.
func (c *Controller) ValidateChargeTarget(a, target *sim.Actor) error {
	if target == nil || target == a {
		return fmt.Errorf("%w: no target", ErrInvalidTarget)
	}
	if target.Dead() || target.Health.Downed() {
		return fmt.Errorf("%w: %s is down", ErrInvalidTarget, target.ID)
	}
	d := Distance(a.Position, target.Position)
	if d > c.cfg.ChargeRange {
		return fmt.Errorf("%w: %s is %.1f away, range %.1f", ErrInvalidTarget, target.ID, d, c.cfg.ChargeRange)
	}
	return nil
}

// EndJob clears a's current job and returns it. A finished Charge job
// starts the Charge cooldown.
func (c *Controller) EndJob(a *sim.Actor) sim.JobDef {
	job := a.CurrentJob
	a.CurrentJob = sim.JobNone
	a.JobTarget = ""
	if job == sim.JobCharge {
		if cd, ok := a.Cooldowns(); ok {
			cd.SetCooldown(core.Charge, c.cfg.ChargeCooldownTicks)
		}
	}
	return job
}

// ToggleExplosiveArrows flips the explosive arrows toggle and returns the new state.
func (c *Controller) ToggleExplosiveArrows(a *sim.Actor) (bool, error) {
	if !offers(a, core.ExplosiveArrows) {
		return false, fmt.Errorf("%w: explosive arrows for %s", ErrNotAvailable, a.ID)
	}
	cd, _ := a.Cooldowns()
	enabled := !cd.AttackIsEnabled(core.ExplosiveArrows)
	cd.EnableAttack(core.ExplosiveArrows, enabled)
	return enabled, nil
}

// ExplosiveArrowsEnabled is what ammunition selection consults.
func ExplosiveArrowsEnabled(a *sim.Actor) bool {
	cd, ok := a.Cooldowns()
	return ok && cd.AttackIsEnabled(core.ExplosiveArrows)
}

func offers(a *sim.Actor, attack core.AttackType) bool {
	for _, g := range Available(a) {
		if g.Attack == attack {
			return true
		}
	}
	return false
}

// Distance is the straight-line distance between two map positions.
func Distance(from, to sim.Position) float64 {
	p1 := positionToPoint(from)
	p2 := positionToPoint(to)
	d, ok := geom.Distance(p1.AsGeometry(), p2.AsGeometry())
	if !ok {
		return 0
	}
	return d
}

func positionToPoint(p sim.Position) geom.Point {
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Y}})
}
