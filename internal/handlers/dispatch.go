package handlers

import (
	"errors"
	"fmt"

	"github.com/industrialmelee/extension/internal/ability"
	"github.com/industrialmelee/extension/internal/charge"
	"github.com/industrialmelee/extension/internal/dispatcher"
	"github.com/industrialmelee/extension/internal/effect"
	"github.com/industrialmelee/extension/internal/persist"
	"github.com/industrialmelee/extension/internal/render"
	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/internal/stats"
	"github.com/industrialmelee/extension/pkg/core"
)

// MeleeHitResult tells the host what a hit's special effect did. The host
// spawns Emissions blood filth around the victim.
type MeleeHitResult struct {
	Kind      string `json:"kind"`
	PartID    string `json:"partId,omitempty"`
	Emissions int    `json:"emissions"`
	Damage    int    `json:"damage"`
	Killed    bool   `json:"killed"`
}

// RegisterHandlers registers all command handlers with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Actor lifecycle
	d.Register(":NEW:ACTOR:", s.handleNewActor, dispatcher.Logged())
	d.Register(":REMOVE:ACTOR:", s.handleRemoveActor, dispatcher.Logged())
	d.Register(":ACTOR:STATE:", s.handleActorState)

	// Equipment and conditions
	d.Register(":EQUIP:", s.handleEquip, dispatcher.Logged())
	d.Register(":WEAR:", s.handleWear, dispatcher.Logged())
	d.Register(":TAKEOFF:", s.handleTakeOff, dispatcher.Logged())
	d.Register(":HEDIFF:", s.handleHediff, dispatcher.Logged())

	// Simulation
	d.Register(":TICK:", s.handleTick)
	d.Register(":CLOCK:RESET:", s.handleClockReset, dispatcher.Logged())
	d.Register(":MELEE:HIT:", s.handleMeleeHit, dispatcher.Logged())

	// Queries the host makes while drawing and moving pawns
	d.Register(":STAT:MOVESPEED:", s.handleMoveSpeed)
	d.Register(":STAT:BLEEDRATE:", s.handleBleedRate)
	d.Register(":RENDER:", s.handleRender)

	// Charge and abilities
	d.Register(":RELOAD:", s.handleReload, dispatcher.Logged())
	d.Register(":ABILITY:LIST:", s.handleAbilityList)
	d.Register(":ABILITY:CHARGE:", s.handleAbilityCharge, dispatcher.Logged())
	d.Register(":JOB:END:", s.handleJobEnd, dispatcher.Logged())
	d.Register(":ABILITY:TOGGLE:", s.handleAbilityToggle, dispatcher.Logged())
	d.Register(":ABILITY:ENABLED:", s.handleAbilityEnabled)

	// Persistence
	d.Register(":SAVE:", s.handleSave, dispatcher.Logged())
	d.Register(":SAVE:ALL:", s.handleSaveAll, dispatcher.Logged())
	d.Register(":LOAD:", s.handleLoad, dispatcher.Logged())

	// Host metrics - buffered
	d.Register(":METRIC:", s.handleMetric, dispatcher.Buffered(1000), dispatcher.Logged())
}

func (s *Service) handleNewActor(e dispatcher.Event) (any, error) {
	obj, err := s.deps.Parser.ParseNewActor(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to add actor: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := sim.NewActor(obj.ID, obj.Humanlike, obj.Body, s.deps.World.Clock)
	a.Faction = obj.Faction
	a.BodySize = obj.BodySize
	a.Position = obj.Position
	if err := s.deps.World.Spawn(a); err != nil {
		return nil, fmt.Errorf("failed to add actor: %w", err)
	}
	s.deps.Logger.Debug("Actor spawned", "actor", a.ID, "humanlike", a.Humanlike, "faction", a.Faction)
	return a.ID, nil
}

func (s *Service) handleRemoveActor(e dispatcher.Event) (any, error) {
	id, err := s.deps.Parser.ParseActorID(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.deps.World.Remove(id) {
		return nil, fmt.Errorf("failed to remove actor: %w: %s", sim.ErrUnknownActor, id)
	}
	if s.deps.Backend != nil {
		if err := s.deps.Backend.DeleteActor(id); err != nil {
			s.deps.Logger.Warn("Failed to delete saved state", "actor", id, "error", err)
		}
	}
	return nil, nil
}

func (s *Service) handleActorState(e dispatcher.Event) (any, error) {
	obj, err := s.deps.Parser.ParseActorState(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(obj.ID)
	if err != nil {
		return nil, err
	}
	a.Position = obj.Position
	a.MentalState = obj.MentalState
	a.Health.SetDowned(obj.Downed)
	return nil, nil
}

func (s *Service) handleEquip(e dispatcher.Event) (any, error) {
	obj, err := s.deps.Parser.ParseEquip(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(obj.ActorID)
	if err != nil {
		return nil, err
	}
	a.Primary = obj.Weapon
	return a.Primary.String(), nil
}

func (s *Service) handleWear(e dispatcher.Event) (any, error) {
	obj, err := s.deps.Parser.ParseWear(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(obj.ActorID)
	if err != nil {
		return nil, err
	}

	ap := sim.NewApparel(obj.ApparelID, obj.Graphic)
	ap.AlternateGraphic = obj.AlternateGraphic
	if obj.MaxCharge > 0 {
		r, err := charge.New(obj.MaxCharge)
		if err != nil {
			return nil, fmt.Errorf("failed to wear %s: %w", obj.ApparelID, err)
		}
		if obj.Remaining >= 0 {
			r.Restore(obj.Remaining)
		}
		ap.AttachCharge(r)
	}
	a.Wear(ap)
	return nil, nil
}

func (s *Service) handleTakeOff(e dispatcher.Event) (any, error) {
	obj, err := s.deps.Parser.ParseApparelRef(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(obj.ActorID)
	if err != nil {
		return nil, err
	}
	_, ok := a.TakeOff(obj.ApparelID)
	return ok, nil
}

func (s *Service) handleHediff(e dispatcher.Event) (any, error) {
	obj, err := s.deps.Parser.ParseHediff(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(obj.ActorID)
	if err != nil {
		return nil, err
	}
	if obj.Add {
		a.Health.AddHediff(obj.Def)
	} else {
		a.Health.RemoveHediff(obj.Def)
	}
	return nil, nil
}

func (s *Service) handleTick(e dispatcher.Event) (any, error) {
	tick, err := s.deps.Parser.ParseTick(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(tick)
	return s.deps.World.Clock.Tick(), nil
}

// handleClockReset moves the clock to the given tick even when it lies in
// the past. The host sends it after loading a save.
func (s *Service) handleClockReset(e dispatcher.Event) (any, error) {
	tick, err := s.deps.Parser.ParseTick(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.World.ResetClock(tick)
	return tick, nil
}

// advanceLocked moves the world to tick and reports drained charge.
func (s *Service) advanceLocked(tick int) {
	changes := s.deps.World.AdvanceTo(tick, s.deps.Ticker)
	now := s.deps.World.Clock.Tick()
	for _, c := range changes {
		if c.Exhausted {
			s.deps.Logger.Info("Apparel out of charge", "actor", c.ActorID, "apparel", c.ApparelID, "tick", now)
		}
		s.recordCharge(c.ActorID, c.ApparelID, c.Remaining, c.Max, now)
	}
}

func (s *Service) recordCharge(actorID, apparelID string, remaining, max, tick int) {
	if s.deps.Recorder == nil {
		return
	}
	if err := s.deps.Recorder.RecordCharge(actorID, apparelID, remaining, max, tick, s.deps.Now()); err != nil {
		s.deps.Logger.Warn("Failed to record charge", "actor", actorID, "apparel", apparelID, "error", err)
	}
}

func (s *Service) handleMeleeHit(e dispatcher.Event) (any, error) {
	obj, err := s.deps.Parser.ParseMeleeHit(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to process melee hit: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	attacker, err := s.actor(obj.Hit.AttackerID)
	if err != nil {
		return nil, err
	}
	victim, err := s.actor(obj.Hit.VictimID)
	if err != nil {
		return nil, err
	}

	hit := obj.Hit
	if !obj.WeaponGiven {
		hit.Weapon = attacker.Primary
	}
	if hit.Tick > s.deps.World.Clock.Tick() {
		s.advanceLocked(hit.Tick)
	}
	hit.Tick = s.deps.World.Clock.Tick()

	res := s.deps.Resolver.Resolve(hit, attacker, victim)
	if !res.Fired() {
		return MeleeHitResult{Kind: core.EffectNone.String()}, nil
	}

	out := s.deps.Applier.Apply(res, attacker.ID, victim)
	ev := effect.Event(hit, res, out, s.deps.Now())
	s.recordEffect(ev)

	s.deps.Logger.Info("Melee effect fired",
		"kind", ev.Kind.String(),
		"weapon", ev.Weapon.String(),
		"attacker", ev.AttackerID,
		"victim", ev.VictimID,
		"part", ev.PartID,
		"killed", ev.Killed,
		"tick", ev.Tick,
	)

	return MeleeHitResult{
		Kind:      ev.Kind.String(),
		PartID:    ev.PartID,
		Emissions: ev.Emissions,
		Damage:    ev.Damage,
		Killed:    ev.Killed,
	}, nil
}

func (s *Service) recordEffect(ev core.EffectEvent) {
	s.metrics.record(ev)
	if s.deps.Backend != nil {
		if err := s.deps.Backend.RecordEffect(&ev); err != nil {
			s.deps.Logger.Warn("Failed to store effect", "error", err)
		}
	}
	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.RecordEffect(ev); err != nil {
			s.deps.Logger.Warn("Failed to record effect", "error", err)
		}
	}
}

func (s *Service) handleMoveSpeed(e dispatcher.Event) (any, error) {
	q, err := s.deps.Parser.ParseStatQuery(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(q.ActorID)
	if err != nil {
		return nil, err
	}
	return stats.MoveSpeed(a, q.Base), nil
}

func (s *Service) handleBleedRate(e dispatcher.Event) (any, error) {
	q, err := s.deps.Parser.ParseStatQuery(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(q.ActorID)
	if err != nil {
		return nil, err
	}
	return stats.BleedRate(a, q.Base), nil
}

func (s *Service) handleRender(e dispatcher.Event) (any, error) {
	q, err := s.deps.Parser.ParseRenderQuery(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(q.ActorID)
	if err != nil {
		return nil, err
	}
	return render.Query(a, q.Region, q.Facing, q.Portrait), nil
}

// handleReload refills powered apparel. Without force, only items below
// the reload threshold are refilled.
func (s *Service) handleReload(e dispatcher.Event) (any, error) {
	obj, err := s.deps.Parser.ParseReload(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(obj.ActorID)
	if err != nil {
		return nil, err
	}
	ap, ok := a.Apparel(obj.ApparelID)
	if !ok {
		return nil, fmt.Errorf("%s does not wear %s", a.ID, obj.ApparelID)
	}
	r, ok := ap.Charge()
	if !ok {
		return nil, fmt.Errorf("%s is not powered", obj.ApparelID)
	}
	if !obj.Force && !r.NeedsReload() {
		return false, nil
	}
	r.Reload()
	s.recordCharge(a.ID, ap.ID, r.Remaining(), r.Max(), s.deps.World.Clock.Tick())
	return true, nil
}

func (s *Service) handleAbilityList(e dispatcher.Event) (any, error) {
	id, err := s.deps.Parser.ParseActorID(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(id)
	if err != nil {
		return nil, err
	}
	gizmos := ability.Available(a)
	if gizmos == nil {
		gizmos = []ability.Gizmo{}
	}
	return gizmos, nil
}

func (s *Service) handleAbilityCharge(e dispatcher.Event) (any, error) {
	obj, err := s.deps.Parser.ParseActorTarget(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(obj.ActorID)
	if err != nil {
		return nil, err
	}
	target, err := s.actor(obj.TargetID)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Abilities.BeginCharge(a, target); err != nil {
		return nil, err
	}
	return string(a.CurrentJob), nil
}

func (s *Service) handleJobEnd(e dispatcher.Event) (any, error) {
	id, err := s.deps.Parser.ParseActorID(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(id)
	if err != nil {
		return nil, err
	}
	return string(s.deps.Abilities.EndJob(a)), nil
}

func (s *Service) handleAbilityToggle(e dispatcher.Event) (any, error) {
	ref, err := s.deps.Parser.ParseAbilityRef(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(ref.ActorID)
	if err != nil {
		return nil, err
	}
	if ref.Attack != core.ExplosiveArrows {
		return nil, fmt.Errorf("%w: %s is not a toggle", ability.ErrNotAvailable, ref.Attack)
	}
	return s.deps.Abilities.ToggleExplosiveArrows(a)
}

func (s *Service) handleAbilityEnabled(e dispatcher.Event) (any, error) {
	ref, err := s.deps.Parser.ParseAbilityRef(e.Args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(ref.ActorID)
	if err != nil {
		return nil, err
	}
	if ref.Attack == core.ExplosiveArrows {
		return ability.ExplosiveArrowsEnabled(a), nil
	}
	cd, ok := a.Cooldowns()
	return ok && cd.AttackIsEnabled(ref.Attack), nil
}

func (s *Service) handleSave(e dispatcher.Event) (any, error) {
	id, err := s.deps.Parser.ParseActorID(e.Args)
	if err != nil {
		return nil, err
	}
	if s.deps.Backend == nil {
		return nil, ErrNoBackend
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(id)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Backend.SaveActor(persist.Encode(a)); err != nil {
		return nil, fmt.Errorf("failed to save actor: %w", err)
	}
	return nil, nil
}

// handleSaveAll saves every actor and returns how many were written.
func (s *Service) handleSaveAll(dispatcher.Event) (any, error) {
	if s.deps.Backend == nil {
		return nil, ErrNoBackend
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	saved := 0
	for _, a := range s.deps.World.Actors() {
		if err := s.deps.Backend.SaveActor(persist.Encode(a)); err != nil {
			errs = append(errs, fmt.Errorf("failed to save %s: %w", a.ID, err))
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// handleLoad applies saved state to a spawned actor. Returns false when
// nothing was saved for it. A tick argument resets the clock to the save's
// tick first.
func (s *Service) handleLoad(e dispatcher.Event) (any, error) {
	obj, err := s.deps.Parser.ParseLoad(e.Args)
	if err != nil {
		return nil, err
	}
	id := obj.ActorID
	if s.deps.Backend == nil {
		return nil, ErrNoBackend
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.actor(id)
	if err != nil {
		return nil, err
	}
	if obj.HasTick {
		s.deps.World.ResetClock(obj.Tick)
	}
	rec, ok, err := s.deps.Backend.LoadActor(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return false, nil
	}
	if err := persist.Apply(rec, a); err != nil {
		return nil, fmt.Errorf("failed to load actor: %w", err)
	}
	return true, nil
}

func (s *Service) handleMetric(e dispatcher.Event) (any, error) {
	if s.deps.Recorder == nil {
		return nil, nil
	}
	return nil, s.deps.Recorder.WriteMetric(e.Args)
}
