package handlers

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrialmelee/extension/internal/ability"
	"github.com/industrialmelee/extension/internal/config"
	"github.com/industrialmelee/extension/internal/dispatcher"
	"github.com/industrialmelee/extension/internal/effect"
	"github.com/industrialmelee/extension/internal/render"
	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/internal/storage/memory"
	"github.com/industrialmelee/extension/pkg/core"
)

type fixedRand struct{ value float64 }

func (r fixedRand) Float64() float64 { return r.value }
func (r fixedRand) IntN(int) int     { return 0 }

type fakeRecorder struct {
	mu      sync.Mutex
	effects []core.EffectEvent
	charges []string
	metrics [][]string
}

func (r *fakeRecorder) RecordEffect(e core.EffectEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects, e)
	return nil
}

func (r *fakeRecorder) RecordCharge(actorID, apparelID string, remaining, max, tick int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charges = append(r.charges, actorID+"/"+apparelID)
	return nil
}

func (r *fakeRecorder) WriteMetric(data []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, data)
	return nil
}

type harness struct {
	t        *testing.T
	svc      *Service
	d        *dispatcher.Dispatcher
	backend  *memory.Backend
	recorder *fakeRecorder
}

func newHarness(t *testing.T, draw float64) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		backend:  memory.New(config.MemoryConfig{}),
		recorder: &fakeRecorder{},
	}
	var err error
	h.svc, err = NewService(Dependencies{
		Resolver: effect.NewResolver(fixedRand{value: draw}),
		Backend:  h.backend,
		Recorder: h.recorder,
		Now:      func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)

	h.d, err = dispatcher.New(nil)
	require.NoError(t, err)
	h.svc.RegisterHandlers(h.d)
	t.Cleanup(h.d.Close)
	return h
}

func (h *harness) call(command string, args ...string) (any, error) {
	return h.d.Dispatch(dispatcher.Event{Command: command, Args: args, Timestamp: time.Now()})
}

func (h *harness) must(command string, args ...string) any {
	h.t.Helper()
	result, err := h.call(command, args...)
	require.NoError(h.t, err, command)
	return result
}

func (h *harness) spawn(id, faction string, x float64) {
	h.t.Helper()
	h.must(":NEW:ACTOR:", id, "true", faction, "1", strconv.FormatFloat(x, 'f', -1, 64), "0")
}

func TestRegisterHandlers(t *testing.T) {
	h := newHarness(t, 1)
	for _, cmd := range []string{
		":NEW:ACTOR:", ":REMOVE:ACTOR:", ":ACTOR:STATE:", ":EQUIP:", ":WEAR:", ":TAKEOFF:", ":HEDIFF:",
		":TICK:", ":CLOCK:RESET:", ":MELEE:HIT:", ":STAT:MOVESPEED:", ":STAT:BLEEDRATE:", ":RENDER:", ":RELOAD:",
		":ABILITY:LIST:", ":ABILITY:CHARGE:", ":JOB:END:", ":ABILITY:TOGGLE:", ":ABILITY:ENABLED:",
		":SAVE:", ":SAVE:ALL:", ":LOAD:", ":METRIC:",
	} {
		assert.True(t, h.d.HasHandler(cmd), cmd)
	}
}

func TestActorLifecycle(t *testing.T) {
	h := newHarness(t, 1)

	assert.Equal(t, "pawn1", h.must(":NEW:ACTOR:", "pawn1", "true", core.PlayerFaction, "1.2", "3", "4"))
	_, err := h.call(":NEW:ACTOR:", "pawn1", "true", core.PlayerFaction, "1", "0", "0")
	assert.Error(t, err)

	h.must(":ACTOR:STATE:", "pawn1", "7", "8", "Berserk", "true")
	a, ok := h.svc.World().Actor("pawn1")
	require.True(t, ok)
	assert.Equal(t, sim.Position{X: 7, Y: 8}, a.Position)
	assert.Equal(t, "Berserk", a.MentalState)
	assert.True(t, a.Health.Downed())
	assert.Equal(t, 1.2, a.BodySize)

	assert.Equal(t, "DrillSpear", h.must(":EQUIP:", "pawn1", "IM_MeleeWeapon_DrillSpear"))
	assert.Equal(t, core.DrillSpear, a.Primary)

	h.must(":HEDIFF:", "pawn1", string(core.HediffHighBleedrate), "true")
	assert.InDelta(t, 1.5, h.must(":STAT:BLEEDRATE:", "pawn1", "1"), 1e-9)
	h.must(":HEDIFF:", "pawn1", string(core.HediffHighBleedrate), "false")
	assert.InDelta(t, 1.0, h.must(":STAT:BLEEDRATE:", "pawn1", "1"), 1e-9)

	h.must(":REMOVE:ACTOR:", "pawn1")
	_, err = h.call(":REMOVE:ACTOR:", "pawn1")
	assert.ErrorIs(t, err, sim.ErrUnknownActor)
	_, err = h.call(":EQUIP:", "pawn1", "ChainSword")
	assert.ErrorIs(t, err, sim.ErrUnknownActor)
}

func TestMeleeHit_Decapitation(t *testing.T) {
	h := newHarness(t, 0)
	h.spawn("pawn1", core.PlayerFaction, 0)
	h.spawn("raider", "Pirates", 5)
	h.must(":EQUIP:", "pawn1", "ChainSword")

	result := h.must(":MELEE:HIT:", "pawn1", "raider")
	assert.Equal(t, MeleeHitResult{
		Kind:      "decapitate",
		PartID:    "Head",
		Emissions: 8,
		Damage:    20,
		Killed:    true,
	}, result)

	victim, _ := h.svc.World().Actor("raider")
	assert.True(t, victim.Dead())

	require.Len(t, h.backend.Effects(), 1)
	assert.Equal(t, core.ChainSword, h.backend.Effects()[0].Weapon)
	require.Len(t, h.recorder.effects, 1)
	assert.True(t, h.recorder.effects[0].Killed)
}

func TestMeleeHit_NoEffect(t *testing.T) {
	h := newHarness(t, 0.5)
	h.spawn("pawn1", core.PlayerFaction, 0)
	h.spawn("raider", "Pirates", 5)

	result := h.must(":MELEE:HIT:", "pawn1", "raider", "ChainSword")
	assert.Equal(t, MeleeHitResult{Kind: "none"}, result)
	assert.Empty(t, h.backend.Effects())

	_, err := h.call(":MELEE:HIT:", "pawn1", "ghost")
	assert.ErrorIs(t, err, sim.ErrUnknownActor)
}

func TestMeleeHit_GoreCooldownFollowsHitTick(t *testing.T) {
	h := newHarness(t, 0)
	h.spawn("pawn1", core.PlayerFaction, 0)
	h.spawn("raider", "Pirates", 5)
	h.must(":EQUIP:", "pawn1", "DrillSpear")

	first := h.must(":MELEE:HIT:", "pawn1", "raider", "", "1000").(MeleeHitResult)
	assert.Equal(t, "gore", first.Kind)
	assert.NotEmpty(t, first.PartID)
	assert.Equal(t, 1000, h.svc.World().Clock.Tick())

	second := h.must(":MELEE:HIT:", "pawn1", "raider", "", "8199").(MeleeHitResult)
	assert.Equal(t, "none", second.Kind)

	third := h.must(":MELEE:HIT:", "pawn1", "raider", "", "8200").(MeleeHitResult)
	assert.Equal(t, "gore", third.Kind)
}

func TestTick_DrainsChargeAndRenders(t *testing.T) {
	h := newHarness(t, 1)
	h.spawn("pawn1", core.PlayerFaction, 0)
	h.must(":WEAR:", "pawn1", "armor", "Things/Armor", "Things/ArmorDead", "2", "-1")

	assert.InDelta(t, 4.0, h.must(":STAT:MOVESPEED:", "pawn1", "4"), 1e-9)
	assert.Equal(t, render.Result{}, h.must(":RENDER:", "pawn1", "Body", "south"))

	assert.Equal(t, 1000, h.must(":TICK:", "1000"))
	assert.NotEmpty(t, h.recorder.charges)

	assert.InDelta(t, 0.0, h.must(":STAT:MOVESPEED:", "pawn1", "4"), 1e-9)
	assert.Equal(t, render.Result{Material: "Things/ArmorDead_south", Handled: true},
		h.must(":RENDER:", "pawn1", "Body", "south"))
	assert.Equal(t, render.Result{Suppress: true, Handled: true}, h.must(":RENDER:", "pawn1", "Head"))
	assert.Equal(t, render.Result{}, h.must(":RENDER:", "pawn1", "Head", "", "true"))

	assert.Equal(t, true, h.must(":TAKEOFF:", "pawn1", "armor"))
	assert.Equal(t, false, h.must(":TAKEOFF:", "pawn1", "armor"))
}

func TestReload(t *testing.T) {
	h := newHarness(t, 1)
	h.spawn("pawn1", core.PlayerFaction, 0)
	h.must(":WEAR:", "pawn1", "armor", "Things/Armor", "", "10", "2")
	h.must(":WEAR:", "pawn1", "cape", "Things/Cape")

	assert.Equal(t, true, h.must(":RELOAD:", "pawn1", "armor"))
	assert.Equal(t, false, h.must(":RELOAD:", "pawn1", "armor"))
	assert.Equal(t, true, h.must(":RELOAD:", "pawn1", "armor", "true"))

	_, err := h.call(":RELOAD:", "pawn1", "cape")
	assert.Error(t, err)
	_, err = h.call(":RELOAD:", "pawn1", "helmet")
	assert.Error(t, err)
}

func TestChargeAbility(t *testing.T) {
	h := newHarness(t, 1)
	h.spawn("pawn1", core.PlayerFaction, 0)
	h.spawn("near", "Pirates", 5)
	h.spawn("far", "Pirates", 50)
	h.must(":EQUIP:", "pawn1", "RocketLance")

	assert.Equal(t, []ability.Gizmo{{Attack: core.Charge}}, h.must(":ABILITY:LIST:", "pawn1"))

	_, err := h.call(":ABILITY:CHARGE:", "pawn1", "far")
	assert.ErrorIs(t, err, ability.ErrInvalidTarget)

	assert.Equal(t, string(sim.JobCharge), h.must(":ABILITY:CHARGE:", "pawn1", "near"))
	assert.InDelta(t, 20.0, h.must(":STAT:MOVESPEED:", "pawn1", "4"), 1e-9)

	assert.Equal(t, string(sim.JobCharge), h.must(":JOB:END:", "pawn1"))
	assert.Equal(t, []ability.Gizmo{{
		Attack:         core.Charge,
		Disabled:       true,
		DisabledReason: ability.ReasonChargeCooldown,
		CooldownTicks:  ability.DefaultChargeCooldownTicks,
	}}, h.must(":ABILITY:LIST:", "pawn1"))

	_, err = h.call(":ABILITY:CHARGE:", "pawn1", "near")
	assert.ErrorIs(t, err, ability.ErrOnCooldown)

	assert.Equal(t, []ability.Gizmo{}, h.must(":ABILITY:LIST:", "near"))
}

func TestToggleAndPersist(t *testing.T) {
	h := newHarness(t, 1)
	h.spawn("pawn1", core.PlayerFaction, 0)
	h.must(":EQUIP:", "pawn1", "ImpactBow")

	assert.Equal(t, false, h.must(":ABILITY:ENABLED:", "pawn1", "ExplosiveArrows"))
	assert.Equal(t, true, h.must(":ABILITY:TOGGLE:", "pawn1", "ExplosiveArrows"))
	assert.Equal(t, true, h.must(":ABILITY:ENABLED:", "pawn1", "ExplosiveArrows"))

	_, err := h.call(":ABILITY:TOGGLE:", "pawn1", "HammerHead")
	assert.ErrorIs(t, err, ability.ErrNotAvailable)

	h.must(":SAVE:", "pawn1")
	assert.Equal(t, false, h.must(":ABILITY:TOGGLE:", "pawn1", "ExplosiveArrows"))
	assert.Equal(t, true, h.must(":LOAD:", "pawn1"))
	assert.Equal(t, true, h.must(":ABILITY:ENABLED:", "pawn1", "ExplosiveArrows"))

	h.spawn("pawn2", core.PlayerFaction, 0)
	assert.Equal(t, false, h.must(":LOAD:", "pawn2"))
	assert.Equal(t, 2, h.must(":SAVE:ALL:"))
}

func TestLoad_ResetsClockToSaveTick(t *testing.T) {
	h := newHarness(t, 1)
	h.spawn("pawn1", core.PlayerFaction, 0)
	h.must(":EQUIP:", "pawn1", "RocketLance")
	h.must(":TICK:", "400")

	a, _ := h.svc.World().Actor("pawn1")
	cd, ok := a.Cooldowns()
	require.True(t, ok)
	cd.SetCooldown(core.Charge, 100)
	h.must(":SAVE:", "pawn1")

	h.must(":TICK:", "600")
	assert.False(t, cd.HasCooldownFor(core.Charge))

	assert.Equal(t, true, h.must(":LOAD:", "pawn1", "400"))
	_, tick := h.svc.WorldStats()
	assert.Equal(t, 400, tick)
	assert.True(t, cd.HasCooldownFor(core.Charge))

	h.must(":TICK:", "600")
	assert.Equal(t, 400, h.must(":CLOCK:RESET:", "400"))
	assert.Equal(t, true, h.must(":LOAD:", "pawn1"))
	assert.True(t, cd.HasCooldownFor(core.Charge))

	_, err := h.call(":CLOCK:RESET:", "-1")
	assert.Error(t, err)
}

func TestRemoveActor_DeletesSavedState(t *testing.T) {
	h := newHarness(t, 1)
	h.spawn("pawn1", core.PlayerFaction, 0)
	h.must(":SAVE:", "pawn1")

	h.must(":REMOVE:ACTOR:", "pawn1")
	_, err := h.call(":REMOVE:ACTOR:", "pawn1")
	assert.ErrorIs(t, err, sim.ErrUnknownActor)

	h.spawn("pawn1", core.PlayerFaction, 0)
	assert.Equal(t, false, h.must(":LOAD:", "pawn1"))
}

func TestPersistence_NoBackend(t *testing.T) {
	svc, err := NewService(Dependencies{})
	require.NoError(t, err)
	d, err := dispatcher.New(nil)
	require.NoError(t, err)
	svc.RegisterHandlers(d)
	defer d.Close()

	_, err = d.Dispatch(dispatcher.Event{Command: ":NEW:ACTOR:", Args: []string{"pawn1", "true", "", "1", "0", "0"}})
	require.NoError(t, err)
	_, err = d.Dispatch(dispatcher.Event{Command: ":SAVE:", Args: []string{"pawn1"}})
	assert.ErrorIs(t, err, ErrNoBackend)
	_, err = d.Dispatch(dispatcher.Event{Command: ":LOAD:", Args: []string{"pawn1"}})
	assert.ErrorIs(t, err, ErrNoBackend)

	// metrics without a recorder are accepted and dropped
	_, err = d.Dispatch(dispatcher.Event{Command: ":METRIC:", Args: []string{"host_performance", "fps"}})
	assert.NoError(t, err)
}

func TestMetric_Buffered(t *testing.T) {
	h := newHarness(t, 1)
	_, err := h.call(":METRIC:", "host_performance", "fps", "field::float::value::60")
	require.NoError(t, err)
	h.d.Close()

	h.recorder.mu.Lock()
	defer h.recorder.mu.Unlock()
	require.Len(t, h.recorder.metrics, 1)
	assert.Equal(t, "fps", h.recorder.metrics[0][1])
}

func TestWorldStats(t *testing.T) {
	h := newHarness(t, 1)
	h.spawn("pawn1", core.PlayerFaction, 0)
	h.must(":TICK:", "250")

	actors, tick := h.svc.WorldStats()
	assert.Equal(t, 1, actors)
	assert.Equal(t, 250, tick)
}
