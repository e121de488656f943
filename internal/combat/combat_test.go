package combat

import (
	"testing"

	"github.com/industrialmelee/extension/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	tick int
}

func (c *fakeClock) Tick() int { return c.tick }

func TestCooldownStore_ActiveWindow(t *testing.T) {
	clock := &fakeClock{tick: 1000}
	s := NewCooldownStore(clock)

	s.Set(core.DrillSpearGore, 7200)

	for _, tick := range []int{1000, 1001, 5000, 8199} {
		clock.tick = tick
		assert.True(t, s.Has(core.DrillSpearGore), "tick %d", tick)
	}
	for _, tick := range []int{8200, 8201, 100000} {
		clock.tick = tick
		assert.False(t, s.Has(core.DrillSpearGore), "tick %d", tick)
	}
}

func TestCooldownStore_AbsentKeyIsNotOnCooldown(t *testing.T) {
	s := NewCooldownStore(&fakeClock{})

	for _, a := range core.AllAttackTypes {
		assert.False(t, s.Has(a))
		assert.Equal(t, 0, s.Remaining(a))
	}
}

func TestCooldownStore_HasIsReadOnly(t *testing.T) {
	clock := &fakeClock{tick: 10}
	s := NewCooldownStore(clock)
	s.Set(core.Charge, 5)

	clock.tick = 20
	for i := 0; i < 3; i++ {
		assert.False(t, s.Has(core.Charge))
	}
	// stale entry is kept, only the comparison decides
	require.Len(t, s.Entries(), 1)

	clock.tick = 12
	assert.True(t, s.Has(core.Charge))
}

func TestCooldownStore_SetOverwrites(t *testing.T) {
	clock := &fakeClock{tick: 0}
	s := NewCooldownStore(clock)

	s.Set(core.RocketLanceGore, 7200)
	s.Set(core.RocketLanceGore, 10)

	clock.tick = 10
	assert.False(t, s.Has(core.RocketLanceGore))
	assert.Equal(t, []CooldownEntry{{Attack: core.RocketLanceGore, Tick: 10}}, s.Entries())
}

func TestCooldownStore_Remaining(t *testing.T) {
	clock := &fakeClock{tick: 100}
	s := NewCooldownStore(clock)
	s.Set(core.Charge, 50)

	clock.tick = 120
	assert.Equal(t, 30, s.Remaining(core.Charge))
}

func TestCooldownStore_EntriesOrderedAndRestore(t *testing.T) {
	clock := &fakeClock{tick: 0}
	s := NewCooldownStore(clock)
	s.Set(core.RocketLanceGore, 3)
	s.Set(core.Charge, 1)
	s.Set(core.DrillSpearGore, 2)

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, core.Charge, entries[0].Attack)
	assert.Equal(t, core.DrillSpearGore, entries[1].Attack)
	assert.Equal(t, core.RocketLanceGore, entries[2].Attack)

	other := NewCooldownStore(clock)
	other.Restore(entries)
	assert.Equal(t, entries, other.Entries())
}

func TestAbilityToggleSet_Idempotent(t *testing.T) {
	set := NewAbilityToggleSet()

	set.SetEnabled(core.ExplosiveArrows, false)
	assert.False(t, set.IsEnabled(core.ExplosiveArrows))

	set.SetEnabled(core.ExplosiveArrows, true)
	set.SetEnabled(core.ExplosiveArrows, true)
	assert.True(t, set.IsEnabled(core.ExplosiveArrows))
	assert.Equal(t, []core.AttackType{core.ExplosiveArrows}, set.Enabled())

	set.SetEnabled(core.ExplosiveArrows, false)
	assert.False(t, set.IsEnabled(core.ExplosiveArrows))
	assert.Empty(t, set.Enabled())
}

func TestAbilityToggleSet_Restore(t *testing.T) {
	set := NewAbilityToggleSet()
	set.SetEnabled(core.HammerHead, true)

	set.Restore([]core.AttackType{core.ExplosiveArrows, core.ExplosiveArrows})

	assert.False(t, set.IsEnabled(core.HammerHead))
	assert.Equal(t, []core.AttackType{core.ExplosiveArrows}, set.Enabled())
}

func TestAttackCooldown_Delegates(t *testing.T) {
	clock := &fakeClock{tick: 0}
	c := NewAttackCooldown(clock)

	c.SetCooldown(core.Charge, 100)
	c.EnableAttack(core.ExplosiveArrows, true)

	assert.True(t, c.HasCooldownFor(core.Charge))
	assert.False(t, c.HasCooldownFor(core.DrillSpearGore))
	assert.True(t, c.AttackIsEnabled(core.ExplosiveArrows))
	assert.False(t, c.AttackIsEnabled(core.HammerHead))
}
