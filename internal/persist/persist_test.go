package persist

import (
	"testing"

	"github.com/industrialmelee/extension/internal/charge"
	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_CooldownAnswersMatch(t *testing.T) {
	w := sim.NewWorld()
	a := w.NewActor("pawn", true)
	cd, _ := a.Cooldowns()
	w.Clock.Advance(100)
	cd.SetCooldown(core.Charge, 400) // expires at 500

	data, err := Marshal(Encode(a))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"attack":"Charge"`)
	assert.Contains(t, string(data), `"tick":500`)

	loaded, err := Unmarshal(data)
	require.NoError(t, err)

	w2 := sim.NewWorld()
	b := w2.NewActor("pawn", true)
	require.NoError(t, Apply(loaded, b))
	cd2, _ := b.Cooldowns()

	for _, tick := range []int{400, 600} {
		w.Clock.Reset(tick)
		w2.Clock.Reset(tick)
		for _, at := range core.AllAttackTypes {
			assert.Equal(t, cd.HasCooldownFor(at), cd2.HasCooldownFor(at), "%s at %d", at, tick)
		}
	}
	w2.Clock.Reset(400)
	assert.True(t, cd2.HasCooldownFor(core.Charge))
	w2.Clock.Reset(600)
	assert.False(t, cd2.HasCooldownFor(core.Charge))
}

func TestRoundTrip_TogglesAndCharges(t *testing.T) {
	w := sim.NewWorld()
	a := w.NewActor("pawn", true)
	cd, _ := a.Cooldowns()
	cd.EnableAttack(core.ExplosiveArrows, true)

	r, err := charge.New(10)
	require.NoError(t, err)
	armor := sim.NewApparel("armor", "Armor")
	armor.AttachCharge(r)
	a.Wear(armor)
	r.Restore(4)

	rec := Encode(a)
	assert.Equal(t, []core.AttackType{core.ExplosiveArrows}, rec.EnabledAttacks)
	assert.Equal(t, []ChargeEntry{{ApparelID: "armor", Remaining: 4, Max: 10}}, rec.Charges)

	data, err := Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ExplosiveArrows"`)

	loaded, err := Unmarshal(data)
	require.NoError(t, err)

	b := w.NewActor("pawn", true)
	fresh, _ := charge.New(10)
	armor2 := sim.NewApparel("armor", "Armor")
	armor2.AttachCharge(fresh)
	b.Wear(armor2)
	require.NoError(t, Apply(loaded, b))

	cd2, _ := b.Cooldowns()
	assert.True(t, cd2.AttackIsEnabled(core.ExplosiveArrows))
	assert.False(t, cd2.AttackIsEnabled(core.Charge))
	assert.Equal(t, 4, fresh.Remaining())
}

func TestApply_ReplacesExistingState(t *testing.T) {
	w := sim.NewWorld()
	a := w.NewActor("pawn", true)
	cd, _ := a.Cooldowns()
	cd.SetCooldown(core.HammerHead, 50)
	cd.EnableAttack(core.ExplosiveArrows, true)

	require.NoError(t, Apply(Record{ActorID: "pawn"}, a))
	assert.False(t, cd.HasCooldownFor(core.HammerHead))
	assert.False(t, cd.AttackIsEnabled(core.ExplosiveArrows))
}

func TestApply_Errors(t *testing.T) {
	w := sim.NewWorld()
	animal := w.NewActor("boar", false)

	err := Apply(Record{ActorID: "other"}, animal)
	assert.Error(t, err)

	err = Apply(Record{EnabledAttacks: []core.AttackType{core.Charge}}, animal)
	assert.Error(t, err)

	assert.NoError(t, Apply(Record{}, animal))
	_, ok := animal.Cooldowns()
	assert.False(t, ok)
}

func TestEncode_NonHumanlikeIsEmpty(t *testing.T) {
	w := sim.NewWorld()
	rec := Encode(w.NewActor("boar", false))
	assert.True(t, rec.Empty())
	assert.Equal(t, "boar", rec.ActorID)
}

func TestUnmarshal_RejectsUnknownAttack(t *testing.T) {
	_, err := Unmarshal([]byte(`{"actorId":"x","cooldowns":[{"attack":"Bogus","tick":1}]}`))
	assert.Error(t, err)
}
