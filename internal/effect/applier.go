package effect

import (
	"math"
	"time"

	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/pkg/core"
)

const (
	bloodPerBodySize    = 8
	maxDecapitateDamage = 20
	decapitatePen       = 999
)

// Emitter spawns blood filth around a victim. The host implements it.
type Emitter interface {
	EmitBlood(victim *sim.Actor, count int)
}

// Outcome reports what applying a resolution changed.
type Outcome struct {
	Emissions   int
	Damage      int
	Dealt       float64
	PartRemoved string
	Killed      bool
}

// Applier mutates victim state for resolved effects.
type Applier struct {
	emitter Emitter
}

// NewApplier creates an applier. A nil emitter only counts emissions.
func NewApplier(e Emitter) *Applier {
	return &Applier{emitter: e}
}

// Apply executes res against victim. Resolutions without a target are no-ops.
func (a *Applier) Apply(res Resolution, attackerID string, victim *sim.Actor) Outcome {
	if !res.Fired() || !res.HasTarget() || victim == nil {
		return Outcome{}
	}
	wasDead := victim.Dead()

	var out Outcome
	switch res.Kind {
	case core.EffectDecapitate:
		out.Emissions = BloodCount(victim.BodySize)
		if a.emitter != nil {
			a.emitter.EmitBlood(victim, out.Emissions)
		}
		out.Damage = DecapitateDamage(victim.Health.PartHealth(res.PartID))
		dmg := victim.Health.TakeDamage(sim.Damage{
			Def:              core.DamageCut,
			Amount:           out.Damage,
			ArmorPenetration: decapitatePen,
			InstigatorID:     attackerID,
			PartID:           res.PartID,
		})
		out.Dealt = dmg.Dealt
		if dmg.Destroyed {
			out.PartRemoved = res.PartID
		}
		if !victim.Dead() {
			victim.Health.Kill()
		}

	case core.EffectDismember, core.EffectGore:
		if victim.Health.AddMissingPart(res.PartID) {
			out.PartRemoved = res.PartID
		}
	}

	out.Killed = !wasDead && victim.Dead()
	return out
}

// BloodCount is the number of blood emissions for a victim of the given size.
func BloodCount(bodySize float64) int {
	n := int(math.Round(bodySize * bloodPerBodySize))
	if n < 1 {
		return 1
	}
	return n
}

// DecapitateDamage sizes the finishing blow from the head's current health.
func DecapitateDamage(headHealth float64) int {
	return min(max(int(headHealth)-1, 1), maxDecapitateDamage)
}

// Event describes a fired effect for logs, metrics and storage.
func Event(hit core.MeleeHit, res Resolution, out Outcome, at time.Time) core.EffectEvent {
	return core.EffectEvent{
		Time:       at,
		Tick:       hit.Tick,
		AttackerID: hit.AttackerID,
		VictimID:   hit.VictimID,
		Weapon:     hit.Weapon,
		Kind:       res.Kind,
		PartID:     res.PartID,
		Emissions:  out.Emissions,
		Damage:     out.Damage,
		Killed:     out.Killed,
	}
}
