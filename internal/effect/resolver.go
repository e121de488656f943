// Package effect decides and executes the special effects melee weapons
// trigger on a hit: decapitation, dismemberment and organ gore.
package effect

import (
	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/pkg/core"
)

const (
	ChainSwordChance  = 0.02
	HeaterSawChance   = 0.05
	GoreChance        = 0.05
	GoreCooldownTicks = 7200
)

// Resolution is the outcome of evaluating one hit. Kind is EffectNone when
// nothing fired. PartID is empty when an effect fired but found no target,
// in which case applying it changes nothing.
type Resolution struct {
	Kind   core.EffectKind
	Weapon core.WeaponDef
	PartID string

	// Cooldown is set when the effect started an attacker cooldown.
	Cooldown bool
	Attack   core.AttackType
}

// Fired reports whether a rule's chance draw succeeded.
func (r Resolution) Fired() bool {
	return r.Kind != core.EffectNone
}

// HasTarget reports whether the effect selected a body part.
func (r Resolution) HasTarget() bool {
	return r.PartID != ""
}

// Resolver evaluates the weapon rule table for melee hits.
type Resolver struct {
	rand Rand
}

// NewResolver creates a resolver drawing from r, or from math/rand/v2 when r is nil.
func NewResolver(r Rand) *Resolver {
	if r == nil {
		r = globalRand{}
	}
	return &Resolver{rand: r}
}

// Resolve picks at most one effect for a hit. Only the rule matching the
// attacker's weapon draws a chance. Gore rules set the attacker's cooldown
// as soon as their draw succeeds, before looking for a target.
func (r *Resolver) Resolve(hit core.MeleeHit, attacker, victim *sim.Actor) Resolution {
	res := Resolution{Weapon: hit.Weapon}
	if attacker == nil || victim == nil {
		return res
	}

	switch hit.Weapon {
	case core.ChainSword:
		if !r.roll(ChainSwordChance) {
			return res
		}
		res.Kind = core.EffectDecapitate
		if heads := Candidates(CategoryHead, victim.Health); len(heads) > 0 {
			res.PartID = heads[0].ID
		}

	case core.HeaterSaw:
		if !r.roll(HeaterSawChance) {
			return res
		}
		res.Kind = core.EffectDismember
		res.PartID = r.pick(Candidates(CategoryExternal, victim.Health))

	case core.DrillSpear:
		return r.gore(res, core.DrillSpearGore, attacker, victim)

	case core.RocketLance:
		return r.gore(res, core.RocketLanceGore, attacker, victim)
	}
	return res
}

func (r *Resolver) gore(res Resolution, attack core.AttackType, attacker, victim *sim.Actor) Resolution {
	cd, ok := attacker.Cooldowns()
	if !ok || cd.HasCooldownFor(attack) {
		return res
	}
	if !r.roll(GoreChance) {
		return res
	}
	cd.SetCooldown(attack, GoreCooldownTicks)
	res.Kind = core.EffectGore
	res.Cooldown = true
	res.Attack = attack
	res.PartID = r.pick(Candidates(CategoryInternal, victim.Health))
	return res
}

// roll fires on draws in [0, chance), matching the host's Rand.Chance.
func (r *Resolver) roll(chance float64) bool {
	return r.rand.Float64() < chance
}

func (r *Resolver) pick(parts []core.BodyPart) string {
	if len(parts) == 0 {
		return ""
	}
	return parts[r.rand.IntN(len(parts))].ID
}
