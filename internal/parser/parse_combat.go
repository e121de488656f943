package parser

import (
	"github.com/industrialmelee/extension/pkg/core"
)

// ParsedMeleeHit is a hit whose weapon may be left for the handler to fill
// from the attacker's primary.
type ParsedMeleeHit struct {
	Hit         core.MeleeHit
	WeaponGiven bool
}

// ActorTarget is an actor acting on another. Args: actorId, targetId
type ActorTarget struct {
	ActorID  string
	TargetID string
}

// AbilityRef names an attack type of an actor. Args: actorId, attack
type AbilityRef struct {
	ActorID string
	Attack  core.AttackType
}

// ParseTick reads the host's current tick.
func (p *Parser) ParseTick(data []string) (int, error) {
	a, err := args(data, 1, "tick")
	if err != nil {
		return 0, err
	}
	tick, err := parseInt("tick", "tick", a[0])
	if err != nil {
		return 0, err
	}
	if tick < 0 {
		return 0, invalid("tick", "tick", a[0], nil)
	}
	return tick, nil
}

// ParseMeleeHit reads attackerId, victimId[, weaponDef, tick].
func (p *Parser) ParseMeleeHit(data []string) (ParsedMeleeHit, error) {
	const what = "melee hit"
	var out ParsedMeleeHit
	a, err := args(data, 2, what)
	if err != nil {
		return out, err
	}
	out.Hit.AttackerID, out.Hit.VictimID = a[0], a[1]
	if err := requireID(what, "attackerId", a[0]); err != nil {
		return out, err
	}
	if err := requireID(what, "victimId", a[1]); err != nil {
		return out, err
	}
	if w := optional(a, 2); w != "" {
		out.Hit.Weapon = core.ParseWeaponDef(w)
		out.WeaponGiven = true
	}
	if s := optional(a, 3); s != "" {
		if out.Hit.Tick, err = parseInt(what, "tick", s); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (p *Parser) ParseActorTarget(data []string) (ActorTarget, error) {
	const what = "target"
	a, err := args(data, 2, what)
	if err != nil {
		return ActorTarget{}, err
	}
	if err := requireID(what, "actorId", a[0]); err != nil {
		return ActorTarget{}, err
	}
	if err := requireID(what, "targetId", a[1]); err != nil {
		return ActorTarget{}, err
	}
	return ActorTarget{ActorID: a[0], TargetID: a[1]}, nil
}

func (p *Parser) ParseAbilityRef(data []string) (AbilityRef, error) {
	const what = "ability"
	a, err := args(data, 2, what)
	if err != nil {
		return AbilityRef{}, err
	}
	if err := requireID(what, "actorId", a[0]); err != nil {
		return AbilityRef{}, err
	}
	attack, err := core.ParseAttackType(a[1])
	if err != nil {
		return AbilityRef{}, invalid(what, "attack", a[1], err)
	}
	return AbilityRef{ActorID: a[0], Attack: attack}, nil
}
