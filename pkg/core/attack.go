// Package core holds the domain vocabulary shared between the extension's
// internal packages and anything embedding them: attack types, weapon
// identities, anatomy and the event payloads delivered by the host.
package core

import (
	"fmt"
	"strings"
)

// AttackType identifies a special attack or ability that can be gated by a
// cooldown or toggled on by the player.
type AttackType int

const (
	HammerHead AttackType = iota
	Charge
	DrillSpearGore
	RocketLanceGore
	ExplosiveArrows
)

// AllAttackTypes lists every attack type in declaration order.
var AllAttackTypes = []AttackType{
	HammerHead,
	Charge,
	DrillSpearGore,
	RocketLanceGore,
	ExplosiveArrows,
}

var attackTypeNames = map[AttackType]string{
	HammerHead:      "HammerHead",
	Charge:          "Charge",
	DrillSpearGore:  "DrillSpearGore",
	RocketLanceGore: "RocketLanceGore",
	ExplosiveArrows: "ExplosiveArrows",
}

func (a AttackType) String() string {
	if name, ok := attackTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AttackType(%d)", int(a))
}

// Valid reports whether a is one of the declared attack types.
func (a AttackType) Valid() bool {
	_, ok := attackTypeNames[a]
	return ok
}

// ParseAttackType accepts the attack name case-insensitively.
func ParseAttackType(s string) (AttackType, error) {
	s = strings.TrimSpace(s)
	for a, name := range attackTypeNames {
		if strings.EqualFold(name, s) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown attack type: %q", s)
}

// MarshalText encodes the attack type by name so persisted records stay
// readable and survive enum reordering.
func (a AttackType) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid attack type: %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (a *AttackType) UnmarshalText(text []byte) error {
	parsed, err := ParseAttackType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
