// pkg/core/events.go
package core

import (
	"fmt"
	"strings"
	"time"
)

// HediffDef names a health condition the extension adds or reads.
type HediffDef string

const (
	HediffMissingBodyPart  HediffDef = "MissingBodyPart"
	HediffHighBleedrate    HediffDef = "IM_HighBleedrate"
	HediffTenMoreBleedrate HediffDef = "IM_10MoreBleedrate"
)

// DamageDef is the kind of damage dealt.
type DamageDef string

const DamageCut DamageDef = "Cut"

// PlayerFaction is the faction id the host uses for the player's colonists.
const PlayerFaction = "PlayerColony"

// MeleeHit is delivered by the host once per successful melee hit, after
// the host has applied its own damage to the victim.
type MeleeHit struct {
	AttackerID string
	VictimID   string
	Weapon     WeaponDef
	Tick       int
}

// EffectKind identifies which special effect fired on a hit.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectDecapitate
	EffectDismember
	EffectGore
)

func (k EffectKind) String() string {
	switch k {
	case EffectDecapitate:
		return "decapitate"
	case EffectDismember:
		return "dismember"
	case EffectGore:
		return "gore"
	default:
		return "none"
	}
}

// ParseEffectKind is the inverse of String.
func ParseEffectKind(s string) (EffectKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return EffectNone, nil
	case "decapitate":
		return EffectDecapitate, nil
	case "dismember":
		return EffectDismember, nil
	case "gore":
		return EffectGore, nil
	}
	return EffectNone, fmt.Errorf("unknown effect kind: %q", s)
}

func (k EffectKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EffectKind) UnmarshalText(text []byte) error {
	parsed, err := ParseEffectKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// EffectEvent records one fired special effect for logging, metrics and
// storage. PartID is empty when the effect found no eligible target.
type EffectEvent struct {
	Time       time.Time  `json:"time"`
	Tick       int        `json:"tick"`
	AttackerID string     `json:"attackerId"`
	VictimID   string     `json:"victimId"`
	Weapon     WeaponDef  `json:"weapon"`
	Kind       EffectKind `json:"kind"`
	PartID     string     `json:"partId,omitempty"`
	Emissions  int        `json:"emissions,omitempty"`
	Damage     int        `json:"damage,omitempty"`
	Killed     bool       `json:"killed,omitempty"`
}
