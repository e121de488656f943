package core

import (
	"fmt"
	"strings"
)

// WeaponDef is the logical identity of an equipped weapon.
type WeaponDef int

const (
	NoWeapon WeaponDef = iota
	ChainSword
	HeaterSaw
	DrillSpear
	RocketLance
	ImpactHammer
	ImpactBow
)

type weaponNames struct {
	short string
	def   string // host def name
}

var weaponDefNames = map[WeaponDef]weaponNames{
	NoWeapon:     {"None", ""},
	ChainSword:   {"ChainSword", "IM_MeleeWeapon_ChainSword"},
	HeaterSaw:    {"HeaterSaw", "IM_MeleeWeapon_HeaterSaw"},
	DrillSpear:   {"DrillSpear", "IM_MeleeWeapon_DrillSpear"},
	RocketLance:  {"RocketLance", "IM_MeleeWeapon_RocketLance"},
	ImpactHammer: {"ImpactHammer", "IM_MeleeWeapon_ImpactHammer"},
	ImpactBow:    {"ImpactBow", "IM_ImpactBow"},
}

func (w WeaponDef) String() string {
	if n, ok := weaponDefNames[w]; ok {
		return n.short
	}
	return fmt.Sprintf("WeaponDef(%d)", int(w))
}

// DefName returns the host-side def name, empty for NoWeapon.
func (w WeaponDef) DefName() string {
	return weaponDefNames[w].def
}

// ParseWeaponDef accepts either the short name ("DrillSpear") or the host def
// name ("IM_MeleeWeapon_DrillSpear"). Any other non-empty def is a weapon this
// extension does not care about and maps to NoWeapon without error.
func ParseWeaponDef(s string) WeaponDef {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoWeapon
	}
	for w, n := range weaponDefNames {
		if strings.EqualFold(n.short, s) || (n.def != "" && strings.EqualFold(n.def, s)) {
			return w
		}
	}
	return NoWeapon
}

func (w WeaponDef) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText never fails; unknown names decode as NoWeapon.
func (w *WeaponDef) UnmarshalText(text []byte) error {
	*w = ParseWeaponDef(string(text))
	return nil
}
