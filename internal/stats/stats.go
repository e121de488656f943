// Package stats answers the host's stat queries for actors the extension
// tracks. Each function receives the host-computed base value and returns
// the value to use.
package stats

import (
	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/pkg/core"
)

const (
	ChargeSpeedMultiplier = 4.44
	ChargeMinSpeed        = 20

	HighBleedrateFactor    = 1.5
	TenMoreBleedrateFactor = 1.1
)

// MoveSpeed overrides movement speed. Exhausted worn charge pins it to 0;
// otherwise a running Charge job boosts it.
func MoveSpeed(a *sim.Actor, base float64) float64 {
	if a.AnyExhausted() {
		return 0
	}
	if a.CurrentJob == sim.JobCharge {
		return max(ChargeMinSpeed, base*ChargeSpeedMultiplier)
	}
	return base
}

// BleedRate scales a positive base bleed rate by the actor's bleed conditions.
func BleedRate(a *sim.Actor, base float64) float64 {
	if base <= 0 {
		return base
	}
	if a.Health.HasHediff(core.HediffHighBleedrate) {
		base *= HighBleedrateFactor
	}
	if a.Health.HasHediff(core.HediffTenMoreBleedrate) {
		base *= TenMoreBleedrateFactor
	}
	return base
}
