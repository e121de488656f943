package combat

import "github.com/industrialmelee/extension/pkg/core"

// AttackCooldown is the component every humanlike actor carries: its
// cooldowns plus its toggled abilities.
type AttackCooldown struct {
	Cooldowns *CooldownStore
	Toggles   *AbilityToggleSet
}

// NewAttackCooldown creates an empty component bound to clock.
func NewAttackCooldown(clock Clock) *AttackCooldown {
	return &AttackCooldown{
		Cooldowns: NewCooldownStore(clock),
		Toggles:   NewAbilityToggleSet(),
	}
}

func (c *AttackCooldown) HasCooldownFor(attack core.AttackType) bool {
	return c.Cooldowns.Has(attack)
}

// CooldownRemaining returns the ticks left before attack is usable again.
func (c *AttackCooldown) CooldownRemaining(attack core.AttackType) int {
	return c.Cooldowns.Remaining(attack)
}

func (c *AttackCooldown) SetCooldown(attack core.AttackType, duration int) {
	c.Cooldowns.Set(attack, duration)
}

func (c *AttackCooldown) AttackIsEnabled(attack core.AttackType) bool {
	return c.Toggles.IsEnabled(attack)
}

func (c *AttackCooldown) EnableAttack(attack core.AttackType, value bool) {
	c.Toggles.SetEnabled(attack, value)
}
