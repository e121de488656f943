package combat

import (
	"sort"

	"github.com/industrialmelee/extension/pkg/core"
)

// AbilityToggleSet is the set of optional attacks an actor has switched on.
// Only explicit SetEnabled calls change it.
type AbilityToggleSet struct {
	enabled map[core.AttackType]struct{}
}

// NewAbilityToggleSet creates an empty set.
func NewAbilityToggleSet() *AbilityToggleSet {
	return &AbilityToggleSet{enabled: make(map[core.AttackType]struct{})}
}

func (t *AbilityToggleSet) IsEnabled(attack core.AttackType) bool {
	_, ok := t.enabled[attack]
	return ok
}

// SetEnabled adds or removes attack. Repeating either is a no-op.
func (t *AbilityToggleSet) SetEnabled(attack core.AttackType, value bool) {
	if value {
		t.enabled[attack] = struct{}{}
		return
	}
	delete(t.enabled, attack)
}

// Enabled lists the enabled attacks in declaration order.
func (t *AbilityToggleSet) Enabled() []core.AttackType {
	out := make([]core.AttackType, 0, len(t.enabled))
	for a := range t.enabled {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Restore replaces the set with attacks.
func (t *AbilityToggleSet) Restore(attacks []core.AttackType) {
	t.enabled = make(map[core.AttackType]struct{}, len(attacks))
	for _, a := range attacks {
		t.enabled[a] = struct{}{}
	}
}
