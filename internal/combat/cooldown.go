// Package combat holds the per-actor bookkeeping for special attacks:
// cooldown expiry ticks and the set of attacks the player switched on.
package combat

import (
	"sort"

	"github.com/industrialmelee/extension/pkg/core"
)

// Clock reports the host's current simulation tick.
type Clock interface {
	Tick() int
}

// CooldownEntry is one stored expiry. Tick is absolute.
type CooldownEntry struct {
	Attack core.AttackType `json:"attack"`
	Tick   int             `json:"tick"`
}

// CooldownStore maps attack types to the tick their cooldown expires.
// A missing key means no cooldown; a stored expiry at or before the current
// tick is stale and reads as no cooldown.
type CooldownStore struct {
	clock  Clock
	expiry map[core.AttackType]int
}

// NewCooldownStore creates an empty store reading time from clock.
func NewCooldownStore(clock Clock) *CooldownStore {
	return &CooldownStore{
		clock:  clock,
		expiry: make(map[core.AttackType]int),
	}
}

// Set starts a cooldown lasting duration ticks from now, replacing any
// earlier entry for the same attack.
func (s *CooldownStore) Set(attack core.AttackType, duration int) {
	s.expiry[attack] = s.clock.Tick() + duration
}

// Has reports whether attack is still cooling down. It never mutates the store.
func (s *CooldownStore) Has(attack core.AttackType) bool {
	tick, ok := s.expiry[attack]
	return ok && tick > s.clock.Tick()
}

// Remaining returns ticks left on the cooldown, 0 when inactive.
func (s *CooldownStore) Remaining(attack core.AttackType) int {
	if !s.Has(attack) {
		return 0
	}
	return s.expiry[attack] - s.clock.Tick()
}

// Entries returns every stored expiry, stale ones included, ordered by attack type.
func (s *CooldownStore) Entries() []CooldownEntry {
	out := make([]CooldownEntry, 0, len(s.expiry))
	for a, tick := range s.expiry {
		out = append(out, CooldownEntry{Attack: a, Tick: tick})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Attack < out[j].Attack })
	return out
}

// Restore replaces the store contents with entries. Later duplicates win.
func (s *CooldownStore) Restore(entries []CooldownEntry) {
	s.expiry = make(map[core.AttackType]int, len(entries))
	for _, e := range entries {
		s.expiry[e.Attack] = e.Tick
	}
}
