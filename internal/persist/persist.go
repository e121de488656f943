// Package persist converts an actor's cooldowns, toggles and apparel
// charges to and from the flat record the host stores in its save files.
package persist

import (
	"encoding/json"
	"fmt"

	"github.com/industrialmelee/extension/internal/combat"
	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/pkg/core"
)

// ChargeEntry is the saved charge of one worn item.
type ChargeEntry struct {
	ApparelID string `json:"apparelId"`
	Remaining int    `json:"remaining"`
	Max       int    `json:"max"`
}

// Record is everything saved for one actor. Expiry ticks are absolute so a
// record loaded at the same tick answers exactly as before the save.
type Record struct {
	ActorID        string                 `json:"actorId"`
	Cooldowns      []combat.CooldownEntry `json:"cooldowns"`
	EnabledAttacks []core.AttackType      `json:"enabledAttacks"`
	Charges        []ChargeEntry          `json:"charges,omitempty"`
}

// Empty reports whether the record carries no state.
func (r Record) Empty() bool {
	return len(r.Cooldowns) == 0 && len(r.EnabledAttacks) == 0 && len(r.Charges) == 0
}

// Encode captures a's persistent state. Actors without a cooldown component
// encode empty lists and never gain one.
func Encode(a *sim.Actor) Record {
	rec := Record{
		ActorID:        a.ID,
		Cooldowns:      []combat.CooldownEntry{},
		EnabledAttacks: []core.AttackType{},
	}
	if a.Humanlike {
		if cd, ok := a.Cooldowns(); ok {
			rec.Cooldowns = cd.Cooldowns.Entries()
			rec.EnabledAttacks = cd.Toggles.Enabled()
		}
	}
	for _, ap := range a.WornApparel() {
		if r, ok := ap.Charge(); ok {
			rec.Charges = append(rec.Charges, ChargeEntry{
				ApparelID: ap.ID,
				Remaining: r.Remaining(),
				Max:       r.Max(),
			})
		}
	}
	return rec
}

// Apply restores rec onto a, replacing its cooldowns and toggles. Charges
// are matched to worn apparel by id; entries for apparel no longer worn
// are ignored.
func Apply(rec Record, a *sim.Actor) error {
	if rec.ActorID != "" && rec.ActorID != a.ID {
		return fmt.Errorf("record for actor %q applied to %q", rec.ActorID, a.ID)
	}
	if len(rec.Cooldowns) > 0 || len(rec.EnabledAttacks) > 0 {
		cd, ok := a.Cooldowns()
		if !ok {
			return fmt.Errorf("actor %q cannot hold cooldowns", a.ID)
		}
		cd.Cooldowns.Restore(rec.Cooldowns)
		cd.Toggles.Restore(rec.EnabledAttacks)
	} else if cd, ok := a.Cooldowns(); ok {
		cd.Cooldowns.Restore(nil)
		cd.Toggles.Restore(nil)
	}

	for _, c := range rec.Charges {
		ap, ok := a.Apparel(c.ApparelID)
		if !ok {
			continue
		}
		if r, ok := ap.Charge(); ok {
			r.Restore(c.Remaining)
		}
	}
	return nil
}

// Marshal encodes rec as JSON with attack types by name.
func Marshal(rec Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record for %s: %w", rec.ActorID, err)
	}
	return data, nil
}

// Unmarshal decodes a record produced by Marshal.
func Unmarshal(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}
