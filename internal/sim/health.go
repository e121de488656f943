package sim

import (
	"sort"

	"github.com/industrialmelee/extension/pkg/core"
)

// Damage is one damage application against a single part.
type Damage struct {
	Def              core.DamageDef
	Amount           int
	ArmorPenetration float64
	InstigatorID     string
	PartID           string
}

// DamageResult reports what a damage application did.
type DamageResult struct {
	Dealt     float64
	Destroyed bool
	Killed    bool
}

// Health tracks an actor's anatomy, injuries and conditions.
type Health struct {
	parts   []core.BodyPart
	index   map[string]int
	missing map[string]struct{}
	injury  map[string]float64
	hediffs map[core.HediffDef]int
	dead    bool
	downed  bool
}

// NewHealth builds health for the given anatomy. The parts slice is copied.
func NewHealth(parts []core.BodyPart) *Health {
	h := &Health{
		parts:   append([]core.BodyPart(nil), parts...),
		index:   make(map[string]int, len(parts)),
		missing: make(map[string]struct{}),
		injury:  make(map[string]float64),
		hediffs: make(map[core.HediffDef]int),
	}
	for i, p := range h.parts {
		h.index[p.ID] = i
	}
	return h
}

// AllParts returns every part of the anatomy, missing ones included.
func (h *Health) AllParts() []core.BodyPart {
	return h.parts
}

func (h *Health) Part(id string) (core.BodyPart, bool) {
	i, ok := h.index[id]
	if !ok {
		return core.BodyPart{}, false
	}
	return h.parts[i], true
}

// PartIsMissing reports whether the part or any of its ancestors is missing.
// Unknown parts read as missing.
func (h *Health) PartIsMissing(id string) bool {
	for id != "" {
		if _, gone := h.missing[id]; gone {
			return true
		}
		p, ok := h.Part(id)
		if !ok {
			return true
		}
		id = p.Parent
	}
	return false
}

// NotMissingParts returns the parts still attached, in anatomy order.
func (h *Health) NotMissingParts() []core.BodyPart {
	out := make([]core.BodyPart, 0, len(h.parts))
	for _, p := range h.parts {
		if !h.PartIsMissing(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// PartHealth is the part's remaining hit points, 0 when missing.
func (h *Health) PartHealth(id string) float64 {
	p, ok := h.Part(id)
	if !ok || h.PartIsMissing(id) {
		return 0
	}
	left := p.MaxHealth - h.injury[id]
	if left < 0 {
		return 0
	}
	return left
}

// AddMissingPart removes a part from the body. Losing a vital part kills.
// Returns false when the part is unknown or already missing.
func (h *Health) AddMissingPart(id string) bool {
	p, ok := h.Part(id)
	if !ok || h.PartIsMissing(id) {
		return false
	}
	h.missing[id] = struct{}{}
	h.hediffs[core.HediffMissingBodyPart]++
	if p.Vital {
		h.dead = true
	}
	return true
}

// MissingParts lists ids that were removed directly, sorted.
func (h *Health) MissingParts() []string {
	out := make([]string, 0, len(h.missing))
	for id := range h.missing {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// TakeDamage applies damage to its part. A part driven to zero hit points
// is destroyed and becomes missing. Dead actors take no damage.
func (h *Health) TakeDamage(d Damage) DamageResult {
	if h.dead || d.Amount <= 0 || h.PartIsMissing(d.PartID) {
		return DamageResult{}
	}
	before := h.PartHealth(d.PartID)
	dealt := float64(d.Amount)
	if dealt > before {
		dealt = before
	}
	h.injury[d.PartID] += dealt

	res := DamageResult{Dealt: dealt}
	if h.PartHealth(d.PartID) <= 0 {
		h.AddMissingPart(d.PartID)
		res.Destroyed = true
	}
	res.Killed = h.dead
	return res
}

// Kill marks the actor dead. Killing twice is a no-op.
func (h *Health) Kill() {
	h.dead = true
}

func (h *Health) Dead() bool { return h.dead }

func (h *Health) Downed() bool { return h.downed }

func (h *Health) SetDowned(v bool) { h.downed = v }

func (h *Health) AddHediff(def core.HediffDef) {
	h.hediffs[def]++
}

// RemoveHediff removes one instance of def.
func (h *Health) RemoveHediff(def core.HediffDef) {
	if h.hediffs[def] <= 1 {
		delete(h.hediffs, def)
		return
	}
	h.hediffs[def]--
}

func (h *Health) HasHediff(def core.HediffDef) bool {
	return h.hediffs[def] > 0
}
