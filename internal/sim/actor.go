package sim

import (
	"github.com/industrialmelee/extension/internal/combat"
	"github.com/industrialmelee/extension/pkg/core"
)

// JobDef names the task an actor is executing.
type JobDef string

const (
	JobNone   JobDef = ""
	JobCharge JobDef = "IM_Charge"
)

// Position is an actor's location on the host map.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Actor is a pawn known to the extension.
type Actor struct {
	ID          string
	Faction     string
	Humanlike   bool
	BodySize    float64
	MentalState string
	Position    Position
	Primary     core.WeaponDef
	CurrentJob  JobDef
	JobTarget   string
	Health      *Health

	apparel   []*Apparel
	cooldowns *combat.AttackCooldown
	clock     combat.Clock
}

// NewActor creates an actor with the given anatomy. A nil or empty body
// gets the default humanlike anatomy.
func NewActor(id string, humanlike bool, body []core.BodyPart, clock combat.Clock) *Actor {
	if len(body) == 0 {
		body = core.HumanBody()
	}
	return &Actor{
		ID:        id,
		Humanlike: humanlike,
		BodySize:  1,
		Health:    NewHealth(body),
		clock:     clock,
	}
}

// Cooldowns returns the actor's attack cooldown component. Humanlike actors
// get one on first access; other actors never have one.
func (a *Actor) Cooldowns() (*combat.AttackCooldown, bool) {
	if a.cooldowns == nil && a.Humanlike {
		a.cooldowns = combat.NewAttackCooldown(a.clock)
	}
	return a.cooldowns, a.cooldowns != nil
}

// Wear puts on apparel, replacing an item with the same id. Periodic charge
// drain starts from the current tick.
func (a *Actor) Wear(ap *Apparel) {
	ap.lastTick = a.clock.Tick()
	for i, existing := range a.apparel {
		if existing.ID == ap.ID {
			a.apparel[i] = ap
			return
		}
	}
	a.apparel = append(a.apparel, ap)
}

// TakeOff removes the apparel with id.
func (a *Actor) TakeOff(id string) (*Apparel, bool) {
	for i, ap := range a.apparel {
		if ap.ID == id {
			a.apparel = append(a.apparel[:i], a.apparel[i+1:]...)
			return ap, true
		}
	}
	return nil, false
}

// WornApparel returns the worn items in the order they were put on.
func (a *Actor) WornApparel() []*Apparel {
	return a.apparel
}

// Apparel finds a worn item by id.
func (a *Actor) Apparel(id string) (*Apparel, bool) {
	for _, ap := range a.apparel {
		if ap.ID == id {
			return ap, true
		}
	}
	return nil, false
}

// AnyExhausted reports whether any worn item has run out of charge.
func (a *Actor) AnyExhausted() bool {
	for _, ap := range a.apparel {
		if ap.Exhausted() {
			return true
		}
	}
	return false
}

// Dead is shorthand for a.Health.Dead().
func (a *Actor) Dead() bool {
	return a.Health.Dead()
}
