package parser

import (
	"encoding/json"

	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/pkg/core"
)

// NewActor announces an actor.
// Args: id, humanlike, faction, bodySize, x, y[, bodyJSON]
type NewActor struct {
	ID        string
	Humanlike bool
	Faction   string
	BodySize  float64
	Position  sim.Position
	Body      []core.BodyPart
}

// ActorState updates the per-tick state abilities depend on.
// Args: id, x, y, mentalState, downed
type ActorState struct {
	ID          string
	Position    sim.Position
	MentalState string
	Downed      bool
}

// Equip sets the primary weapon. Args: id, weaponDef
type Equip struct {
	ActorID string
	Weapon  core.WeaponDef
}

// Wear puts on apparel. MaxCharge 0 means unpowered; Remaining < 0 means full.
// Args: actorId, apparelId, graphic[, alternateGraphic, maxCharge, remaining]
type Wear struct {
	ActorID          string
	ApparelID        string
	Graphic          string
	AlternateGraphic string
	MaxCharge        int
	Remaining        int
}

// ApparelRef names one worn item. Args: actorId, apparelId
type ApparelRef struct {
	ActorID   string
	ApparelID string
}

// HediffChange adds or removes a condition. Args: actorId, def, add
type HediffChange struct {
	ActorID string
	Def     core.HediffDef
	Add     bool
}

func (p *Parser) ParseNewActor(data []string) (NewActor, error) {
	const what = "new actor"
	var out NewActor
	a, err := args(data, 6, what)
	if err != nil {
		return out, err
	}
	out.ID = a[0]
	if err := requireID(what, "id", out.ID); err != nil {
		return out, err
	}
	if out.Humanlike, err = parseBool(what, "humanlike", a[1]); err != nil {
		return out, err
	}
	out.Faction = a[2]
	if out.BodySize, err = parseFloat(what, "bodySize", a[3]); err != nil {
		return out, err
	}
	if out.BodySize <= 0 {
		return out, invalid(what, "bodySize", a[3], nil)
	}
	if out.Position, err = parsePosition(what, a[4], a[5]); err != nil {
		return out, err
	}

	if raw := optional(a, 6); raw != "" {
		if err := json.Unmarshal([]byte(raw), &out.Body); err != nil {
			return out, invalid(what, "body", raw, err)
		}
		if err := core.ValidateBody(out.Body); err != nil {
			return out, invalid(what, "body", raw, err)
		}
	}

	p.logger.Debug("Parsed new actor", "id", out.ID, "humanlike", out.Humanlike, "parts", len(out.Body))
	return out, nil
}

func (p *Parser) ParseActorState(data []string) (ActorState, error) {
	const what = "actor state"
	var out ActorState
	a, err := args(data, 5, what)
	if err != nil {
		return out, err
	}
	out.ID = a[0]
	if err := requireID(what, "id", out.ID); err != nil {
		return out, err
	}
	if out.Position, err = parsePosition(what, a[1], a[2]); err != nil {
		return out, err
	}
	out.MentalState = a[3]
	if out.Downed, err = parseBool(what, "downed", a[4]); err != nil {
		return out, err
	}
	return out, nil
}

func (p *Parser) ParseActorID(data []string) (string, error) {
	a, err := args(data, 1, "actor")
	if err != nil {
		return "", err
	}
	if err := requireID("actor", "id", a[0]); err != nil {
		return "", err
	}
	return a[0], nil
}

// Load asks to restore saved state. Args: actorId[, tick]
type Load struct {
	ActorID string
	Tick    int
	HasTick bool
}

func (p *Parser) ParseLoad(data []string) (Load, error) {
	const what = "load"
	var out Load
	a, err := args(data, 1, what)
	if err != nil {
		return out, err
	}
	out.ActorID = a[0]
	if err := requireID(what, "actorId", out.ActorID); err != nil {
		return out, err
	}
	if s := optional(a, 1); s != "" {
		if out.Tick, err = parseInt(what, "tick", s); err != nil {
			return out, err
		}
		if out.Tick < 0 {
			return out, invalid(what, "tick", s, nil)
		}
		out.HasTick = true
	}
	return out, nil
}

func (p *Parser) ParseEquip(data []string) (Equip, error) {
	const what = "equip"
	a, err := args(data, 2, what)
	if err != nil {
		return Equip{}, err
	}
	if err := requireID(what, "actorId", a[0]); err != nil {
		return Equip{}, err
	}
	return Equip{ActorID: a[0], Weapon: core.ParseWeaponDef(a[1])}, nil
}

func (p *Parser) ParseWear(data []string) (Wear, error) {
	const what = "wear"
	out := Wear{Remaining: -1}
	a, err := args(data, 3, what)
	if err != nil {
		return out, err
	}
	out.ActorID, out.ApparelID, out.Graphic = a[0], a[1], a[2]
	if err := requireID(what, "actorId", out.ActorID); err != nil {
		return out, err
	}
	if err := requireID(what, "apparelId", out.ApparelID); err != nil {
		return out, err
	}
	out.AlternateGraphic = optional(a, 3)

	if s := optional(a, 4); s != "" {
		if out.MaxCharge, err = parseInt(what, "maxCharge", s); err != nil {
			return out, err
		}
		if out.MaxCharge < 0 {
			return out, invalid(what, "maxCharge", s, nil)
		}
	}
	if s := optional(a, 5); s != "" {
		if out.Remaining, err = parseInt(what, "remaining", s); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (p *Parser) ParseApparelRef(data []string) (ApparelRef, error) {
	const what = "apparel"
	a, err := args(data, 2, what)
	if err != nil {
		return ApparelRef{}, err
	}
	if err := requireID(what, "actorId", a[0]); err != nil {
		return ApparelRef{}, err
	}
	if err := requireID(what, "apparelId", a[1]); err != nil {
		return ApparelRef{}, err
	}
	return ApparelRef{ActorID: a[0], ApparelID: a[1]}, nil
}

func (p *Parser) ParseHediff(data []string) (HediffChange, error) {
	const what = "hediff"
	var out HediffChange
	a, err := args(data, 3, what)
	if err != nil {
		return out, err
	}
	out.ActorID = a[0]
	if err := requireID(what, "actorId", out.ActorID); err != nil {
		return out, err
	}
	if a[1] == "" {
		return out, invalid(what, "def", a[1], nil)
	}
	out.Def = core.HediffDef(a[1])
	if out.Add, err = parseBool(what, "add", a[2]); err != nil {
		return out, err
	}
	return out, nil
}

func parsePosition(what, x, y string) (sim.Position, error) {
	px, err := parseFloat(what, "x", x)
	if err != nil {
		return sim.Position{}, err
	}
	py, err := parseFloat(what, "y", y)
	if err != nil {
		return sim.Position{}, err
	}
	return sim.Position{X: px, Y: py}, nil
}
