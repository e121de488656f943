package parser

import (
	"github.com/industrialmelee/extension/internal/render"
)

// StatQuery asks for a stat override. Args: actorId, base
type StatQuery struct {
	ActorID string
	Base    float64
}

// RenderQuery asks how to draw one region. Args: actorId, region[, facing, portrait]
type RenderQuery struct {
	ActorID  string
	Region   render.Region
	Facing   string
	Portrait bool
}

// Reload asks to refill an item. Args: actorId, apparelId[, force]
type Reload struct {
	ActorID   string
	ApparelID string
	Force     bool
}

func (p *Parser) ParseStatQuery(data []string) (StatQuery, error) {
	const what = "stat query"
	a, err := args(data, 2, what)
	if err != nil {
		return StatQuery{}, err
	}
	if err := requireID(what, "actorId", a[0]); err != nil {
		return StatQuery{}, err
	}
	base, err := parseFloat(what, "base", a[1])
	if err != nil {
		return StatQuery{}, err
	}
	return StatQuery{ActorID: a[0], Base: base}, nil
}

func (p *Parser) ParseRenderQuery(data []string) (RenderQuery, error) {
	const what = "render query"
	var out RenderQuery
	a, err := args(data, 2, what)
	if err != nil {
		return out, err
	}
	out.ActorID = a[0]
	if err := requireID(what, "actorId", out.ActorID); err != nil {
		return out, err
	}
	region, ok := render.ParseRegion(a[1])
	if !ok {
		return out, invalid(what, "region", a[1], nil)
	}
	out.Region = region
	out.Facing = optional(a, 2)
	if out.Portrait, err = parseBool(what, "portrait", optional(a, 3)); err != nil {
		return out, err
	}
	return out, nil
}

func (p *Parser) ParseReload(data []string) (Reload, error) {
	const what = "reload"
	var out Reload
	a, err := args(data, 2, what)
	if err != nil {
		return out, err
	}
	out.ActorID, out.ApparelID = a[0], a[1]
	if err := requireID(what, "actorId", a[0]); err != nil {
		return out, err
	}
	if err := requireID(what, "apparelId", a[1]); err != nil {
		return out, err
	}
	if out.Force, err = parseBool(what, "force", optional(a, 2)); err != nil {
		return out, err
	}
	return out, nil
}
