package effect

import (
	"github.com/industrialmelee/extension/internal/sim"
	"github.com/industrialmelee/extension/pkg/core"
)

// DismemberCoverage is the coverage a part must exceed to be cut off.
const DismemberCoverage = 0.1

// Category is a class of body part an effect may target.
type Category int

const (
	CategoryHead Category = iota
	CategoryExternal
	CategoryInternal
)

// Eligible reports whether part may be targeted by an effect of category c
// on an anatomy where missing reports removed parts.
func Eligible(c Category, part core.BodyPart, missing func(id string) bool) bool {
	if missing(part.ID) {
		return false
	}
	switch c {
	case CategoryHead:
		return part.Def == core.PartHead && part.Depth == core.Outside
	case CategoryExternal:
		return part.Depth == core.Outside && part.Coverage > DismemberCoverage
	case CategoryInternal:
		return part.Depth == core.Inside
	}
	return false
}

// Candidates returns the victim's parts eligible for c, in anatomy order.
func Candidates(c Category, h *sim.Health) []core.BodyPart {
	var out []core.BodyPart
	for _, p := range h.AllParts() {
		if Eligible(c, p, h.PartIsMissing) {
			out = append(out, p)
		}
	}
	return out
}
