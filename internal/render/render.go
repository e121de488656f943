// Package render answers the host renderer's per-region material queries
// for actors wearing exhausted powered apparel.
package render

import (
	"strings"

	"github.com/industrialmelee/extension/internal/sim"
)

// Region is a layer of an actor's drawn body.
type Region int

const (
	RegionBody Region = iota
	RegionHair
	RegionHead
	RegionBodyBase
)

func (r Region) String() string {
	switch r {
	case RegionBody:
		return "Body"
	case RegionHair:
		return "Hair"
	case RegionHead:
		return "Head"
	case RegionBodyBase:
		return "BodyBase"
	}
	return "Unknown"
}

// ParseRegion parses a region name case-insensitively.
func ParseRegion(s string) (Region, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "body":
		return RegionBody, true
	case "hair":
		return RegionHair, true
	case "head":
		return RegionHead, true
	case "bodybase":
		return RegionBodyBase, true
	}
	return 0, false
}

// Result tells the renderer what to draw. When Handled is false the
// renderer draws its default.
type Result struct {
	Material string `json:"material,omitempty"`
	Suppress bool   `json:"suppress"`
	Handled  bool   `json:"handled"`
}

// Query resolves one region for actor a. The facing is passed through to
// the material name as a suffix, mirroring the host's per-facing textures.
func Query(a *sim.Actor, region Region, facing string, portrait bool) Result {
	worn, ok := exhaustedApparel(a)
	if !ok {
		return Result{}
	}
	switch region {
	case RegionBody:
		mat := worn.AlternateGraphic
		if mat != "" && facing != "" {
			mat += "_" + facing
		}
		return Result{Material: mat, Handled: true}
	case RegionHair, RegionHead:
		if portrait {
			return Result{}
		}
		return Result{Suppress: true, Handled: true}
	case RegionBodyBase:
		if !a.Humanlike {
			return Result{}
		}
		return Result{Suppress: true, Handled: true}
	}
	return Result{}
}

func exhaustedApparel(a *sim.Actor) (*sim.Apparel, bool) {
	for _, ap := range a.WornApparel() {
		if ap.Exhausted() {
			return ap, true
		}
	}
	return nil, false
}
