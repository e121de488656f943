package render

import (
	"testing"

	"github.com/industrialmelee/extension/internal/charge"
	"github.com/industrialmelee/extension/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wearing(t *testing.T, humanlike bool, alternate string) (*sim.Actor, *charge.Resource) {
	t.Helper()
	a := sim.NewWorld().NewActor("pawn", humanlike)
	r, err := charge.New(1)
	require.NoError(t, err)
	ap := sim.NewApparel("armor", "Things/Armor")
	ap.AlternateGraphic = alternate
	ap.AttachCharge(r)
	a.Wear(ap)
	return a, r
}

func TestQuery_ChargedIsUnhandled(t *testing.T) {
	a, _ := wearing(t, true, "Things/ArmorOff")
	for _, region := range []Region{RegionBody, RegionHair, RegionHead, RegionBodyBase} {
		assert.Equal(t, Result{}, Query(a, region, "south", false), region.String())
	}
}

func TestQuery_Exhausted(t *testing.T) {
	a, r := wearing(t, true, "Things/ArmorOff")
	r.ConsumeOne()

	tests := []struct {
		name     string
		region   Region
		portrait bool
		want     Result
	}{
		{"body swaps", RegionBody, false, Result{Material: "Things/ArmorOff_south", Handled: true}},
		{"hair hidden", RegionHair, false, Result{Suppress: true, Handled: true}},
		{"head hidden", RegionHead, false, Result{Suppress: true, Handled: true}},
		{"portrait head kept", RegionHead, true, Result{}},
		{"portrait hair kept", RegionHair, true, Result{}},
		{"body base hidden", RegionBodyBase, false, Result{Suppress: true, Handled: true}},
		{"body base hidden in portrait", RegionBodyBase, true, Result{Suppress: true, Handled: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Query(a, tt.region, "south", tt.portrait))
		})
	}

	r.Reload()
	assert.Equal(t, Result{}, Query(a, RegionBody, "south", false))
}

func TestQuery_NoAlternateDrawsEmpty(t *testing.T) {
	a, r := wearing(t, true, "")
	r.ConsumeOne()
	assert.Equal(t, Result{Handled: true}, Query(a, RegionBody, "north", false))
}

func TestQuery_BodyBaseOnlyForHumanlike(t *testing.T) {
	a, r := wearing(t, false, "Alt")
	r.ConsumeOne()
	assert.Equal(t, Result{}, Query(a, RegionBodyBase, "east", false))
	assert.True(t, Query(a, RegionHead, "east", false).Suppress)
}

func TestParseRegion(t *testing.T) {
	r, ok := ParseRegion(" BodyBase ")
	assert.True(t, ok)
	assert.Equal(t, RegionBodyBase, r)
	_, ok = ParseRegion("tail")
	assert.False(t, ok)
}
