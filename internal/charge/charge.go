// Package charge implements the depletable charge carried by powered
// apparel. An exhausted item stops its wearer from moving and swaps its
// visual representation until reloaded.
package charge

import "fmt"

// ReloadThreshold is the remaining/maximum ratio under which a reload is wanted.
const ReloadThreshold = 0.3

// Resource counts the charges left on one equipment instance.
// Invariant: 0 <= remaining <= maximum, maximum > 0.
type Resource struct {
	remaining int
	maximum   int
}

// New creates a full resource. maximum must be positive.
func New(maximum int) (*Resource, error) {
	if maximum <= 0 {
		return nil, fmt.Errorf("charge maximum must be positive, got %d", maximum)
	}
	return &Resource{remaining: maximum, maximum: maximum}, nil
}

func (r *Resource) Remaining() int { return r.remaining }
func (r *Resource) Max() int       { return r.maximum }

// Exhausted reports whether no charge is left.
func (r *Resource) Exhausted() bool {
	return r.remaining == 0
}

// ConsumeOne uses one charge. Does nothing once empty.
func (r *Resource) ConsumeOne() {
	if r.remaining > 0 {
		r.remaining--
	}
}

// ConsumeN uses up to n charges at once.
func (r *Resource) ConsumeN(n int) {
	if n <= 0 {
		return
	}
	r.remaining -= min(n, r.remaining)
}

// NeedsReload reports remaining/maximum < 0.3.
func (r *Resource) NeedsReload() bool {
	return float64(r.remaining)/float64(r.maximum) < ReloadThreshold
}

// Reload refills the resource.
func (r *Resource) Reload() {
	r.remaining = r.maximum
}

// Restore sets remaining, clamped into [0, maximum].
func (r *Resource) Restore(remaining int) {
	switch {
	case remaining < 0:
		r.remaining = 0
	case remaining > r.maximum:
		r.remaining = r.maximum
	default:
		r.remaining = remaining
	}
}

func (r *Resource) String() string {
	return fmt.Sprintf("%d/%d", r.remaining, r.maximum)
}
