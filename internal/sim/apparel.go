package sim

import (
	"github.com/cespare/xxhash/v2"
	"github.com/industrialmelee/extension/internal/charge"
)

// Apparel is one worn equipment instance. Powered armour carries a charge
// resource; plain apparel does not.
type Apparel struct {
	ID               string
	Graphic          string
	AlternateGraphic string

	// HashOffset spreads periodic work of different items over different ticks.
	HashOffset int

	charge   *charge.Resource
	lastTick int
}

// NewApparel creates apparel without a charge resource.
func NewApparel(id, graphic string) *Apparel {
	return &Apparel{
		ID:         id,
		Graphic:    graphic,
		HashOffset: int(xxhash.Sum64String(id) % (1 << 16)),
	}
}

// AttachCharge gives the apparel a charge resource.
func (a *Apparel) AttachCharge(r *charge.Resource) {
	a.charge = r
}

// Charge returns the apparel's charge resource, if it has one.
func (a *Apparel) Charge() (*charge.Resource, bool) {
	return a.charge, a.charge != nil
}

// Exhausted reports whether the apparel has a charge resource and it is empty.
func (a *Apparel) Exhausted() bool {
	return a.charge != nil && a.charge.Exhausted()
}
