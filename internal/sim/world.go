package sim

import (
	"errors"
	"fmt"
	"sort"

	"github.com/industrialmelee/extension/internal/charge"
)

// ErrUnknownActor is returned when an id does not name a live actor.
var ErrUnknownActor = errors.New("unknown actor")

// ChargeChange reports a worn item that consumed charge during AdvanceTo.
type ChargeChange struct {
	ActorID   string
	ApparelID string
	Consumed  int
	Remaining int
	Max       int
	// Exhausted is true when the item ran out during this advance.
	Exhausted bool
}

// World owns every actor the host has announced and the shared clock.
type World struct {
	Clock  *Clock
	actors map[string]*Actor
}

// NewWorld creates an empty world at tick 0.
func NewWorld() *World {
	return &World{
		Clock:  NewClock(0),
		actors: make(map[string]*Actor),
	}
}

// NewActor creates an actor bound to the world clock without adding it.
func (w *World) NewActor(id string, humanlike bool) *Actor {
	return NewActor(id, humanlike, nil, w.Clock)
}

// Spawn adds an actor. Ids must be unique.
func (w *World) Spawn(a *Actor) error {
	if a.ID == "" {
		return fmt.Errorf("actor id is empty")
	}
	if _, exists := w.actors[a.ID]; exists {
		return fmt.Errorf("actor %q already spawned", a.ID)
	}
	w.actors[a.ID] = a
	return nil
}

// Actor looks up an actor by id.
func (w *World) Actor(id string) (*Actor, bool) {
	a, ok := w.actors[id]
	return a, ok
}

// MustActor is Actor returning ErrUnknownActor on a miss.
func (w *World) MustActor(id string) (*Actor, error) {
	a, ok := w.actors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActor, id)
	}
	return a, nil
}

// Remove destroys an actor together with its components.
func (w *World) Remove(id string) bool {
	if _, ok := w.actors[id]; !ok {
		return false
	}
	delete(w.actors, id)
	return true
}

// ResetClock sets the clock to tick even when it lies in the past and
// re-bases the drain schedule of every worn item on it. Used when the host
// loads a save taken at an earlier tick.
func (w *World) ResetClock(tick int) {
	w.Clock.Reset(tick)
	for _, a := range w.actors {
		for _, ap := range a.WornApparel() {
			ap.lastTick = tick
		}
	}
}

// Actors returns all actors sorted by id.
func (w *World) Actors() []*Actor {
	out := make([]*Actor, 0, len(w.actors))
	for _, a := range w.actors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) Len() int {
	return len(w.actors)
}

// AdvanceTo moves the clock to tick and drains the charge of every worn
// powered item for each interval boundary crossed.
func (w *World) AdvanceTo(tick int, ticker charge.Ticker) []ChargeChange {
	w.Clock.Advance(tick)
	now := w.Clock.Tick()

	var changes []ChargeChange
	for _, a := range w.Actors() {
		for _, ap := range a.WornApparel() {
			r, ok := ap.Charge()
			if !ok {
				ap.lastTick = now
				continue
			}
			wasExhausted := r.Exhausted()
			n := ticker.Advance(r, ap.HashOffset, ap.lastTick, now)
			ap.lastTick = now
			if n == 0 {
				continue
			}
			changes = append(changes, ChargeChange{
				ActorID:   a.ID,
				ApparelID: ap.ID,
				Consumed:  n,
				Remaining: r.Remaining(),
				Max:       r.Max(),
				Exhausted: !wasExhausted && r.Exhausted(),
			})
		}
	}
	return changes
}
