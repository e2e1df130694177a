// Package isolation supplies the actor-isolation predicates the fields
// engine consults. The engine never enforces isolation policy itself;
// it asks the Policy passed into each operation whether the calling
// context is privileged and whether a resolved value may cross context
// boundaries.
package isolation

import (
	"sync/atomic"

	"github.com/byroot/fieldstore/pkg/value"
)

// Policy is the contract the fields engine requires from the isolation
// subsystem. Privileged reports whether the calling context is the
// single designated writer. Shareable reports whether a value may be
// returned to a non-privileged context.
type Policy interface {
	Privileged() bool
	Shareable(v value.Value) bool
}

// World is a reference implementation: a group of actors of which
// exactly one, designated at creation, is the main (privileged) actor.
type World struct {
	main   *Actor
	nextID atomic.Int64
}

// Actor is one isolated execution context. Actor values are handed to
// the fields engine as its Policy.
type Actor struct {
	world *World
	id    int64
}

func NewWorld() *World {
	w := &World{}
	w.main = &Actor{world: w, id: 0}
	w.nextID.Store(1)
	return w
}

// Main returns the privileged actor.
func (w *World) Main() *Actor { return w.main }

// Spawn creates a new non-privileged actor.
func (w *World) Spawn() *Actor {
	return &Actor{world: w, id: w.nextID.Add(1)}
}

// Privileged reports whether this actor is the world's main actor.
func (a *Actor) Privileged() bool { return a == a.world.main }

// Shareable reports whether a value may be read from a non-main actor:
// immediates and symbols always, heap values only once frozen.
func (a *Actor) Shareable(v value.Value) bool {
	return v.Frozen()
}

// Unrestricted is a Policy that treats every caller as privileged and
// every value as shareable. Useful for single-context embedders that
// want the storage engine without actor isolation.
var Unrestricted Policy = unrestricted{}

type unrestricted struct{}

func (unrestricted) Privileged() bool             { return true }
func (unrestricted) Shareable(_ value.Value) bool { return true }
