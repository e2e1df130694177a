package fields

import (
	"sync"
	"sync/atomic"

	"github.com/byroot/fieldstore/pkg/errors"
	"github.com/byroot/fieldstore/pkg/isolation"
)

// Owner is one shared object (a class or module in the host runtime)
// whose named attributes live in this engine. The owner holds a single
// replaceable reference to its current holder; mutations build a new
// holder and swap the reference, they never mutate the published pair
// in place. A nil holder means no attributes are defined yet.
type Owner struct {
	space *Space
	name  string

	holder atomic.Pointer[holder]
	frozen atomic.Bool

	// structMu serializes writer-side mutation on this owner. Readers
	// never take it; the remove path's compaction runs under it.
	structMu sync.Mutex
}

// Name returns the diagnostic name the owner was created with.
func (o *Owner) Name() string { return o.name }

// Frozen reports whether the owner has been marked immutable.
func (o *Owner) Frozen() bool { return o.frozen.Load() }

// Freeze marks the owner immutable. Every subsequent write fails with
// a FrozenError. Freezing requires the privileged context and is
// one-way.
func (o *Owner) Freeze(pol isolation.Policy) error {
	if !pol.Privileged() {
		return errors.NewIsolation(o.name, "only the main context may freeze an owner")
	}
	o.frozen.Store(true)
	return nil
}

// ShapeInfo describes the current snapshot's layout.
type ShapeInfo struct {
	FieldsCount int
	Capacity    int
	Mode        Mode
}

// ShapeInfo reports the layout of the owner's current snapshot.
func (o *Owner) ShapeInfo() ShapeInfo {
	h := o.holder.Load()
	if h == nil {
		return ShapeInfo{Mode: ModeArray}
	}
	return ShapeInfo{
		FieldsCount: h.shape.fieldsCount,
		Capacity:    h.shape.capacity,
		Mode:        h.shape.mode,
	}
}

// publish makes a new holder the owner's current snapshot. The atomic
// store orders every write that built the holder's shape and store
// before the pointer swap, so a reader that observes the new holder
// observes its contents fully initialized.
func (o *Owner) publish(h *holder) {
	o.holder.Store(h)
}

// snapshot loads the current holder exactly once. May be nil.
func (o *Owner) snapshot() *holder {
	return o.holder.Load()
}
