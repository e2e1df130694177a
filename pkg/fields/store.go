package fields

import (
	"fmt"

	"github.com/byroot/fieldstore/pkg/value"
)

// store is the backing container for one holder: a fixed-capacity slot
// array in array mode, a name-keyed map in too-complex mode. Exactly
// one representation is active, selected by the paired shape's mode.
//
// A store embedded in a published holder is never mutated; every
// mutation builds a private copy and publishes it through a new
// holder. Readers therefore only ever see fully initialized stores.
type store struct {
	slots   []value.Value
	entries map[string]value.Value
}

func newArrayStore(capacity int) *store {
	return &store{slots: make([]value.Value, capacity)}
}

func newMapStore(size int) *store {
	return &store{entries: make(map[string]value.Value, size)}
}

// get reads the slot at a shape-provided offset. An offset beyond the
// store's capacity means a shape was paired with a store from another
// publication, which the holder indirection exists to prevent.
func (st *store) get(offset int) value.Value {
	if offset >= len(st.slots) {
		panic(fmt.Sprintf("fields: offset %d out of bounds for store of capacity %d", offset, len(st.slots)))
	}
	return st.slots[offset]
}

// withSlot returns a copy grown to capacity with the slot at offset
// replaced. capacity must be at least the current slot count.
func (st *store) withSlot(offset, capacity int, v value.Value) *store {
	next := &store{slots: make([]value.Value, capacity)}
	copy(next.slots, st.slots)
	next.slots[offset] = v
	return next
}

func (st *store) lookup(name string) (value.Value, bool) {
	v, ok := st.entries[name]
	return v, ok
}

// withEntry returns a map-store copy with name set to v.
func (st *store) withEntry(name string, v value.Value) *store {
	next := newMapStore(len(st.entries) + 1)
	for k, val := range st.entries {
		next.entries[k] = val
	}
	next.entries[name] = v
	return next
}

// withoutEntry returns a map-store copy with name removed.
func (st *store) withoutEntry(name string) *store {
	next := newMapStore(len(st.entries))
	for k, val := range st.entries {
		if k != name {
			next.entries[k] = val
		}
	}
	return next
}

// materialize converts an array store to a map store by walking the
// shape lineage and copying each live slot keyed by name. Runs once
// per owner when its lineage crosses the complexity threshold; the
// result is private until published.
func (st *store) materialize(shape *Shape) *store {
	next := newMapStore(shape.fieldsCount)
	for n := shape; n.parent != nil; n = n.parent {
		next.entries[n.edge] = st.get(n.offset)
	}
	return next
}

// compact builds the array store for a post-removal shape, relocating
// each surviving value from its offset under the old shape to its
// compacted offset under the new one.
func (st *store) compact(old, next *Shape) *store {
	ns := newArrayStore(next.capacity)
	for n := next; n.parent != nil; n = n.parent {
		off, ok := old.Lookup(n.edge)
		if !ok {
			panic(fmt.Sprintf("fields: compacted shape names %s absent from source lineage", n.edge))
		}
		ns.slots[n.offset] = st.get(off)
	}
	return ns
}
