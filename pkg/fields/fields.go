package fields

import (
	"sort"

	"github.com/byroot/fieldstore/pkg/errors"
	"github.com/byroot/fieldstore/pkg/isolation"
	"github.com/byroot/fieldstore/pkg/value"
)

// Set defines or updates the attribute name on the owner. Only the
// privileged context may write; writes to a frozen owner fail. The
// mutation is built on private copies and published atomically, so a
// concurrent reader sees either the whole write or none of it.
func (o *Owner) Set(pol isolation.Policy, name string, v value.Value) error {
	if !pol.Privileged() {
		return errors.NewIsolation(o.name, "attribute writes are restricted to the main context")
	}
	if o.frozen.Load() {
		return errors.NewFrozen(o.name, "cannot set attribute on frozen owner")
	}
	o.structMu.Lock()
	defer o.structMu.Unlock()

	h := o.snapshot()
	if h == nil {
		h = newHolder(o.space.root, newArrayStore(0))
	}
	shape := h.shape

	if shape.mode == ModeTooComplex {
		// Map mode: copy-on-write, same canonical shape. Names still
		// enter the schema here, so new ones are validated.
		if _, ok := h.store.lookup(name); !ok {
			if err := validateName(name); err != nil {
				return err
			}
		}
		o.publish(newHolder(shape, h.store.withEntry(name, v)))
		return nil
	}

	if off, ok := shape.Lookup(name); ok {
		// Value-only update. The shape is unchanged but the store is
		// still copied: values are multi-word, so an in-place slot
		// write could be observed torn by a concurrent reader.
		o.publish(newHolder(shape, h.store.withSlot(off, shape.capacity, v)))
		return nil
	}

	// Append path: the name enters the schema, validate it first.
	if err := validateName(name); err != nil {
		return err
	}
	next := shape.Add(name)
	if next.mode == ModeTooComplex {
		// Crossed the complexity threshold: materialize the array
		// store into a map store, then publish. The map is private
		// until the publish, so inserting into it directly is safe.
		st := h.store.materialize(shape)
		st.entries[name] = v
		o.space.traceDemotion(o, shape)
		o.publish(newHolder(next, st))
		return nil
	}
	off, _ := next.Lookup(name)
	st := h.store.withSlot(off, next.capacity, v)
	o.space.traceTransition(o, next, name)
	o.publish(newHolder(next, st))
	return nil
}

// Get resolves the attribute name from one snapshot of the owner. The
// shape and store consulted always come from the same snapshot. For a
// non-privileged caller the resolved value must additionally be
// shareable, otherwise the read fails with an IsolationError.
func (o *Owner) Get(pol isolation.Policy, name string) (value.Value, bool, error) {
	h := o.snapshot()
	if h == nil {
		return value.Undefined, false, nil
	}
	var v value.Value
	var ok bool
	if h.shape.mode == ModeTooComplex {
		v, ok = h.store.lookup(name)
	} else if off, found := h.shape.Lookup(name); found {
		v, ok = h.store.get(off), true
	}
	if !ok {
		return value.Undefined, false, nil
	}
	if !pol.Privileged() && !pol.Shareable(v) {
		return value.Undefined, false, errors.NewIsolation(o.name, "attribute "+name+" holds an unshareable value")
	}
	return v, true, nil
}

// Remove deletes the attribute name, returning its last value. In
// array mode removal compacts the positions of attributes defined
// after the removed one: a new shape and a new store are built
// together under the owner's write mutex and published as one holder.
// Readers are never blocked; a reader holding the pre-removal snapshot
// keeps a fully valid pair. Removing an absent name is a no-op.
func (o *Owner) Remove(pol isolation.Policy, name string) (value.Value, bool, error) {
	if !pol.Privileged() {
		return value.Undefined, false, errors.NewIsolation(o.name, "attribute writes are restricted to the main context")
	}
	if o.frozen.Load() {
		return value.Undefined, false, errors.NewFrozen(o.name, "cannot remove attribute from frozen owner")
	}
	o.structMu.Lock()
	defer o.structMu.Unlock()

	h := o.snapshot()
	if h == nil {
		return value.Undefined, false, nil
	}
	if h.shape.mode == ModeTooComplex {
		old, ok := h.store.lookup(name)
		if !ok {
			return value.Undefined, false, nil
		}
		o.publish(newHolder(h.shape, h.store.withoutEntry(name)))
		return old, true, nil
	}
	off, ok := h.shape.Lookup(name)
	if !ok {
		return value.Undefined, false, nil
	}
	old := h.store.get(off)
	next := h.shape.Remove(name)
	if next.mode == ModeTooComplex {
		// The removal itself crossed the complexity threshold.
		st := h.store.materialize(h.shape)
		delete(st.entries, name)
		o.space.traceDemotion(o, h.shape)
		o.publish(newHolder(next, st))
		return old, true, nil
	}
	o.publish(newHolder(next, h.store.compact(h.shape, next)))
	return old, true, nil
}

// Len returns the number of attributes defined in the current
// snapshot.
func (o *Owner) Len() int {
	h := o.snapshot()
	if h == nil {
		return 0
	}
	if h.shape.mode == ModeTooComplex {
		return len(h.store.entries)
	}
	return h.shape.fieldsCount
}

// Names returns the defined attribute names from one snapshot: in
// definition order in array mode, sorted in map mode for determinism.
func (o *Owner) Names() []string {
	h := o.snapshot()
	if h == nil {
		return nil
	}
	if h.shape.mode == ModeTooComplex {
		names := make([]string, 0, len(h.store.entries))
		for k := range h.store.entries {
			names = append(names, k)
		}
		sort.Strings(names)
		return names
	}
	return h.shape.lineage()
}

// Each calls fn for every attribute in one snapshot, in the same order
// as Names, stopping early if fn returns false. Non-privileged callers
// fail with an IsolationError at the first unshareable value.
func (o *Owner) Each(pol isolation.Policy, fn func(name string, v value.Value) bool) error {
	h := o.snapshot()
	if h == nil {
		return nil
	}
	privileged := pol.Privileged()
	visit := func(name string, v value.Value) (bool, error) {
		if !privileged && !pol.Shareable(v) {
			return false, errors.NewIsolation(o.name, "attribute "+name+" holds an unshareable value")
		}
		return fn(name, v), nil
	}
	if h.shape.mode == ModeTooComplex {
		names := make([]string, 0, len(h.store.entries))
		for k := range h.store.entries {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, name := range names {
			more, err := visit(name, h.store.entries[name])
			if err != nil || !more {
				return err
			}
		}
		return nil
	}
	for i, name := range h.shape.lineage() {
		more, err := visit(name, h.store.get(i))
		if err != nil || !more {
			return err
		}
	}
	return nil
}
