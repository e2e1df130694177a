package fields

// holder bundles exactly one (shape, store) pair behind one reference.
// It is the unit that gets atomically swapped on the owner: bundling
// guarantees a reader's single pointer load observes a shape and a
// store published together, never a cross of two publications.
//
// A holder is constructed fully initialized and never mutated after it
// has been published; a superseded holder stays valid for any reader
// still holding it until the garbage collector reclaims it.
type holder struct {
	shape *Shape
	store *store
}

func newHolder(shape *Shape, st *store) *holder {
	return &holder{shape: shape, store: st}
}
