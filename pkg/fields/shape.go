package fields

import (
	"sync"
)

// Mode selects the backing representation for a shape lineage.
type Mode uint8

const (
	// ModeArray stores values positionally, indexed by shape offsets.
	ModeArray Mode = iota
	// ModeTooComplex stores values in a name-keyed map. Adopted once a
	// lineage accumulates too many shape variations; never reversed.
	ModeTooComplex
)

func (m Mode) String() string {
	switch m {
	case ModeArray:
		return "array"
	case ModeTooComplex:
		return "too_complex"
	default:
		return "unknown"
	}
}

// Shape is an immutable node in a tree keyed by (attribute name,
// parent shape). Each node extends its parent's lineage with one
// attribute and records the positional offset of that attribute. Nodes
// are never mutated after creation; Add only appends new children to
// the memoized transition map. Two owners that define the same
// attributes in the same order share the identical node.
type Shape struct {
	parent *Shape
	root   *Shape
	edge   string // attribute appended by this node, "" for roots
	offset int    // slot index of edge within the lineage

	fieldsCount int
	capacity    int
	mode        Mode

	mu          sync.RWMutex // protects transitions
	transitions map[string]*Shape

	// Roots only: growth policy and the complexity governor for every
	// lineage below this root.
	capStep int
	gov     *governor
}

// newRootShape creates an empty root lineage with the given tuning.
func newRootShape(t Tuning) *Shape {
	s := &Shape{
		mode:        ModeArray,
		transitions: make(map[string]*Shape),
		capStep:     t.CapacityStep,
		gov:         &governor{limit: t.MaxVariations},
	}
	s.root = s
	return s
}

func (s *Shape) Mode() Mode       { return s.mode }
func (s *Shape) FieldsCount() int { return s.fieldsCount }
func (s *Shape) Capacity() int    { return s.capacity }

// Lookup resolves an attribute name to its positional offset within
// this lineage. Safe to call from any number of concurrent readers:
// the parent chain is immutable after construction.
func (s *Shape) Lookup(name string) (int, bool) {
	for n := s; n.parent != nil; n = n.parent {
		if n.edge == name {
			return n.offset, true
		}
	}
	return 0, false
}

// Add returns the child shape extending this lineage with name,
// creating it if absent. Adding a name already present in the lineage
// is a no-op returning the receiver. Once the lineage's governor is
// exhausted, Add returns the lineage's canonical too-complex shape
// instead of creating another node.
func (s *Shape) Add(name string) *Shape {
	if s.mode == ModeTooComplex {
		return s
	}
	if _, ok := s.Lookup(name); ok {
		return s
	}
	s.mu.RLock()
	next, ok := s.transitions[name]
	s.mu.RUnlock()
	if ok {
		return next
	}
	root := s.root
	s.mu.Lock()
	if existing, exists := s.transitions[name]; exists {
		next = existing
	} else if !root.gov.admit() {
		s.mu.Unlock()
		return root.gov.complexShape(root)
	} else {
		count := s.fieldsCount + 1
		next = &Shape{
			parent:      s,
			root:        root,
			edge:        name,
			offset:      s.fieldsCount,
			fieldsCount: count,
			capacity:    capacityFor(count, root.capStep),
			mode:        ModeArray,
			transitions: make(map[string]*Shape),
		}
		s.transitions[name] = next
	}
	s.mu.Unlock()
	return next
}

// Remove returns a shape representing this lineage minus name.
// Because offsets are positional, removal replays the surviving names
// from the root, compacting the positions of attributes defined after
// the removed one. Removing an absent name returns the receiver.
// The replay reuses memoized transitions, so two owners that converge
// on the same attribute history converge on the same node.
func (s *Shape) Remove(name string) *Shape {
	if s.mode == ModeTooComplex {
		return s
	}
	if _, ok := s.Lookup(name); !ok {
		return s
	}
	next := s.root
	for _, n := range s.lineage() {
		if n == name {
			continue
		}
		next = next.Add(n)
		if next.mode == ModeTooComplex {
			return next
		}
	}
	return next
}

// lineage returns the attribute names of this lineage in definition
// order. A node's offset doubles as its index in the lineage.
func (s *Shape) lineage() []string {
	names := make([]string, s.fieldsCount)
	for n := s; n.parent != nil; n = n.parent {
		names[n.offset] = n.edge
	}
	return names
}
