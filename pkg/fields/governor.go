package fields

import "sync"

// governor bounds shape-graph growth for one root lineage. It counts
// every distinct node created below the root; memoized transition
// reuse does not count. When the next node would exceed the limit the
// lineage demotes to a single canonical too-complex shape, and never
// returns to array mode.
type governor struct {
	mu         sync.Mutex
	limit      int
	variations int
	tooComplex *Shape
}

// admit reserves one variation slot, reporting false once exhausted.
func (g *governor) admit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.variations >= g.limit {
		return false
	}
	g.variations++
	return true
}

// complexShape returns the root's canonical too-complex shape,
// creating it on first demotion. Its Add and Remove return itself.
func (g *governor) complexShape(root *Shape) *Shape {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tooComplex == nil {
		g.tooComplex = &Shape{root: root, mode: ModeTooComplex}
	}
	return g.tooComplex
}

// capacityFor rounds a field count up to the next capacity chunk so
// stores grow in steps rather than one slot at a time.
func capacityFor(count, step int) int {
	if step < 1 {
		step = 1
	}
	return (count + step - 1) / step * step
}
