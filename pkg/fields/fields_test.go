package fields

import (
	goerrors "errors"
	"fmt"
	"testing"

	ferrors "github.com/byroot/fieldstore/pkg/errors"
	"github.com/byroot/fieldstore/pkg/isolation"
	"github.com/byroot/fieldstore/pkg/value"
)

func TestSetThenGet(t *testing.T) {
	world := isolation.NewWorld()
	owner := NewSpace().NewOwner("Config")
	if v, ok, err := owner.Get(world.Main(), "a"); err != nil || ok {
		t.Fatalf("expected miss on empty owner, got v=%v ok=%v err=%v", v, ok, err)
	}
	if err := owner.Set(world.Main(), "a", value.Integer(1)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := owner.Get(world.Main(), "a")
	if err != nil || !ok {
		t.Fatalf("expected hit after Set, got ok=%v err=%v", ok, err)
	}
	if v.AsInteger() != 1 {
		t.Errorf("expected 1, got %v", v)
	}
}

func TestRemoveCompactsValues(t *testing.T) {
	world := isolation.NewWorld()
	main := world.Main()
	owner := NewSpace().NewOwner("Config")
	for i, name := range []string{"a", "b", "c"} {
		if err := owner.Set(main, name, value.Integer(int64(i+1))); err != nil {
			t.Fatalf("Set %q failed: %v", name, err)
		}
	}
	old, ok, err := owner.Remove(main, "b")
	if err != nil || !ok {
		t.Fatalf("Remove failed: ok=%v err=%v", ok, err)
	}
	if old.AsInteger() != 2 {
		t.Errorf("expected removed value 2, got %v", old)
	}
	if v, ok, _ := owner.Get(main, "c"); !ok || v.AsInteger() != 3 {
		t.Errorf("expected c=3 after compaction, got %v (ok=%v)", v, ok)
	}
	if _, ok, _ := owner.Get(main, "b"); ok {
		t.Errorf("expected b undefined after removal")
	}
	if owner.Len() != 2 {
		t.Errorf("expected 2 attributes, got %d", owner.Len())
	}
	// Removing an absent name is a no-op.
	if _, ok, err := owner.Remove(main, "b"); ok || err != nil {
		t.Errorf("expected no-op remove, got ok=%v err=%v", ok, err)
	}
}

func TestLastWriteWins(t *testing.T) {
	world := isolation.NewWorld()
	main := world.Main()
	owner := NewSpace().NewOwner("Config")
	const n = 20
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("attr_%d", i)
		if err := owner.Set(main, name, value.Integer(int64(i))); err != nil {
			t.Fatalf("Set %q failed: %v", name, err)
		}
	}
	for i := 0; i < n; i++ {
		if err := owner.Set(main, fmt.Sprintf("attr_%d", i), value.Integer(int64(i*10))); err != nil {
			t.Fatalf("overwrite failed: %v", err)
		}
	}
	for i := 0; i < n; i++ {
		v, ok, err := owner.Get(main, fmt.Sprintf("attr_%d", i))
		if err != nil || !ok {
			t.Fatalf("expected attr_%d defined, ok=%v err=%v", i, ok, err)
		}
		if v.AsInteger() != int64(i*10) {
			t.Errorf("attr_%d = %v, want %d", i, v, i*10)
		}
	}
}

func TestComplexityDemotion(t *testing.T) {
	world := isolation.NewWorld()
	main := world.Main()
	owner := NewSpace().NewOwner("Churner")
	// Alternating adds and removes of distinct names churn the shape
	// graph until the governor demotes the lineage.
	prev := ""
	for i := 0; owner.ShapeInfo().Mode == ModeArray && i < 64; i++ {
		name := fmt.Sprintf("v%d", i)
		if err := owner.Set(main, name, value.Integer(int64(i))); err != nil {
			t.Fatalf("Set %q failed: %v", name, err)
		}
		if prev != "" {
			if _, _, err := owner.Remove(main, prev); err != nil {
				t.Fatalf("Remove %q failed: %v", prev, err)
			}
		}
		prev = name
	}
	info := owner.ShapeInfo()
	if info.Mode != ModeTooComplex {
		t.Fatalf("expected demotion to map mode, still %v after churn", info.Mode)
	}
	// Reads and writes keep functioning in map mode.
	if v, ok, err := owner.Get(main, prev); err != nil || !ok {
		t.Fatalf("expected %q readable in map mode, got %v ok=%v err=%v", prev, v, ok, err)
	}
	if err := owner.Set(main, "after", value.Integer(99)); err != nil {
		t.Fatalf("Set in map mode failed: %v", err)
	}
	if v, ok, _ := owner.Get(main, "after"); !ok || v.AsInteger() != 99 {
		t.Errorf("expected after=99 in map mode, got %v (ok=%v)", v, ok)
	}
	// Monotonic: removals never restore array mode.
	if _, _, err := owner.Remove(main, "after"); err != nil {
		t.Fatalf("Remove in map mode failed: %v", err)
	}
	if owner.ShapeInfo().Mode != ModeTooComplex {
		t.Errorf("expected lineage to stay in map mode after removal")
	}
}

func TestOwnersShareShapes(t *testing.T) {
	world := isolation.NewWorld()
	main := world.Main()
	space := NewSpace()
	o1 := space.NewOwner("First")
	o2 := space.NewOwner("Second")
	for _, o := range []*Owner{o1, o2} {
		if err := o.Set(main, "x", value.Integer(1)); err != nil {
			t.Fatalf("Set x failed: %v", err)
		}
		if err := o.Set(main, "y", value.Integer(2)); err != nil {
			t.Fatalf("Set y failed: %v", err)
		}
	}
	s1 := o1.snapshot().shape
	s2 := o2.snapshot().shape
	if s1 != s2 {
		t.Errorf("expected identical shape node for identical histories, got %p and %p", s1, s2)
	}
}

func TestIsolationEnforcement(t *testing.T) {
	world := isolation.NewWorld()
	main := world.Main()
	other := world.Spawn()
	owner := NewSpace().NewOwner("Shared")

	// Writes from a non-privileged context fail and change nothing.
	err := owner.Set(other, "a", value.Integer(1))
	var iso *ferrors.IsolationError
	if !goerrors.As(err, &iso) {
		t.Fatalf("expected IsolationError from non-privileged write, got %v", err)
	}
	if owner.Len() != 0 {
		t.Errorf("expected storage unchanged after rejected write")
	}
	if _, _, err := owner.Remove(other, "a"); !goerrors.As(err, &iso) {
		t.Errorf("expected IsolationError from non-privileged remove, got %v", err)
	}

	// Unshareable values may not cross context boundaries.
	mutable := value.NewString("draft")
	if err := owner.Set(main, "title", mutable); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, _, err := owner.Get(other, "title"); !goerrors.As(err, &iso) {
		t.Fatalf("expected IsolationError reading unshareable value, got %v", err)
	}
	// The privileged context reads it fine.
	if v, ok, err := owner.Get(main, "title"); err != nil || !ok || v.AsString() != "draft" {
		t.Errorf("expected privileged read to succeed, got %v ok=%v err=%v", v, ok, err)
	}
	// Freezing the value makes it shareable.
	mutable.Freeze()
	v, ok, err := owner.Get(other, "title")
	if err != nil || !ok {
		t.Fatalf("expected read of frozen value to succeed, got ok=%v err=%v", ok, err)
	}
	if v.AsString() != "draft" {
		t.Errorf("expected %q, got %q", "draft", v.AsString())
	}
	// Immediates are always shareable.
	if err := owner.Set(main, "count", value.Integer(7)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, ok, err := owner.Get(other, "count"); err != nil || !ok || v.AsInteger() != 7 {
		t.Errorf("expected immediate readable from any context, got %v ok=%v err=%v", v, ok, err)
	}
}

func TestFrozenOwnerRejectsWrites(t *testing.T) {
	world := isolation.NewWorld()
	main := world.Main()
	owner := NewSpace().NewOwner("Settings")
	if err := owner.Set(main, "a", value.Integer(1)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := owner.Freeze(world.Spawn()); err == nil {
		t.Errorf("expected non-privileged Freeze to fail")
	}
	if err := owner.Freeze(main); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	if !owner.Frozen() {
		t.Fatalf("expected owner frozen")
	}
	var frozen *ferrors.FrozenError
	if err := owner.Set(main, "b", value.Integer(2)); !goerrors.As(err, &frozen) {
		t.Errorf("expected FrozenError from Set, got %v", err)
	}
	if _, _, err := owner.Remove(main, "a"); !goerrors.As(err, &frozen) {
		t.Errorf("expected FrozenError from Remove, got %v", err)
	}
	// Reads still work.
	if v, ok, err := owner.Get(main, "a"); err != nil || !ok || v.AsInteger() != 1 {
		t.Errorf("expected read of frozen owner to succeed, got %v ok=%v err=%v", v, ok, err)
	}
}

func TestInvalidNameRejected(t *testing.T) {
	world := isolation.NewWorld()
	owner := NewSpace().NewOwner("Named")
	var nameErr *ferrors.NameError
	for _, bad := range []string{"", "1st", "with space", "@", "a-b"} {
		err := owner.Set(world.Main(), bad, value.Integer(1))
		if !goerrors.As(err, &nameErr) {
			t.Errorf("expected NameError for %q, got %v", bad, err)
		}
	}
	for _, good := range []string{"a", "@ivar", "_x", "Camel9"} {
		if err := owner.Set(world.Main(), good, value.Integer(1)); err != nil {
			t.Errorf("expected %q accepted, got %v", good, err)
		}
		if !ValidName(good) {
			t.Errorf("expected ValidName(%q) true", good)
		}
	}
}

func TestNamesAndEach(t *testing.T) {
	world := isolation.NewWorld()
	main := world.Main()
	owner := NewSpace().NewOwner("Ordered")
	for i, name := range []string{"one", "two", "three"} {
		if err := owner.Set(main, name, value.Integer(int64(i+1))); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	names := owner.Names()
	want := []string{"one", "two", "three"}
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q (definition order)", i, names[i], want[i])
		}
	}
	var seen []string
	err := owner.Each(main, func(name string, v value.Value) bool {
		seen = append(seen, fmt.Sprintf("%s=%d", name, v.AsInteger()))
		return true
	})
	if err != nil {
		t.Fatalf("Each failed: %v", err)
	}
	wantSeen := []string{"one=1", "two=2", "three=3"}
	for i := range wantSeen {
		if i >= len(seen) || seen[i] != wantSeen[i] {
			t.Fatalf("Each visit mismatch, got %v want %v", seen, wantSeen)
		}
	}
	// Early stop.
	count := 0
	if err := owner.Each(main, func(string, value.Value) bool { count++; return false }); err != nil {
		t.Fatalf("Each failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected early stop after 1 visit, got %d", count)
	}
	// Non-privileged enumeration fails at an unshareable value.
	if err := owner.Set(main, "secret", value.NewString("mutable")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	err = owner.Each(world.Spawn(), func(string, value.Value) bool { return true })
	var iso *ferrors.IsolationError
	if !goerrors.As(err, &iso) {
		t.Errorf("expected IsolationError from non-privileged Each, got %v", err)
	}
}

func TestShapeInfo(t *testing.T) {
	world := isolation.NewWorld()
	main := world.Main()
	owner := NewSpace().NewOwner("Probe")
	info := owner.ShapeInfo()
	if info.Mode != ModeArray || info.FieldsCount != 0 || info.Capacity != 0 {
		t.Errorf("unexpected empty-owner info %+v", info)
	}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if err := owner.Set(main, name, value.Nil); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	info = owner.ShapeInfo()
	if info.FieldsCount != 5 {
		t.Errorf("expected 5 fields, got %d", info.FieldsCount)
	}
	if info.Capacity != 8 {
		t.Errorf("expected chunked capacity 8, got %d", info.Capacity)
	}
}
