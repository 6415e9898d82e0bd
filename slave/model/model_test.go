package model

import (
	"testing"

	"dslave/slave/arena"
)

func newModel(t *testing.T, n int) (*arena.Arena, *Model) {
	t.Helper()
	a := arena.New(arena.DefaultCapacity)
	if st := a.ReserveElementStorage(n); !st.Ok() {
		t.Fatalf("reserve: %v", st)
	}
	return a, New(a)
}

func TestAddElementAssignsSequentialIDs(t *testing.T) {
	_, m := newModel(t, 4)
	id0, _ := m.AddElement(NoParent, TypeScreen, 0, 0)
	id1, _ := m.AddElement(id0, TypeList, 0, 8)
	if id0 != 0 || id1 != 1 {
		t.Fatalf("expected sequential ids 0,1, got %d,%d", id0, id1)
	}
	if m.Count() != 2 {
		t.Fatalf("expected count 2, got %d", m.Count())
	}
}

func TestAddElementNoSpace(t *testing.T) {
	_, m := newModel(t, 1)
	if _, st := m.AddElement(NoParent, TypeScreen, 0, 0); !st.Ok() {
		t.Fatalf("first add should succeed: %v", st)
	}
	if _, st := m.AddElement(NoParent, TypeScreen, 0, 0); st.Ok() {
		t.Fatalf("second add should fail no_space when capacity is 1")
	}
}

func TestIsDescendantOf(t *testing.T) {
	_, m := newModel(t, 4)
	screen, _ := m.AddElement(NoParent, TypeScreen, 0, 0)
	list, _ := m.AddElement(screen, TypeList, 0, 8)
	row, _ := m.AddElement(list, TypeText, 0, 8)
	if !m.IsDescendantOf(row, screen) {
		t.Fatalf("row should be a descendant of screen")
	}
	if m.IsDescendantOf(screen, row) {
		t.Fatalf("screen should not be a descendant of row")
	}
}

func TestElementParentList(t *testing.T) {
	_, m := newModel(t, 4)
	screen, _ := m.AddElement(NoParent, TypeScreen, 0, 0)
	list, _ := m.AddElement(screen, TypeList, 0, 8)
	row, _ := m.AddElement(list, TypeText, 0, 8)
	barrel, _ := m.AddElement(row, TypeBarrel, 0, 8)
	if got := m.ElementParentList(barrel); got != list {
		t.Fatalf("expected barrel's parent list to be %d, got %d", list, got)
	}
	if got := m.ElementParentList(screen); got != NoParent {
		t.Fatalf("screen has no parent list, expected NoParent, got %d", got)
	}
}

func TestListRowCountAndChildByIndex(t *testing.T) {
	_, m := newModel(t, 6)
	screen, _ := m.AddElement(NoParent, TypeScreen, 0, 0)
	list, _ := m.AddElement(screen, TypeList, 0, 8)
	row0, _ := m.AddElement(list, TypeText, 0, 8)
	row1, _ := m.AddElement(list, TypeText, 0, 16)
	if n := m.ListRowCount(list); n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
	if got := m.ListChildByIndex(list, 0); got != row0 {
		t.Fatalf("row 0 mismatch: got %d want %d", got, row0)
	}
	if got := m.ListChildByIndex(list, 1); got != row1 {
		t.Fatalf("row 1 mismatch: got %d want %d", got, row1)
	}
	if got := m.ListChildByIndex(list, 2); got != NoParent {
		t.Fatalf("out of range row should be NoParent, got %d", got)
	}
}

func TestBaseScreenCountExcludesOverlaysAndNested(t *testing.T) {
	_, m := newModel(t, 6)
	s0, _ := m.AddElement(NoParent, TypeScreen, 0, 0)
	s1, _ := m.AddElement(NoParent, TypeScreen, 0, 0)
	overlay, _ := m.AddElement(NoParent, TypeScreen, 0, 0)
	list, _ := m.AddElement(s0, TypeList, 0, 8)
	row, _ := m.AddElement(list, TypeText, 0, 8)
	nested, _ := m.AddElement(row, TypeScreen, 0, 0) // local screen, has a parent

	isOverlay := func(id byte) bool { return id == overlay }
	if n := m.BaseScreenCount(isOverlay); n != 2 {
		t.Fatalf("expected 2 base screens (s0,s1), got %d", n)
	}
	if got := m.FindScreenIDByOrdinal(0, isOverlay); got != s0 {
		t.Fatalf("ordinal 0 should be s0, got %d", got)
	}
	if got := m.FindScreenIDByOrdinal(1, isOverlay); got != s1 {
		t.Fatalf("ordinal 1 should be s1, got %d", got)
	}
	_ = nested
}

func TestNestedListAncestors(t *testing.T) {
	_, m := newModel(t, 8)
	screen, _ := m.AddElement(NoParent, TypeScreen, 0, 0)
	outer, _ := m.AddElement(screen, TypeList, 0, 8)
	row, _ := m.AddElement(outer, TypeText, 0, 8)
	inner, _ := m.AddElement(row, TypeList, 0, 8)
	innerRow, _ := m.AddElement(inner, TypeText, 0, 8)

	got := m.NestedListAncestors(innerRow)
	if len(got) != 1 || got[0] != inner {
		t.Fatalf("expected [inner(%d)], got %v", inner, got)
	}
	_ = row
}
