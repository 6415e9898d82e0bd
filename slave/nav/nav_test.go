package nav

import (
	"testing"

	"dslave/slave/arena"
	"dslave/slave/model"
	"dslave/slave/nodes"
)

type fixture struct {
	a *arena.Arena
	m *model.Model
	n *nodes.Stores
	v *Nav
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	a := arena.New(arena.DefaultCapacity)
	if st := a.ReserveElementStorage(capacity); !st.Ok() {
		t.Fatalf("reserve: %v", st)
	}
	m := model.New(a)
	ns := nodes.New(a)
	return &fixture{a: a, m: m, n: ns, v: New(m, ns)}
}

func TestFocusNextSkipsNonFocusableAndWrapsModulo(t *testing.T) {
	f := newFixture(t, 6)
	screen, _ := f.m.AddElement(model.NoParent, model.TypeScreen, 0, 0)
	trig, _ := f.m.AddElement(screen, model.TypeTrigger, 0, 0)
	list, _ := f.m.AddElement(screen, model.TypeList, 0, 8)

	sc := ScreenContext{ActiveOrdinal: 0}
	f.v.FocusNext(sc)
	if f.v.Focus != trig {
		t.Fatalf("expected first focus on trigger %d, got %d", trig, f.v.Focus)
	}
	f.v.FocusNext(sc)
	if f.v.Focus != list {
		t.Fatalf("expected focus to advance to list %d, got %d", list, f.v.Focus)
	}
	f.v.FocusNext(sc)
	if f.v.Focus != trig {
		t.Fatalf("expected focus to wrap back to trigger %d, got %d", trig, f.v.Focus)
	}
}

func TestFocusNextEmptyModelYieldsNoFocus(t *testing.T) {
	f := newFixture(t, 4)
	f.v.FocusNext(ScreenContext{})
	if f.v.Focus != NoFocus {
		t.Fatalf("expected NoFocus on an empty model, got %d", f.v.Focus)
	}
}

func TestIsVisibleRespectsActiveOrdinal(t *testing.T) {
	f := newFixture(t, 6)
	s0, _ := f.m.AddElement(model.NoParent, model.TypeScreen, 0, 0)
	s1, _ := f.m.AddElement(model.NoParent, model.TypeScreen, 0, 0)
	trig0, _ := f.m.AddElement(s0, model.TypeTrigger, 0, 0)
	trig1, _ := f.m.AddElement(s1, model.TypeTrigger, 0, 0)

	sc := ScreenContext{ActiveOrdinal: 0}
	if !f.v.IsVisible(trig0, sc) {
		t.Fatalf("trig0 should be visible when screen 0 is active")
	}
	if f.v.IsVisible(trig1, sc) {
		t.Fatalf("trig1 should not be visible when screen 0 is active")
	}
}

func TestIsVisibleDuringSlideShowsBothEndpoints(t *testing.T) {
	f := newFixture(t, 6)
	s0, _ := f.m.AddElement(model.NoParent, model.TypeScreen, 0, 0)
	s1, _ := f.m.AddElement(model.NoParent, model.TypeScreen, 0, 0)
	trig0, _ := f.m.AddElement(s0, model.TypeTrigger, 0, 0)
	trig1, _ := f.m.AddElement(s1, model.TypeTrigger, 0, 0)

	sc := ScreenContext{ActiveOrdinal: 1, SlideActive: true, SlideFrom: 0, SlideTo: 1}
	if !f.v.IsVisible(trig1, sc) {
		t.Fatalf("target screen's trigger should be visible mid slide")
	}
	if !f.v.IsVisible(trig0, sc) {
		t.Fatalf("outgoing screen's trigger should still be visible mid slide")
	}
}

func TestPushListThenPopRestoresCursorAndFocus(t *testing.T) {
	f := newFixture(t, 8)
	screen, _ := f.m.AddElement(model.NoParent, model.TypeScreen, 0, 0)
	outer, _ := f.m.AddElement(screen, model.TypeList, 0, 8)
	row, _ := f.m.AddElement(outer, model.TypeText, 0, 8)
	inner, _ := f.m.AddElement(row, model.TypeList, 0, 8)

	off, _ := f.n.GetOrAddList(inner)
	ln := f.n.List(off)
	ln.Cursor, ln.TopIndex = 2, 1
	f.n.PutList(off, ln)

	f.v.Focus = outer
	f.v.PushList(outer, inner, 0)
	if f.v.Focus != inner {
		t.Fatalf("expected focus on inner list %d, got %d", inner, f.v.Focus)
	}
	if got := f.n.List(off).Cursor; got != 0 {
		t.Fatalf("pushing should zero cursor, got %d", got)
	}

	_, wasLocal, ok := f.v.Pop()
	if !ok || wasLocal {
		t.Fatalf("pop should succeed and report a nested-list context: ok=%v wasLocal=%v", ok, wasLocal)
	}
	if f.v.Focus != outer {
		t.Fatalf("pop should restore focus to outer list %d, got %d", outer, f.v.Focus)
	}
	if got := f.n.List(off).Cursor; got != 2 {
		t.Fatalf("pop should restore saved cursor 2, got %d", got)
	}
}

func TestPushListRespectsMaxStackDepth(t *testing.T) {
	f := newFixture(t, 8)
	for i := 0; i < MaxStackDepth; i++ {
		f.v.PushList(0, byte(i+1), 0)
	}
	if f.v.Depth() != MaxStackDepth {
		t.Fatalf("expected depth %d, got %d", MaxStackDepth, f.v.Depth())
	}
	f.v.PushList(0, 99, 0)
	if f.v.Depth() != MaxStackDepth {
		t.Fatalf("push beyond max depth should be a no-op, depth now %d", f.v.Depth())
	}
}

func TestNestedListRequiresAncestorOnStackToBeVisible(t *testing.T) {
	f := newFixture(t, 8)
	screen, _ := f.m.AddElement(model.NoParent, model.TypeScreen, 0, 0)
	outer, _ := f.m.AddElement(screen, model.TypeList, 0, 8)
	row, _ := f.m.AddElement(outer, model.TypeText, 0, 8)
	inner, _ := f.m.AddElement(row, model.TypeList, 0, 8)
	innerRow, _ := f.m.AddElement(inner, model.TypeText, 0, 8)

	sc := ScreenContext{ActiveOrdinal: 0}
	if f.v.IsVisible(innerRow, sc) {
		t.Fatalf("nested list row should not be visible before its list is pushed")
	}
	f.v.PushList(outer, inner, 0)
	if !f.v.IsVisible(innerRow, sc) {
		t.Fatalf("nested list row should be visible once its list is on the nav stack")
	}
}
