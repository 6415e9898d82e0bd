// Package input implements the six-button release-edge dispatch
// described in spec.md §4.G: screen-slide triggering, per-focus-kind
// UP/DOWN and OK semantics, and BACK's refocus/pop rules.
package input

import (
	"dslave/slave/model"
	"dslave/slave/nav"
	"dslave/slave/nodes"
	"dslave/slave/render"
)

// Button indices, per spec.md §6.
const (
	Up = iota
	Down
	OK
	Back
	Left
	Right
)

// EdgeDetector turns level samples into release events (a button that
// was pressed on the previous poll and is not pressed on this one).
type EdgeDetector struct {
	prev [6]bool
}

// Releases returns, for each of the six buttons, whether this sample
// is its release edge.
func (e *EdgeDetector) Releases(levels [6]bool) [6]bool {
	var out [6]bool
	for i := 0; i < 6; i++ {
		out[i] = e.prev[i] && !levels[i]
		e.prev[i] = levels[i]
	}
	return out
}

// Env is the slice of the owning state machine's screen/slide context
// that the dispatcher needs to read and mutate; slave/state
// implements it.
type Env interface {
	BaseScreenCount() int
	StartSlide(from, to int, dir int8)
	MarkDirty(id byte)
}

// Dispatcher applies button releases to a Model/Nav/Nodes triple.
type Dispatcher struct {
	m     *model.Model
	nav   *nav.Nav
	nodes *nodes.Stores
	geo   render.Geometry
}

// New creates a Dispatcher bound to a Model/Nav/Nodes triple and the
// panel geometry (needed for the list effective-window computation).
func New(m *model.Model, n *nav.Nav, ns *nodes.Stores, geo render.Geometry) *Dispatcher {
	return &Dispatcher{m: m, nav: n, nodes: ns, geo: geo}
}

// HandleRelease processes one button release, given the current
// navigation/slide context and an Env for mutating screen-level
// state. overlayMaskInput suppresses every button but OK.
func (d *Dispatcher) HandleRelease(index byte, sc nav.ScreenContext, env Env, overlayMaskInput bool) {
	if sc.SlideActive {
		return
	}
	if overlayMaskInput && index != OK {
		return
	}
	switch index {
	case Left:
		d.handleSlide(sc, env, -1)
	case Right:
		d.handleSlide(sc, env, 1)
	case Up:
		d.handleVertical(sc, -1)
	case Down:
		d.handleVertical(sc, 1)
	case OK:
		d.handleOK(sc, env)
	case Back:
		d.handleBack(sc)
	}
}

func (d *Dispatcher) handleSlide(sc nav.ScreenContext, env Env, dir int8) {
	if d.nav.Depth() > 0 {
		return
	}
	count := env.BaseScreenCount()
	to := sc.ActiveOrdinal + int(dir)
	if to < 0 || to >= count {
		return
	}
	env.StartSlide(sc.ActiveOrdinal, to, dir)
}

func (d *Dispatcher) handleVertical(sc nav.ScreenContext, dir int8) {
	focus := d.nav.Focus
	if focus == nav.NoFocus {
		if dir < 0 {
			d.nav.FocusPrev(sc)
		} else {
			d.nav.FocusNext(sc)
		}
		return
	}
	switch d.m.TypeOf(focus) {
	case model.TypeList:
		d.moveListCursor(focus, dir)
	case model.TypeBarrel:
		off, found := d.nodes.FindBarrel(focus)
		if !found {
			return
		}
		bn := d.nodes.Barrel(off)
		if bn.Editing() {
			d.cycleBarrelValue(focus, &bn, dir)
			d.nodes.PutBarrel(off, bn)
			return
		}
		if dir < 0 {
			d.nav.FocusPrev(sc)
		} else {
			d.nav.FocusNext(sc)
		}
	case model.TypeTrigger:
		if dir < 0 {
			d.nav.FocusPrev(sc)
		} else {
			d.nav.FocusNext(sc)
		}
	}
}

func (d *Dispatcher) cycleBarrelValue(id byte, bn *nodes.Barrel, dir int8) {
	count := d.m.ListRowCount(id)
	if count <= 0 {
		return
	}
	v := int(bn.Value) + int(dir)
	v = ((v % count) + count) % count
	bn.Value = int16(v)
}

// effectiveWindow mirrors render.Renderer's computation; kept local
// since input must reason about the same viewport the renderer uses
// to decide when a cursor move needs a scroll animation.
func (d *Dispatcher) effectiveWindow(ln nodes.List) int {
	_, _, _, y := d.m.Arena().Element(int(ln.ElementID))
	byHeight := (d.geo.Height - int(y)) / 8
	w := int(ln.VisibleRows)
	if w > d.geo.MaxListRows {
		w = d.geo.MaxListRows
	}
	if byHeight < w {
		w = byHeight
	}
	if w < 1 {
		w = 1
	}
	return w
}

func (d *Dispatcher) moveListCursor(listID byte, dir int8) {
	off, found := d.nodes.FindList(listID)
	if !found {
		return
	}
	ln := d.nodes.List(off)
	rowCount := d.m.ListRowCount(listID)
	if rowCount == 0 {
		return
	}
	newCursor := int(ln.Cursor) + int(dir)
	if newCursor < 0 || newCursor >= rowCount {
		return
	}
	window := d.effectiveWindow(ln)
	top := int(ln.TopIndex)

	pendingTop, pendingCursor := top, newCursor
	if newCursor < top {
		pendingTop = newCursor
	} else if newCursor >= top+window {
		pendingTop = newCursor - window + 1
	}

	if pendingTop == top {
		ln.Cursor = byte(newCursor)
		d.nodes.PutList(off, ln)
		return
	}

	ln.AnimActive = true
	ln.AnimDir = dir
	ln.AnimPix = 0
	ln.PendingTop = byte(pendingTop)
	ln.PendingCursor = byte(pendingCursor)
	d.nodes.PutList(off, ln)
}

func (d *Dispatcher) handleOK(sc nav.ScreenContext, env Env) {
	focus := d.nav.Focus
	if focus == nav.NoFocus {
		d.nav.FocusNext(sc)
		return
	}
	switch d.m.TypeOf(focus) {
	case model.TypeTrigger:
		off, found := d.nodes.FindTrigger(focus)
		if !found {
			return
		}
		tn := d.nodes.Trigger(off)
		tn.Version++
		d.nodes.PutTrigger(off, tn)
		env.MarkDirty(focus)

	case model.TypeBarrel:
		d.okOnBarrel(focus, env)

	case model.TypeList:
		d.okOnListRow(focus, sc)
	}
}

func (d *Dispatcher) okOnBarrel(id byte, env Env) {
	off, found := d.nodes.FindBarrel(id)
	if !found {
		return
	}
	bn := d.nodes.Barrel(off)
	if bn.Editing() {
		bn.Aux = byte(bn.Value) & 0x7F
		d.nodes.PutBarrel(off, bn)
		env.MarkDirty(id)
		if parent := d.m.ElementParentList(id); parent != model.NoParent {
			d.nav.Focus = parent
		}
		return
	}
	bn.Aux = (byte(bn.Value) & 0x7F) | nodes.EditingFlag
	d.nodes.PutBarrel(off, bn)
}

func (d *Dispatcher) okOnListRow(listID byte, sc nav.ScreenContext) {
	off, found := d.nodes.FindList(listID)
	if !found {
		return
	}
	ln := d.nodes.List(off)
	rowID := d.m.ListChildByIndex(listID, int(ln.Cursor))
	if rowID == model.NoParent {
		return
	}
	if barrelID := d.m.TextInlineBarrel(rowID); barrelID != model.NoParent {
		bOff, found := d.nodes.FindBarrel(barrelID)
		if !found {
			return
		}
		bn := d.nodes.Barrel(bOff)
		if bn.Editing() {
			bn.Aux = byte(bn.Value) & 0x7F
			d.nodes.PutBarrel(bOff, bn)
			d.nav.Focus = listID
			return
		}
		bn.Aux = (byte(bn.Value) & 0x7F) | nodes.EditingFlag
		d.nodes.PutBarrel(bOff, bn)
		d.nav.Focus = barrelID
		return
	}
	if childList := d.m.TextListChild(rowID); childList != model.NoParent {
		d.nav.PushList(listID, childList, sc.ActiveOrdinal)
		return
	}
	if childScreen := d.m.TextLocalScreen(rowID); childScreen != model.NoParent {
		d.nav.PushLocalScreen(listID, childScreen, sc.ActiveOrdinal)
	}
}

func (d *Dispatcher) handleBack(sc nav.ScreenContext) {
	focus := d.nav.Focus

	if focus != nav.NoFocus && d.m.TypeOf(focus) == model.TypeBarrel {
		off, found := d.nodes.FindBarrel(focus)
		if found {
			bn := d.nodes.Barrel(off)
			if bn.Editing() {
				bn.Value = int16(bn.Snapshot())
				bn.Aux = bn.Snapshot()
				d.nodes.PutBarrel(off, bn)
			}
		}
		d.refocusParentListWithRestore(focus)
		return
	}

	if focus != nav.NoFocus && d.m.TypeOf(focus) == model.TypeList {
		if top, has := d.nav.Top(); has && top.Target == focus {
			d.nav.Pop()
			return
		}
	}

	if focus != nav.NoFocus {
		if parent := d.m.ElementParentList(focus); parent != model.NoParent {
			d.nav.Focus = parent
			return
		}
	}

	if d.nav.Depth() > 0 {
		d.nav.Pop()
		return
	}
	activeScreen := d.m.FindScreenIDByOrdinal(sc.ActiveOrdinal, func(id byte) bool {
		return false
	})
	if activeScreen != model.NoParent {
		d.nav.FocusFirstOn(activeScreen, sc)
	}
}

// refocusParentListWithRestore focuses childID's parent list and
// recomputes cursor/top_index so the row that owns childID is back
// in view, per spec.md §4.G's BACK-on-barrel rule.
func (d *Dispatcher) refocusParentListWithRestore(childID byte) {
	parent := d.m.ElementParentList(childID)
	if parent == model.NoParent {
		return
	}
	d.nav.Focus = parent

	off, found := d.nodes.FindList(parent)
	if !found {
		return
	}
	ln := d.nodes.List(off)

	row := -1
	cur := childID
	for i := 0; i < 64; i++ {
		p := d.m.Parent(cur)
		if p == model.NoParent {
			break
		}
		if p == parent {
			for r := 0; ; r++ {
				if d.m.ListChildByIndex(parent, r) == cur {
					row = r
					break
				}
				if r > 255 {
					break
				}
			}
			break
		}
		cur = p
	}
	if row < 0 {
		return
	}

	window := d.effectiveWindow(ln)
	top := int(ln.TopIndex)
	if row < top {
		top = row
	} else if row >= top+window {
		top = row - window + 1
	}
	ln.Cursor = byte(row)
	ln.TopIndex = byte(top)
	ln.AnimActive = false
	d.nodes.PutList(off, ln)
}
