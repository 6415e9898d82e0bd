// Package nav implements the visibility rules, focus traversal, and
// bounded navigation stack described in spec.md §4.F.
package nav

import (
	"dslave/slave/arena"
	"dslave/slave/model"
	"dslave/slave/nodes"
)

// MaxStackDepth bounds the navigation stack.
const MaxStackDepth = 4

// NoFocus is the sentinel focus value (no element focused).
const NoFocus = arena.NoParent

// ContextKind distinguishes the two things a navigation push can
// target.
type ContextKind uint8

const (
	ContextNestedList ContextKind = iota
	ContextLocalScreen
)

// Entry is one navigation stack frame.
type Entry struct {
	Kind       ContextKind
	Target     byte
	ReturnList byte

	SavedCursor        byte
	SavedTop           byte
	SavedFocus         byte
	SavedActiveOrdinal int
}

// ScreenContext carries the horizontal-slide state the visibility
// rule needs; it is owned by the render/transfer layer and passed in
// read-only.
type ScreenContext struct {
	ActiveOrdinal int
	SlideActive   bool
	SlideFrom     int
	SlideTo       int
}

// Nav owns the focus cursor and the bounded navigation stack for one
// UI model.
type Nav struct {
	m     *model.Model
	nodes *nodes.Stores

	Focus byte
	stack []Entry
}

// New creates a Nav bound to a Model/Stores pair.
func New(m *model.Model, n *nodes.Stores) *Nav {
	return &Nav{m: m, nodes: n, Focus: NoFocus}
}

// Reset clears focus and the navigation stack, per spec.md §3's
// lifecycle rule ("cleared on screen change or arena reset").
func (n *Nav) Reset() {
	n.Focus = NoFocus
	n.stack = n.stack[:0]
}

// Depth returns the current navigation stack depth.
func (n *Nav) Depth() int { return len(n.stack) }

// Top returns the top-of-stack entry and true, or a zero Entry and
// false if the stack is empty.
func (n *Nav) Top() (Entry, bool) {
	if len(n.stack) == 0 {
		return Entry{}, false
	}
	return n.stack[len(n.stack)-1], true
}

func (n *Nav) isOverlay(screenID byte) bool {
	return n.m.Arena().ScreenRoleOf(screenID) == arena.ScreenRoleOverlay
}

func (n *Nav) onStack(target byte) bool {
	for _, e := range n.stack {
		if e.Target == target {
			return true
		}
	}
	return false
}

// IsVisible implements spec.md §4.F's Visibility rule.
func (n *Nav) IsVisible(id byte, sc ScreenContext) bool {
	if !n.m.Exists(id) {
		return false
	}

	var depthOK bool
	if top, has := n.Top(); has {
		depthOK = id == top.Target || n.m.IsDescendantOf(id, top.Target)
	} else {
		activeScreen := n.m.FindScreenIDByOrdinal(sc.ActiveOrdinal, n.isOverlay)
		depthOK = activeScreen != model.NoParent && n.m.IsDescendantOf(id, activeScreen)
		if !depthOK && sc.SlideActive {
			outgoing := n.m.FindScreenIDByOrdinal(sc.SlideFrom, n.isOverlay)
			depthOK = outgoing != model.NoParent && n.m.IsDescendantOf(id, outgoing)
		}
	}
	if !depthOK {
		return false
	}

	root := n.m.ElementRootScreen(id)
	if root != model.NoParent {
		isLocal := n.m.Parent(root) != model.NoParent && n.m.TypeOf(n.m.Parent(root)) == model.TypeText
		if isLocal && !n.onStack(root) {
			return false
		}
	}

	for _, nested := range n.m.NestedListAncestors(id) {
		if !n.onStack(nested) {
			return false
		}
	}

	return true
}

// IsFocusable reports whether id's type participates in focus
// traversal (List, Barrel, Trigger).
func (n *Nav) IsFocusable(id byte) bool {
	switch n.m.TypeOf(id) {
	case model.TypeList, model.TypeBarrel, model.TypeTrigger:
		return true
	default:
		return false
	}
}

// FocusNext advances focus to the next visible, focusable element in
// creation order (modulo element count), starting one past the
// current focus (or 0 if unfocused). Focus becomes NoFocus if none
// match.
func (n *Nav) FocusNext(sc ScreenContext) {
	count := n.m.Count()
	if count == 0 {
		n.Focus = NoFocus
		return
	}
	start := 0
	if n.Focus != NoFocus {
		start = int(n.Focus) + 1
	}
	for i := 0; i < count; i++ {
		id := byte((start + i) % count)
		if n.IsFocusable(id) && n.IsVisible(id, sc) {
			n.Focus = id
			return
		}
	}
	n.Focus = NoFocus
}

// FocusPrev is FocusNext's mirror, decreasing.
func (n *Nav) FocusPrev(sc ScreenContext) {
	count := n.m.Count()
	if count == 0 {
		n.Focus = NoFocus
		return
	}
	start := count - 1
	if n.Focus != NoFocus {
		start = int(n.Focus) - 1
		if start < 0 {
			start += count
		}
	}
	for i := 0; i < count; i++ {
		id := byte(((start - i) % count + count) % count)
		if n.IsFocusable(id) && n.IsVisible(id, sc) {
			n.Focus = id
			return
		}
	}
	n.Focus = NoFocus
}

// RefreshFocus clears focus if it is no longer visible/focusable.
func (n *Nav) RefreshFocus(sc ScreenContext) {
	if n.Focus == NoFocus {
		return
	}
	if !n.IsFocusable(n.Focus) || !n.IsVisible(n.Focus, sc) {
		n.Focus = NoFocus
	}
}

// FocusFirstOn focuses the first visible focusable descendant of
// root (or root itself); NoFocus if none match.
func (n *Nav) FocusFirstOn(root byte, sc ScreenContext) {
	count := n.m.Count()
	for id := byte(0); int(id) < count; id++ {
		if !n.IsFocusable(id) || !n.IsVisible(id, sc) {
			continue
		}
		if id == root || n.m.IsDescendantOf(id, root) {
			n.Focus = id
			return
		}
	}
	n.Focus = NoFocus
}
