package model

// All helpers below iterate element ids 0..Count()-1 linearly and
// carry a hard bound of Count() iterations on any parent walk, so
// they terminate even on malformed (cyclic) input.

// IsDescendantOf reports whether id is ancestor, or a descendant of
// ancestor, via a bounded parent walk.
func (m *Model) IsDescendantOf(id, ancestor byte) bool {
	cur := id
	for i := 0; i < m.count; i++ {
		if cur == ancestor {
			return true
		}
		p := m.Parent(cur)
		if p == NoParent {
			return false
		}
		cur = p
	}
	return false
}

// ElementParentList climbs parents from id until it finds a List,
// returning its id, or NoParent if none is found within the bound.
func (m *Model) ElementParentList(id byte) byte {
	cur := m.Parent(id)
	for i := 0; i < m.count; i++ {
		if cur == NoParent {
			return NoParent
		}
		if m.TypeOf(cur) == TypeList {
			return cur
		}
		cur = m.Parent(cur)
	}
	return NoParent
}

// ElementRootScreen climbs parents from id until it finds a Screen,
// returning its id, or NoParent if none is found within the bound.
func (m *Model) ElementRootScreen(id byte) byte {
	cur := id
	for i := 0; i < m.count; i++ {
		if cur == NoParent {
			return NoParent
		}
		if m.TypeOf(cur) == TypeScreen {
			return cur
		}
		cur = m.Parent(cur)
	}
	return NoParent
}

// ListRowCount counts the visible (= created) Text children of
// listID, in creation order.
func (m *Model) ListRowCount(listID byte) int {
	n := 0
	for id := byte(0); int(id) < m.count; id++ {
		if m.Parent(id) == listID && m.TypeOf(id) == TypeText {
			n++
		}
	}
	return n
}

// ListChildByIndex returns the row-th Text child of listID (0-based,
// in creation order), or NoParent if out of range.
func (m *Model) ListChildByIndex(listID byte, row int) byte {
	i := 0
	for id := byte(0); int(id) < m.count; id++ {
		if m.Parent(id) == listID && m.TypeOf(id) == TypeText {
			if i == row {
				return id
			}
			i++
		}
	}
	return NoParent
}

// TextInlineBarrel returns the first Barrel child of textID, or
// NoParent if it has none.
func (m *Model) TextInlineBarrel(textID byte) byte {
	for id := byte(0); int(id) < m.count; id++ {
		if m.Parent(id) == textID && m.TypeOf(id) == TypeBarrel {
			return id
		}
	}
	return NoParent
}

// TextLocalScreen returns the first Screen child of textID, or
// NoParent if it has none.
func (m *Model) TextLocalScreen(textID byte) byte {
	for id := byte(0); int(id) < m.count; id++ {
		if m.Parent(id) == textID && m.TypeOf(id) == TypeScreen {
			return id
		}
	}
	return NoParent
}

// TextListChild returns the first List child of textID, or NoParent
// if it has none.
func (m *Model) TextListChild(textID byte) byte {
	for id := byte(0); int(id) < m.count; id++ {
		if m.Parent(id) == textID && m.TypeOf(id) == TypeList {
			return id
		}
	}
	return NoParent
}

// IsBaseScreen reports whether id is a Screen with no parent and a
// non-overlay role.
func (m *Model) IsBaseScreen(id byte, overlay bool) bool {
	return m.TypeOf(id) == TypeScreen && m.Parent(id) == NoParent && !overlay
}

// FindScreenIDByOrdinal returns the id of the ord-th base screen (in
// declaration order), given a callback that reports whether a given
// screen id is marked overlay. Returns NoParent if out of range.
func (m *Model) FindScreenIDByOrdinal(ord int, isOverlay func(byte) bool) byte {
	i := 0
	for id := byte(0); int(id) < m.count; id++ {
		if m.TypeOf(id) != TypeScreen || m.Parent(id) != NoParent {
			continue
		}
		if isOverlay(id) {
			continue
		}
		if i == ord {
			return id
		}
		i++
	}
	return NoParent
}

// FindScreenOrdinalByID is the inverse of FindScreenIDByOrdinal.
// Returns -1 if id is not a base screen.
func (m *Model) FindScreenOrdinalByID(target byte, isOverlay func(byte) bool) int {
	i := 0
	for id := byte(0); int(id) < m.count; id++ {
		if m.TypeOf(id) != TypeScreen || m.Parent(id) != NoParent {
			continue
		}
		if isOverlay(id) {
			continue
		}
		if id == target {
			return i
		}
		i++
	}
	return -1
}

// BaseScreenCount counts base (non-overlay, parentless) screens.
func (m *Model) BaseScreenCount(isOverlay func(byte) bool) int {
	n := 0
	for id := byte(0); int(id) < m.count; id++ {
		if m.TypeOf(id) != TypeScreen || m.Parent(id) != NoParent {
			continue
		}
		if isOverlay(id) {
			continue
		}
		n++
	}
	return n
}

// NestedListAncestors returns, innermost first, every List ancestor
// of id whose own parent's parent is also a List (i.e. nested lists,
// which are only visible once their containing row has been entered
// via navigation).
func (m *Model) NestedListAncestors(id byte) []byte {
	var out []byte
	cur := m.Parent(id)
	for i := 0; i < m.count; i++ {
		if cur == NoParent {
			break
		}
		if m.TypeOf(cur) == TypeList {
			grandparent := m.Parent(m.Parent(cur))
			if grandparent != NoParent && m.TypeOf(grandparent) == TypeList {
				out = append(out, cur)
			}
		}
		cur = m.Parent(cur)
	}
	return out
}
