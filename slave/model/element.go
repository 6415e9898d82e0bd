// Package model implements the per-element type/parent/position
// tables on top of the arena, plus the tree helpers that answer
// visibility, parentage, and row-count questions by walking those
// tables.
package model

import (
	"dslave/slave/arena"
	"dslave/slave/proto"
)

// Type identifies an element's kind.
type Type uint8

const (
	TypeScreen Type = iota + 1
	TypeList
	TypeText
	TypeBarrel
	TypeTrigger
)

// NoParent mirrors arena.NoParent for callers that only import model.
const NoParent = arena.NoParent

// Model owns the element table view of an Arena plus the count of
// elements created so far.
type Model struct {
	a     *arena.Arena
	count int
}

// New wraps an already-reserved Arena.
func New(a *arena.Arena) *Model {
	return &Model{a: a}
}

// Count returns the number of elements created since the last Reset.
func (m *Model) Count() int { return m.count }

// Capacity returns the reserved element capacity (the header's n).
func (m *Model) Capacity() int { return m.a.N() }

// Reset clears the element count to match a fresh/reset arena. It
// does not itself reset the arena; callers reset the arena first.
func (m *Model) Reset() { m.count = 0 }

// AddElement appends one element slot, returning its id. parent
// should be arena.NoParent when the element has no parent.
func (m *Model) AddElement(parent byte, typ Type, x, y byte) (id byte, status proto.Status) {
	if m.count >= m.a.N() {
		return 0, proto.StatusNoSpace
	}
	id = byte(m.count)
	m.a.SetElement(m.count, parent, byte(typ), x, y)
	m.count++
	return id, proto.StatusOK
}

// Parent returns the parent id of id (arena.NoParent if root).
func (m *Model) Parent(id byte) byte {
	p, _, _, _ := m.a.Element(int(id))
	return p
}

// TypeOf returns the type of id.
func (m *Model) TypeOf(id byte) Type {
	_, t, _, _ := m.a.Element(int(id))
	return Type(t)
}

// Pos returns the stored (x, y) of id.
func (m *Model) Pos(id byte) (x, y byte) {
	_, _, x, y = m.a.Element(int(id))
	return x, y
}

// SetPos updates only the position of id.
func (m *Model) SetPos(id byte, x, y byte) { m.a.SetPos(int(id), x, y) }

// Exists reports whether id is a created element.
func (m *Model) Exists(id byte) bool { return int(id) < m.count }

// Arena exposes the backing arena for packages (parser, nodes) that
// need to manipulate attributes or tail allocations directly.
func (m *Model) Arena() *arena.Arena { return m.a }
