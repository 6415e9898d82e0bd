// Package nodes implements the tail-allocated, singly linked runtime
// node stores for list, barrel, and trigger elements. Each store is
// rooted at a uint16 offset held in the owning Stores value; 0 means
// "empty list".
package nodes

import "dslave/slave/arena"

// List holds the runtime state of a List element.
type List struct {
	NextOff       uint16
	ElementID     byte
	Cursor        byte
	TopIndex      byte
	VisibleRows   byte
	AnimActive    bool
	AnimDir       int8
	AnimPix       byte
	PendingTop    byte
	PendingCursor byte
	LastTextChild byte
}

// listSize is the serialized byte size of a List node.
const listSize = 2 /*next*/ + 1 /*id*/ + 1 /*cursor*/ + 1 /*top*/ + 1 /*visible_rows*/ + 1 /*anim_active*/ + 1 /*anim_dir*/ + 1 /*anim_pix*/ + 1 /*pending_top*/ + 1 /*pending_cursor*/ + 1 /*last_text_child*/

// Barrel holds the runtime state of a Barrel element.
type Barrel struct {
	NextOff   uint16
	ElementID byte
	Aux       byte // bit 7 = editing, bits 0..6 = pre-edit snapshot
	Value     int16
}

const barrelSize = 2 + 1 + 1 + 2

// Trigger holds the runtime state of a Trigger element.
type Trigger struct {
	NextOff   uint16
	ElementID byte
	Version   byte
}

const triggerSize = 2 + 1 + 1

// EditingFlag is bit 7 of Barrel.Aux.
const EditingFlag = 0x80

// Editing reports whether the barrel is currently in edit mode.
func (b *Barrel) Editing() bool { return b.Aux&EditingFlag != 0 }

// Snapshot returns the pre-edit index snapshot (low 7 bits of Aux).
func (b *Barrel) Snapshot() byte { return b.Aux & 0x7F }

// Stores owns the three root offsets (0 = empty) into an Arena's
// tail region.
type Stores struct {
	a *arena.Arena

	listHead    uint16
	barrelHead  uint16
	triggerHead uint16
}

// New wraps an Arena. Call Reset whenever the arena itself is reset.
func New(a *arena.Arena) *Stores { return &Stores{a: a} }

// Reset clears the root offsets; it does not touch the arena, which
// the caller is expected to Reset separately.
func (s *Stores) Reset() {
	s.listHead, s.barrelHead, s.triggerHead = 0, 0, 0
}

// ---- List store ----

func (s *Stores) readList(off uint16) List {
	b := s.a.Bytes()
	p := int(off)
	return List{
		NextOff:       uint16(b[p]) | uint16(b[p+1])<<8,
		ElementID:     b[p+2],
		Cursor:        b[p+3],
		TopIndex:      b[p+4],
		VisibleRows:   b[p+5],
		AnimActive:    b[p+6] != 0,
		AnimDir:       int8(b[p+7]),
		AnimPix:       b[p+8],
		PendingTop:    b[p+9],
		PendingCursor: b[p+10],
		LastTextChild: b[p+11],
	}
}

func (s *Stores) writeList(off uint16, n List) {
	b := s.a.Bytes()
	p := int(off)
	b[p] = byte(n.NextOff)
	b[p+1] = byte(n.NextOff >> 8)
	b[p+2] = n.ElementID
	b[p+3] = n.Cursor
	b[p+4] = n.TopIndex
	b[p+5] = n.VisibleRows
	if n.AnimActive {
		b[p+6] = 1
	} else {
		b[p+6] = 0
	}
	b[p+7] = byte(n.AnimDir)
	b[p+8] = n.AnimPix
	b[p+9] = n.PendingTop
	b[p+10] = n.PendingCursor
	b[p+11] = n.LastTextChild
}

// FindList walks the list-node chain for elementID.
func (s *Stores) FindList(elementID byte) (off uint16, found bool) {
	for cur := s.listHead; cur != 0; {
		n := s.readList(cur)
		if n.ElementID == elementID {
			return cur, true
		}
		cur = n.NextOff
	}
	return 0, false
}

// GetOrAddList finds or lazily tail-allocates a List node for
// elementID, pushing new nodes to the head of the chain.
func (s *Stores) GetOrAddList(elementID byte) (off uint16, ok bool) {
	if off, found := s.FindList(elementID); found {
		return off, true
	}
	a, allocated := s.a.AllocTail(listSize)
	if !allocated {
		return 0, false
	}
	n := List{NextOff: s.listHead, ElementID: elementID, VisibleRows: 4, LastTextChild: arena.NoParent}
	s.writeList(uint16(a), n)
	s.listHead = uint16(a)
	return s.listHead, true
}

// List returns the node at off.
func (s *Stores) List(off uint16) List { return s.readList(off) }

// PutList writes n back to off.
func (s *Stores) PutList(off uint16, n List) { s.writeList(off, n) }

// ---- Barrel store ----

func (s *Stores) readBarrel(off uint16) Barrel {
	b := s.a.Bytes()
	p := int(off)
	return Barrel{
		NextOff:   uint16(b[p]) | uint16(b[p+1])<<8,
		ElementID: b[p+2],
		Aux:       b[p+3],
		Value:     int16(uint16(b[p+4]) | uint16(b[p+5])<<8),
	}
}

func (s *Stores) writeBarrel(off uint16, n Barrel) {
	b := s.a.Bytes()
	p := int(off)
	b[p] = byte(n.NextOff)
	b[p+1] = byte(n.NextOff >> 8)
	b[p+2] = n.ElementID
	b[p+3] = n.Aux
	b[p+4] = byte(n.Value)
	b[p+5] = byte(uint16(n.Value) >> 8)
}

// FindBarrel walks the barrel-node chain for elementID.
func (s *Stores) FindBarrel(elementID byte) (off uint16, found bool) {
	for cur := s.barrelHead; cur != 0; {
		n := s.readBarrel(cur)
		if n.ElementID == elementID {
			return cur, true
		}
		cur = n.NextOff
	}
	return 0, false
}

// GetOrAddBarrel finds or lazily tail-allocates a Barrel node.
func (s *Stores) GetOrAddBarrel(elementID byte) (off uint16, ok bool) {
	if off, found := s.FindBarrel(elementID); found {
		return off, true
	}
	a, allocated := s.a.AllocTail(barrelSize)
	if !allocated {
		return 0, false
	}
	n := Barrel{NextOff: s.barrelHead, ElementID: elementID}
	s.writeBarrel(uint16(a), n)
	s.barrelHead = uint16(a)
	return s.barrelHead, true
}

// Barrel returns the node at off.
func (s *Stores) Barrel(off uint16) Barrel { return s.readBarrel(off) }

// PutBarrel writes n back to off.
func (s *Stores) PutBarrel(off uint16, n Barrel) { s.writeBarrel(off, n) }

// ---- Trigger store ----

func (s *Stores) readTrigger(off uint16) Trigger {
	b := s.a.Bytes()
	p := int(off)
	return Trigger{
		NextOff:   uint16(b[p]) | uint16(b[p+1])<<8,
		ElementID: b[p+2],
		Version:   b[p+3],
	}
}

func (s *Stores) writeTrigger(off uint16, n Trigger) {
	b := s.a.Bytes()
	p := int(off)
	b[p] = byte(n.NextOff)
	b[p+1] = byte(n.NextOff >> 8)
	b[p+2] = n.ElementID
	b[p+3] = n.Version
}

// FindTrigger walks the trigger-node chain for elementID.
func (s *Stores) FindTrigger(elementID byte) (off uint16, found bool) {
	for cur := s.triggerHead; cur != 0; {
		n := s.readTrigger(cur)
		if n.ElementID == elementID {
			return cur, true
		}
		cur = n.NextOff
	}
	return 0, false
}

// GetOrAddTrigger finds or lazily tail-allocates a Trigger node.
func (s *Stores) GetOrAddTrigger(elementID byte) (off uint16, ok bool) {
	if off, found := s.FindTrigger(elementID); found {
		return off, true
	}
	a, allocated := s.a.AllocTail(triggerSize)
	if !allocated {
		return 0, false
	}
	n := Trigger{NextOff: s.triggerHead, ElementID: elementID}
	s.writeTrigger(uint16(a), n)
	s.triggerHead = uint16(a)
	return s.triggerHead, true
}

// Trigger returns the node at off.
func (s *Stores) Trigger(off uint16) Trigger { return s.readTrigger(off) }

// PutTrigger writes n back to off.
func (s *Stores) PutTrigger(off uint16, n Trigger) { s.writeTrigger(off, n) }
