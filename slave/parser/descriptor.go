// Package parser turns a single ASCII descriptor object into
// create/update calls against the element model, the arena's
// attribute store, and the runtime node stores. It is
// key-order-independent and tolerant of unknown keys; a malformed
// field in one descriptor never poisons the descriptors that follow
// it in the same commit batch.
package parser

import (
	"dslave/slave/arena"
	"dslave/slave/model"
	"dslave/slave/nodes"
	"dslave/slave/proto"
)

// MaxTextLen is the largest text value / capacity the wire format
// allows, per spec.md §6.
const MaxTextLen = 20

// Parser applies descriptor objects to a Model/Stores pair backed by
// a single Arena.
type Parser struct {
	Model *model.Model
	Nodes *nodes.Stores

	// OnDirty is invoked with the id of any element created or
	// updated, implementing the single "last-writer-wins" dirty slot
	// of spec.md §3. It may be nil.
	OnDirty func(id byte)
}

// New creates a Parser over model/nodes.
func New(m *model.Model, n *nodes.Stores) *Parser {
	return &Parser{Model: m, Nodes: n}
}

func (p *Parser) markDirty(id byte) {
	if p.OnDirty != nil {
		p.OnDirty(id)
	}
}

// ApplyHeader processes a header descriptor. It is the only
// descriptor legal immediately after an arena Reset, and it must
// precede every other descriptor.
func (p *Parser) ApplyHeader(buf []byte) proto.Status {
	if !looksWellFormed(buf) {
		return proto.StatusParseFail
	}
	n, ok := extractInt(buf, "n")
	if !ok || n < 1 || n > 255 {
		return proto.StatusParseFail
	}
	return p.Model.Arena().ReserveElementStorage(n)
}

// Apply processes a single non-header descriptor: either a create
// (no "e" key) or an update (has "e"). The arena must already be
// reserved (the header must have been applied first in this batch).
func (p *Parser) Apply(buf []byte) proto.Status {
	if !p.Model.Arena().Reserved() {
		return proto.StatusBadState
	}
	if !looksWellFormed(buf) {
		return proto.StatusParseFail
	}
	tok, ok := extractString(buf, "t")
	if eid, isUpdate := extractInt(buf, "e"); isUpdate {
		return p.applyUpdate(byte(eid), tok, ok, buf)
	}
	if !ok {
		return proto.StatusParseFail
	}
	return p.applyCreate(tok, buf)
}

func (p *Parser) applyCreate(tok string, buf []byte) proto.Status {
	switch tok {
	case "s":
		return p.createScreen(buf)
	case "l":
		return p.createList(buf)
	case "t":
		return p.createText(buf)
	case "b":
		return p.createBarrel(buf)
	case "i":
		return p.createTrigger(buf)
	default:
		return proto.StatusParseFail
	}
}

func (p *Parser) applyUpdate(id byte, tok string, hasTok bool, buf []byte) proto.Status {
	if !p.Model.Exists(id) {
		return proto.StatusUnknownID
	}
	existing := p.Model.TypeOf(id)
	if hasTok && !tokenMatchesType(tok, existing) {
		// Mismatched type on an update is ignored, not an error.
		return proto.StatusOK
	}
	switch existing {
	case model.TypeText:
		if tx, ok := extractString(buf, "tx"); ok {
			st := p.Model.Arena().UpdateText(id, tx)
			if st.Ok() {
				p.markDirty(id)
			}
			return st
		}
		return proto.StatusOK
	case model.TypeBarrel:
		if v, ok := extractInt(buf, "v"); ok {
			off, got := p.Nodes.GetOrAddBarrel(id)
			if !got {
				return proto.StatusNoSpace
			}
			n := p.Nodes.Barrel(off)
			n.Value = int16(v)
			p.Nodes.PutBarrel(off, n)
			p.markDirty(id)
		}
		return proto.StatusOK
	case model.TypeTrigger:
		// Trigger updates carry no mutable fields; ignored.
		return proto.StatusOK
	default:
		return proto.StatusOK
	}
}

func tokenMatchesType(tok string, t model.Type) bool {
	switch tok {
	case "s":
		return t == model.TypeScreen
	case "l":
		return t == model.TypeList
	case "t":
		return t == model.TypeText
	case "b":
		return t == model.TypeBarrel
	case "i":
		return t == model.TypeTrigger
	default:
		return false
	}
}

func u8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func (p *Parser) createScreen(buf []byte) proto.Status {
	parent := byte(arena.NoParent)
	if pv, ok := extractInt(buf, "p"); ok {
		parent = u8(pv)
	}
	id, st := p.Model.AddElement(parent, model.TypeScreen, 0, 0)
	if !st.Ok() {
		return st
	}
	overlay := 0
	if ov, ok := extractInt(buf, "ov"); ok {
		overlay = ov
	}
	if overlay != 0 {
		st2 := p.Model.Arena().AppendAttr(arena.TagScreenRole, id, false, []byte{byte(arena.ScreenRoleOverlay)})
		if !st2.Ok() {
			return st2
		}
	}
	p.markDirty(id)
	return proto.StatusOK
}

func (p *Parser) createList(buf []byte) proto.Status {
	pv, ok := extractInt(buf, "p")
	if !ok {
		return proto.StatusParseFail
	}
	x, _ := extractInt(buf, "x")
	y, _ := extractInt(buf, "y")
	id, st := p.attachChild(u8(pv), model.TypeList, u8(x), u8(y))
	if !st.Ok() {
		return st
	}
	rows := 4
	if r, ok := extractInt(buf, "r"); ok && r >= 1 && r <= 6 {
		rows = r
	}
	off, got := p.Nodes.GetOrAddList(id)
	if !got {
		return proto.StatusNoSpace
	}
	n := p.Nodes.List(off)
	n.VisibleRows = byte(rows)
	p.Nodes.PutList(off, n)
	p.markDirty(id)
	return proto.StatusOK
}

func (p *Parser) createText(buf []byte) proto.Status {
	pv, ok := extractInt(buf, "p")
	if !ok {
		return proto.StatusParseFail
	}
	parent := u8(pv)
	x, _ := extractInt(buf, "x")
	y, hasY := extractInt(buf, "y")

	tx, _ := extractString(buf, "tx")
	if len(tx) > MaxTextLen {
		tx = tx[:MaxTextLen]
	}
	cap := len(tx)
	if c, ok := extractInt(buf, "c"); ok && c > 0 {
		if c > MaxTextLen {
			c = MaxTextLen
		}
		cap = c
	}

	isRow := p.Model.Exists(parent) && p.Model.TypeOf(parent) == model.TypeList
	yy := byte(y)
	if isRow {
		yy = byte(p.Model.ListRowCount(parent) * 8)
	} else if !hasY {
		yy = 0
	}

	id, st := p.Model.AddElement(parent, model.TypeText, u8(x), yy)
	if !st.Ok() {
		return st
	}
	if st2 := p.Model.Arena().StoreTextWithCap(id, tx, cap); !st2.Ok() {
		return st2
	}
	if isRow {
		off, got := p.Nodes.GetOrAddList(parent)
		if got {
			n := p.Nodes.List(off)
			n.LastTextChild = id
			p.Nodes.PutList(off, n)
		}
	}
	p.markDirty(id)
	return proto.StatusOK
}

func (p *Parser) createBarrel(buf []byte) proto.Status {
	pv, ok := extractInt(buf, "p")
	if !ok {
		return proto.StatusParseFail
	}
	x, _ := extractInt(buf, "x")
	y, _ := extractInt(buf, "y")
	id, st := p.attachChild(u8(pv), model.TypeBarrel, u8(x), u8(y))
	if !st.Ok() {
		return st
	}
	v := 0
	if vv, ok := extractInt(buf, "v"); ok {
		v = vv
	}
	off, got := p.Nodes.GetOrAddBarrel(id)
	if !got {
		return proto.StatusNoSpace
	}
	n := p.Nodes.Barrel(off)
	n.Value = int16(v)
	p.Nodes.PutBarrel(off, n)
	p.markDirty(id)
	return proto.StatusOK
}

func (p *Parser) createTrigger(buf []byte) proto.Status {
	pv, ok := extractInt(buf, "p")
	if !ok {
		return proto.StatusParseFail
	}
	x, _ := extractInt(buf, "x")
	y, _ := extractInt(buf, "y")
	id, st := p.attachChild(u8(pv), model.TypeTrigger, u8(x), u8(y))
	if !st.Ok() {
		return st
	}
	if _, got := p.Nodes.GetOrAddTrigger(id); !got {
		return proto.StatusNoSpace
	}
	p.markDirty(id)
	return proto.StatusOK
}

// attachChild creates a child element, resolving "most recent row"
// parenting: if parent is a List, the new element actually attaches
// to that list's last-added Text row (per the text-under-list
// parenting rule in spec.md §4.D), since lists own rows, not
// siblings of rows directly.
func (p *Parser) attachChild(parent byte, typ model.Type, x, y byte) (byte, proto.Status) {
	if !p.Model.Exists(parent) && parent != arena.NoParent {
		return 0, proto.StatusUnknownID
	}
	if parent != arena.NoParent && p.Model.TypeOf(parent) == model.TypeList {
		if off, found := p.Nodes.FindList(parent); found {
			n := p.Nodes.List(off)
			if n.LastTextChild != arena.NoParent {
				parent = n.LastTextChild
			}
		}
	}
	return p.Model.AddElement(parent, typ, x, y)
}
