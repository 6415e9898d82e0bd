// Package render implements the per-page tile renderer: text glyph
// drawing, clipping, highlight inversion, list rows with scroll
// animation, and barrel selected-label drawing, per spec.md §4.H.
package render

import (
	"dslave/slave/arena"
	"dslave/slave/font"
	"dslave/slave/model"
	"dslave/slave/nav"
	"dslave/slave/nodes"
)

// Geometry describes the panel this renderer targets.
type Geometry struct {
	Width       int // always 128
	Height      int // 32 or 64
	MaxListRows int // 8 on 64px panels, else 6
}

// NewGeometry builds a Geometry for a given panel height.
func NewGeometry(height int) Geometry {
	maxRows := 6
	if height >= 64 {
		maxRows = 8
	}
	return Geometry{Width: 128, Height: height, MaxListRows: maxRows}
}

// Pages returns the number of 8px pages this geometry has.
func (g Geometry) Pages() int { return g.Height / 8 }

// Scene is the read-only snapshot of navigation/animation state the
// renderer needs for one page draw; it is assembled by the state
// machine each frame.
type Scene struct {
	ActiveOrdinal int
	ScrollX       int
	Slide         SlideAnim
	OverlayScreen byte // arena.NoParent if no overlay is showing
	OverlayMask   bool
	BlinkBright   bool
}

// Renderer draws pages of one UI model.
type Renderer struct {
	m     *model.Model
	nav   *nav.Nav
	nodes *nodes.Stores
	geo   Geometry
}

// New creates a Renderer bound to a model/nav/nodes triple.
func New(m *model.Model, n *nav.Nav, ns *nodes.Stores, geo Geometry) *Renderer {
	return &Renderer{m: m, nav: n, nodes: ns, geo: geo}
}

func (r *Renderer) isOverlayRole(id byte) bool {
	return r.m.Arena().ScreenRoleOf(id) == arena.ScreenRoleOverlay
}

func (r *Renderer) screenContext(sc Scene) nav.ScreenContext {
	return nav.ScreenContext{
		ActiveOrdinal: sc.ActiveOrdinal,
		SlideActive:   sc.Slide.Active,
		SlideFrom:     sc.Slide.From,
		SlideTo:       sc.Slide.To,
	}
}

// LayoutElement resolves id's global (x, y) pixel position for the
// given scene, per spec.md §4.H.
func (r *Renderer) LayoutElement(id byte, sc Scene) (gx, gy int) {
	_, _, x, y := r.m.Arena().Element(int(id))
	gx, gy = int(x), int(y)

	root := r.m.ElementRootScreen(id)
	if root == model.NoParent {
		return gx, gy
	}
	if r.isOverlayRole(root) {
		return gx, gy
	}

	ord := r.m.FindScreenOrdinalByID(root, r.isOverlayRole)
	if ord < 0 {
		return gx, gy
	}
	gx += ord*128 - sc.ScrollX

	if sc.Slide.Active && (ord == sc.Slide.From || ord == sc.Slide.To) {
		gx -= int(sc.Slide.Dir) * sc.Slide.OffsetPix
	}
	return gx, gy
}

// DrawPage renders one 8px-tall page into buf (128 bytes, one byte
// per column, bit0 = top row of the page).
func (r *Renderer) DrawPage(buf *[128]byte, page int, sc Scene) {
	for i := range buf {
		buf[i] = 0
	}
	pageTop := page * 8

	if sc.OverlayScreen != arena.NoParent && r.m.Exists(sc.OverlayScreen) {
		r.drawOverlayPage(buf, pageTop, sc)
		return
	}

	navCtx := r.screenContext(sc)
	count := r.m.Count()
	for id := byte(0); int(id) < count; id++ {
		if !r.nav.IsVisible(id, navCtx) {
			continue
		}
		typ := r.m.TypeOf(id)
		parent := r.m.Parent(id)

		if typ == model.TypeText && parent != model.NoParent && r.m.TypeOf(parent) == model.TypeList {
			continue // lists render their own rows
		}
		if parent != model.NoParent && r.m.TypeOf(parent) == model.TypeBarrel {
			continue // barrels render their own selected label
		}
		root := r.m.ElementRootScreen(id)
		if root != model.NoParent && r.isOverlayRole(root) {
			continue
		}

		gx, gy := r.LayoutElement(id, sc)
		if gx > 143 || gx < -143 {
			continue
		}

		switch typ {
		case model.TypeText:
			r.drawText(buf, pageTop, id, gx, gy, r.isFocusedActive(id, sc))
		case model.TypeList:
			r.drawList(buf, pageTop, id, gx, gy, sc)
		case model.TypeBarrel:
			r.drawBarrel(buf, pageTop, id, gx, gy, sc)
		}
	}
}

func (r *Renderer) drawOverlayPage(buf *[128]byte, pageTop int, sc Scene) {
	count := r.m.Count()
	for id := byte(0); int(id) < count; id++ {
		if r.m.TypeOf(id) != model.TypeText {
			continue
		}
		if !r.m.IsDescendantOf(id, sc.OverlayScreen) {
			continue
		}
		_, _, x, y := r.m.Arena().Element(int(id))
		r.drawText(buf, pageTop, id, int(x), int(y), false)
	}
}

func (r *Renderer) isFocusedActive(id byte, sc Scene) bool {
	return r.nav.Focus == id && !sc.Slide.Active
}

// drawGlyphColumns draws s starting at (gx, gy), clipping vertically
// against [pageTop, pageTop+8) and horizontally against [0, 127].
func (r *Renderer) drawGlyphColumns(buf *[128]byte, pageTop int, s string, gx, gy int) {
	col := gx
	for i := 0; i < len(s); i++ {
		glyph := font.Glyph(s[i])
		for c := 0; c < font.Width; c++ {
			if col >= 0 && col < 128 {
				r.blitColumn(buf, pageTop, col, gy, glyph[c])
			}
			col++
		}
		col++ // 1px inter-glyph gap
	}
}

// blitColumn ORs the visible rows of one glyph column into buf at
// column x, clipped to the current page.
func (r *Renderer) blitColumn(buf *[128]byte, pageTop, x, gy int, colBits byte) {
	for row := 0; row < font.Height; row++ {
		if colBits&(1<<row) == 0 {
			continue
		}
		y := gy + row
		if y < pageTop || y >= pageTop+8 {
			continue
		}
		buf[x] |= 1 << (y - pageTop)
	}
}

func (r *Renderer) invertRect(buf *[128]byte, pageTop, x0, width int) {
	for x := x0; x < x0+width; x++ {
		if x < 0 || x >= 128 {
			continue
		}
		buf[x] ^= 0xFF
	}
}

func textWidthPixels(s string) int {
	if len(s) == 0 {
		return 0
	}
	return len(s)*(font.Width+1) - 1
}

func (r *Renderer) drawText(buf *[128]byte, pageTop int, id byte, gx, gy int, focused bool) {
	s, _, _ := r.m.Arena().ReadText(id)
	r.drawGlyphColumns(buf, pageTop, s, gx, gy)
	if focused {
		w := textWidthPixels(s)
		if w < 18 {
			w = 18
		}
		r.invertRect(buf, pageTop, gx, w)
	}
}

// drawList renders the visible row window of a list, including the
// vertical scroll animation, cursor marker, and each row's text
// (and inline barrel, if any).
func (r *Renderer) drawList(buf *[128]byte, pageTop int, listID byte, baseX, baseY int, sc Scene) {
	off, found := r.nodes.FindList(listID)
	if !found {
		return
	}
	ln := r.nodes.List(off)
	window := r.effectiveWindow(ln)

	first, last := int(ln.TopIndex), int(ln.TopIndex)+window-1
	if ln.AnimActive {
		if ln.AnimDir < 0 {
			first = int(ln.TopIndex) - 1
		}
		if ln.AnimDir > 0 {
			last = int(ln.TopIndex) + window
		}
	}
	if first < 0 {
		first = 0
	}

	focused := r.nav.Focus == listID && !sc.Slide.Active

	for rowIdx := first; rowIdx <= last; rowIdx++ {
		rowID := r.m.ListChildByIndex(listID, rowIdx)
		if rowID == model.NoParent {
			continue
		}
		y := r.rowY(ln, baseY, rowIdx, window)
		if y < baseY || y >= baseY+window*8 {
			continue
		}
		if y < pageTop-7 || y >= pageTop+8 {
			continue
		}
		s, _, _ := r.m.Arena().ReadText(rowID)
		r.drawGlyphColumns(buf, pageTop, s, baseX, y)

		isCursorRow := rowIdx == int(ln.Cursor) || (ln.AnimActive && rowIdx == int(ln.PendingCursor))
		if isCursorRow {
			r.drawGlyphColumns(buf, pageTop, ">", baseX-6, y)
		}

		if barrelID := r.m.TextInlineBarrel(rowID); barrelID != model.NoParent {
			bx, by := baseX, y
			rowCursorActive := isCursorRow && focused
			r.drawBarrelAt(buf, pageTop, barrelID, bx, by, rowCursorActive, sc)
		}
	}
}

// rowY derives the y coordinate of row rowIdx within an animating or
// static list, per spec.md §4.H.
func (r *Renderer) rowY(ln nodes.List, baseY, rowIdx, window int) int {
	if !ln.AnimActive {
		return baseY + (rowIdx-int(ln.TopIndex))*8
	}
	pix := int(ln.AnimPix)
	switch ln.AnimDir {
	case 1:
		return baseY + (rowIdx-int(ln.TopIndex))*8 - pix
	case -1:
		if rowIdx == int(ln.TopIndex)-1 {
			return baseY - 8 + pix
		}
		return baseY + (rowIdx-int(ln.TopIndex))*8 + pix
	default:
		return baseY + (rowIdx-int(ln.TopIndex))*8
	}
}

// effectiveWindow computes min(visible_rows, max_rows,
// floor((display_height - y)/8)), clamped to at least 1.
func (r *Renderer) effectiveWindow(ln nodes.List) int {
	_, _, _, y := r.m.Arena().Element(int(ln.ElementID))
	byHeight := (r.geo.Height - int(y)) / 8
	w := int(ln.VisibleRows)
	if w > r.geo.MaxListRows {
		w = r.geo.MaxListRows
	}
	if byHeight < w {
		w = byHeight
	}
	if w < 1 {
		w = 1
	}
	return w
}

// drawBarrel draws an independent (list-less) barrel at its own
// layout position.
func (r *Renderer) drawBarrel(buf *[128]byte, pageTop int, id byte, gx, gy int, sc Scene) {
	focused := r.nav.Focus == id && !sc.Slide.Active
	r.drawBarrelAt(buf, pageTop, id, gx, gy, focused, sc)
}

// drawBarrelAt draws the barrel's currently selected child label.
// parentRowFocused additionally highlights the label when the
// barrel's parent Text is the cursor row of a currently-focused,
// non-animating enclosing list.
func (r *Renderer) drawBarrelAt(buf *[128]byte, pageTop int, id byte, gx, gy int, parentRowFocused bool, sc Scene) {
	off, found := r.nodes.FindBarrel(id)
	if !found {
		return
	}
	bn := r.nodes.Barrel(off)

	childID := r.m.ListChildByIndex(id, int(bn.Value))
	var label string
	if childID != model.NoParent {
		label, _, _ = r.m.Arena().ReadText(childID)
	} else {
		label = formatIndexFallback(bn.Value)
	}

	r.drawGlyphColumns(buf, pageTop, label, gx, gy)

	focusedDirect := r.nav.Focus == id && !sc.Slide.Active
	editing := bn.Editing()
	dimPhase := editing && !sc.BlinkBright
	shouldInvert := (focusedDirect && !dimPhase) || parentRowFocused

	if shouldInvert {
		w := textWidthPixels(label)
		r.invertRect(buf, pageTop, gx, w)
	}
}

func formatIndexFallback(v int16) string {
	if v < 0 {
		v = 0
	}
	if v > 99 {
		v = 99
	}
	return "[" + digit(int(v)/10) + digit(int(v)%10) + "]"
}

func digit(d int) string {
	return string([]byte{byte('0' + d)})
}
