package render

import "dslave/slave/nodes"

// AdvanceListScrolls steps every list node's per-row scroll animation
// by one frame. It has no knowledge of which element ids exist; the
// caller supplies the element count so it can walk ids 0..n-1 and
// look up whichever have a list node.
func AdvanceListScrolls(store *nodes.Stores, elementCount int) {
	for id := 0; id < elementCount; id++ {
		off, found := store.FindList(byte(id))
		if !found {
			continue
		}
		n := store.List(off)
		if !n.AnimActive {
			continue
		}
		n.AnimPix += ListScrollPixelsPerFrame
		if int(n.AnimPix) >= 8 {
			n.AnimPix = 0
			n.AnimActive = false
			n.TopIndex = n.PendingTop
			n.Cursor = n.PendingCursor
		}
		store.PutList(off, n)
	}
}
