package nav

// PushList enters a nested list owned by a Text row under parentList,
// per spec.md §4.F's nav_push_list: zeros the child list's
// cursor/top and focuses it. Fails silently (no-op) if the stack is
// already at MaxStackDepth.
func (n *Nav) PushList(parentList, target byte, activeOrdinal int) {
	if len(n.stack) >= MaxStackDepth {
		return
	}
	var savedCursor, savedTop byte
	if off, found := n.nodes.FindList(target); found {
		ln := n.nodes.List(off)
		savedCursor, savedTop = ln.Cursor, ln.TopIndex
		ln.Cursor, ln.TopIndex = 0, 0
		n.nodes.PutList(off, ln)
	}
	n.stack = append(n.stack, Entry{
		Kind:               ContextNestedList,
		Target:             target,
		ReturnList:         parentList,
		SavedCursor:        savedCursor,
		SavedTop:           savedTop,
		SavedFocus:         n.Focus,
		SavedActiveOrdinal: activeOrdinal,
	})
	n.Focus = target
}

// PushLocalScreen enters the local screen attached to a Text row,
// per spec.md §4.F's nav_push_local_screen: returns the local screen's
// base-screen ordinal (activeOrdinal when it has none) for the caller
// to apply, and focuses its first focusable element, falling back to
// refocusing parentList if the local screen has none.
func (n *Nav) PushLocalScreen(parentList, screenID byte, activeOrdinal int) (newOrdinal int, ok bool) {
	if len(n.stack) >= MaxStackDepth {
		return activeOrdinal, false
	}
	var savedCursor, savedTop byte
	if off, found := n.nodes.FindList(parentList); found {
		ln := n.nodes.List(off)
		savedCursor, savedTop = ln.Cursor, ln.TopIndex
	}
	ord := n.m.FindScreenOrdinalByID(screenID, n.isOverlay)
	if ord < 0 {
		ord = activeOrdinal
	}
	n.stack = append(n.stack, Entry{
		Kind:               ContextLocalScreen,
		Target:             screenID,
		ReturnList:         parentList,
		SavedCursor:        savedCursor,
		SavedTop:           savedTop,
		SavedFocus:         n.Focus,
		SavedActiveOrdinal: activeOrdinal,
	})
	sc := ScreenContext{ActiveOrdinal: ord}
	n.FocusFirstOn(screenID, sc)
	if n.Focus == NoFocus {
		n.Focus = parentList
	}
	return ord, true
}

// Pop removes the top navigation frame and restores its saved
// cursor, top_index, focus, and (for local-screen contexts) active
// screen ordinal. It reports the restored ordinal and whether the
// popped context was a local screen (in which case the caller must
// apply the restored ordinal).
func (n *Nav) Pop() (restoredOrdinal int, wasLocalScreen bool, ok bool) {
	if len(n.stack) == 0 {
		return 0, false, false
	}
	top := n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]

	if top.Kind == ContextNestedList {
		if off, found := n.nodes.FindList(top.Target); found {
			ln := n.nodes.List(off)
			ln.Cursor, ln.TopIndex = top.SavedCursor, top.SavedTop
			n.nodes.PutList(off, ln)
		}
	}
	n.Focus = top.SavedFocus
	return top.SavedActiveOrdinal, top.Kind == ContextLocalScreen, true
}
