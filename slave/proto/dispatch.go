package proto

import "dslave/hal"

// Command bytes, per spec.md §4.J.
const (
	CmdPing             = 0x00
	CmdJSON             = 0x01
	CmdJSONAbort        = 0x03
	CmdSetActiveScreen  = 0x10
	CmdGetStatus        = 0x20
	CmdScrollToScreen   = 0x21
	CmdGetElementState  = 0x22
	CmdShowOverlay      = 0x30
	CmdInputEvent       = 0x41
	CmdGotoStandby      = 0x50
)

// StatusFlags are the bits returned by get_status and accepted by json.
const (
	FlagInitialized = 1 << 0
	FlagDirty       = 1 << 1
	FlagOverlay     = 1 << 2
)

const (
	JSONFlagHead   = 1 << 0
	JSONFlagCommit = 1 << 1
)

// Handlers is the command-table callback surface; the dispatcher
// itself never touches the UI model, keeping proto a pure framing
// and dispatch layer. slave/state implements this.
type Handlers interface {
	Ping() (version byte, caps uint16)
	ApplyJSON(flags byte, body []byte) Status
	JSONAbort() Status
	SetActiveScreen(sord byte) Status
	GetStatus() (flags, nElem, nScreens, activeOrd, version, dirtyID byte)
	ScrollToScreen(args []byte) Status
	GetElementState(eid byte) (body []byte, status Status)
	ShowOverlay(args []byte) Status
	InputEvent(index, event byte) Status
	GotoStandby()
}

// Dispatch decodes one already-framed command and drives h, sending
// the response (if any) through fr/t. Malformed length is reported
// as BadLen in the response; an unrecognized command produces no
// response at all, per spec.md §7 ("a malformed frame produces no
// response").
func Dispatch(fr *Framer, t hal.Transport, h Handlers, f Frame) {
	if f.Len == 0 {
		return
	}
	cmd := f.Payload[0]
	args := f.Args()

	switch cmd {
	case CmdPing:
		if len(args) != 0 {
			fr.Send(t, []byte{StatusBadLen.RC()})
			return
		}
		version, caps := h.Ping()
		fr.Send(t, []byte{StatusOK.RC(), version, byte(caps), byte(caps >> 8)})

	case CmdJSON:
		if len(args) < 1 {
			fr.Send(t, []byte{StatusBadLen.RC()})
			return
		}
		st := h.ApplyJSON(args[0], args[1:])
		fr.Send(t, []byte{st.RC()})

	case CmdJSONAbort:
		if len(args) != 0 {
			fr.Send(t, []byte{StatusBadLen.RC()})
			return
		}
		st := h.JSONAbort()
		fr.Send(t, []byte{st.RC()})

	case CmdSetActiveScreen:
		if len(args) != 1 {
			fr.Send(t, []byte{StatusBadLen.RC()})
			return
		}
		st := h.SetActiveScreen(args[0])
		fr.Send(t, []byte{st.RC()})

	case CmdGetStatus:
		if len(args) != 0 {
			fr.Send(t, []byte{StatusBadLen.RC()})
			return
		}
		flags, nElem, nScreens, activeOrd, version, dirtyID := h.GetStatus()
		fr.Send(t, []byte{StatusOK.RC(), flags, nElem, nScreens, activeOrd, version, dirtyID, 0, 0, 0})

	case CmdScrollToScreen:
		if len(args) != 1 && len(args) != 3 {
			fr.Send(t, []byte{StatusBadLen.RC()})
			return
		}
		st := h.ScrollToScreen(args)
		fr.Send(t, []byte{st.RC()})

	case CmdGetElementState:
		if len(args) != 1 {
			fr.Send(t, []byte{StatusBadLen.RC()})
			return
		}
		body, st := h.GetElementState(args[0])
		resp := append([]byte{st.RC()}, body...)
		fr.Send(t, resp)

	case CmdShowOverlay:
		if len(args) != 1 && len(args) != 4 {
			fr.Send(t, []byte{StatusBadLen.RC()})
			return
		}
		st := h.ShowOverlay(args)
		fr.Send(t, []byte{st.RC()})

	case CmdInputEvent:
		if len(args) != 2 {
			fr.Send(t, []byte{StatusBadLen.RC()})
			return
		}
		st := h.InputEvent(args[0], args[1])
		fr.Send(t, []byte{st.RC()})

	case CmdGotoStandby:
		if len(args) != 0 {
			fr.Send(t, []byte{StatusBadLen.RC()})
			return
		}
		h.GotoStandby()
		// No response, per spec.md §4.J's command table.
	}
}
