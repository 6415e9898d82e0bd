// Package state wires every core subsystem into the one
// ProtocolState value the firmware owns: the arena, model, runtime
// node stores, parser, navigation, renderer, transfer engine, and
// framing/dispatch layer, driven by a single fixed-order Tick. It is
// the Go analogue of the teacher's Kernel.Step()/Tick() split in
// sparkos/kernel/kernel.go, collapsed from a multi-task round robin
// to the single logical task this firmware needs.
package state

import (
	"dslave/hal"
	"dslave/slave/arena"
	"dslave/slave/input"
	"dslave/slave/model"
	"dslave/slave/nav"
	"dslave/slave/nodes"
	"dslave/slave/parser"
	"dslave/slave/proto"
	"dslave/slave/render"
	"dslave/slave/transfer"

	"github.com/rs/zerolog"
)

// Version is the protocol version reported by ping and get_status.
const Version = 1

// DefaultOverlayDurationMillis is show_overlay's default auto-clear
// duration when no explicit duration is given.
const DefaultOverlayDurationMillis = 1200

// Machine is the process-wide protocol state singleton: owned and
// mutated only by the main loop, per spec.md §5's "shared resource
// policy". Interrupt/goroutine RX delivery touches only the Framer's
// lock-free byte path (see Framer()).
type Machine struct {
	arena  *arena.Arena
	model  *model.Model
	nodes  *nodes.Stores
	parser *parser.Parser
	navi   *nav.Nav
	render *render.Renderer
	anim   *render.Animator
	xfer   *transfer.Engine
	framer *proto.Framer
	input  *input.Dispatcher
	edges  input.EdgeDetector

	disp      hal.DisplayBus
	transport hal.Transport
	buttons   hal.Buttons
	clock     hal.Clock
	standby   hal.Standby

	geo render.Geometry
	log zerolog.Logger

	activeOrdinal int
	scrollX       int

	overlayScreen      byte
	overlayMaskInput   bool
	overlayDeadline    uint32
	overlayHasDeadline bool
	overlayReturnFocus byte

	initialized bool
	dirty       bool
	dirtyID     byte

	renderPending bool
	nowMillis     uint32
}

// New builds a Machine for a panel of the given height (32 or 64),
// driving disp/transport/buttons/clock/standby. standby may be nil on
// boards with no low-power path.
func New(disp hal.DisplayBus, transport hal.Transport, buttons hal.Buttons, clock hal.Clock, standby hal.Standby, panelHeight int, logger zerolog.Logger) *Machine {
	a := arena.New(arena.DefaultCapacity)
	m := model.New(a)
	ns := nodes.New(a)
	p := parser.New(m, ns)
	navi := nav.New(m, ns)
	geo := render.NewGeometry(panelHeight)

	s := &Machine{
		arena:     a,
		model:     m,
		nodes:     ns,
		parser:    p,
		navi:      navi,
		render:    render.New(m, navi, ns, geo),
		anim:      &render.Animator{},
		xfer:      transfer.New(disp, geo.Pages()),
		framer:    &proto.Framer{},
		input:     input.New(m, navi, ns, geo),
		disp:      disp,
		transport: transport,
		buttons:   buttons,
		clock:     clock,
		standby:   standby,
		geo:       geo,
		log:       logger,
		overlayScreen: model.NoParent,
		dirtyID:       0xFF,
	}
	p.OnDirty = s.MarkDirty
	return s
}

// Framer exposes the RX/TX byte-framing state machine so the calling
// cmd can wire its RX interrupt (or reader goroutine) directly into
// PushByte, never touching the rest of the Machine from that context.
func (s *Machine) Framer() *proto.Framer { return s.framer }

// Tick runs one pass of the main loop's fixed-order pipeline:
// transfer-engine advance, deferred RX/TX service, animation advance,
// button poll, standby check, render-start check. Per spec.md §5 the
// caller is responsible for the ~1ms delay and clock increment around
// repeated Tick calls.
func (s *Machine) Tick() {
	s.nowMillis = s.clock.Millis()

	s.xfer.Advance()
	s.serviceRX()
	s.framer.ServiceTX(s.transport)
	s.advanceAnimations()
	s.pollButtons()
	s.handleStandby()
	s.handleRenderRequest()
}

func (s *Machine) serviceRX() {
	frame, ok := s.framer.TakeFrame()
	if !ok {
		return
	}
	proto.Dispatch(s.framer, s.transport, s, frame)
}

func (s *Machine) advanceAnimations() {
	completed := s.anim.Advance(s.nowMillis, func() {
		render.AdvanceListScrolls(s.nodes, s.model.Count())
	})
	if completed {
		s.scrollX = s.activeOrdinal * 128
		if screenID := s.model.FindScreenIDByOrdinal(s.activeOrdinal, s.isOverlayRole); screenID != model.NoParent {
			s.navi.FocusFirstOn(screenID, s.screenContext())
		}
		s.requestRender()
	}

	if s.overlayHasDeadline && s.overlayScreen != model.NoParent && s.nowMillis >= s.overlayDeadline {
		s.clearOverlay()
	}
}

func (s *Machine) pollButtons() {
	releases := s.edges.Releases(s.buttons.Poll())
	for i := byte(0); i < 6; i++ {
		if releases[i] {
			s.dispatchButton(i)
		}
	}
}

func (s *Machine) dispatchButton(index byte) {
	masked := s.overlayScreen != model.NoParent && s.overlayMaskInput
	s.input.HandleRelease(index, s.screenContext(), s, masked)
	s.anim.SetAnyBarrelEditing(s.anyBarrelEditing())
	s.navi.RefreshFocus(s.screenContext())
	s.requestRender()
}

func (s *Machine) anyBarrelEditing() bool {
	for id := byte(0); int(id) < s.model.Count(); id++ {
		if s.model.TypeOf(id) != model.TypeBarrel {
			continue
		}
		if off, found := s.nodes.FindBarrel(id); found {
			if s.nodes.Barrel(off).Editing() {
				return true
			}
		}
	}
	return false
}

func (s *Machine) handleStandby() {
	if s.standby == nil || !s.standby.Requested() {
		return
	}
	s.standby.Enter()
}

func (s *Machine) handleRenderRequest() {
	if !s.renderPending {
		return
	}
	s.renderPending = false
	sc := s.sceneSnapshot()
	s.xfer.StartOrRequest(func(page int, buf *[128]byte) {
		s.render.DrawPage(buf, page, sc)
	})
}

func (s *Machine) requestRender() { s.renderPending = true }

func (s *Machine) isOverlayRole(id byte) bool {
	return s.arena.ScreenRoleOf(id) == arena.ScreenRoleOverlay
}

func (s *Machine) screenContext() nav.ScreenContext {
	return nav.ScreenContext{
		ActiveOrdinal: s.activeOrdinal,
		SlideActive:   s.anim.Slide.Active,
		SlideFrom:     s.anim.Slide.From,
		SlideTo:       s.anim.Slide.To,
	}
}

func (s *Machine) sceneSnapshot() render.Scene {
	return render.Scene{
		ActiveOrdinal: s.activeOrdinal,
		ScrollX:       s.scrollX,
		Slide:         s.anim.Slide,
		OverlayScreen: s.overlayScreen,
		OverlayMask:   s.overlayMaskInput,
		BlinkBright:   s.anim.BlinkBright(),
	}
}

func (s *Machine) resetAll() {
	s.arena.Reset()
	s.model.Reset()
	s.nodes.Reset()
	s.navi.Reset()
	s.anim.Reset()
	s.activeOrdinal = 0
	s.scrollX = 0
	s.clearOverlayState()
	s.initialized = false
	s.dirty = false
	s.dirtyID = 0xFF
}

func (s *Machine) clearOverlayState() {
	s.overlayScreen = model.NoParent
	s.overlayMaskInput = false
	s.overlayHasDeadline = false
}

func (s *Machine) clearOverlay() {
	s.clearOverlayState()
	s.navi.Focus = s.overlayReturnFocus
	s.requestRender()
}

// ---- input.Env ----

func (s *Machine) BaseScreenCount() int { return s.model.BaseScreenCount(s.isOverlayRole) }

func (s *Machine) StartSlide(from, to int, dir int8) {
	s.activeOrdinal = to
	s.anim.StartSlide(from, to, dir)
}

func (s *Machine) MarkDirty(id byte) {
	s.dirty = true
	s.dirtyID = id
}

// ---- proto.Handlers ----

func (s *Machine) Ping() (version byte, caps uint16) { return Version, 0 }

func (s *Machine) ApplyJSON(flags byte, body []byte) proto.Status {
	if flags&proto.JSONFlagHead != 0 {
		s.resetAll()
	}

	var st proto.Status
	if tok, ok := parser.Token(body); ok && tok == "h" {
		st = s.parser.ApplyHeader(body)
	} else {
		st = s.parser.Apply(body)
	}
	if !st.Ok() {
		s.log.Debug().Str("status", st.String()).Msg("descriptor apply failed")
	}

	if flags&proto.JSONFlagCommit != 0 {
		s.arena.Commit()
		s.initialized = true
		// Element creation during provisioning marks elements dirty as
		// a side effect of sharing the same create/update path runtime
		// changes use; COMMIT establishes the host's baseline view of
		// the model, so it is not itself a "change" to report back.
		s.dirty = false
		s.dirtyID = 0xFF
		s.requestRender()
	}
	return st
}

func (s *Machine) JSONAbort() proto.Status {
	// Documented placeholder: returns OK, affects no state.
	return proto.StatusOK
}

func (s *Machine) SetActiveScreen(sord byte) proto.Status {
	count := s.BaseScreenCount()
	if int(sord) >= count {
		return proto.StatusRange
	}
	s.activeOrdinal = int(sord)
	s.scrollX = s.activeOrdinal * 128
	s.anim.Reset()
	if screenID := s.model.FindScreenIDByOrdinal(s.activeOrdinal, s.isOverlayRole); screenID != model.NoParent {
		s.navi.FocusFirstOn(screenID, s.screenContext())
	}
	s.requestRender()
	return proto.StatusOK
}

func (s *Machine) GetStatus() (flags, nElem, nScreens, activeOrd, version, dirtyID byte) {
	if s.initialized {
		flags |= proto.FlagInitialized
	}
	if s.dirty {
		flags |= proto.FlagDirty
	}
	if s.overlayScreen != model.NoParent {
		flags |= proto.FlagOverlay
	}
	dirtyID = s.dirtyID
	nElem = byte(s.model.Count())
	nScreens = byte(s.BaseScreenCount())
	activeOrd = byte(s.activeOrdinal)
	version = Version

	s.dirty = false
	s.dirtyID = 0xFF
	return
}

func (s *Machine) ScrollToScreen(args []byte) proto.Status {
	var sord byte
	var scroll int
	switch len(args) {
	case 1:
		sord = args[0]
		scroll = int(sord) * 128
	case 3:
		scroll = int(args[0]) | int(args[1])<<8
		sord = args[2]
	default:
		return proto.StatusBadLen
	}
	count := s.BaseScreenCount()
	if int(sord) >= count {
		return proto.StatusRange
	}
	s.activeOrdinal = int(sord)
	s.scrollX = scroll
	s.anim.Reset()
	if screenID := s.model.FindScreenIDByOrdinal(s.activeOrdinal, s.isOverlayRole); screenID != model.NoParent {
		s.navi.FocusFirstOn(screenID, s.screenContext())
	}
	s.requestRender()
	return proto.StatusOK
}

func (s *Machine) GetElementState(eid byte) (body []byte, status proto.Status) {
	if !s.model.Exists(eid) {
		return nil, proto.StatusUnknownID
	}
	typ := s.model.TypeOf(eid)
	switch typ {
	case model.TypeText:
		text, _, _ := s.arena.ReadText(eid)
		n := len(text)
		if n > 255 {
			n = 255
		}
		body = append([]byte{byte(typ), byte(n)}, text[:n]...)
	case model.TypeBarrel:
		off, found := s.nodes.FindBarrel(eid)
		var v uint16
		if found {
			v = uint16(s.nodes.Barrel(off).Value)
		}
		body = []byte{byte(typ), byte(v), byte(v >> 8)}
	case model.TypeTrigger:
		off, found := s.nodes.FindTrigger(eid)
		var ver byte
		if found {
			ver = s.nodes.Trigger(off).Version
		}
		body = []byte{byte(typ), ver}
	default:
		body = []byte{byte(typ), 0xFF}
	}
	return body, proto.StatusOK
}

func (s *Machine) ShowOverlay(args []byte) proto.Status {
	sid := args[0]
	if !s.model.Exists(sid) {
		return proto.StatusUnknownID
	}
	if s.model.TypeOf(sid) != model.TypeScreen || !s.isOverlayRole(sid) {
		return proto.StatusRange
	}

	duration := DefaultOverlayDurationMillis
	maskInput := false
	if len(args) == 4 {
		duration = int(args[1]) | int(args[2])<<8
		maskInput = args[3]&1 != 0
	}

	s.overlayReturnFocus = s.navi.Focus
	s.overlayScreen = sid
	s.overlayMaskInput = maskInput
	s.overlayDeadline = s.nowMillis + uint32(duration)
	s.overlayHasDeadline = true
	s.requestRender()
	return proto.StatusOK
}

func (s *Machine) InputEvent(index, event byte) proto.Status {
	if event != 0 {
		return proto.StatusOK // presses are not dispatched, only releases
	}
	if index > 5 {
		return proto.StatusRange
	}
	s.dispatchButton(index)
	return proto.StatusOK
}

func (s *Machine) GotoStandby() {
	if s.standby != nil {
		s.standby.Enter()
	}
}
