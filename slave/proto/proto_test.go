package proto

import (
	"bytes"
	"testing"
)

func TestCOBSRoundTripCases(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0x41},
		{0x41, 0x00},
		{0x00, 0x41},
		{0x01, 0x02, 0x03},
		bytes.Repeat([]byte{0x01}, 300), // exercises the 0xFF run-length boundary
	}
	for _, in := range cases {
		enc := Encode(in)
		for _, b := range enc {
			if b == 0 {
				t.Fatalf("encoded output must never contain a zero byte: %x", enc)
			}
		}
		dec := Decode(enc)
		if !bytes.Equal(dec, in) && !(len(dec) == 0 && len(in) == 0) {
			t.Fatalf("round trip mismatch for %x: got %x", in, dec)
		}
	}
}

func TestCOBSSingleZeroByte(t *testing.T) {
	enc := Encode([]byte{0x00})
	want := []byte{0x01, 0x01}
	if !bytes.Equal(enc, want) {
		t.Fatalf("expected %x, got %x", want, enc)
	}
	dec := Decode(want)
	if !bytes.Equal(dec, []byte{0x00}) {
		t.Fatalf("expected decode to [0x00], got %x", dec)
	}
}

func TestDecodeRejectsZeroCodeByte(t *testing.T) {
	if got := Decode([]byte{0x00}); got != nil {
		t.Fatalf("a zero code byte is malformed, expected nil, got %x", got)
	}
}

func TestDecodeRejectsTruncatedRun(t *testing.T) {
	if got := Decode([]byte{0x05, 0x01}); got != nil {
		t.Fatalf("a run claiming more bytes than present is malformed, expected nil, got %x", got)
	}
}

func buildWireFrame(payload []byte) []byte {
	stuffed := Encode(payload)
	frame := append([]byte{Sync0, Sync1, byte(len(stuffed))}, stuffed...)
	return frame
}

func TestFramerParsesWellFormedFrame(t *testing.T) {
	fr := &Framer{}
	wire := buildWireFrame([]byte{CmdPing})
	for _, b := range wire {
		fr.PushByte(b)
	}
	f, ok := fr.TakeFrame()
	if !ok {
		t.Fatalf("expected a decoded frame")
	}
	if f.Cmd() != CmdPing {
		t.Fatalf("expected cmd ping, got %x", f.Cmd())
	}
	if len(f.Args()) != 0 {
		t.Fatalf("expected no args, got %x", f.Args())
	}
}

func TestFramerResyncsAfterGarbageBytes(t *testing.T) {
	fr := &Framer{}
	fr.PushByte(0x00)
	fr.PushByte(0xFF)
	fr.PushByte(Sync0)
	fr.PushByte(0x00) // not Sync1, should bounce back to wait-Sync0
	wire := buildWireFrame([]byte{CmdPing})
	for _, b := range wire {
		fr.PushByte(b)
	}
	f, ok := fr.TakeFrame()
	if !ok || f.Cmd() != CmdPing {
		t.Fatalf("expected to resync and decode a ping frame, ok=%v cmd=%x", ok, f.Cmd())
	}
}

func TestFramerOverrunDropsInFlightFrame(t *testing.T) {
	fr := &Framer{}
	wire := buildWireFrame([]byte{CmdPing})
	for _, b := range wire[:len(wire)-1] { // stop just short of a complete frame
		fr.PushByte(b)
	}
	fr.SetOverrun()
	if _, ok := fr.TakeFrame(); ok {
		t.Fatalf("an overrun should drop the in-flight frame")
	}
}

type fakeTransport struct {
	busy bool
	sent [][]byte
}

func (f *fakeTransport) TxBurst(b []byte) bool {
	if f.busy {
		return false
	}
	f.sent = append(f.sent, append([]byte{}, b...))
	return true
}
func (f *fakeTransport) TxBusy() bool { return f.busy }

func TestFramerSendQueuesWhenBusy(t *testing.T) {
	fr := &Framer{}
	tr := &fakeTransport{busy: true}
	if st := fr.Send(tr, []byte{StatusOK.RC()}); st != StatusOK {
		t.Fatalf("send should queue and report ok, got %v", st)
	}
	if st := fr.Send(tr, []byte{StatusOK.RC()}); st != StatusBadState {
		t.Fatalf("a second send while queue occupied should report bad_state, got %v", st)
	}
	tr.busy = false
	fr.ServiceTX(tr)
	if len(tr.sent) != 1 {
		t.Fatalf("expected the queued frame to drain once the transport is free, got %d sends", len(tr.sent))
	}
}

type stubHandlers struct {
	pingVersion byte
}

func (s *stubHandlers) Ping() (byte, uint16)                       { return s.pingVersion, 0x1234 }
func (s *stubHandlers) ApplyJSON(flags byte, body []byte) Status   { return StatusOK }
func (s *stubHandlers) JSONAbort() Status                          { return StatusOK }
func (s *stubHandlers) SetActiveScreen(sord byte) Status           { return StatusOK }
func (s *stubHandlers) GetStatus() (byte, byte, byte, byte, byte, byte) {
	return FlagInitialized, 3, 1, 0, 1, 0xFF
}
func (s *stubHandlers) ScrollToScreen(args []byte) Status                  { return StatusOK }
func (s *stubHandlers) GetElementState(eid byte) ([]byte, Status)          { return []byte{1, 2}, StatusOK }
func (s *stubHandlers) ShowOverlay(args []byte) Status                     { return StatusOK }
func (s *stubHandlers) InputEvent(index, event byte) Status                { return StatusOK }
func (s *stubHandlers) GotoStandby()                                       {}

func TestDispatchPingRespondsWithVersionAndCaps(t *testing.T) {
	fr := &Framer{}
	tr := &fakeTransport{}
	h := &stubHandlers{pingVersion: 7}
	Dispatch(fr, tr, h, Frame{Payload: [MaxPayload]byte{CmdPing}, Len: 1})
	if len(tr.sent) != 1 {
		t.Fatalf("expected one response frame")
	}
	got := Decode(tr.sent[0][3:])
	want := []byte{StatusOK.RC(), 7, 0x34, 0x12}
	if !bytes.Equal(got, want) {
		t.Fatalf("expected %x, got %x", want, got)
	}
}

func TestDispatchBadLenOnWrongArgCount(t *testing.T) {
	fr := &Framer{}
	tr := &fakeTransport{}
	h := &stubHandlers{}
	Dispatch(fr, tr, h, Frame{Payload: [MaxPayload]byte{CmdPing, 0x01}, Len: 2})
	got := Decode(tr.sent[0][3:])
	if len(got) != 1 || got[0] != StatusBadLen.RC() {
		t.Fatalf("expected a single bad_len rc byte, got %x", got)
	}
}

func TestDispatchGotoStandbySendsNoResponse(t *testing.T) {
	fr := &Framer{}
	tr := &fakeTransport{}
	h := &stubHandlers{}
	Dispatch(fr, tr, h, Frame{Payload: [MaxPayload]byte{CmdGotoStandby}, Len: 1})
	if len(tr.sent) != 0 {
		t.Fatalf("goto_standby must produce no response, got %d frames", len(tr.sent))
	}
}

func TestDispatchEmptyFrameProducesNoResponse(t *testing.T) {
	fr := &Framer{}
	tr := &fakeTransport{}
	h := &stubHandlers{}
	Dispatch(fr, tr, h, Frame{Len: 0})
	if len(tr.sent) != 0 {
		t.Fatalf("an empty frame must produce no response, got %d frames", len(tr.sent))
	}
}
