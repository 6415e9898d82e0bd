package transfer

import (
	"testing"
)

type fakeDisplay struct {
	cmds     [][]byte
	data     [][]byte
	busy     bool
	busyOnce bool
}

func (d *fakeDisplay) WriteCmdBurst(b []byte) error {
	d.cmds = append(d.cmds, append([]byte{}, b...))
	return nil
}
func (d *fakeDisplay) WriteDataBurst(b []byte) bool {
	if d.busy {
		return false
	}
	d.data = append(d.data, append([]byte{}, b...))
	return true
}
func (d *fakeDisplay) TxBusy() bool { return d.busy }

func drainOnePage(e *Engine, d *fakeDisplay) {
	for e.Busy() {
		e.Advance()
	}
}

func TestBeginRendersAllPagesInOrder(t *testing.T) {
	d := &fakeDisplay{}
	e := New(d, 2)
	var pages []int
	ok := e.Begin(func(page int, buf *[128]byte) {
		pages = append(pages, page)
		buf[0] = byte(page + 1)
	})
	if !ok {
		t.Fatalf("begin should succeed when idle")
	}
	drainOnePage(e, d)
	if len(pages) != 2 || pages[0] != 0 || pages[1] != 1 {
		t.Fatalf("expected pages rendered in order [0,1], got %v", pages)
	}
	if len(d.cmds) != 2 {
		t.Fatalf("expected one addressing command burst per page, got %d", len(d.cmds))
	}
}

func TestBeginFailsWhileActive(t *testing.T) {
	d := &fakeDisplay{}
	e := New(d, 1)
	e.Begin(func(page int, buf *[128]byte) {})
	if e.Begin(func(page int, buf *[128]byte) {}) {
		t.Fatalf("begin should fail while a frame is already active")
	}
}

func TestDataIsChunkedToI2CBufferLimit(t *testing.T) {
	d := &fakeDisplay{}
	e := New(d, 1)
	e.Begin(func(page int, buf *[128]byte) {
		for i := range buf {
			buf[i] = 0xFF
		}
	})
	drainOnePage(e, d)
	if len(d.data) == 0 {
		t.Fatalf("expected at least one data burst")
	}
	for _, chunk := range d.data {
		if len(chunk) > 28 {
			t.Fatalf("chunk exceeds I2CBufferLimit: %d bytes", len(chunk))
		}
	}
	total := 0
	for _, chunk := range d.data {
		total += len(chunk)
	}
	if total != 128 {
		t.Fatalf("expected 128 bytes streamed across chunks, got %d", total)
	}
}

func TestRequestRerenderCoalescesDuringActiveFrame(t *testing.T) {
	d := &fakeDisplay{}
	e := New(d, 1)
	calls := 0
	e.Begin(func(page int, buf *[128]byte) { calls++ })

	// Request several rerenders mid-frame; only the last callback should
	// actually run, and only once, after the in-flight frame completes.
	e.RequestRerender(func(page int, buf *[128]byte) { calls += 10 })
	e.RequestRerender(func(page int, buf *[128]byte) { calls += 100 })

	drainOnePage(e, d) // finishes the first frame and restarts once

	if calls != 101 {
		t.Fatalf("expected exactly one coalesced rerender (1 + 100), got %d", calls)
	}
}

func TestStartOrRequestBeginsWhenIdle(t *testing.T) {
	d := &fakeDisplay{}
	e := New(d, 1)
	ran := false
	e.StartOrRequest(func(page int, buf *[128]byte) { ran = true })
	if !e.Busy() {
		t.Fatalf("expected engine to become active")
	}
	drainOnePage(e, d)
	if !ran {
		t.Fatalf("expected the render callback to have run")
	}
}

func TestPumpChunkRetriesWhenBusBusy(t *testing.T) {
	d := &fakeDisplay{busy: true}
	e := New(d, 1)
	e.Begin(func(page int, buf *[128]byte) {})
	for i := 0; i < 5; i++ {
		e.Advance()
	}
	if !e.Busy() {
		t.Fatalf("engine should remain active while the bus stays busy")
	}
	if len(d.data) != 0 {
		t.Fatalf("no data burst should have succeeded while busy")
	}
	d.busy = false
	drainOnePage(e, d)
	if e.Busy() {
		t.Fatalf("engine should finish once the bus frees up")
	}
}
