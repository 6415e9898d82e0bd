// Package transfer implements the cooperative page-streaming state
// machine described in spec.md §4.I: one page at a time, chunked
// through a DMA-limited display bus, with a single coalesced
// rerender slot so a flurry of model changes during an in-flight
// frame never queues more than one extra repaint.
package transfer

import (
	"dslave/hal"
)

// Stage is one state of the per-frame page pipeline.
type Stage uint8

const (
	StageIdle Stage = iota
	StageAddr
	StageBuild
	StageStreamStart
	StageStreaming
)

// RenderFunc fills buf with the tile contents of the given page.
type RenderFunc func(page int, buf *[128]byte)

// Engine drives one display's page-streaming pipeline. It owns no UI
// state of its own; RenderFunc closures supplied by the caller (the
// state package) do the actual drawing.
type Engine struct {
	disp  hal.DisplayBus
	pages int

	stage  Stage
	page   int
	buf    [128]byte
	chunkOff int

	active   bool
	render   RenderFunc
	rerender bool
	pendingRender RenderFunc
}

// New creates an Engine targeting a display with the given page
// count (height/8).
func New(disp hal.DisplayBus, pages int) *Engine {
	return &Engine{disp: disp, pages: pages}
}

// Busy reports whether a frame is currently in progress.
func (e *Engine) Busy() bool { return e.active }

// DMAXferActive reports whether a DMA chunk transfer is currently in
// flight (vs. idle between pages, or waiting on the render
// callback).
func (e *Engine) DMAXferActive() bool {
	return e.stage == StageStreamStart || e.stage == StageStreaming
}

// Begin starts a fresh frame at page 0. It returns false, changing
// nothing, if a frame is already active.
func (e *Engine) Begin(render RenderFunc) bool {
	if e.active {
		return false
	}
	e.active = true
	e.render = render
	e.rerender = false
	e.page = 0
	e.stage = StageAddr
	return true
}

// RequestRerender marks a pending rerender if a frame is active,
// updating the render callback the restart will use so the state
// observed is always the most recent. It is a no-op if no frame is
// active (the caller should use Begin directly in that case).
func (e *Engine) RequestRerender(render RenderFunc) {
	if !e.active {
		return
	}
	e.rerender = true
	e.pendingRender = render
}

// StartOrRequest begins a frame if idle, or requests a coalesced
// rerender if one is already in flight.
func (e *Engine) StartOrRequest(render RenderFunc) {
	if !e.active {
		e.Begin(render)
		return
	}
	e.RequestRerender(render)
}

// Advance drives the state machine by one step; call it once per
// main-loop tick. It returns quickly whenever the low-level DMA chunk
// is still in flight.
func (e *Engine) Advance() {
	switch e.stage {
	case StageIdle:
		return

	case StageAddr:
		cmd := [6]byte{0x21, 0x00, 0x7F, 0x22, byte(e.page), byte(e.page)}
		_ = e.disp.WriteCmdBurst(cmd[:])
		e.stage = StageBuild

	case StageBuild:
		for i := range e.buf {
			e.buf[i] = 0
		}
		if e.render != nil {
			e.render(e.page, &e.buf)
		}
		e.chunkOff = 0
		e.stage = StageStreamStart

	case StageStreamStart, StageStreaming:
		e.pumpChunk()
	}
}

func (e *Engine) pumpChunk() {
	if e.disp.TxBusy() {
		return
	}
	if e.chunkOff >= len(e.buf) {
		e.finishPage()
		return
	}
	end := e.chunkOff + hal.I2CBufferLimit
	if end > len(e.buf) {
		end = len(e.buf)
	}
	if !e.disp.WriteDataBurst(e.buf[e.chunkOff:end]) {
		return // bus still busy with the previous burst; retry next tick
	}
	e.chunkOff = end
	e.stage = StageStreaming
}

func (e *Engine) finishPage() {
	e.page++
	if e.page < e.pages {
		e.stage = StageAddr
		return
	}
	e.active = false
	e.stage = StageIdle
	if e.rerender {
		e.rerender = false
		render := e.pendingRender
		e.pendingRender = nil
		e.Begin(render)
	}
}
