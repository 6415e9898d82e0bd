package render

// FrameIntervalMillis is the animation-frame cadence, distinct from
// the 1ms main-loop tick: screen slides, list scrolls, and the edit
// blink all advance once per animation frame.
const FrameIntervalMillis = 16

// ScreenAnimPixelsPerFrame is how far a screen slide advances per
// animation frame; 128/8 = 16 frames to cross one screen width.
const ScreenAnimPixelsPerFrame = 8

// ListScrollPixelsPerFrame is how far a list-row scroll advances per
// animation frame.
const ListScrollPixelsPerFrame = 1

// EditBlinkPeriodFrames is the full bright+dim cycle length, in
// animation frames, of an in-progress barrel edit.
const EditBlinkPeriodFrames = 30

// SlideAnim is the screen-to-screen horizontal slide animation state.
type SlideAnim struct {
	Active    bool
	From, To  int
	Dir       int8
	OffsetPix int
}

// Animator owns the screen-slide and edit-blink animation state and
// the 16ms frame clock that drives them. List-scroll animation state
// lives per-node in the nodes store and is advanced here too, since
// it shares the same frame clock.
type Animator struct {
	lastFrameMillis uint32
	haveLast        bool

	Slide SlideAnim

	blinkBright  bool
	blinkCounter int
	anyEditing   bool
}

// BlinkBright reports the current edit-blink phase.
func (a *Animator) BlinkBright() bool { return a.blinkBright }

// Reset clears all animation state, e.g. on a HEAD-flagged arena wipe.
func (a *Animator) Reset() {
	a.Slide = SlideAnim{}
	a.blinkBright = true
	a.blinkCounter = 0
	a.anyEditing = false
}

// StartSlide begins a screen-slide animation. dir is +1 (right) or
// -1 (left).
func (a *Animator) StartSlide(from, to int, dir int8) {
	a.Slide = SlideAnim{Active: true, From: from, To: to, Dir: dir}
}

// SetAnyBarrelEditing tells the animator whether any barrel is
// currently in edit mode, which gates the blink: when none is
// editing the blink resets to "bright".
func (a *Animator) SetAnyBarrelEditing(editing bool) {
	if !editing {
		a.blinkBright = true
		a.blinkCounter = 0
	}
	a.anyEditing = editing
}

// Advance steps every active animation by at most one frame if at
// least FrameIntervalMillis have elapsed since the last step. It
// returns true if a screen slide just completed this call (callers
// use this to snap the scroll base and refresh focus).
func (a *Animator) Advance(nowMillis uint32, listAdvance func()) (slideCompleted bool) {
	if !a.haveLast {
		a.lastFrameMillis = nowMillis
		a.haveLast = true
		return false
	}
	if nowMillis-a.lastFrameMillis < FrameIntervalMillis {
		return false
	}
	a.lastFrameMillis += FrameIntervalMillis

	if a.Slide.Active {
		a.Slide.OffsetPix += ScreenAnimPixelsPerFrame
		if a.Slide.OffsetPix >= 128 {
			a.Slide.OffsetPix = 128
			a.Slide.Active = false
			slideCompleted = true
		}
	}

	if listAdvance != nil {
		listAdvance()
	}

	if a.anyEditing {
		a.blinkCounter++
		if a.blinkCounter >= EditBlinkPeriodFrames {
			a.blinkCounter = 0
		}
		a.blinkBright = a.blinkCounter < EditBlinkPeriodFrames/2
	}

	return slideCompleted
}
