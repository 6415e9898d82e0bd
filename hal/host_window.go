//go:build !tinygo

package hal

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// scale is the on-screen pixel multiplier so a 128x64 panel is
// actually visible in a window.
const scale = 4

var (
	pixelOn  = color.RGBA{R: 0x20, G: 0xE0, B: 0xFF, A: 0xFF}
	pixelOff = color.RGBA{R: 0x06, G: 0x10, B: 0x14, A: 0xFF}
)

// Window is an ebiten Game that blits a MemDisplay's page buffer to
// screen each frame and turns keyboard arrows/enter/backspace
// into the six logical buttons, grounded on hal/host_window.go's
// ebiten Game shape from the teacher repo.
type Window struct {
	disp   *MemDisplay
	height int

	btns hostButtons
}

// NewWindow builds a Window bound to disp for a panel of the given
// height (32 or 64).
func NewWindow(disp *MemDisplay, height int) *Window {
	return &Window{disp: disp, height: height}
}

func (w *Window) Update() error {
	w.btns.up = ebiten.IsKeyPressed(ebiten.KeyArrowUp)
	w.btns.down = ebiten.IsKeyPressed(ebiten.KeyArrowDown)
	w.btns.left = ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
	w.btns.right = ebiten.IsKeyPressed(ebiten.KeyArrowRight)
	w.btns.ok = ebiten.IsKeyPressed(ebiten.KeyEnter)
	w.btns.back = ebiten.IsKeyPressed(ebiten.KeyBackspace)
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	pages := w.disp.Snapshot()
	for page, row := range pages {
		for x := 0; x < 128; x++ {
			col := row[x]
			for bit := 0; bit < 8; bit++ {
				y := page*8 + bit
				c := pixelOff
				if col&(1<<bit) != 0 {
					c = pixelOn
				}
				ebitenutil.DrawRect(screen, float64(x*scale), float64(y*scale), scale, scale, c)
			}
		}
	}
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 128 * scale, w.height * scale
}

// hostButtons holds the latest keyboard-derived button levels;
// Poll() is called from the main loop, Update() from ebiten's loop,
// so the two are intentionally decoupled by a plain struct copy
// rather than a mutex: ebiten guarantees Update/Draw never overlap
// with game-external calls on the same goroutine in run mode, and
// Poll here is only ever called from that same goroutine via the
// host cmd's loop.
type hostButtons struct {
	up, down, ok, back, left, right bool
}

func (w *Window) Buttons() Buttons { return hostButtonsView{w} }

type hostButtonsView struct{ w *Window }

func (v hostButtonsView) Poll() [6]bool {
	b := v.w.btns
	return [6]bool{b.up, b.down, b.ok, b.back, b.left, b.right}
}
