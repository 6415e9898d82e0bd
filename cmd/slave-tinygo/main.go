// Command slave-tinygo is the real firmware entrypoint: it wires the
// MCU's UART/I2C/GPIO peripherals and millisecond counter into the shared state.Machine
// and runs the fixed-order main loop, grounded on the teacher's
// main_tinygo.go baremetal entrypoint.
//
//go:build tinygo && baremetal

package main

import (
	"time"

	"dslave/hal"
	"dslave/slave/state"

	"github.com/rs/zerolog"
)

const panelHeight = 64

func main() {
	mcu := hal.NewMCU()
	m := state.New(mcu.Display(), mcu.Transport(), mcu.Buttons(), mcu.Clock(), nil, panelHeight, zerolog.Nop())

	for {
		mcu.TickClock()
		mcu.PumpUART(m.Framer().PushByte)
		m.Tick()
		time.Sleep(time.Millisecond)
	}
}
