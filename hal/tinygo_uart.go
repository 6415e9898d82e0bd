//go:build tinygo && baremetal

package hal

import "machine"

// uartTransport implements Transport over a machine.UART. The RX
// side is polled: MCU.PumpUART runs RXHandler's callback once per
// main-loop iteration, which forwards every buffered byte to a
// PushByte callback set by the proto package. TX is a single
// software queue drained by repeated one-byte Write calls polled for
// completion the way a DMA burst would be, grounded on the transfer
// shape of jangala-dev-tinygo-uartx's ring-buffered UART driver.
type uartTransport struct {
	uart *machine.UART

	queued []byte
	busy   bool
}

func newUARTTransport(u *machine.UART) *uartTransport {
	return &uartTransport{uart: u}
}

// TxBurst starts transmitting b. It returns false if a previous
// burst has not finished draining.
func (t *uartTransport) TxBurst(b []byte) bool {
	if t.busy {
		return false
	}
	t.busy = true
	t.queued = append(t.queued[:0], b...)
	return true
}

// PumpTx drains as many queued bytes as the UART's hardware FIFO
// will currently accept; call it once per main-loop tick. It is the
// tinygo analogue of a DMA-completion poll since this board has no
// dedicated UART TX DMA channel.
func (t *uartTransport) PumpTx() {
	if !t.busy {
		return
	}
	for len(t.queued) > 0 {
		if t.uart.Buffered() > 0 {
			break
		}
		n, err := t.uart.Write(t.queued[:1])
		if err != nil || n == 0 {
			break
		}
		t.queued = t.queued[1:]
	}
	if len(t.queued) == 0 {
		t.busy = false
	}
}

func (t *uartTransport) TxBusy() bool { return t.busy }

// RXHandler returns a callback suitable for registering as the
// UART's receive-interrupt handler; it forwards every byte to push.
func (t *uartTransport) RXHandler(push func(byte)) func() {
	return func() {
		for t.uart.Buffered() > 0 {
			b, err := t.uart.ReadByte()
			if err != nil {
				break
			}
			push(b)
		}
	}
}

// pinButtons polls six GPIO pins for the logical buttons.
type pinButtons struct {
	pins [6]machine.Pin
}

func newPinButtons() *pinButtons {
	pins := [6]machine.Pin{machine.GP2, machine.GP3, machine.GP4, machine.GP5, machine.GP6, machine.GP7}
	for _, p := range pins {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	return &pinButtons{pins: pins}
}

func (b *pinButtons) Poll() [6]bool {
	var out [6]bool
	for i, p := range b.pins {
		out[i] = !p.Get() // active low
	}
	return out
}

// msClock is a free-running millisecond counter; Tick increments it.
type msClock struct {
	ms uint32
}

func newMSClock() *msClock { return &msClock{} }

func (c *msClock) Millis() uint32 { return c.ms }

// Tick is called once per main-loop iteration via MCU.TickClock.
func (c *msClock) Tick() { c.ms++ }
