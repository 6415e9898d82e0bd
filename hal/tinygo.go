//go:build tinygo && baremetal

package hal

import (
	"machine"

	"tinygo.org/x/drivers/ssd1306"
)

// MCU wires the real board: an SSD1306-class OLED over I²C for
// DisplayBus, and a UART for Transport. The actual SSD1306 wire
// protocol is out of scope (spec.md §1); only the burst/busy shape
// below is ours to own.
type MCU struct {
	disp *ssd1306Bus
	uart *uartTransport
	btns *pinButtons
	clk  *msClock
}

// NewMCU configures UART0 (115200 8N1 on GP0/GP1) for the host link
// and I2C0 for the panel, and returns ready-to-use HAL handles.
func NewMCU() *MCU {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: 115200, TX: machine.GP0, RX: machine.GP1})

	machine.I2C0.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz})
	dev := ssd1306.NewI2C(machine.I2C0)
	dev.Configure(ssd1306.Config{Width: 128, Height: 64, Address: ssd1306.Address})

	return &MCU{
		disp: &ssd1306Bus{dev: &dev},
		uart: newUARTTransport(uart),
		btns: newPinButtons(),
		clk:  newMSClock(),
	}
}

func (m *MCU) Display() DisplayBus { return m.disp }
func (m *MCU) Transport() *uartTransport { return m.uart }
func (m *MCU) Buttons() Buttons    { return m.btns }
func (m *MCU) Clock() Clock        { return m.clk }

// TickClock advances the millisecond clock by one; cmd/slave-tinygo's
// main loop calls this once per ~1ms iteration, since this board has
// no dedicated RTC peripheral to read instead.
func (m *MCU) TickClock() { m.clk.Tick() }

// PumpUART drains the UART TX queue and forwards any received bytes
// to push; call it once per main-loop iteration.
func (m *MCU) PumpUART(push func(byte)) {
	m.uart.PumpTx()
	m.uart.RXHandler(push)()
}

// ssd1306Bus adapts tinygo.org/x/drivers/ssd1306 to the DisplayBus
// contract. The driver's own Tx call is synchronous; WriteDataBurst
// performs it immediately and clears busy before returning, so
// TxBusy() already reports false on the next poll. The busy flag keeps
// the "non-blocking, tx_busy() pollable" shape real DMA-backed panels
// need.
type ssd1306Bus struct {
	dev *ssd1306.Device

	pending []byte
	busy    bool
}

func (b *ssd1306Bus) WriteCmdBurst(cmd []byte) error {
	for _, c := range cmd {
		if err := b.dev.Command(c); err != nil {
			return err
		}
	}
	return nil
}

func (b *ssd1306Bus) WriteDataBurst(data []byte) bool {
	if b.busy {
		return false
	}
	b.busy = true
	b.pending = append(b.pending[:0], data...)
	// The underlying driver transfer is fast enough on this bus that
	// we complete it eagerly and let TxBusy() reflect that on the
	// very next poll; a DMA-capable board would instead start a
	// burst here and let an interrupt clear busy.
	_ = b.dev.Tx(b.pending, false)
	b.busy = false
	return true
}

func (b *ssd1306Bus) TxBusy() bool { return b.busy }
