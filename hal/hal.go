// Package hal defines the only contact points between the core
// firmware and real or simulated hardware, grounded on the teacher
// repo's hal package: small, logic-free interfaces, never a place to
// hide behavior.
package hal

// DisplayBus is the contract the transfer engine needs from the
// physical display controller. The controller's actual command/data
// byte protocol (I²C, SPI, whatever) is out of scope; only this
// shape matters.
type DisplayBus interface {
	// WriteCmdBurst sends a short command burst and returns once it
	// has been accepted by the bus (commands are small and cheap
	// enough to treat as synchronous).
	WriteCmdBurst(b []byte) error
	// WriteDataBurst starts a non-blocking transfer of up to
	// I2CBufferLimit payload bytes. It returns false if the bus is
	// still busy with a previous transfer (the caller must retry).
	WriteDataBurst(b []byte) bool
	// TxBusy reports whether a WriteDataBurst transfer is still in
	// flight.
	TxBusy() bool
}

// Transport is the contract the framing/dispatch layer needs from
// the byte-oriented serial link to the host. RX bytes are delivered
// out of band, one at a time, to the proto package's Framer; this
// interface only covers the TX direction, which is main-loop-driven
// DMA.
type Transport interface {
	// TxBurst starts a non-blocking transmit of b. Returns false if
	// the previous transmit has not completed.
	TxBurst(b []byte) bool
	// TxBusy reports whether a TxBurst transfer is still in flight.
	TxBusy() bool
}

// Buttons reports the six logical button levels for this tick:
// Up, Down, OK, Back, Left, Right.
type Buttons interface {
	Poll() [6]bool
}

// Clock provides the millisecond time base the main loop increments.
type Clock interface {
	Millis() uint32
}

// Standby is the request/wake signaling contract for the low-power
// path; the path's actual implementation (clock gating, GPIO
// routing) is out of scope.
type Standby interface {
	// Enter drains TX, disables the panel, and blocks until a wake
	// line edge is observed.
	Enter()
	// Requested reports whether a standby request (host command or
	// local event) is pending.
	Requested() bool
}

// I2CBufferLimit is the largest payload the low-level transfer
// engine will hand to a single DMA burst; one control-prefix byte is
// sent ahead of it (0x00 for commands, 0x40 for data).
const I2CBufferLimit = 28
