//go:build !tinygo

package hal

import (
	"os"

	"github.com/rs/zerolog/log"
)

// SerialTransport is a virtual Transport over a pair of os.Files: one
// side the simulated firmware writes to and reads from, the other
// handed to (or dialed by) the host-tool process at the far end of
// the link. Grounded on hal/host_serial.go's pipe-backed transport
// shape from the teacher repo.
type SerialTransport struct {
	w *os.File
	r *os.File

	busy bool
	done chan struct{}
}

// NewSerialTransport wraps an already-open write/read pair, e.g. the
// two ends of an os.Pipe() or a PTY opened by the host cmd.
func NewSerialTransport(w, r *os.File) *SerialTransport {
	return &SerialTransport{w: w, r: r, done: make(chan struct{}, 1)}
}

func (t *SerialTransport) TxBurst(b []byte) bool {
	if t.busy {
		return false
	}
	t.busy = true
	go func() {
		if _, err := t.w.Write(b); err != nil {
			log.Warn().Err(err).Msg("serial tx failed")
		}
		t.done <- struct{}{}
	}()
	return true
}

func (t *SerialTransport) TxBusy() bool {
	select {
	case <-t.done:
		t.busy = false
	default:
	}
	return t.busy
}

// Run blocks, pushing every received byte to push; call it in its own
// goroutine. It returns when the read side is closed.
func (t *SerialTransport) Run(push func(byte)) {
	buf := make([]byte, 256)
	for {
		n, err := t.r.Read(buf)
		if n > 0 {
			for i := 0; i < n; i++ {
				push(buf[i])
			}
		}
		if err != nil {
			return
		}
	}
}

func (t *SerialTransport) Close() error {
	werr := t.w.Close()
	rerr := t.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
