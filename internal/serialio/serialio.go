// Package serialio adapts a serial port to the deadline-based Conn shape the
// protocol handler reads from.
package serialio

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Port wraps a serial device opened in 8N1 mode. Reads honor the deadline
// set with SetReadDeadline; an expired deadline surfaces as
// os.ErrDeadlineExceeded, matching net.Conn semantics.
type Port struct {
	p serial.Port

	mu       sync.Mutex
	deadline time.Time
}

// Open opens device at baud with 8 data bits, no parity, one stop bit.
func Open(device string, baud int) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return &Port{p: p}, nil
}

// SetReadDeadline arms the next reads with an absolute deadline. The zero
// time means reads block indefinitely.
func (p *Port) SetReadDeadline(t time.Time) error {
	p.mu.Lock()
	p.deadline = t
	p.mu.Unlock()
	if t.IsZero() {
		return p.p.SetReadTimeout(serial.NoTimeout)
	}
	d := time.Until(t)
	if d <= 0 {
		d = time.Nanosecond
	}
	return p.p.SetReadTimeout(d)
}

func (p *Port) Read(b []byte) (int, error) {
	// The underlying port reports an expired timeout as a zero-length read.
	n, err := p.p.Read(b)
	if n == 0 && err == nil {
		p.mu.Lock()
		expired := !p.deadline.IsZero() && !time.Now().Before(p.deadline)
		p.mu.Unlock()
		if expired {
			return 0, os.ErrDeadlineExceeded
		}
	}
	return n, err
}

func (p *Port) Write(b []byte) (int, error) {
	return p.p.Write(b)
}

func (p *Port) Close() error {
	return p.p.Close()
}
