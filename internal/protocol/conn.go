package protocol

import (
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// Conn is the byte link the handler serves. net.Conn satisfies it directly;
// the serial transport adapts its port read timeout to the same shape.
type Conn interface {
	io.ReadWriter
	SetReadDeadline(t time.Time) error
}

// isTimeout reports whether a read failed only because its deadline passed.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// readExact fills buf completely within d, or reports what went wrong. A
// short read at the deadline comes back as the deadline error so callers can
// classify it with isTimeout.
func readExact(c Conn, buf []byte, d time.Duration) error {
	if err := c.SetReadDeadline(time.Now().Add(d)); err != nil {
		return err
	}
	_, err := io.ReadFull(c, buf)
	return err
}

// writeAll pushes buf out in full; io.Writer contract makes a single call
// sufficient, short writes surface as errors.
func writeAll(c Conn, buf []byte) error {
	_, err := c.Write(buf)
	return err
}
