// Package client is the host side of the wire protocol: it sends META and
// INFR requests and scans the response stream for INFO and PRED frames.
//
// The device's stream can interleave boot noise with protocol frames, so the
// client never assumes alignment: it scans for response markers with the
// same sliding window the server uses.
package client

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/edgeflow/edgeinfer/internal/model"
	"github.com/edgeflow/edgeinfer/internal/protocol"
)

// ErrTimeout is returned when an expected response did not arrive in time.
var ErrTimeout = fmt.Errorf("client: response timeout")

// Client issues requests over one link. Not safe for concurrent use; the
// protocol is strictly request-then-response.
type Client struct {
	conn    protocol.Conn
	timeout time.Duration
}

// New wraps conn with a per-exchange timeout (0 means 10s).
func New(conn protocol.Conn, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{conn: conn, timeout: timeout}
}

// QueryInfo requests the loaded model's dimensions.
func (c *Client) QueryInfo() (model.Header, error) {
	if _, err := c.conn.Write(protocol.MarkerMeta[:]); err != nil {
		return model.Header{}, err
	}

	deadline := time.Now().Add(c.timeout)
	if err := c.scanFor(protocol.MarkerInfo, deadline); err != nil {
		return model.Header{}, err
	}

	var raw [8]byte
	if err := c.readExact(raw[:], deadline); err != nil {
		return model.Header{}, err
	}
	return model.Header{
		T:      binary.LittleEndian.Uint16(raw[0:2]),
		F:      binary.LittleEndian.Uint16(raw[2:4]),
		H:      binary.LittleEndian.Uint16(raw[4:6]),
		Hidden: binary.LittleEndian.Uint16(raw[6:8]),
	}, nil
}

// Infer submits one flattened feature matrix and returns the prediction
// vector. A nil result with nil error never occurs: a zero-count PRED (the
// device's size-mismatch reject) is reported as an error.
func (c *Client) Infer(x []float32) ([]float32, error) {
	req := make([]byte, 0, 8+len(x)*4)
	req = append(req, protocol.MarkerInfr[:]...)
	req = binary.LittleEndian.AppendUint32(req, uint32(len(x)))
	for _, v := range x {
		req = binary.LittleEndian.AppendUint32(req, math.Float32bits(v))
	}
	if _, err := c.conn.Write(req); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.timeout)
	if err := c.scanFor(protocol.MarkerPred, deadline); err != nil {
		return nil, err
	}

	var raw [4]byte
	if err := c.readExact(raw[:], deadline); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(raw[:])
	if n == 0 {
		return nil, fmt.Errorf("client: device rejected request: size mismatch (sent %d floats)", len(x))
	}

	payload := make([]byte, int(n)*4)
	if err := c.readExact(payload, deadline); err != nil {
		return nil, err
	}
	y := make([]float32, n)
	for i := range y {
		y[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return y, nil
}

// scanFor consumes the stream byte by byte until marker appears or the
// deadline passes.
func (c *Client) scanFor(marker protocol.Marker, deadline time.Time) error {
	var win protocol.Window
	var one [1]byte
	for {
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: waiting for %q", ErrTimeout, marker[:])
		}
		if err := c.readExact(one[:], deadline); err != nil {
			return err
		}
		win.Shift(one[0])
		if win.Is(marker) {
			return nil
		}
	}
}

func (c *Client) readExact(buf []byte, deadline time.Time) error {
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	_, err := io.ReadFull(c.conn, buf)
	return err
}
