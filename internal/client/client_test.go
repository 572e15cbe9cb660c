package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edgeflow/edgeinfer/internal/engine"
	"github.com/edgeflow/edgeinfer/internal/model"
	"github.com/edgeflow/edgeinfer/internal/protocol"
)

// bufferedConn decouples client writes from the synchronous pipe the way a
// kernel serial buffer would: writes are queued and pushed by a single
// goroutine, reads pass through. Without it a request the server rejects
// without draining would deadlock against net.Pipe.
type bufferedConn struct {
	net.Conn
	ch chan []byte
}

func newBufferedConn(c net.Conn) *bufferedConn {
	b := &bufferedConn{Conn: c, ch: make(chan []byte, 16)}
	go func() {
		for buf := range b.ch {
			if _, err := b.Conn.Write(buf); err != nil {
				return
			}
		}
	}()
	return b
}

func (b *bufferedConn) Write(p []byte) (int, error) {
	b.ch <- append([]byte(nil), p...)
	return len(p), nil
}

// startServer runs a protocol handler over an in-memory pipe and returns a
// client attached to the other end.
func startServer(t *testing.T, hdr model.Header, weights []float32) *Client {
	t.Helper()
	if weights == nil {
		weights = make([]float32, hdr.TotalFloats())
	}
	m, err := model.FromBuffer(hdr, weights)
	require.NoError(t, err)

	serverEnd, clientEnd := net.Pipe()
	h := protocol.NewHandler(serverEnd, m, engine.New(m), protocol.Timeouts{
		Marker:  200 * time.Millisecond,
		Count:   200 * time.Millisecond,
		Payload: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = clientEnd.Close()
		_ = serverEnd.Close()
		<-done
	})

	return New(newBufferedConn(clientEnd), 2*time.Second)
}

func TestQueryInfo(t *testing.T) {
	c := startServer(t, model.Header{T: 16, F: 6, H: 3, Hidden: 32}, nil)

	info, err := c.QueryInfo()
	require.NoError(t, err)
	require.Equal(t, uint16(16), info.T)
	require.Equal(t, uint16(6), info.F)
	require.Equal(t, uint16(3), info.H)
	require.Equal(t, uint16(32), info.Hidden)
}

func TestInferRoundTrip(t *testing.T) {
	hdr := model.Header{T: 2, F: 1, H: 1, Hidden: 1}
	weights := make([]float32, hdr.TotalFloats())
	weights[hdr.TotalFloats()-1] = 1.5
	c := startServer(t, hdr, weights)

	y, err := c.Infer([]float32{0, 0})
	require.NoError(t, err)
	require.Len(t, y, 1)
	require.Equal(t, float32(1.5), y[0])
}

func TestInferWrongSizeReported(t *testing.T) {
	hdr := model.Header{T: 4, F: 2, H: 1, Hidden: 2}
	c := startServer(t, hdr, nil)

	_, err := c.Infer(make([]float32, hdr.InputLen()+1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "size mismatch")
}

func TestInferThenQueryInfo(t *testing.T) {
	hdr := model.Header{T: 3, F: 2, H: 2, Hidden: 4}
	c := startServer(t, hdr, nil)

	_, err := c.Infer(make([]float32, hdr.InputLen()))
	require.NoError(t, err)

	info, err := c.QueryInfo()
	require.NoError(t, err)
	require.Equal(t, hdr.T, info.T)
	require.Equal(t, hdr.Hidden, info.Hidden)
}
