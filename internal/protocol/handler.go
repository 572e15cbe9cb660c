package protocol

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/edgeflow/edgeinfer/internal/engine"
	"github.com/edgeflow/edgeinfer/internal/logger"
	"github.com/edgeflow/edgeinfer/internal/metrics"
	"github.com/edgeflow/edgeinfer/internal/model"
)

// Timeouts bound each read phase of a request. A marker timeout just means
// no client traffic yet and loops; count and payload timeouts abandon the
// in-flight request with no response, leaving recovery to the caller.
type Timeouts struct {
	Marker  time.Duration
	Count   time.Duration
	Payload time.Duration
}

// DefaultTimeouts returns the standard per-phase bounds: generous enough for
// a 115200-baud link, tight enough that an abandoned request frees the
// handler quickly.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Marker:  1 * time.Second,
		Count:   2 * time.Second,
		Payload: 5 * time.Second,
	}
}

// Handler drives the request loop over one link. A single Handler owns the
// connection, the model's scratch buffers and the engine; requests are
// processed strictly one at a time.
type Handler struct {
	conn     Conn
	model    *model.Model
	engine   *engine.Engine
	timeouts Timeouts

	win Window

	// Reused per-request byte buffers, sized from the model at construction.
	payloadBuf []byte
	predBuf    []byte
}

// NewHandler builds a handler serving m over conn.
func NewHandler(conn Conn, m *model.Model, e *engine.Engine, t Timeouts) *Handler {
	return &Handler{
		conn:       conn,
		model:      m,
		engine:     e,
		timeouts:   t,
		payloadBuf: make([]byte, m.Header.InputLen()*4),
		predBuf:    make([]byte, 0, 8+int(m.Header.H)*4),
	}
}

// Serve scans the stream for command markers until ctx is cancelled or the
// link fails hard. Read timeouts while scanning are not errors, they are
// "no data yet".
func (h *Handler) Serve(ctx context.Context) error {
	logger.Log.Info("protocol handler serving",
		"T", h.model.Header.T, "F", h.model.Header.F,
		"H", h.model.Header.H, "hidden", h.model.Header.Hidden)

	var one [1]byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := readExact(h.conn, one[:], h.timeouts.Marker); err != nil {
			if isTimeout(err) {
				continue
			}
			return err
		}
		h.win.Shift(one[0])

		switch {
		case h.win.Is(MarkerMeta):
			metrics.RecordRequest("meta")
			if err := h.handleMeta(); err != nil {
				return err
			}
		case h.win.Is(MarkerInfr):
			metrics.RecordRequest("infr")
			if err := h.handleInfer(); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) handleMeta() error {
	out := encodeInfo(h.model.Header)
	return writeAll(h.conn, out[:])
}

// handleInfer runs one INFR exchange. Returned errors are hard link
// failures; timeouts and size rejects are handled locally.
func (h *Handler) handleInfer() error {
	var raw [4]byte
	if err := readExact(h.conn, raw[:], h.timeouts.Count); err != nil {
		if isTimeout(err) {
			logger.Log.Warn("inference request abandoned: count timeout")
			metrics.RecordTimeout("count")
			return nil
		}
		return err
	}
	n := binary.LittleEndian.Uint32(raw[:])

	expect := uint32(h.model.Header.InputLen())
	if n != expect {
		// Explicit reject: a well-formed request with the wrong payload size
		// gets a zero-count PRED. The intended payload is not drained; the
		// sliding window resynchronizes on whatever follows.
		logger.Log.Warn("inference request rejected: size mismatch",
			"got", n, "expect", expect)
		metrics.RecordSizeReject()
		return writeAll(h.conn, encodePred(h.predBuf, nil))
	}

	if err := readExact(h.conn, h.payloadBuf, h.timeouts.Payload); err != nil {
		if isTimeout(err) {
			logger.Log.Warn("inference request abandoned: payload timeout",
				"bytes", len(h.payloadBuf))
			metrics.RecordTimeout("payload")
			return nil
		}
		return err
	}
	decodePayload(h.payloadBuf, h.model.XScratch)

	start := time.Now()
	h.engine.Infer(h.model.XScratch, h.model.YScratch)
	metrics.RecordInference(time.Since(start))

	return writeAll(h.conn, encodePred(h.predBuf, h.model.YScratch))
}
