// Package model loads the on-flash LSTM model file into memory and exposes
// typed views over its single contiguous weight buffer.
//
// File layout (little-endian): 16-byte header, then TotalFloats() float32
// values in the fixed order W_ih, W_hh, b, W_fc, b_fc with no gaps. The four
// gate blocks inside W_ih/W_hh/b are ordered input, forget, cell-candidate,
// output, each Hidden rows wide.
package model

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Magic is the 4-byte tag at the start of every model file.
const Magic = "LST0"

// HeaderSize is the fixed on-disk header length in bytes.
const HeaderSize = 16

// DefaultMemoryBudget caps the total float allocation, weights plus scratch.
// A load that would exceed the budget fails outright instead of degrading.
const DefaultMemoryBudget = 64 << 20

// Header is the decoded model file header.
type Header struct {
	T        uint16 // sequence length (time steps)
	F        uint16 // feature width per time step
	H        uint16 // output width
	Hidden   uint16 // LSTM hidden width
	Reserved uint32
}

// Gates returns the gate row count 4*Hidden.
func (h Header) Gates() int { return 4 * int(h.Hidden) }

// InputLen returns the element count of one request payload, T*F.
func (h Header) InputLen() int { return int(h.T) * int(h.F) }

// TotalFloats returns the exact number of float32 values that must follow
// the header: W_ih + W_hh + b + W_fc + b_fc.
func (h Header) TotalFloats() int {
	g := h.Gates()
	return g*int(h.F) + g*int(h.Hidden) + g + int(h.H)*int(h.Hidden) + int(h.H)
}

// Validate rejects headers with any zero dimension.
func (h Header) Validate() error {
	if h.T == 0 || h.F == 0 || h.H == 0 || h.Hidden == 0 {
		return fmt.Errorf("%w: zero dimension in header (T=%d F=%d H=%d hidden=%d)",
			ErrFormat, h.T, h.F, h.H, h.Hidden)
	}
	return nil
}

func decodeHeader(raw []byte) (Header, error) {
	if string(raw[0:4]) != Magic {
		var m [4]byte
		copy(m[:], raw[0:4])
		return Header{}, BadMagicError{Magic: m}
	}
	hdr := Header{
		T:        binary.LittleEndian.Uint16(raw[4:6]),
		F:        binary.LittleEndian.Uint16(raw[6:8]),
		H:        binary.LittleEndian.Uint16(raw[8:10]),
		Hidden:   binary.LittleEndian.Uint16(raw[10:12]),
		Reserved: binary.LittleEndian.Uint32(raw[12:16]),
	}
	if err := hdr.Validate(); err != nil {
		return Header{}, err
	}
	return hdr, nil
}

// Matrix is a bounds-checked row-major view into the weight buffer.
type Matrix struct {
	data []float32
	rows int
	cols int
}

// Row returns row i as a slice of Cols() elements.
func (m Matrix) Row(i int) []float32 { return m.data[i*m.cols : (i+1)*m.cols] }

func (m Matrix) Rows() int { return m.rows }
func (m Matrix) Cols() int { return m.cols }

// Model is the loaded model: header, weight views and request scratch.
// It is built once at startup and never mutated afterwards; the weight views
// are safe for concurrent reads, the scratch buffers are not.
type Model struct {
	Header Header

	buf []float32 // backing allocation, sliced below

	WIH Matrix    // input-to-gates, (4h, F)
	WHH Matrix    // hidden-to-gates, (4h, h)
	B   []float32 // gate biases, 4h
	WFC Matrix    // output projection, (H, h)
	BFC []float32 // output projection bias, H

	// Scratch buffers sized once at load time and reused for every request.
	XScratch []float32 // T*F, one request's feature matrix
	YScratch []float32 // H, one response's output vector
}

// splitter hands out consecutive sub-views of a backing buffer, verifying
// every take against the remaining length.
type splitter struct {
	buf []float32
	off int
}

func (s *splitter) take(n int) ([]float32, error) {
	if s.off+n > len(s.buf) {
		return nil, fmt.Errorf("%w: sub-view [%d:%d] exceeds buffer of %d floats",
			ErrFormat, s.off, s.off+n, len(s.buf))
	}
	v := s.buf[s.off : s.off+n : s.off+n]
	s.off += n
	return v, nil
}

func (s *splitter) takeMatrix(rows, cols int) (Matrix, error) {
	v, err := s.take(rows * cols)
	if err != nil {
		return Matrix{}, err
	}
	return Matrix{data: v, rows: rows, cols: cols}, nil
}

// Load reads, validates and slices the model file at path. budget caps the
// total float allocation in bytes; pass 0 for DefaultMemoryBudget. A model
// is loaded once per process and lives until the process exits.
func Load(path string, budget int64) (*Model, error) {
	if budget <= 0 {
		budget = DefaultMemoryBudget
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	raw := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, fmt.Errorf("%w: short header read: %v", ErrFormat, err)
	}
	hdr, err := decodeHeader(raw)
	if err != nil {
		return nil, err
	}

	total := hdr.TotalFloats()

	// File length must equal header + weights exactly. A truncated or padded
	// file is a format error, never a silent truncate or overread.
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat model: %w", err)
	}
	if want := int64(HeaderSize) + int64(total)*4; info.Size() != want {
		return nil, SizeError{Got: info.Size(), Want: want}
	}

	allocBytes := int64(total+hdr.InputLen()+int(hdr.H)) * 4
	if allocBytes > budget {
		return nil, fmt.Errorf("%w: model needs %d bytes, budget is %d",
			ErrOutOfMemory, allocBytes, budget)
	}

	buf := make([]float32, total)
	if err := readFloats(f, buf); err != nil {
		return nil, fmt.Errorf("%w: short weight read: %v", ErrFormat, err)
	}

	return FromBuffer(hdr, buf)
}

// FromBuffer slices an already-read weight buffer into a Model. weights must
// hold exactly hdr.TotalFloats() values in file order; the buffer is owned by
// the returned Model from then on.
func FromBuffer(hdr Header, weights []float32) (*Model, error) {
	if err := hdr.Validate(); err != nil {
		return nil, err
	}
	if len(weights) != hdr.TotalFloats() {
		return nil, fmt.Errorf("%w: buffer has %d floats, header implies %d",
			ErrFormat, len(weights), hdr.TotalFloats())
	}

	m := &Model{Header: hdr, buf: weights}
	g := hdr.Gates()
	s := splitter{buf: weights}
	var err error
	if m.WIH, err = s.takeMatrix(g, int(hdr.F)); err != nil {
		return nil, err
	}
	if m.WHH, err = s.takeMatrix(g, int(hdr.Hidden)); err != nil {
		return nil, err
	}
	if m.B, err = s.take(g); err != nil {
		return nil, err
	}
	if m.WFC, err = s.takeMatrix(int(hdr.H), int(hdr.Hidden)); err != nil {
		return nil, err
	}
	if m.BFC, err = s.take(int(hdr.H)); err != nil {
		return nil, err
	}

	m.XScratch = make([]float32, hdr.InputLen())
	m.YScratch = make([]float32, hdr.H)

	return m, nil
}

// readFloats bulk-reads len(dst) little-endian float32 values from r.
func readFloats(r io.Reader, dst []float32) error {
	raw := make([]byte, len(dst)*4)
	if _, err := io.ReadFull(r, raw); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return nil
}
