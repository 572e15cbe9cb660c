package protocol

// Window is the 4-byte sliding window over the incoming stream. Shift moves
// every byte down one slot and appends the new byte, and Is re-evaluates the
// window against a marker. Because the window is re-checked after every
// shift, a marker is recognized as soon as its 4 bytes arrive contiguously,
// no matter how many garbage or partial-marker bytes preceded them. Is only
// matches once at least 4 bytes have been shifted in.
type Window struct {
	buf    [4]byte
	filled int
}

// Shift appends b, discarding the oldest byte.
func (w *Window) Shift(b byte) {
	w.buf[0], w.buf[1], w.buf[2] = w.buf[1], w.buf[2], w.buf[3]
	w.buf[3] = b
	if w.filled < 4 {
		w.filled++
	}
}

// Is reports whether the window currently holds m.
func (w *Window) Is(m Marker) bool {
	return w.filled == 4 && w.buf == m
}

// Reset empties the window.
func (w *Window) Reset() {
	w.buf = [4]byte{}
	w.filled = 0
}
