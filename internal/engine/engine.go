// Package engine runs the LSTM forward pass over a loaded model.
package engine

import (
	"runtime"

	"github.com/edgeflow/edgeinfer/internal/model"
)

// Engine owns the per-call transient state (hidden vector, cell vector, gate
// pre-activations), sized once from the model dimensions. It is stateless
// across calls: every Infer starts from zero hidden and cell state.
//
// Not safe for concurrent use; the serving loop is a single worker.
type Engine struct {
	m       *model.Model
	hvec    []float32
	cvec    []float32
	gatePre []float32
}

// New builds an engine bound to m with pre-allocated scratch.
func New(m *model.Model) *Engine {
	h := int(m.Header.Hidden)
	return &Engine{
		m:       m,
		hvec:    make([]float32, h),
		cvec:    make([]float32, h),
		gatePre: make([]float32, m.Header.Gates()),
	}
}

// Infer runs the recurrence over x and writes the projected output into y.
// x must hold exactly T*F elements and y exactly H; the protocol layer
// enforces both before calling. The pass is deterministic and yields to the
// scheduler every few time steps so other goroutines are not starved during
// long sequences; it is never interrupted once started.
func (e *Engine) Infer(x []float32, y []float32) {
	hdr := e.m.Header
	T, F, h := int(hdr.T), int(hdr.F), int(hdr.Hidden)
	gates := hdr.Gates()

	for k := range e.hvec {
		e.hvec[k] = 0
		e.cvec[k] = 0
	}

	for t := 0; t < T; t++ {
		xt := x[t*F : (t+1)*F]

		for i := 0; i < gates; i++ {
			s := e.m.B[i]
			wih := e.m.WIH.Row(i)
			for j, xv := range xt {
				s += wih[j] * xv
			}
			whh := e.m.WHH.Row(i)
			for j, hv := range e.hvec {
				s += whh[j] * hv
			}
			e.gatePre[i] = s
		}

		// Gate block order is input, forget, cell-candidate, output.
		for k := 0; k < h; k++ {
			iGate := sigmoid(e.gatePre[k])
			fGate := sigmoid(e.gatePre[h+k])
			gGate := tanh(e.gatePre[2*h+k])
			oGate := sigmoid(e.gatePre[3*h+k])

			c := fGate*e.cvec[k] + iGate*gGate
			e.cvec[k] = c
			e.hvec[k] = oGate * tanh(c)
		}

		if t&3 == 0 {
			runtime.Gosched()
		}
	}

	for o := range y {
		s := e.m.BFC[o]
		w := e.m.WFC.Row(o)
		for j, hv := range e.hvec {
			s += w[j] * hv
		}
		y[o] = s
	}
}
