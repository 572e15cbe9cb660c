// Command genmodel writes a synthetic model file for development and
// benchmarking: a valid header followed by either constant or seeded-random
// weights in the canonical sub-buffer order.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/edgeflow/edgeinfer/internal/model"
)

var (
	outPath = flag.String("out", "model_fp32.bin", "Output file")
	seqLen  = flag.Uint("t", 16, "Sequence length T")
	feat    = flag.Uint("f", 6, "Feature width F")
	outDim  = flag.Uint("h", 3, "Output width H")
	hidden  = flag.Uint("hidden", 32, "LSTM hidden width")
	fill    = flag.Float64("fill", math.NaN(), "Fill all weights with this constant instead of random values")
	seed    = flag.Int64("seed", 1, "Random seed")
)

func main() {
	flag.Parse()

	hdr := model.Header{
		T:      uint16(*seqLen),
		F:      uint16(*feat),
		H:      uint16(*outDim),
		Hidden: uint16(*hidden),
	}
	if err := hdr.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	w := bufio.NewWriter(f)

	raw := make([]byte, model.HeaderSize)
	copy(raw[0:4], model.Magic)
	binary.LittleEndian.PutUint16(raw[4:6], hdr.T)
	binary.LittleEndian.PutUint16(raw[6:8], hdr.F)
	binary.LittleEndian.PutUint16(raw[8:10], hdr.H)
	binary.LittleEndian.PutUint16(raw[10:12], hdr.Hidden)
	if _, err := w.Write(raw); err != nil {
		fail(f, err)
	}

	rng := rand.New(rand.NewSource(*seed))
	total := hdr.TotalFloats()
	var scratch [4]byte
	for i := 0; i < total; i++ {
		v := float32(rng.NormFloat64() * 0.1)
		if !math.IsNaN(*fill) {
			v = float32(*fill)
		}
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(v))
		if _, err := w.Write(scratch[:]); err != nil {
			fail(f, err)
		}
	}

	if err := w.Flush(); err != nil {
		fail(f, err)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s: T=%d F=%d H=%d hidden=%d (%d floats, %d bytes)\n",
		*outPath, hdr.T, hdr.F, hdr.H, hdr.Hidden, total,
		model.HeaderSize+total*4)
}

func fail(f *os.File, err error) {
	_ = f.Close()
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
