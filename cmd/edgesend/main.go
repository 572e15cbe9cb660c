// Command edgesend submits one feature matrix to a running edgeinfer device
// and prints the prediction vector. The input file holds raw little-endian
// float32 values, T*F of them, row-major by time step.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"net"
	"os"
	"strings"
	"time"

	"github.com/edgeflow/edgeinfer/internal/client"
	"github.com/edgeflow/edgeinfer/internal/protocol"
	"github.com/edgeflow/edgeinfer/internal/serialio"
)

var (
	device    = flag.String("device", "/dev/ttyACM0", "Serial device, or tcp:host:port")
	baud      = flag.Int("baud", 115200, "Serial baud rate")
	inputPath = flag.String("input", "", "Raw float32 input file (T*F values)")
	infoOnly  = flag.Bool("info", false, "Only query and print model dimensions")
	timeout   = flag.Duration("timeout", 10*time.Second, "Per-exchange timeout")
)

func main() {
	flag.Parse()

	conn, err := openLink(*device, *baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	c := client.New(conn, *timeout)

	info, err := c.QueryInfo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: query info: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("device model: T=%d F=%d H=%d hidden=%d\n",
		info.T, info.F, info.H, info.Hidden)
	if *infoOnly {
		return
	}

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "error: -input is required (or pass -info)")
		flag.Usage()
		os.Exit(1)
	}
	x, err := readFloats(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(x) != info.InputLen() {
		fmt.Fprintf(os.Stderr, "error: input has %d floats, device expects %d (T*F)\n",
			len(x), info.InputLen())
		os.Exit(1)
	}

	start := time.Now()
	y, err := c.Infer(x)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: infer: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("prediction (%d values, %v):\n", len(y), time.Since(start).Round(time.Millisecond))
	for i, v := range y {
		fmt.Printf("  y[%d] = %g\n", i, v)
	}
}

func openLink(device string, baud int) (protocol.Conn, error) {
	if addr, ok := strings.CutPrefix(device, "tcp:"); ok {
		return net.Dial("tcp", addr)
	}
	return serialio.Open(device, baud)
}

func readFloats(path string) ([]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%s: length %d is not a multiple of 4", path, len(raw))
	}
	x := make([]float32, len(raw)/4)
	for i := range x {
		x[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return x, nil
}
