// Package protocol implements the framed request/response protocol served
// over the serial byte stream, including byte-level resynchronization.
//
// The link carries no frame delimiters. Commands are recognized by scanning
// for fixed 4-byte markers with a sliding window that is re-evaluated on
// every incoming byte, so a marker is matched as soon as its bytes are
// contiguous regardless of prior misalignment. All multi-byte fields are
// little-endian.
package protocol

import (
	"encoding/binary"
	"math"

	"github.com/edgeflow/edgeinfer/internal/model"
)

// Command and response markers.
var (
	MarkerMeta = Marker{'M', 'E', 'T', 'A'} // request: report model dimensions
	MarkerInfr = Marker{'I', 'N', 'F', 'R'} // request: run inference
	MarkerInfo = Marker{'I', 'N', 'F', 'O'} // response to META
	MarkerPred = Marker{'P', 'R', 'E', 'D'} // response to INFR
)

// Marker is a fixed 4-byte frame tag.
type Marker [4]byte

// InfoFrameSize is the full META response length: marker plus four uint16
// dimensions.
const InfoFrameSize = 12

// encodeInfo builds the INFO response for the loaded model's header.
func encodeInfo(hdr model.Header) [InfoFrameSize]byte {
	var out [InfoFrameSize]byte
	copy(out[0:4], MarkerInfo[:])
	binary.LittleEndian.PutUint16(out[4:6], hdr.T)
	binary.LittleEndian.PutUint16(out[6:8], hdr.F)
	binary.LittleEndian.PutUint16(out[8:10], hdr.H)
	binary.LittleEndian.PutUint16(out[10:12], hdr.Hidden)
	return out
}

// encodePred builds the full PRED response: marker, element count, then the
// float32 payload. A zero count carries no payload and signals a rejected
// size-mismatched request.
func encodePred(dst []byte, y []float32) []byte {
	dst = dst[:0]
	dst = append(dst, MarkerPred[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(y)))
	for _, v := range y {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// decodePayload unpacks count little-endian float32 values into dst.
func decodePayload(raw []byte, dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
}
