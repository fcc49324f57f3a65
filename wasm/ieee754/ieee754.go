// Package ieee754 loads the little-endian IEEE 754 floating point values
// embedded in the WebAssembly binary format.
package ieee754

import (
	"encoding/binary"
	"io"
	"math"
)

// LoadFloat32 loads a 32-bit float from the front of buf.
func LoadFloat32(buf []byte) (float32, error) {
	if len(buf) < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	raw := binary.LittleEndian.Uint32(buf)
	return math.Float32frombits(raw), nil
}

// LoadFloat64 loads a 64-bit float from the front of buf.
func LoadFloat64(buf []byte) (float64, error) {
	if len(buf) < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	raw := binary.LittleEndian.Uint64(buf)
	return math.Float64frombits(raw), nil
}

// EncodeFloat32 encodes the value in little-endian byte order.
func EncodeFloat32(v float32) []byte {
	raw := math.Float32bits(v)
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, raw)
	return buf
}

// EncodeFloat64 encodes the value in little-endian byte order.
func EncodeFloat64(v float64) []byte {
	raw := math.Float64bits(v)
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, raw)
	return buf
}
