// Package leb128 decodes and encodes the variable-length integers used
// throughout the WebAssembly binary format.
//
// See https://webassembly.github.io/spec/core/binary/values.html#integers
package leb128

import (
	"errors"
	"fmt"
)

const (
	maxVarintLen32 = 5
	maxVarintLen33 = 5
	maxVarintLen64 = 10
)

var (
	// ErrOverflow32 is returned when a LEB128 encoding doesn't fit a 32-bit integer.
	ErrOverflow32 = errors.New("overflows a 32-bit integer")
	// ErrOverflow33 is returned when a LEB128 encoding doesn't fit a 33-bit integer.
	ErrOverflow33 = errors.New("overflows a 33-bit integer")
	// ErrOverflow64 is returned when a LEB128 encoding doesn't fit a 64-bit integer.
	ErrOverflow64 = errors.New("overflows a 64-bit integer")
	// ErrTruncated is returned when the input ends before the terminating byte.
	ErrTruncated = errors.New("truncated integer")
)

// LoadUint32 loads an unsigned 32-bit integer from the front of buf, returning
// the value and the number of bytes consumed.
func LoadUint32(buf []byte) (ret uint32, bytesRead uint64, err error) {
	const mask uint32 = 1 << 7

	for shift := 0; shift < 35; shift += 7 {
		if int(bytesRead) >= len(buf) {
			return 0, 0, ErrTruncated
		}
		b := uint32(buf[bytesRead])
		bytesRead++
		ret |= (b & ^mask) << shift
		if b&mask == 0 {
			// The final byte of a 5-byte encoding only carries bits 0..3.
			if shift == 28 && b&0xf0 != 0 {
				return 0, 0, ErrOverflow32
			}
			return ret, bytesRead, nil
		}
	}
	return 0, 0, ErrOverflow32
}

// LoadUint64 loads an unsigned 64-bit integer from the front of buf.
func LoadUint64(buf []byte) (ret uint64, bytesRead uint64, err error) {
	const mask uint64 = 1 << 7

	for shift := 0; shift < 70; shift += 7 {
		if int(bytesRead) >= len(buf) {
			return 0, 0, ErrTruncated
		}
		b := uint64(buf[bytesRead])
		bytesRead++
		ret |= (b & ^mask) << shift
		if b&mask == 0 {
			// The final byte of a 10-byte encoding only carries bit 0.
			if shift == 63 && b&0xfe != 0 {
				return 0, 0, ErrOverflow64
			}
			return ret, bytesRead, nil
		}
	}
	return 0, 0, ErrOverflow64
}

// LoadInt32 loads a signed 32-bit integer from the front of buf.
func LoadInt32(buf []byte) (ret int32, bytesRead uint64, err error) {
	const (
		mask     int32 = 1 << 7
		signMask int32 = 1 << 6
	)

	var shift int
	var b int32
	for {
		if shift >= 35 {
			return 0, 0, ErrOverflow32
		}
		if int(bytesRead) >= len(buf) {
			return 0, 0, ErrTruncated
		}
		b = int32(buf[bytesRead])
		bytesRead++
		ret |= (b & ^mask) << shift
		shift += 7
		if b&mask == 0 {
			break
		}
	}

	if bytesRead == maxVarintLen32 {
		// Bits 4..6 of the final byte must agree with the sign bit (bit 3).
		extra := byte(b) & 0x70
		if sign := byte(b) & 0x08; (sign != 0 && extra != 0x70) || (sign == 0 && extra != 0) {
			return 0, 0, ErrOverflow32
		}
	}
	if shift < 32 && b&signMask != 0 {
		ret |= int32(-1) << shift
	}
	return ret, bytesRead, nil
}

// LoadInt33 loads a signed 33-bit integer from the front of buf into an int64.
// Block types use this width: a negative value is a shorthand type encoding,
// a non-negative value is a type index. Its sign extension must not be confused
// with LoadInt32's.
func LoadInt33(buf []byte) (ret int64, bytesRead uint64, err error) {
	const (
		mask     int64 = 1 << 7
		signMask int64 = 1 << 6
		int33Max int64 = 1<<33 - 1
	)

	var shift int
	var b int64
	for {
		if shift >= 35 {
			return 0, 0, ErrOverflow33
		}
		if int(bytesRead) >= len(buf) {
			return 0, 0, ErrTruncated
		}
		b = int64(buf[bytesRead])
		bytesRead++
		ret |= (b & ^mask) << shift
		shift += 7
		if b&mask == 0 {
			break
		}
	}

	if bytesRead == maxVarintLen33 {
		// Bits 5..6 of the final byte must agree with the sign bit (bit 4).
		extra := byte(b) & 0x60
		if sign := byte(b) & 0x10; (sign != 0 && extra != 0x60) || (sign == 0 && extra != 0) {
			return 0, 0, ErrOverflow33
		}
	}
	if shift < 33 && b&signMask != 0 {
		ret |= int33Max << shift
	}
	ret &= int33Max
	if ret&(1<<32) != 0 {
		ret -= 1 << 33
	}
	return ret, bytesRead, nil
}

// LoadInt64 loads a signed 64-bit integer from the front of buf.
func LoadInt64(buf []byte) (ret int64, bytesRead uint64, err error) {
	const (
		mask     int64 = 1 << 7
		signMask int64 = 1 << 6
	)

	var shift int
	var b int64
	for {
		if shift >= 70 {
			return 0, 0, ErrOverflow64
		}
		if int(bytesRead) >= len(buf) {
			return 0, 0, ErrTruncated
		}
		b = int64(buf[bytesRead])
		bytesRead++
		ret |= (b & ^mask) << shift
		shift += 7
		if b&mask == 0 {
			break
		}
	}

	if bytesRead == maxVarintLen64 {
		// The final byte of a 10-byte encoding carries only bit 0; the bits
		// above it must all agree with the sign.
		if byte(b) != 0 && byte(b) != 0x7f {
			return 0, 0, ErrOverflow64
		}
	}
	if shift < 64 && b&signMask != 0 {
		ret |= -1 << shift
	}
	return ret, bytesRead, nil
}

// EncodeUint32 encodes the value in LEB128 format.
func EncodeUint32(value uint32) []byte {
	return EncodeUint64(uint64(value))
}

// EncodeUint64 encodes the value in LEB128 format.
func EncodeUint64(value uint64) (buf []byte) {
	for value >= 1<<7 {
		buf = append(buf, uint8(value&0x7f|0x80))
		value >>= 7
	}
	return append(buf, uint8(value))
}

// EncodeInt32 encodes the signed value in LEB128 format.
func EncodeInt32(value int32) []byte {
	return EncodeInt64(int64(value))
}

// EncodeInt33AsInt64 encodes the signed 33-bit value in LEB128 format.
// It panics if the value is out of the signed 33-bit range.
func EncodeInt33AsInt64(value int64) []byte {
	if value < -(1<<32) || value > 1<<32-1 {
		panic(fmt.Sprintf("%d is not a signed 33-bit integer", value))
	}
	return EncodeInt64(value)
}

// EncodeInt64 encodes the signed value in LEB128 format.
func EncodeInt64(value int64) (buf []byte) {
	for {
		b := uint8(value & 0x7f)
		value >>= 7
		if (value == 0 && b&0x40 == 0) || (value == -1 && b&0x40 != 0) {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}
