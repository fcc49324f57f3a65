// Package binary decodes the WebAssembly binary format into the entities of
// the wasm package. Decoding is zero-copy and lazy: sections are exposed as
// restartable iterators that parse entries on demand, and every decoded
// value carries the byte range it came from.
package binary

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/wasmlab/wasmbin/wasm"
	"github.com/wasmlab/wasmbin/wasm/ieee754"
	"github.com/wasmlab/wasmbin/wasm/leb128"
)

// errRead terminates the surrounding lazy sequence. The located diagnostic
// has already been reported through the sink by the primitive that failed;
// callers must not report it again.
var errRead = errors.New("read error")

// Reader is a cursor over a byte span. Each primitive consumes bytes from
// the front and returns the value with a located sub-span, or reports a read
// error through the sink and returns an error. The reader is stateless
// between calls apart from the cursor; after an error the cursor is
// unspecified.
type Reader struct {
	buf      []byte
	offset   uint32 // absolute offset of buf[0] within the module
	features wasm.Features
	errs     wasm.Errors
}

// NewReader wraps a span whose first byte sits at the given absolute offset.
func NewReader(buf []byte, offset uint32, features wasm.Features, errs wasm.Errors) *Reader {
	return &Reader{buf: buf, offset: offset, features: features, errs: errs}
}

// Len returns the number of unconsumed bytes.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Pos returns the absolute offset of the next byte.
func (r *Reader) Pos() uint32 {
	return r.offset
}

// Features returns the feature set decoding runs under.
func (r *Reader) Features() wasm.Features {
	return r.features
}

// Errors returns the sink read errors are reported to.
func (r *Reader) Errors() wasm.Errors {
	return r.errs
}

func (r *Reader) locFrom(start uint32) wasm.Location {
	return wasm.Location{Start: start, End: r.offset}
}

func (r *Reader) fail(loc wasm.Location, format string, args ...any) error {
	r.errs.OnError(loc, fmt.Sprintf(format, args...))
	return errRead
}

func (r *Reader) advance(n int) {
	r.buf = r.buf[n:]
	r.offset += uint32(n)
}

// here is the degenerate location of the cursor, used for end-of-input
// diagnostics.
func (r *Reader) here() wasm.Location {
	return wasm.Location{Start: r.offset, End: r.offset}
}

// ReadByte reads one byte. desc names the parser site for diagnostics.
func (r *Reader) ReadByte(desc string) (wasm.At[byte], error) {
	if len(r.buf) == 0 {
		return wasm.At[byte]{}, r.fail(r.here(), "unable to read %s: %v", desc, wasm.ErrUnexpectedEnd)
	}
	start := r.offset
	b := r.buf[0]
	r.advance(1)
	return wasm.MakeAt(r.locFrom(start), b), nil
}

// ExpectByte reads one byte and fails with a bad-tag error unless it matches.
func (r *Reader) ExpectByte(want byte, desc string) (wasm.At[byte], error) {
	b, err := r.ReadByte(desc)
	if err != nil {
		return b, err
	}
	if b.Value != want {
		return b, r.fail(b.Loc, "%s: bad tag 0x%02x, expected 0x%02x", desc, b.Value, want)
	}
	return b, nil
}

// ReadUint32 reads a LEB128-encoded u32.
func (r *Reader) ReadUint32(desc string) (wasm.At[uint32], error) {
	start := r.offset
	v, n, err := leb128.LoadUint32(r.buf)
	if err != nil {
		r.advance(int(n))
		return wasm.At[uint32]{}, r.fail(r.locFrom(start), "unable to read %s: %v", desc, err)
	}
	r.advance(int(n))
	return wasm.MakeAt(r.locFrom(start), v), nil
}

// ReadUint64 reads a LEB128-encoded u64.
func (r *Reader) ReadUint64(desc string) (wasm.At[uint64], error) {
	start := r.offset
	v, n, err := leb128.LoadUint64(r.buf)
	if err != nil {
		r.advance(int(n))
		return wasm.At[uint64]{}, r.fail(r.locFrom(start), "unable to read %s: %v", desc, err)
	}
	r.advance(int(n))
	return wasm.MakeAt(r.locFrom(start), v), nil
}

// ReadInt32 reads a LEB128-encoded s32.
func (r *Reader) ReadInt32(desc string) (wasm.At[int32], error) {
	start := r.offset
	v, n, err := leb128.LoadInt32(r.buf)
	if err != nil {
		r.advance(int(n))
		return wasm.At[int32]{}, r.fail(r.locFrom(start), "unable to read %s: %v", desc, err)
	}
	r.advance(int(n))
	return wasm.MakeAt(r.locFrom(start), v), nil
}

// ReadInt33 reads the signed 33-bit LEB128 used by block types.
func (r *Reader) ReadInt33(desc string) (wasm.At[int64], error) {
	start := r.offset
	v, n, err := leb128.LoadInt33(r.buf)
	if err != nil {
		r.advance(int(n))
		return wasm.At[int64]{}, r.fail(r.locFrom(start), "unable to read %s: %v", desc, err)
	}
	r.advance(int(n))
	return wasm.MakeAt(r.locFrom(start), v), nil
}

// ReadInt64 reads a LEB128-encoded s64.
func (r *Reader) ReadInt64(desc string) (wasm.At[int64], error) {
	start := r.offset
	v, n, err := leb128.LoadInt64(r.buf)
	if err != nil {
		r.advance(int(n))
		return wasm.At[int64]{}, r.fail(r.locFrom(start), "unable to read %s: %v", desc, err)
	}
	r.advance(int(n))
	return wasm.MakeAt(r.locFrom(start), v), nil
}

// ReadFloat32 reads a little-endian f32.
func (r *Reader) ReadFloat32(desc string) (wasm.At[float32], error) {
	start := r.offset
	v, err := ieee754.LoadFloat32(r.buf)
	if err != nil {
		return wasm.At[float32]{}, r.fail(r.here(), "unable to read %s: %v", desc, err)
	}
	r.advance(4)
	return wasm.MakeAt(r.locFrom(start), v), nil
}

// ReadFloat64 reads a little-endian f64.
func (r *Reader) ReadFloat64(desc string) (wasm.At[float64], error) {
	start := r.offset
	v, err := ieee754.LoadFloat64(r.buf)
	if err != nil {
		return wasm.At[float64]{}, r.fail(r.here(), "unable to read %s: %v", desc, err)
	}
	r.advance(8)
	return wasm.MakeAt(r.locFrom(start), v), nil
}

// ReadBytes reads exactly n bytes, returning a sub-slice of the input.
func (r *Reader) ReadBytes(n uint32, desc string) (wasm.At[[]byte], error) {
	if uint64(n) > uint64(len(r.buf)) {
		return wasm.At[[]byte]{}, r.fail(r.here(),
			"unable to read %d bytes of %s: %v", n, desc, wasm.ErrUnexpectedEnd)
	}
	start := r.offset
	span := r.buf[:n:n]
	r.advance(int(n))
	return wasm.MakeAt(r.locFrom(start), span), nil
}

// ReadSizedSpan reads a length prefix and the span it frames, advancing past
// both.
func (r *Reader) ReadSizedSpan(desc string) (wasm.At[[]byte], error) {
	size, err := r.ReadUint32(desc + " size")
	if err != nil {
		return wasm.At[[]byte]{}, err
	}
	return r.ReadBytes(size.Value, desc)
}

// ReadName reads a length-prefixed UTF-8 name.
func (r *Reader) ReadName(desc string) (wasm.At[string], error) {
	start := r.offset
	span, err := r.ReadSizedSpan(desc)
	if err != nil {
		return wasm.At[string]{}, err
	}
	if !utf8.Valid(span.Value) {
		return wasm.At[string]{}, r.fail(span.Loc, "%s must be valid UTF-8", desc)
	}
	return wasm.MakeAt(r.locFrom(start), string(span.Value)), nil
}

// ReadIndex reads an index into one of the module's index spaces.
func (r *Reader) ReadIndex(desc string) (wasm.At[wasm.Index], error) {
	return r.ReadUint32(desc)
}

// sub returns a reader over a located sub-span, inheriting features and sink.
func (r *Reader) sub(span wasm.At[[]byte]) *Reader {
	return NewReader(span.Value, span.Loc.Start, r.features, r.errs)
}
