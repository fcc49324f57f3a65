package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmlab/wasmbin/wasm"
)

func newTestReader(buf []byte) (*Reader, *wasm.ErrorList) {
	errs := &wasm.ErrorList{}
	return NewReader(buf, 0, wasm.FeaturesFinished, errs), errs
}

func TestReader_ReadByte(t *testing.T) {
	r, errs := newTestReader([]byte{0x2a})
	b, err := r.ReadByte("tag")
	require.NoError(t, err)
	require.Equal(t, byte(0x2a), b.Value)
	require.Equal(t, wasm.Location{Start: 0, End: 1}, b.Loc)

	_, err = r.ReadByte("tag")
	require.Error(t, err)
	require.Len(t, errs.Diagnostics, 1)
	require.Contains(t, errs.Diagnostics[0].Message, "unexpected end of input")
}

func TestReader_ExpectByte(t *testing.T) {
	r, errs := newTestReader([]byte{0x61})
	_, err := r.ExpectByte(0x60, "function type")
	require.Error(t, err)
	require.Len(t, errs.Diagnostics, 1)
	require.Contains(t, errs.Diagnostics[0].Message, "function type")
	require.Contains(t, errs.Diagnostics[0].Message, "bad tag 0x61")
}

func TestReader_ReadUint32(t *testing.T) {
	r, _ := newTestReader([]byte{0xe5, 0x8e, 0x26, 0x01})
	v, err := r.ReadUint32("count")
	require.NoError(t, err)
	require.Equal(t, uint32(624485), v.Value)
	require.Equal(t, wasm.Location{Start: 0, End: 3}, v.Loc)
	require.Equal(t, uint32(3), r.Pos())
	require.Equal(t, 1, r.Len())
}

func TestReader_ReadUint32_Overflow(t *testing.T) {
	r, errs := newTestReader([]byte{0x80, 0x80, 0x80, 0x80, 0x70})
	_, err := r.ReadUint32("count")
	require.Error(t, err)
	require.Len(t, errs.Diagnostics, 1)
	require.Contains(t, errs.Diagnostics[0].Message, "overflows a 32-bit integer")
}

func TestReader_ReadName(t *testing.T) {
	tests := []struct {
		name     string
		bytes    []byte
		expected string
		errSubst string
	}{
		{name: "ascii", bytes: []byte{0x03, 'e', 'n', 'v'}, expected: "env"},
		{name: "empty", bytes: []byte{0x00}, expected: ""},
		{name: "multibyte", bytes: append([]byte{0x0c}, []byte("こんにちは")...)[:13], expected: "こんにち"},
		{name: "truncated", bytes: []byte{0x05, 'a', 'b'}, errSubst: "unexpected end of input"},
		{name: "invalid utf8", bytes: []byte{0x02, 0xff, 0xfe}, errSubst: "must be valid UTF-8"},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			r, errs := newTestReader(tc.bytes)
			name, err := r.ReadName("import name")
			if tc.errSubst != "" {
				require.Error(t, err)
				require.NotEmpty(t, errs.Diagnostics)
				require.Contains(t, errs.Diagnostics[0].Message, tc.errSubst)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, name.Value)
		})
	}
}

func TestReader_ReadSizedSpan(t *testing.T) {
	buf := []byte{0x03, 0xaa, 0xbb, 0xcc, 0xdd}
	r, _ := newTestReader(buf)
	span, err := r.ReadSizedSpan("section contents")
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa, 0xbb, 0xcc}, span.Value)
	require.Equal(t, wasm.Location{Start: 1, End: 4}, span.Loc)
	require.Equal(t, 1, r.Len())

	// The span borrows the input buffer.
	buf[1] = 0x11
	require.Equal(t, byte(0x11), span.Value[0])
}

func TestReader_ReadBytes_PastEnd(t *testing.T) {
	r, errs := newTestReader([]byte{0x01})
	_, err := r.ReadBytes(4, "data")
	require.Error(t, err)
	require.Len(t, errs.Diagnostics, 1)
}

func TestReader_ReadFloats(t *testing.T) {
	r, _ := newTestReader([]byte{0x00, 0x00, 0x80, 0x3f, 0, 0, 0, 0, 0, 0, 0xf0, 0x3f})
	f32, err := r.ReadFloat32("f32 constant")
	require.NoError(t, err)
	require.Equal(t, float32(1.0), f32.Value)

	f64, err := r.ReadFloat64("f64 constant")
	require.NoError(t, err)
	require.Equal(t, 1.0, f64.Value)
	require.Equal(t, wasm.Location{Start: 4, End: 12}, f64.Loc)
}
