package wasmbin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmlab/wasmbin/wasm"
	"github.com/wasmlab/wasmbin/wasm/binary"
	"github.com/wasmlab/wasmbin/wasm/leb128"
)

func TestValidate_SmallestValidModule(t *testing.T) {
	valid, diags := Validate([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, wasm.FeaturesMVP)
	require.True(t, valid)
	require.Empty(t, diags)
}

func TestValidate_BadMagic(t *testing.T) {
	valid, diags := Validate([]byte{0x01, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, wasm.FeaturesMVP)
	require.False(t, valid)
	require.Len(t, diags, 1)
	require.Equal(t, uint32(0), diags[0].Loc.Start)
}

func TestValidate_EndToEnd(t *testing.T) {
	buf := binary.EncodeHeader()
	buf = append(buf, binary.EncodeCountedSection(wasm.SectionIDType,
		binary.EncodeFunctionType([]wasm.ValueType{wasm.ValueTypeI32}, []wasm.ValueType{wasm.ValueTypeI32}))...)
	buf = append(buf, binary.EncodeCountedSection(wasm.SectionIDFunction, leb128.EncodeUint32(0))...)
	buf = append(buf, binary.EncodeCountedSection(wasm.SectionIDExport,
		binary.EncodeExport("identity", wasm.ExternalKindFunction, 0))...)
	buf = append(buf, binary.EncodeCountedSection(wasm.SectionIDCode,
		binary.EncodeCode(nil, []byte{byte(wasm.OpcodeLocalGet), 0x00, byte(wasm.OpcodeEnd)}))...)

	valid, diags := Validate(buf, wasm.FeaturesMVP)
	require.True(t, valid)
	require.Empty(t, diags)

	// The input is never mutated by parsing or validation.
	snapshot := append([]byte{}, buf...)
	Validate(buf, wasm.FeaturesMVP)
	require.Equal(t, snapshot, buf)
}

func TestParse_LazySectionAccess(t *testing.T) {
	buf := binary.EncodeHeader()
	buf = append(buf, binary.EncodeCountedSection(wasm.SectionIDType,
		binary.EncodeFunctionType(nil, nil))...)

	errs := &wasm.ErrorList{}
	m, err := Parse(buf, wasm.FeaturesMVP, errs)
	require.NoError(t, err)

	s, ok := m.TypeSection()
	require.True(t, ok)
	require.Equal(t, uint32(1), s.Count())
	require.Empty(t, errs.Diagnostics)
}
