package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmlab/wasmbin/wasm"
)

func parseTestModule(t *testing.T, sections ...[]byte) (*Module, *wasm.ErrorList) {
	t.Helper()
	buf := EncodeHeader()
	for _, s := range sections {
		buf = append(buf, s...)
	}
	errs := &wasm.ErrorList{}
	m, err := ParseModule(buf, wasm.FeaturesFinished, errs)
	require.NoError(t, err)
	return m, errs
}

func TestParseModule_HeaderOnly(t *testing.T) {
	errs := &wasm.ErrorList{}
	m, err := ParseModule([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, wasm.FeaturesMVP, errs)
	require.NoError(t, err)
	require.True(t, m.Walk())
	require.Empty(t, errs.Diagnostics)
}

func TestParseModule_BadMagic(t *testing.T) {
	errs := &wasm.ErrorList{}
	_, err := ParseModule([]byte{0x01, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, wasm.FeaturesMVP, errs)
	require.ErrorIs(t, err, wasm.ErrInvalidMagicNumber)
	require.Len(t, errs.Diagnostics, 1)
	require.Equal(t, uint32(0), errs.Diagnostics[0].Loc.Start)
}

func TestParseModule_BadVersion(t *testing.T) {
	errs := &wasm.ErrorList{}
	_, err := ParseModule([]byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}, wasm.FeaturesMVP, errs)
	require.ErrorIs(t, err, wasm.ErrInvalidVersion)
}

func TestParseModule_Truncated(t *testing.T) {
	errs := &wasm.ErrorList{}
	_, err := ParseModule([]byte{0x00, 0x61}, wasm.FeaturesMVP, errs)
	require.ErrorIs(t, err, wasm.ErrInvalidMagicNumber)
}

func TestModule_SectionOrder(t *testing.T) {
	typeSec := EncodeCountedSection(wasm.SectionIDType)
	funcSec := EncodeCountedSection(wasm.SectionIDFunction)

	t.Run("increasing ids accepted", func(t *testing.T) {
		m, errs := parseTestModule(t, typeSec, funcSec)
		require.True(t, m.Walk())
		require.Empty(t, errs.Diagnostics)
	})

	t.Run("out of order reported and skipped", func(t *testing.T) {
		m, errs := parseTestModule(t, funcSec, typeSec)
		require.True(t, m.Walk())
		require.Len(t, errs.Diagnostics, 1)
		require.Contains(t, errs.Diagnostics[0].Message, "out of order")
		// The function section survived; the type section was skipped.
		_, ok := m.TypeSection()
		require.False(t, ok)
		_, ok = m.FunctionSection()
		require.True(t, ok)
	})

	t.Run("duplicate reported and skipped", func(t *testing.T) {
		m, errs := parseTestModule(t, typeSec, typeSec)
		require.True(t, m.Walk())
		require.Len(t, errs.Diagnostics, 1)
		require.Contains(t, errs.Diagnostics[0].Message, "duplicate section")
	})

	t.Run("custom sections unconstrained", func(t *testing.T) {
		m, errs := parseTestModule(t,
			EncodeCustomSection("before", nil),
			typeSec,
			EncodeCustomSection("middle", []byte{1, 2, 3}),
			funcSec,
			EncodeCustomSection("middle", nil), // repeated names are fine
		)
		require.True(t, m.Walk())
		require.Empty(t, errs.Diagnostics)
		require.Len(t, m.CustomSections(), 3)
		require.Equal(t, "middle", m.CustomSections()[1].Name.Value)
		require.Equal(t, []byte{1, 2, 3}, m.CustomSections()[1].Contents.Value)
	})
}

func TestModule_UnknownSectionID(t *testing.T) {
	m, errs := parseTestModule(t, EncodeSection(14, nil))
	require.False(t, m.Walk())
	require.Len(t, errs.Diagnostics, 1)
	require.Contains(t, errs.Diagnostics[0].Message, "unknown section id")
}

func TestModule_SectionSizeBeyondInput(t *testing.T) {
	m, errs := parseTestModule(t, []byte{wasm.SectionIDType, 0x20})
	require.False(t, m.Walk())
	require.NotEmpty(t, errs.Diagnostics)
}

func TestModule_TypeSection(t *testing.T) {
	i32 := wasm.ValueTypeI32
	m, errs := parseTestModule(t, EncodeCountedSection(wasm.SectionIDType,
		EncodeFunctionType(nil, nil),
		EncodeFunctionType([]wasm.ValueType{i32, i32}, []wasm.ValueType{i32}),
	))

	s, ok := m.TypeSection()
	require.True(t, ok)
	require.Equal(t, uint32(2), s.Count())

	var types []wasm.FunctionType
	require.True(t, s.Each(func(ft wasm.At[wasm.FunctionType]) {
		types = append(types, ft.Value)
	}))
	require.Len(t, types, 2)
	require.Empty(t, types[0].Params)
	require.Len(t, types[1].Params, 2)
	require.Equal(t, i32, types[1].Results[0].Value)
	require.Empty(t, errs.Diagnostics)
}

func TestModule_SectionTrailingBytes(t *testing.T) {
	contents := append([]byte{0x01}, EncodeFunctionType(nil, nil)...)
	contents = append(contents, 0xff) // one byte too many
	m, errs := parseTestModule(t, EncodeSection(wasm.SectionIDType, contents))

	s, ok := m.TypeSection()
	require.True(t, ok)
	require.False(t, s.Each(func(wasm.At[wasm.FunctionType]) {}))
	require.Len(t, errs.Diagnostics, 1)
	require.Contains(t, errs.Diagnostics[0].Message, "trailing bytes")
}

func TestLazySection_Restartable(t *testing.T) {
	m, errs := parseTestModule(t, EncodeCountedSection(wasm.SectionIDType,
		EncodeFunctionType(nil, nil),
		EncodeFunctionType(nil, nil),
	))
	s, ok := m.TypeSection()
	require.True(t, ok)

	for traversal := 0; traversal < 3; traversal++ {
		n := 0
		require.True(t, s.Each(func(wasm.At[wasm.FunctionType]) { n++ }))
		require.Equal(t, 2, n)
	}
	require.Empty(t, errs.Diagnostics)
}

func TestLazySection_ErrorOncePerTraversal(t *testing.T) {
	// Count says two entries but the second is malformed.
	contents := append([]byte{0x02}, EncodeFunctionType(nil, nil)...)
	contents = append(contents, 0x61) // not the 0x60 function type tag
	m, errs := parseTestModule(t, EncodeSection(wasm.SectionIDType, contents))

	s, ok := m.TypeSection()
	require.True(t, ok)

	require.False(t, s.Each(func(wasm.At[wasm.FunctionType]) {}))
	require.Len(t, errs.Diagnostics, 1)

	// A second traversal re-parses and reports the same error once more.
	require.False(t, s.Each(func(wasm.At[wasm.FunctionType]) {}))
	require.Len(t, errs.Diagnostics, 2)
}

func TestModule_StartSection(t *testing.T) {
	m, errs := parseTestModule(t, EncodeSection(wasm.SectionIDStart, []byte{0x02}))
	start, ok := m.StartSection()
	require.True(t, ok)
	require.Equal(t, wasm.Index(2), start.Value.FuncIndex.Value)
	require.Empty(t, errs.Diagnostics)
}

func TestModule_DataCountSection(t *testing.T) {
	m, _ := parseTestModule(t, EncodeSection(wasm.SectionIDDataCount, []byte{0x03}))
	dc, ok := m.DataCountSection()
	require.True(t, ok)
	require.Equal(t, uint32(3), dc.Value.Count.Value)
}

// Re-parsing the byte range of a decoded entity yields an equal value.
func TestReparseLocation(t *testing.T) {
	encoded := EncodeFunctionType([]wasm.ValueType{wasm.ValueTypeI64}, []wasm.ValueType{wasm.ValueTypeF64})
	m, _ := parseTestModule(t, EncodeCountedSection(wasm.SectionIDType, encoded))
	buf := append(EncodeHeader(), EncodeCountedSection(wasm.SectionIDType, encoded)...)

	s, ok := m.TypeSection()
	require.True(t, ok)
	it := s.Iterate()
	first, ok := it.Next()
	require.True(t, ok)

	errs := &wasm.ErrorList{}
	r := NewReader(buf[first.Loc.Start:first.Loc.End], first.Loc.Start, wasm.FeaturesFinished, errs)
	again, err := readFunctionType(r)
	require.NoError(t, err)
	require.Equal(t, first.Value, again.Value)
}
