package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmlab/wasmbin/wasm"
)

func TestReadImport(t *testing.T) {
	maxPages := uint32(2)

	tests := []struct {
		name  string
		bytes []byte
		check func(t *testing.T, i wasm.Import)
	}{
		{
			name:  "function",
			bytes: EncodeImport("Math", "Mul", wasm.ExternalKindFunction, []byte{0x01}),
			check: func(t *testing.T, i wasm.Import) {
				require.Equal(t, "Math", i.Module.Value)
				require.Equal(t, "Mul", i.Name.Value)
				desc, ok := i.Desc.(wasm.ImportFunc)
				require.True(t, ok)
				require.Equal(t, wasm.Index(1), desc.TypeIndex.Value)
			},
		},
		{
			name:  "table",
			bytes: EncodeImport("env", "table", wasm.ExternalKindTable, EncodeTableType(wasm.RefTypeFuncref, 1, nil)),
			check: func(t *testing.T, i wasm.Import) {
				desc, ok := i.Desc.(wasm.ImportTable)
				require.True(t, ok)
				require.Equal(t, wasm.RefTypeFuncref, desc.Type.Value.ElemType.Value)
				require.Equal(t, uint32(1), desc.Type.Value.Limits.Value.Min.Value)
			},
		},
		{
			name:  "memory",
			bytes: EncodeImport("env", "memory", wasm.ExternalKindMemory, EncodeLimits(1, &maxPages, false)),
			check: func(t *testing.T, i wasm.Import) {
				desc, ok := i.Desc.(wasm.ImportMemory)
				require.True(t, ok)
				require.Equal(t, uint32(2), desc.Type.Value.Limits.Value.Max.Value)
			},
		},
		{
			name:  "global",
			bytes: EncodeImport("env", "g", wasm.ExternalKindGlobal, EncodeGlobalType(wasm.ValueTypeI64, true)),
			check: func(t *testing.T, i wasm.Import) {
				desc, ok := i.Desc.(wasm.ImportGlobal)
				require.True(t, ok)
				require.Equal(t, wasm.ValueTypeI64, desc.Type.Value.ValType.Value)
				require.True(t, desc.Type.Value.Mutable.Value)
			},
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			r, errs := newTestReader(tc.bytes)
			i, err := readImport(r)
			require.NoError(t, err)
			require.Empty(t, errs.Diagnostics)
			require.Equal(t, 0, r.Len())
			tc.check(t, i.Value)
		})
	}
}

func TestReadImport_BadKind(t *testing.T) {
	r, errs := newTestReader(EncodeImport("m", "n", 0x07, nil))
	_, err := readImport(r)
	require.Error(t, err)
	require.Contains(t, errs.Diagnostics[0].Message, "external kind")
}

func TestReadGlobal(t *testing.T) {
	bytes := EncodeGlobal(wasm.ValueTypeI32, false, EncodeI32Const(42))
	r, _ := newTestReader(bytes)
	g, err := readGlobal(r)
	require.NoError(t, err)
	require.Equal(t, wasm.ValueTypeI32, g.Value.Type.Value.ValType.Value)
	require.False(t, g.Value.Type.Value.Mutable.Value)

	require.Len(t, g.Value.Init.Value.Instructions, 1)
	instr := g.Value.Init.Value.Instructions[0].Value
	require.Equal(t, wasm.OpcodeI32Const, instr.Opcode.Value)
	require.Equal(t, int32(42), instr.Imm.(wasm.S32Immediate).Value.Value)
}

func TestReadGlobal_BadMutability(t *testing.T) {
	r, errs := newTestReader([]byte{wasm.ValueTypeI32, 0x02})
	_, err := readGlobalType(r)
	require.Error(t, err)
	require.Contains(t, errs.Diagnostics[0].Message, "mutability")
}

func TestReadLimits(t *testing.T) {
	t.Run("min only", func(t *testing.T) {
		r, _ := newTestReader([]byte{0x00, 0x01})
		l, err := readLimits(r)
		require.NoError(t, err)
		require.Equal(t, uint32(1), l.Value.Min.Value)
		require.Nil(t, l.Value.Max)
		require.False(t, l.Value.Shared)
	})

	t.Run("min max", func(t *testing.T) {
		r, _ := newTestReader([]byte{0x01, 0x01, 0x80, 0x02})
		l, err := readLimits(r)
		require.NoError(t, err)
		require.Equal(t, uint32(256), l.Value.Max.Value)
	})

	t.Run("shared requires threads", func(t *testing.T) {
		errs := &wasm.ErrorList{}
		r := NewReader([]byte{0x03, 0x01, 0x02}, 0, wasm.FeaturesMVP, errs)
		_, err := readLimits(r)
		require.Error(t, err)
		require.Contains(t, errs.Diagnostics[0].Message, "threads")

		errs = &wasm.ErrorList{}
		r = NewReader([]byte{0x03, 0x01, 0x02}, 0, wasm.FeaturesMVP.Enable(wasm.FeatureThreads), errs)
		l, err := readLimits(r)
		require.NoError(t, err)
		require.True(t, l.Value.Shared)
	})

	t.Run("bad flag", func(t *testing.T) {
		r, errs := newTestReader([]byte{0x04, 0x01})
		_, err := readLimits(r)
		require.Error(t, err)
		require.Contains(t, errs.Diagnostics[0].Message, "bad flag")
	})
}

func TestReadExport(t *testing.T) {
	r, _ := newTestReader(EncodeExport("run", wasm.ExternalKindFunction, 5))
	e, err := readExport(r)
	require.NoError(t, err)
	require.Equal(t, "run", e.Value.Name.Value)
	require.Equal(t, wasm.ExternalKindFunction, e.Value.Kind.Value)
	require.Equal(t, wasm.Index(5), e.Value.Index.Value)
}

func TestReadElementSegment(t *testing.T) {
	t.Run("active funcrefs", func(t *testing.T) {
		r, _ := newTestReader(EncodeActiveElementSegment(EncodeI32Const(0), 1, 2, 3))
		seg, err := readElementSegment(r)
		require.NoError(t, err)
		require.Equal(t, wasm.SegmentModeActive, seg.Value.Mode)
		require.Equal(t, wasm.Index(0), seg.Value.TableIndex.Value)
		require.NotNil(t, seg.Value.Offset)

		payload, ok := seg.Value.Payload.(wasm.ElementIndexes)
		require.True(t, ok)
		require.Equal(t, wasm.ExternalKindFunction, payload.Kind.Value)
		require.Len(t, payload.List, 3)
		require.Equal(t, wasm.Index(2), payload.List[1].Value)
		require.Equal(t, wasm.RefTypeFuncref, seg.Value.ElemType())
	})

	t.Run("declared", func(t *testing.T) {
		r, _ := newTestReader(EncodeDeclaredElementSegment(3))
		seg, err := readElementSegment(r)
		require.NoError(t, err)
		require.Equal(t, wasm.SegmentModeDeclared, seg.Value.Mode)
		require.Nil(t, seg.Value.TableIndex)
		require.Nil(t, seg.Value.Offset)
	})

	t.Run("passive expressions", func(t *testing.T) {
		// flags=5: passive, explicit reftype, expression payload.
		bytes := []byte{0x05, wasm.RefTypeFuncref, 0x02}
		bytes = append(bytes, EncodeConstExpr(EncodeRefFunc(7))...)
		bytes = append(bytes, EncodeConstExpr(EncodeRefNull(wasm.RefTypeFuncref))...)
		r, _ := newTestReader(bytes)
		seg, err := readElementSegment(r)
		require.NoError(t, err)
		require.Equal(t, wasm.SegmentModePassive, seg.Value.Mode)

		payload, ok := seg.Value.Payload.(wasm.ElementExpressions)
		require.True(t, ok)
		require.Len(t, payload.List, 2)
		require.Len(t, payload.List[0].Value.Instructions, 1)
	})

	t.Run("nonzero flags need bulk memory", func(t *testing.T) {
		errs := &wasm.ErrorList{}
		r := NewReader(EncodeDeclaredElementSegment(3), 0, wasm.FeaturesMVP, errs)
		_, err := readElementSegment(r)
		require.Error(t, err)
	})

	t.Run("bad flags", func(t *testing.T) {
		r, errs := newTestReader([]byte{0x08})
		_, err := readElementSegment(r)
		require.Error(t, err)
		require.Contains(t, errs.Diagnostics[0].Message, "bad flags")
	})
}

func TestReadCode(t *testing.T) {
	body := []byte{byte(wasm.OpcodeLocalGet), 0x00, byte(wasm.OpcodeEnd)}
	bytes := EncodeCode([][2]uint32{{2, uint32(wasm.ValueTypeI32)}, {1, uint32(wasm.ValueTypeF64)}}, body)

	r, _ := newTestReader(bytes)
	code, err := readCode(r)
	require.NoError(t, err)
	require.Len(t, code.Value.Locals, 2)
	require.Equal(t, uint32(2), code.Value.Locals[0].Value.Count.Value)
	require.Equal(t, wasm.ValueTypeF64, code.Value.Locals[1].Value.Type.Value)
	require.Equal(t, body, code.Value.Body.Value)
}

func TestReadCode_MissingEnd(t *testing.T) {
	bytes := EncodeCode(nil, []byte{byte(wasm.OpcodeNop)})
	r, errs := newTestReader(bytes)
	_, err := readCode(r)
	require.Error(t, err)
	require.Contains(t, errs.Diagnostics[0].Message, "end opcode")
}

func TestReadDataSegment(t *testing.T) {
	t.Run("active", func(t *testing.T) {
		init := []byte{0xde, 0xad}
		r, _ := newTestReader(EncodeActiveDataSegment(EncodeI32Const(16), init))
		seg, err := readDataSegment(r)
		require.NoError(t, err)
		require.Equal(t, wasm.SegmentModeActive, seg.Value.Mode)
		require.Equal(t, wasm.Index(0), seg.Value.MemoryIndex.Value)
		require.Equal(t, init, seg.Value.Init.Value)
	})

	t.Run("passive", func(t *testing.T) {
		r, _ := newTestReader([]byte{0x01, 0x02, 0xca, 0xfe})
		seg, err := readDataSegment(r)
		require.NoError(t, err)
		require.Equal(t, wasm.SegmentModePassive, seg.Value.Mode)
		require.Nil(t, seg.Value.MemoryIndex)
		require.Nil(t, seg.Value.Offset)
		require.Equal(t, []byte{0xca, 0xfe}, seg.Value.Init.Value)
	})

	t.Run("passive needs bulk memory", func(t *testing.T) {
		errs := &wasm.ErrorList{}
		r := NewReader([]byte{0x01, 0x00}, 0, wasm.FeaturesMVP, errs)
		_, err := readDataSegment(r)
		require.Error(t, err)
		require.Contains(t, errs.Diagnostics[0].Message, "bulk-memory")
	})
}

func TestReadEventType(t *testing.T) {
	r, _ := newTestReader([]byte{0x00, 0x02})
	et, err := readEventType(r)
	require.NoError(t, err)
	require.Equal(t, uint32(0), et.Value.Attribute.Value)
	require.Equal(t, wasm.Index(2), et.Value.TypeIndex.Value)
}
