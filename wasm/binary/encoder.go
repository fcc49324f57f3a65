package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
	"github.com/wasmlab/wasmbin/wasm/ieee754"
	"github.com/wasmlab/wasmbin/wasm/leb128"
)

// Encoders for the binary format. They are exact inverses of the readers for
// well-formed values; tests use them to assemble modules structurally
// instead of hand-writing byte arrays.

// EncodeHeader returns the 8-byte module preamble.
func EncodeHeader() []byte {
	return append(append([]byte{}, magic...), version...)
}

// EncodeSection encodes a section id, the size of its contents, and the
// contents.
func EncodeSection(id wasm.SectionID, contents []byte) []byte {
	ret := append([]byte{id}, leb128.EncodeUint32(uint32(len(contents)))...)
	return append(ret, contents...)
}

// EncodeCountedSection encodes a known section whose contents are a
// count-prefixed vector of entries.
func EncodeCountedSection(id wasm.SectionID, entries ...[]byte) []byte {
	contents := leb128.EncodeUint32(uint32(len(entries)))
	for _, e := range entries {
		contents = append(contents, e...)
	}
	return EncodeSection(id, contents)
}

// EncodeCustomSection encodes an id-0 section whose contents begin with the
// name.
func EncodeCustomSection(name string, contents []byte) []byte {
	body := append(EncodeName(name), contents...)
	return EncodeSection(wasm.SectionIDCustom, body)
}

// EncodeName encodes a length-prefixed UTF-8 name.
func EncodeName(name string) []byte {
	return append(leb128.EncodeUint32(uint32(len(name))), name...)
}

// EncodeValueTypes encodes a count-prefixed vector of value types.
func EncodeValueTypes(types []wasm.ValueType) []byte {
	ret := leb128.EncodeUint32(uint32(len(types)))
	return append(ret, types...)
}

// EncodeFunctionType encodes a type section entry.
func EncodeFunctionType(params, results []wasm.ValueType) []byte {
	ret := append([]byte{funcTypeTag}, EncodeValueTypes(params)...)
	return append(ret, EncodeValueTypes(results)...)
}

// EncodeLimits encodes limits with the flag byte implied by max and shared.
func EncodeLimits(minimum uint32, maximum *uint32, shared bool) []byte {
	switch {
	case shared:
		ret := append([]byte{limitsFlagSharedMinMax}, leb128.EncodeUint32(minimum)...)
		return append(ret, leb128.EncodeUint32(*maximum)...)
	case maximum != nil:
		ret := append([]byte{limitsFlagMinMax}, leb128.EncodeUint32(minimum)...)
		return append(ret, leb128.EncodeUint32(*maximum)...)
	default:
		return append([]byte{limitsFlagMin}, leb128.EncodeUint32(minimum)...)
	}
}

// EncodeTableType encodes an element type and limits.
func EncodeTableType(elemType wasm.RefType, minimum uint32, maximum *uint32) []byte {
	return append([]byte{elemType}, EncodeLimits(minimum, maximum, false)...)
}

// EncodeGlobalType encodes a value type and mutability byte.
func EncodeGlobalType(valType wasm.ValueType, mutable bool) []byte {
	mut := mutabilityConst
	if mutable {
		mut = mutabilityVar
	}
	return []byte{valType, mut}
}

// EncodeEventType encodes an event attribute and type index.
func EncodeEventType(attribute uint32, typeIndex wasm.Index) []byte {
	return append(leb128.EncodeUint32(attribute), leb128.EncodeUint32(typeIndex)...)
}

// EncodeImport encodes an import entry; desc must already be encoded with
// the matching kind.
func EncodeImport(module, name string, kind wasm.ExternalKind, desc []byte) []byte {
	ret := append(EncodeName(module), EncodeName(name)...)
	ret = append(ret, kind)
	return append(ret, desc...)
}

// EncodeExport encodes an export entry.
func EncodeExport(name string, kind wasm.ExternalKind, index wasm.Index) []byte {
	ret := append(EncodeName(name), kind)
	return append(ret, leb128.EncodeUint32(index)...)
}

// EncodeGlobal encodes a global entry from its type and initializer
// instructions; end is appended.
func EncodeGlobal(valType wasm.ValueType, mutable bool, init []byte) []byte {
	ret := append(EncodeGlobalType(valType, mutable), init...)
	return append(ret, byte(wasm.OpcodeEnd))
}

// EncodeI32Const encodes an i32.const instruction.
func EncodeI32Const(v int32) []byte {
	return append([]byte{byte(wasm.OpcodeI32Const)}, leb128.EncodeInt32(v)...)
}

// EncodeI64Const encodes an i64.const instruction.
func EncodeI64Const(v int64) []byte {
	return append([]byte{byte(wasm.OpcodeI64Const)}, leb128.EncodeInt64(v)...)
}

// EncodeF32Const encodes an f32.const instruction.
func EncodeF32Const(v float32) []byte {
	return append([]byte{byte(wasm.OpcodeF32Const)}, ieee754.EncodeFloat32(v)...)
}

// EncodeF64Const encodes an f64.const instruction.
func EncodeF64Const(v float64) []byte {
	return append([]byte{byte(wasm.OpcodeF64Const)}, ieee754.EncodeFloat64(v)...)
}

// EncodeGlobalGet encodes a global.get instruction.
func EncodeGlobalGet(index wasm.Index) []byte {
	return append([]byte{byte(wasm.OpcodeGlobalGet)}, leb128.EncodeUint32(index)...)
}

// EncodeRefNull encodes a ref.null instruction.
func EncodeRefNull(t wasm.RefType) []byte {
	return []byte{byte(wasm.OpcodeRefNull), t}
}

// EncodeRefFunc encodes a ref.func instruction.
func EncodeRefFunc(index wasm.Index) []byte {
	return append([]byte{byte(wasm.OpcodeRefFunc)}, leb128.EncodeUint32(index)...)
}

// EncodeConstExpr terminates an instruction sequence with end.
func EncodeConstExpr(instrs ...[]byte) []byte {
	var ret []byte
	for _, i := range instrs {
		ret = append(ret, i...)
	}
	return append(ret, byte(wasm.OpcodeEnd))
}

// EncodeActiveElementSegment encodes a flag-0 element entry targeting table
// zero.
func EncodeActiveElementSegment(offset []byte, funcIndexes ...wasm.Index) []byte {
	ret := leb128.EncodeUint32(0)
	ret = append(ret, EncodeConstExpr(offset)...)
	ret = append(ret, leb128.EncodeUint32(uint32(len(funcIndexes)))...)
	for _, f := range funcIndexes {
		ret = append(ret, leb128.EncodeUint32(f)...)
	}
	return ret
}

// EncodeDeclaredElementSegment encodes a flag-3 element entry legalising
// function references.
func EncodeDeclaredElementSegment(funcIndexes ...wasm.Index) []byte {
	ret := leb128.EncodeUint32(3)
	ret = append(ret, wasm.ExternalKindFunction)
	ret = append(ret, leb128.EncodeUint32(uint32(len(funcIndexes)))...)
	for _, f := range funcIndexes {
		ret = append(ret, leb128.EncodeUint32(f)...)
	}
	return ret
}

// EncodeCode encodes a code entry from compressed local declarations and a
// body that must already terminate with end.
func EncodeCode(locals [][2]uint32, body []byte) []byte {
	contents := leb128.EncodeUint32(uint32(len(locals)))
	for _, l := range locals {
		contents = append(contents, leb128.EncodeUint32(l[0])...)
		contents = append(contents, byte(l[1]))
	}
	contents = append(contents, body...)
	return append(leb128.EncodeUint32(uint32(len(contents))), contents...)
}

// EncodeActiveDataSegment encodes a flag-0 data entry targeting memory zero.
func EncodeActiveDataSegment(offset []byte, init []byte) []byte {
	ret := leb128.EncodeUint32(0)
	ret = append(ret, EncodeConstExpr(offset)...)
	ret = append(ret, leb128.EncodeUint32(uint32(len(init)))...)
	return append(ret, init...)
}
