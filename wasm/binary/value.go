package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// readValueType reads one value type byte, rejecting encodings whose feature
// is disabled.
func readValueType(r *Reader) (wasm.At[wasm.ValueType], error) {
	b, err := r.ReadByte("value type")
	if err != nil {
		return wasm.At[wasm.ValueType]{}, err
	}
	switch b.Value {
	case wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeF32, wasm.ValueTypeF64:
	case wasm.ValueTypeV128:
		if !r.features.IsEnabled(wasm.FeatureSIMD) {
			return wasm.At[wasm.ValueType]{}, r.fail(b.Loc, "value type v128 requires the simd feature")
		}
	case wasm.ValueTypeFuncref, wasm.ValueTypeExternref, wasm.ValueTypeNullref:
		if !r.features.IsEnabled(wasm.FeatureReferenceTypes) {
			return wasm.At[wasm.ValueType]{}, r.fail(b.Loc,
				"value type %s requires the reference-types feature", wasm.ValueTypeName(b.Value))
		}
	default:
		return wasm.At[wasm.ValueType]{}, r.fail(b.Loc, "value type: bad tag 0x%02x", b.Value)
	}
	return wasm.MakeAt(b.Loc, wasm.ValueType(b.Value)), nil
}

// readRefType reads one reference type byte. Funcref predates the
// reference-types feature (it is the only element type of the MVP); the
// other encodings are gated.
func readRefType(r *Reader) (wasm.At[wasm.RefType], error) {
	b, err := r.ReadByte("reference type")
	if err != nil {
		return wasm.At[wasm.RefType]{}, err
	}
	switch b.Value {
	case wasm.RefTypeFuncref:
	case wasm.RefTypeExternref, wasm.RefTypeNullref:
		if !r.features.IsEnabled(wasm.FeatureReferenceTypes) {
			return wasm.At[wasm.RefType]{}, r.fail(b.Loc,
				"reference type %s requires the reference-types feature", wasm.ValueTypeName(b.Value))
		}
	default:
		return wasm.At[wasm.RefType]{}, r.fail(b.Loc, "reference type: bad tag 0x%02x", b.Value)
	}
	return wasm.MakeAt(b.Loc, wasm.RefType(b.Value)), nil
}

// blockTypeEmpty is the encoding of the void block type as a signed 33-bit
// value.
const blockTypeEmpty int64 = -0x40

// readBlockType reads a block type: void, a value type shorthand, or a type
// section index. The index form uses a signed 33-bit LEB whose non-negative
// range is the index space; it requires the multi-value feature.
func readBlockType(r *Reader) (wasm.At[wasm.BlockType], error) {
	v, err := r.ReadInt33("block type")
	if err != nil {
		return wasm.At[wasm.BlockType]{}, err
	}
	if v.Value >= 0 {
		if !r.features.IsEnabled(wasm.FeatureMultiValue) {
			return wasm.At[wasm.BlockType]{}, r.fail(v.Loc,
				"block type index requires the multi-value feature")
		}
		return wasm.MakeAt(v.Loc, wasm.BlockType{
			Kind:  wasm.BlockTypeIndex,
			Index: wasm.Index(v.Value),
		}), nil
	}
	if v.Value == blockTypeEmpty {
		return wasm.MakeAt(v.Loc, wasm.BlockType{Kind: wasm.BlockTypeEmpty}), nil
	}

	vt := wasm.ValueType(uint64(v.Value) & 0x7f)
	switch vt {
	case wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeF32, wasm.ValueTypeF64:
	case wasm.ValueTypeV128:
		if !r.features.IsEnabled(wasm.FeatureSIMD) {
			return wasm.At[wasm.BlockType]{}, r.fail(v.Loc, "block type v128 requires the simd feature")
		}
	case wasm.ValueTypeFuncref, wasm.ValueTypeExternref, wasm.ValueTypeNullref:
		if !r.features.IsEnabled(wasm.FeatureReferenceTypes) {
			return wasm.At[wasm.BlockType]{}, r.fail(v.Loc,
				"block type %s requires the reference-types feature", wasm.ValueTypeName(vt))
		}
	default:
		return wasm.At[wasm.BlockType]{}, r.fail(v.Loc, "block type: bad encoding %d", v.Value)
	}
	return wasm.MakeAt(v.Loc, wasm.BlockType{Kind: wasm.BlockTypeValue, Type: vt}), nil
}

// readValueTypes reads a count-prefixed vector of value types.
func readValueTypes(r *Reader, desc string) ([]wasm.At[wasm.ValueType], error) {
	count, err := r.ReadUint32(desc + " count")
	if err != nil {
		return nil, err
	}
	types := make([]wasm.At[wasm.ValueType], 0, count.Value)
	for i := uint32(0); i < count.Value; i++ {
		vt, err := readValueType(r)
		if err != nil {
			return nil, err
		}
		types = append(types, vt)
	}
	return types, nil
}
