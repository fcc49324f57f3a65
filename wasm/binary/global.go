package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// Mutability bytes of a global type.
const (
	mutabilityConst byte = 0x00
	mutabilityVar   byte = 0x01
)

// readGlobalType reads a value type and mutability byte.
func readGlobalType(r *Reader) (wasm.At[wasm.GlobalType], error) {
	start := r.Pos()
	valType, err := readValueType(r)
	if err != nil {
		return wasm.At[wasm.GlobalType]{}, err
	}
	b, err := r.ReadByte("mutability")
	if err != nil {
		return wasm.At[wasm.GlobalType]{}, err
	}
	var mutable bool
	switch b.Value {
	case mutabilityConst:
	case mutabilityVar:
		mutable = true
	default:
		return wasm.At[wasm.GlobalType]{}, r.fail(b.Loc,
			"mutability: bad tag 0x%02x, expected 0x00 or 0x01", b.Value)
	}
	return wasm.MakeAt(r.locFrom(start), wasm.GlobalType{
		ValType: valType,
		Mutable: wasm.MakeAt(b.Loc, mutable),
	}), nil
}

// readGlobal reads one global section entry: a global type and its
// initializer expression.
func readGlobal(r *Reader) (wasm.At[wasm.Global], error) {
	start := r.Pos()
	gt, err := readGlobalType(r)
	if err != nil {
		return wasm.At[wasm.Global]{}, err
	}
	init, err := readConstantExpression(r)
	if err != nil {
		return wasm.At[wasm.Global]{}, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.Global{Type: gt, Init: init}), nil
}
