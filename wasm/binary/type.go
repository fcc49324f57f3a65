package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// funcTypeTag prefixes every entry of the type section.
const funcTypeTag byte = 0x60

// readFunctionType reads one type section entry. Result arity rules belong
// to the validator.
func readFunctionType(r *Reader) (wasm.At[wasm.FunctionType], error) {
	start := r.Pos()
	if _, err := r.ExpectByte(funcTypeTag, "function type"); err != nil {
		return wasm.At[wasm.FunctionType]{}, err
	}
	params, err := readValueTypes(r, "parameter")
	if err != nil {
		return wasm.At[wasm.FunctionType]{}, err
	}
	results, err := readValueTypes(r, "result")
	if err != nil {
		return wasm.At[wasm.FunctionType]{}, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.FunctionType{Params: params, Results: results}), nil
}

// readFunction reads one function section entry: a type index.
func readFunction(r *Reader) (wasm.At[wasm.Function], error) {
	start := r.Pos()
	typeIndex, err := r.ReadIndex("function type index")
	if err != nil {
		return wasm.At[wasm.Function]{}, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.Function{TypeIndex: typeIndex}), nil
}

// readStart reads the start section body.
func readStart(r *Reader) (wasm.At[wasm.Start], error) {
	start := r.Pos()
	funcIndex, err := r.ReadIndex("start function index")
	if err != nil {
		return wasm.At[wasm.Start]{}, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.Start{FuncIndex: funcIndex}), nil
}

// readExternalKind reads an import/export kind byte.
func readExternalKind(r *Reader) (wasm.At[wasm.ExternalKind], error) {
	b, err := r.ReadByte("external kind")
	if err != nil {
		return wasm.At[wasm.ExternalKind]{}, err
	}
	switch b.Value {
	case wasm.ExternalKindFunction, wasm.ExternalKindTable, wasm.ExternalKindMemory,
		wasm.ExternalKindGlobal:
	case wasm.ExternalKindEvent:
		if !r.features.IsEnabled(wasm.FeatureExceptions) {
			return wasm.At[wasm.ExternalKind]{}, r.fail(b.Loc,
				"external kind event requires the exceptions feature")
		}
	default:
		return wasm.At[wasm.ExternalKind]{}, r.fail(b.Loc,
			"external kind: bad tag 0x%02x", b.Value)
	}
	return wasm.MakeAt(b.Loc, wasm.ExternalKind(b.Value)), nil
}
