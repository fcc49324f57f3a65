package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// readTableType reads an element type followed by limits.
func readTableType(r *Reader) (wasm.At[wasm.TableType], error) {
	start := r.Pos()
	elemType, err := readRefType(r)
	if err != nil {
		return wasm.At[wasm.TableType]{}, err
	}
	limits, err := readLimits(r)
	if err != nil {
		return wasm.At[wasm.TableType]{}, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.TableType{ElemType: elemType, Limits: limits}), nil
}

// readTable reads one table section entry.
func readTable(r *Reader) (wasm.At[wasm.Table], error) {
	tt, err := readTableType(r)
	if err != nil {
		return wasm.At[wasm.Table]{}, err
	}
	return wasm.MakeAt(tt.Loc, wasm.Table{Type: tt}), nil
}
