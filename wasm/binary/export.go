package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// readExport reads one export section entry.
func readExport(r *Reader) (wasm.At[wasm.Export], error) {
	start := r.Pos()
	var zero wasm.At[wasm.Export]

	name, err := r.ReadName("export name")
	if err != nil {
		return zero, err
	}
	kind, err := readExternalKind(r)
	if err != nil {
		return zero, err
	}
	index, err := r.ReadIndex("export index")
	if err != nil {
		return zero, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.Export{Name: name, Kind: kind, Index: index}), nil
}
