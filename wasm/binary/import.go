package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// readImport reads one import section entry, dispatching on the descriptor
// kind byte.
func readImport(r *Reader) (wasm.At[wasm.Import], error) {
	start := r.Pos()
	var zero wasm.At[wasm.Import]

	module, err := r.ReadName("import module name")
	if err != nil {
		return zero, err
	}
	name, err := r.ReadName("import name")
	if err != nil {
		return zero, err
	}
	kind, err := readExternalKind(r)
	if err != nil {
		return zero, err
	}

	var desc wasm.ImportDesc
	switch kind.Value {
	case wasm.ExternalKindFunction:
		typeIndex, err := r.ReadIndex("imported function type index")
		if err != nil {
			return zero, err
		}
		desc = wasm.ImportFunc{TypeIndex: typeIndex}
	case wasm.ExternalKindTable:
		tt, err := readTableType(r)
		if err != nil {
			return zero, err
		}
		desc = wasm.ImportTable{Type: tt}
	case wasm.ExternalKindMemory:
		mt, err := readMemoryType(r)
		if err != nil {
			return zero, err
		}
		desc = wasm.ImportMemory{Type: mt}
	case wasm.ExternalKindGlobal:
		gt, err := readGlobalType(r)
		if err != nil {
			return zero, err
		}
		desc = wasm.ImportGlobal{Type: gt}
	case wasm.ExternalKindEvent:
		et, err := readEventType(r)
		if err != nil {
			return zero, err
		}
		desc = wasm.ImportEvent{Type: et}
	}

	return wasm.MakeAt(r.locFrom(start), wasm.Import{
		Module: module,
		Name:   name,
		Desc:   desc,
	}), nil
}
