package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// readMemoryType reads the limits of a memory.
func readMemoryType(r *Reader) (wasm.At[wasm.MemoryType], error) {
	limits, err := readLimits(r)
	if err != nil {
		return wasm.At[wasm.MemoryType]{}, err
	}
	return wasm.MakeAt(limits.Loc, wasm.MemoryType{Limits: limits}), nil
}

// readMemory reads one memory section entry.
func readMemory(r *Reader) (wasm.At[wasm.Memory], error) {
	mt, err := readMemoryType(r)
	if err != nil {
		return wasm.At[wasm.Memory]{}, err
	}
	return wasm.MakeAt(mt.Loc, wasm.Memory{Type: mt}), nil
}
