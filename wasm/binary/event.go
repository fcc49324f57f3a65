package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// readEventType reads an event attribute and the index of its function type.
func readEventType(r *Reader) (wasm.At[wasm.EventType], error) {
	start := r.Pos()
	attr, err := r.ReadUint32("event attribute")
	if err != nil {
		return wasm.At[wasm.EventType]{}, err
	}
	typeIndex, err := r.ReadIndex("event type index")
	if err != nil {
		return wasm.At[wasm.EventType]{}, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.EventType{Attribute: attr, TypeIndex: typeIndex}), nil
}

// readEvent reads one event section entry.
func readEvent(r *Reader) (wasm.At[wasm.Event], error) {
	et, err := readEventType(r)
	if err != nil {
		return wasm.At[wasm.Event]{}, err
	}
	return wasm.MakeAt(et.Loc, wasm.Event{Type: et}), nil
}
