package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// Data segment flag values.
const (
	dataFlagActive         uint32 = 0
	dataFlagPassive        uint32 = 1
	dataFlagActiveExplicit uint32 = 2
)

// readDataSegment reads one data section entry. The init bytes are returned
// as a borrowed span.
func readDataSegment(r *Reader) (wasm.At[wasm.DataSegment], error) {
	start := r.Pos()
	var zero wasm.At[wasm.DataSegment]

	flags, err := r.ReadUint32("data segment flags")
	if err != nil {
		return zero, err
	}

	var seg wasm.DataSegment
	switch flags.Value {
	case dataFlagActive:
		seg.Mode = wasm.SegmentModeActive
		implied := wasm.MakeAt(flags.Loc, wasm.Index(0))
		seg.MemoryIndex = &implied
	case dataFlagPassive, dataFlagActiveExplicit:
		if !r.features.IsEnabled(wasm.FeatureBulkMemory) {
			return zero, r.fail(flags.Loc,
				"data segment flags 0x%x require the bulk-memory-operations feature", flags.Value)
		}
		if flags.Value == dataFlagPassive {
			seg.Mode = wasm.SegmentModePassive
		} else {
			seg.Mode = wasm.SegmentModeActive
			memoryIndex, err := r.ReadIndex("data segment memory index")
			if err != nil {
				return zero, err
			}
			seg.MemoryIndex = &memoryIndex
		}
	default:
		return zero, r.fail(flags.Loc, "data segment: bad flags 0x%x", flags.Value)
	}

	if seg.Mode == wasm.SegmentModeActive {
		offset, err := readConstantExpression(r)
		if err != nil {
			return zero, err
		}
		seg.Offset = &offset
	}

	if seg.Init, err = r.ReadSizedSpan("data segment contents"); err != nil {
		return zero, err
	}
	return wasm.MakeAt(r.locFrom(start), seg), nil
}

// readDataCount reads the data count section body.
func readDataCount(r *Reader) (wasm.At[wasm.DataCount], error) {
	count, err := r.ReadUint32("data count")
	if err != nil {
		return wasm.At[wasm.DataCount]{}, err
	}
	return wasm.MakeAt(count.Loc, wasm.DataCount{Count: count}), nil
}
