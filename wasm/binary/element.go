package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// Element segment flag bits. The three bits combine into the eight forms of
// the bulk-memory encoding; flag 0 is the only MVP form.
const (
	elementFlagPassiveOrDeclared uint32 = 1 << 0
	elementFlagExplicitIndex     uint32 = 1 << 1
	elementFlagExpressions       uint32 = 1 << 2
)

// readElementSegment reads one element section entry in any of the eight
// flag forms.
func readElementSegment(r *Reader) (wasm.At[wasm.ElementSegment], error) {
	start := r.Pos()
	var zero wasm.At[wasm.ElementSegment]

	flags, err := r.ReadUint32("element segment flags")
	if err != nil {
		return zero, err
	}
	if flags.Value > 7 {
		return zero, r.fail(flags.Loc, "element segment: bad flags 0x%x", flags.Value)
	}
	if flags.Value != 0 &&
		!r.features.IsEnabled(wasm.FeatureBulkMemory) &&
		!r.features.IsEnabled(wasm.FeatureReferenceTypes) {
		return zero, r.fail(flags.Loc,
			"element segment flags 0x%x require the bulk-memory-operations or reference-types feature",
			flags.Value)
	}

	var seg wasm.ElementSegment
	passiveOrDeclared := flags.Value&elementFlagPassiveOrDeclared != 0
	explicitIndex := flags.Value&elementFlagExplicitIndex != 0
	expressions := flags.Value&elementFlagExpressions != 0

	switch {
	case !passiveOrDeclared:
		seg.Mode = wasm.SegmentModeActive
	case explicitIndex:
		seg.Mode = wasm.SegmentModeDeclared
	default:
		seg.Mode = wasm.SegmentModePassive
	}

	if seg.Mode == wasm.SegmentModeActive {
		if explicitIndex {
			tableIndex, err := r.ReadIndex("element segment table index")
			if err != nil {
				return zero, err
			}
			seg.TableIndex = &tableIndex
		} else {
			implied := wasm.MakeAt(flags.Loc, wasm.Index(0))
			seg.TableIndex = &implied
		}
		offset, err := readConstantExpression(r)
		if err != nil {
			return zero, err
		}
		seg.Offset = &offset
	}

	if expressions {
		// The element type is explicit except in the flag-4 shorthand.
		elemType := wasm.MakeAt(flags.Loc, wasm.RefTypeFuncref)
		if passiveOrDeclared || explicitIndex {
			if elemType, err = readRefType(r); err != nil {
				return zero, err
			}
		}
		count, err := r.ReadUint32("element expression count")
		if err != nil {
			return zero, err
		}
		list := make([]wasm.At[wasm.ElementExpression], 0, count.Value)
		for i := uint32(0); i < count.Value; i++ {
			expr, err := readElementExpression(r)
			if err != nil {
				return zero, err
			}
			list = append(list, expr)
		}
		seg.Payload = wasm.ElementExpressions{Type: elemType, List: list}
	} else {
		// The element kind is explicit except in the flag-0 shorthand.
		kind := wasm.MakeAt(flags.Loc, wasm.ExternalKindFunction)
		if passiveOrDeclared || explicitIndex {
			if kind, err = readExternalKind(r); err != nil {
				return zero, err
			}
		}
		count, err := r.ReadUint32("element index count")
		if err != nil {
			return zero, err
		}
		list := make([]wasm.At[wasm.Index], 0, count.Value)
		for i := uint32(0); i < count.Value; i++ {
			index, err := r.ReadIndex("element index")
			if err != nil {
				return zero, err
			}
			list = append(list, index)
		}
		seg.Payload = wasm.ElementIndexes{Kind: kind, List: list}
	}

	return wasm.MakeAt(r.locFrom(start), seg), nil
}
