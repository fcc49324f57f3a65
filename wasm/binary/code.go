package binary

import (
	"math"

	"github.com/wasmlab/wasmbin/wasm"
)

// readCode reads one code section entry: a sized span framing the local
// declarations and the body expression. The body is returned as a borrowed
// span; its instructions are decoded on demand by the body validator.
func readCode(r *Reader) (wasm.At[wasm.Code], error) {
	start := r.Pos()
	var zero wasm.At[wasm.Code]

	span, err := r.ReadSizedSpan("code")
	if err != nil {
		return zero, err
	}
	cr := r.sub(span)

	localsCount, err := cr.ReadUint32("locals declaration count")
	if err != nil {
		return zero, err
	}
	var sum uint64
	locals := make([]wasm.At[wasm.Locals], 0, localsCount.Value)
	for i := uint32(0); i < localsCount.Value; i++ {
		declStart := cr.Pos()
		count, err := cr.ReadUint32("locals count")
		if err != nil {
			return zero, err
		}
		vt, err := readValueType(cr)
		if err != nil {
			return zero, err
		}
		sum += uint64(count.Value)
		locals = append(locals, wasm.MakeAt(cr.locFrom(declStart), wasm.Locals{Count: count, Type: vt}))
	}
	if sum > math.MaxUint32 {
		return zero, r.fail(r.locFrom(start), "too many locals: %d", sum)
	}

	body, err := cr.ReadBytes(uint32(cr.Len()), "code body")
	if err != nil {
		return zero, err
	}
	if n := len(body.Value); n == 0 || body.Value[n-1] != byte(wasm.OpcodeEnd) {
		return zero, r.fail(body.Loc, "code body must terminate with the end opcode")
	}

	return wasm.MakeAt(r.locFrom(start), wasm.Code{Locals: locals, Body: body}), nil
}
