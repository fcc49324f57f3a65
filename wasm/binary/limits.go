package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// Limits flag bytes. 0x02 (shared, no max) is not a legal encoding.
const (
	limitsFlagMin          byte = 0x00
	limitsFlagMinMax       byte = 0x01
	limitsFlagSharedMinMax byte = 0x03
)

// readLimits reads a limits encoding. The min/max relationship is the
// validator's concern; only the framing is checked here.
func readLimits(r *Reader) (wasm.At[wasm.Limits], error) {
	start := r.Pos()
	flag, err := r.ReadByte("limits flag")
	if err != nil {
		return wasm.At[wasm.Limits]{}, err
	}

	var ret wasm.Limits
	switch flag.Value {
	case limitsFlagMin, limitsFlagMinMax, limitsFlagSharedMinMax:
	default:
		return wasm.At[wasm.Limits]{}, r.fail(flag.Loc,
			"limits: bad flag 0x%02x", flag.Value)
	}
	if flag.Value == limitsFlagSharedMinMax {
		if !r.features.IsEnabled(wasm.FeatureThreads) {
			return wasm.At[wasm.Limits]{}, r.fail(flag.Loc,
				"shared limits require the threads feature")
		}
		ret.Shared = true
	}

	if ret.Min, err = r.ReadUint32("limits min"); err != nil {
		return wasm.At[wasm.Limits]{}, err
	}
	if flag.Value != limitsFlagMin {
		max, err := r.ReadUint32("limits max")
		if err != nil {
			return wasm.At[wasm.Limits]{}, err
		}
		ret.Max = &max
	}
	return wasm.MakeAt(r.locFrom(start), ret), nil
}
