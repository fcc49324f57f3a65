// Package wasmbin reads and validates modules in the WebAssembly binary
// format.
//
// The wasm package holds the data model, wasm/binary the lazy zero-copy
// decoder, and wasm/validate the single-pass module validator. This package
// ties them together for the common whole-module case:
//
//	valid, diags := wasmbin.Validate(buf, wasm.FeaturesFinished)
//
// The input buffer is borrowed, never copied or mutated, and must outlive
// every decoded entity.
package wasmbin

import (
	"sort"

	"github.com/wasmlab/wasmbin/wasm"
	"github.com/wasmlab/wasmbin/wasm/binary"
	"github.com/wasmlab/wasmbin/wasm/validate"
)

// Parse checks the module header and returns a lazy view of buf. Read
// errors, now and during later iteration, are reported through errs.
func Parse(buf []byte, features wasm.Features, errs wasm.Errors) (*binary.Module, error) {
	return binary.ParseModule(buf, features, errs)
}

// Validate decodes and validates a whole module, returning the verdict and
// the diagnostics in module order: sorted by the start of their locations,
// with diagnostics at the same offset kept in reporting order.
func Validate(buf []byte, features wasm.Features) (bool, []wasm.Diagnostic) {
	errs := &wasm.ErrorList{}
	m, err := binary.ParseModule(buf, features, errs)
	if err != nil {
		return false, errs.Diagnostics
	}
	valid := validate.Module(m, validate.NewContext(features, errs))
	diags := errs.Diagnostics
	sort.SliceStable(diags, func(i, j int) bool { return diags[i].Loc.Start < diags[j].Loc.Start })
	return valid, diags
}
