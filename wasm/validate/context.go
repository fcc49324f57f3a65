// Package validate checks a decoded module against the structural and typing
// rules of the specification. Validation is a single pass in canonical
// section order: each rule consults only entities accumulated from earlier
// sections, and cross-section obligations are settled by a final sweep at
// the end of the module.
package validate

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// ExprKind tells the constant-expression rule what the expression
// initializes. Global initializers defer ref.func range checks to the end of
// the module, because the element section that legalises them comes later.
type ExprKind byte

const (
	// ExprKindGlobalInit is a global's initializer.
	ExprKindGlobalInit ExprKind = iota
	// ExprKindOther is any other constant expression site.
	ExprKindOther
)

// Context accumulates the entities declared by one module. Arrays grow
// append-only; imported entries precede defined ones, so each imported count
// is a prefix length into its array. The context lives for exactly one
// validation call.
type Context struct {
	Features wasm.Features
	Errors   wasm.Errors

	Types     []wasm.At[wasm.FunctionType]
	Functions []wasm.Function
	Tables    []wasm.TableType
	Memories  []wasm.MemoryType
	Globals   []wasm.GlobalType
	Events    []wasm.EventType

	// ElementSegments records the element type of each segment, in order.
	ElementSegments []wasm.RefType

	ImportedFunctionCount uint32
	ImportedGlobalCount   uint32

	// ExportNames holds every export name seen, for uniqueness.
	ExportNames map[string]struct{}

	// DeclaredFunctions holds the function indexes legalised for ref.func.
	DeclaredFunctions map[wasm.Index]struct{}

	// DeferredFunctionReferences holds ref.func operands from global
	// initializers, checked against DeclaredFunctions at the end of the
	// module.
	DeferredFunctionReferences []wasm.At[wasm.Index]

	// DeclaredDataCount is the data count section's value, when present.
	DeclaredDataCount *wasm.At[uint32]

	// DataSegmentCount counts the data section entries seen.
	DataSegmentCount uint32

	// CodeCount counts the code entries begun, pairing each with its
	// function section entry.
	CodeCount uint32
}

// NewContext returns an empty context for one validation call.
func NewContext(features wasm.Features, errs wasm.Errors) *Context {
	return &Context{
		Features:          features,
		Errors:            errs,
		ExportNames:       map[string]struct{}{},
		DeclaredFunctions: map[wasm.Index]struct{}{},
	}
}

func (c *Context) addFunction(f wasm.Function, imported bool) {
	c.Functions = append(c.Functions, f)
	if imported {
		c.ImportedFunctionCount++
	}
}

func (c *Context) addGlobal(g wasm.GlobalType, imported bool) {
	c.Globals = append(c.Globals, g)
	if imported {
		c.ImportedGlobalCount++
	}
}

// addExportName inserts the name and reports whether it was already present.
func (c *Context) addExportName(name string) (duplicate bool) {
	_, duplicate = c.ExportNames[name]
	c.ExportNames[name] = struct{}{}
	return
}

func (c *Context) declareFunction(index wasm.Index) {
	c.DeclaredFunctions[index] = struct{}{}
}

func (c *Context) deferFunctionReference(index wasm.At[wasm.Index]) {
	c.DeferredFunctionReferences = append(c.DeferredFunctionReferences, index)
}
