package validate

import (
	"fmt"

	"github.com/wasmlab/wasmbin/wasm"
	"github.com/wasmlab/wasmbin/wasm/binary"
)

// Module validates every section of a module view in canonical order,
// accumulating declared entities into ctx. Validation errors flip the
// verdict but never stop the walk; read errors terminate the section they
// occur in.
func Module(m *binary.Module, ctx *Context) bool {
	valid := m.Walk()

	if s, ok := m.TypeSection(); ok {
		valid = eachValid(s, ctx, TypeEntry) && valid
	}
	if s, ok := m.ImportSection(); ok {
		valid = eachValid(s, ctx, Import) && valid
	}
	var definedFunctions uint32
	if s, ok := m.FunctionSection(); ok {
		definedFunctions = s.Count()
		valid = eachValid(s, ctx, Function) && valid
	}
	if s, ok := m.TableSection(); ok {
		valid = eachValid(s, ctx, Table) && valid
	}
	if s, ok := m.MemorySection(); ok {
		valid = eachValid(s, ctx, Memory) && valid
	}
	if s, ok := m.GlobalSection(); ok {
		valid = eachValid(s, ctx, Global) && valid
	}
	if s, ok := m.EventSection(); ok {
		if !ctx.Features.IsEnabled(wasm.FeatureExceptions) {
			ctx.Errors.OnError(s.CountLoc(), "event section requires the exceptions feature")
			valid = false
		}
		valid = eachValid(s, ctx, Event) && valid
	}
	if s, ok := m.ExportSection(); ok {
		valid = eachValid(s, ctx, Export) && valid
	}
	if start, ok := m.StartSection(); ok {
		valid = Start(start, ctx) && valid
	}
	if s, ok := m.ElementSection(); ok {
		valid = eachValid(s, ctx, ElementSegment) && valid
	}
	if dc, ok := m.DataCountSection(); ok {
		valid = DataCount(dc, ctx) && valid
	}
	var codes uint32
	if s, ok := m.CodeSection(); ok {
		codes = s.Count()
		valid = eachValid(s, ctx, Code) && valid
	}
	if codes != definedFunctions {
		ctx.Errors.OnError(wasm.Location{},
			fmt.Sprintf("code count %d does not match function count %d", codes, definedFunctions))
		valid = false
	}
	if s, ok := m.DataSection(); ok {
		valid = eachValid(s, ctx, DataSegment) && valid
	}
	return EndModule(ctx) && valid
}

// eachValid traverses a lazy section, and-ing per-entity verdicts with the
// traversal's own.
func eachValid[T any](s *binary.LazySection[T], ctx *Context, fn func(wasm.At[T], *Context) bool) bool {
	valid := true
	ok := s.Each(func(v wasm.At[T]) {
		valid = fn(v, ctx) && valid
	})
	return ok && valid
}

// Index checks index < max, reporting with desc otherwise.
func Index(index wasm.At[wasm.Index], max uint32, desc string, ctx *Context) bool {
	if index.Value >= max {
		ctx.Errors.OnError(index.Loc,
			fmt.Sprintf("invalid %s %d, must be less than %d", desc, index.Value, max))
		return false
	}
	return true
}

// ValueTypeMatch checks exact equality of an actual type against the
// expected one.
func ValueTypeMatch(actual wasm.At[wasm.ValueType], expected wasm.ValueType, ctx *Context) bool {
	if actual.Value != expected {
		ctx.Errors.OnError(actual.Loc,
			fmt.Sprintf("expected value type %s, got %s",
				wasm.ValueTypeName(expected), wasm.ValueTypeName(actual.Value)))
		return false
	}
	return true
}

// RefTypeMatch checks exact equality of reference types.
func RefTypeMatch(actual wasm.At[wasm.RefType], expected wasm.RefType, ctx *Context) bool {
	if actual.Value != expected {
		ctx.Errors.OnError(actual.Loc,
			fmt.Sprintf("expected element type %s, got %s",
				wasm.ValueTypeName(expected), wasm.ValueTypeName(actual.Value)))
		return false
	}
	return true
}

// TypeEntry appends a type section entry and checks its function type.
func TypeEntry(value wasm.At[wasm.FunctionType], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "type entry")()
	ctx.Types = append(ctx.Types, value)
	return FunctionType(value, ctx)
}

// FunctionType rejects multi-value results when the feature is disabled.
func FunctionType(value wasm.At[wasm.FunctionType], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "function type")()
	if len(value.Value.Results) > 1 && !ctx.Features.IsEnabled(wasm.FeatureMultiValue) {
		ctx.Errors.OnError(value.Loc,
			fmt.Sprintf("expected result type count of 0 or 1, got %d", len(value.Value.Results)))
		return false
	}
	return true
}

// Import dispatches on the descriptor kind; each path shares the
// corresponding defined-entity rule and bumps the right imported count.
func Import(value wasm.At[wasm.Import], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "import")()
	valid := true

	switch desc := value.Value.Desc.(type) {
	case wasm.ImportFunc:
		valid = Function(wasm.MakeAt(value.Loc, wasm.Function{TypeIndex: desc.TypeIndex}), ctx)
		// Function appended it as a defined entry; account it as imported.
		ctx.ImportedFunctionCount++
	case wasm.ImportTable:
		valid = Table(wasm.MakeAt(value.Loc, wasm.Table{Type: desc.Type}), ctx)
	case wasm.ImportMemory:
		valid = Memory(wasm.MakeAt(value.Loc, wasm.Memory{Type: desc.Type}), ctx)
	case wasm.ImportGlobal:
		ctx.addGlobal(desc.Type.Value, true)
		valid = GlobalType(desc.Type, ctx)
		if desc.Type.Value.Mutable.Value && !ctx.Features.IsEnabled(wasm.FeatureMutableGlobals) {
			ctx.Errors.OnError(desc.Type.Loc, "mutable globals cannot be imported")
			valid = false
		}
	case wasm.ImportEvent:
		valid = Event(wasm.MakeAt(value.Loc, wasm.Event{Type: desc.Type}), ctx)
	}
	return valid
}

// Function appends a function section entry and checks its type index.
func Function(value wasm.At[wasm.Function], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "function")()
	ctx.addFunction(value.Value, false)
	return Index(value.Value.TypeIndex, uint32(len(ctx.Types)), "function type index", ctx)
}

// Table appends a table section entry; more than one table needs the
// reference-types feature.
func Table(value wasm.At[wasm.Table], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "table")()
	ctx.Tables = append(ctx.Tables, value.Value.Type.Value)
	valid := TableType(value.Value.Type, ctx)
	if len(ctx.Tables) > 1 && !ctx.Features.IsEnabled(wasm.FeatureReferenceTypes) {
		ctx.Errors.OnError(value.Loc, "too many tables, must be 1 or fewer")
		valid = false
	}
	return valid
}

// TableType checks a table's limits; tables cannot be shared.
func TableType(value wasm.At[wasm.TableType], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "table type")()
	const maxElements = ^uint32(0)
	valid := Limits(value.Value.Limits, maxElements, ctx)
	if value.Value.Limits.Value.Shared {
		ctx.Errors.OnError(value.Loc, "tables cannot be shared")
		valid = false
	}
	return valid
}

// maxMemoryPages bounds a memory's limits, in 64KiB pages.
const maxMemoryPages = 65536

// Memory appends a memory section entry; at most one memory ever.
func Memory(value wasm.At[wasm.Memory], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "memory")()
	ctx.Memories = append(ctx.Memories, value.Value.Type.Value)
	valid := MemoryType(value.Value.Type, ctx)
	if len(ctx.Memories) > 1 {
		ctx.Errors.OnError(value.Loc, "too many memories, must be 1 or fewer")
		valid = false
	}
	return valid
}

// MemoryType checks a memory's limits; shared memories need the threads
// feature.
func MemoryType(value wasm.At[wasm.MemoryType], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "memory type")()
	valid := Limits(value.Value.Limits, maxMemoryPages, ctx)
	if value.Value.Limits.Value.Shared && !ctx.Features.IsEnabled(wasm.FeatureThreads) {
		ctx.Errors.OnError(value.Loc, "memories cannot be shared")
		valid = false
	}
	return valid
}

// Limits checks min and max against a cap and each other.
func Limits(value wasm.At[wasm.Limits], max uint32, ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "limits")()
	valid := true
	l := value.Value
	if l.Min.Value > max {
		ctx.Errors.OnError(l.Min.Loc,
			fmt.Sprintf("expected minimum %d to be <= %d", l.Min.Value, max))
		valid = false
	}
	if l.Max != nil {
		if l.Max.Value > max {
			ctx.Errors.OnError(l.Max.Loc,
				fmt.Sprintf("expected maximum %d to be <= %d", l.Max.Value, max))
			valid = false
		}
		if l.Min.Value > l.Max.Value {
			ctx.Errors.OnError(l.Min.Loc,
				fmt.Sprintf("expected minimum %d to be <= maximum %d", l.Min.Value, l.Max.Value))
			valid = false
		}
	}
	return valid
}

// Global appends a global's type and validates its initializer. Only
// imported globals may appear in the initializer, so the global index cap is
// the imported count.
func Global(value wasm.At[wasm.Global], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "global")()
	ctx.addGlobal(value.Value.Type.Value, false)
	valid := GlobalType(value.Value.Type, ctx)
	return ConstantExpression(value.Value.Init, ExprKindGlobalInit,
		value.Value.Type.Value.ValType.Value, ctx.ImportedGlobalCount, ctx) && valid
}

// GlobalType has no rules of its own; the reader already rejected malformed
// encodings.
func GlobalType(value wasm.At[wasm.GlobalType], ctx *Context) bool {
	return true
}

// Event appends an event section entry and checks its type.
func Event(value wasm.At[wasm.Event], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "event")()
	return EventType(value.Value.Type, ctx)
}

// EventType checks the referenced type exists and has no results.
func EventType(value wasm.At[wasm.EventType], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "event type")()
	ctx.Events = append(ctx.Events, value.Value)
	if !Index(value.Value.TypeIndex, uint32(len(ctx.Types)), "event type index", ctx) {
		return false
	}
	entry := ctx.Types[value.Value.TypeIndex.Value]
	if len(entry.Value.Results) != 0 {
		ctx.Errors.OnError(value.Loc,
			fmt.Sprintf("expected an empty exception result type, got %d results", len(entry.Value.Results)))
		return false
	}
	return true
}

// Export checks name uniqueness and the index range for its kind; exporting
// a mutable global needs the mutable-globals feature.
func Export(value wasm.At[wasm.Export], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "export")()
	valid := true

	if ctx.addExportName(value.Value.Name.Value) {
		ctx.Errors.OnError(value.Loc,
			fmt.Sprintf("duplicate export name %s", value.Value.Name.Value))
		valid = false
	}

	index := value.Value.Index
	switch value.Value.Kind.Value {
	case wasm.ExternalKindFunction:
		valid = Index(index, uint32(len(ctx.Functions)), "function index", ctx) && valid
	case wasm.ExternalKindTable:
		valid = Index(index, uint32(len(ctx.Tables)), "table index", ctx) && valid
	case wasm.ExternalKindMemory:
		valid = Index(index, uint32(len(ctx.Memories)), "memory index", ctx) && valid
	case wasm.ExternalKindGlobal:
		if Index(index, uint32(len(ctx.Globals)), "global index", ctx) {
			global := ctx.Globals[index.Value]
			if global.Mutable.Value && !ctx.Features.IsEnabled(wasm.FeatureMutableGlobals) {
				ctx.Errors.OnError(index.Loc, "mutable globals cannot be exported")
				valid = false
			}
		} else {
			valid = false
		}
	case wasm.ExternalKindEvent:
		valid = Index(index, uint32(len(ctx.Events)), "event index", ctx) && valid
	}
	return valid
}

// Start checks the start function exists and has a nullary signature.
func Start(value wasm.At[wasm.Start], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "start")()
	if !Index(value.Value.FuncIndex, uint32(len(ctx.Functions)), "function index", ctx) {
		return false
	}

	valid := true
	function := ctx.Functions[value.Value.FuncIndex.Value]
	if int(function.TypeIndex.Value) < len(ctx.Types) {
		entry := ctx.Types[function.TypeIndex.Value]
		if n := len(entry.Value.Params); n != 0 {
			ctx.Errors.OnError(value.Loc,
				fmt.Sprintf("expected start function to have 0 params, got %d", n))
			valid = false
		}
		if n := len(entry.Value.Results); n != 0 {
			ctx.Errors.OnError(value.Loc,
				fmt.Sprintf("expected start function to have 0 results, got %d", n))
			valid = false
		}
	}
	return valid
}

// ElementSegment validates one element section entry and records its element
// type. Function indexes in an index payload become declared functions.
func ElementSegment(value wasm.At[wasm.ElementSegment], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "element segment")()
	seg := value.Value
	ctx.ElementSegments = append(ctx.ElementSegments, seg.ElemType())
	valid := true

	if seg.TableIndex != nil {
		valid = Index(*seg.TableIndex, uint32(len(ctx.Tables)), "table index", ctx) && valid
	}
	if seg.Offset != nil {
		valid = ConstantExpression(*seg.Offset, ExprKindOther,
			wasm.ValueTypeI32, uint32(len(ctx.Globals)), ctx) && valid
	}

	switch payload := seg.Payload.(type) {
	case wasm.ElementIndexes:
		var max uint32
		switch payload.Kind.Value {
		case wasm.ExternalKindFunction:
			max = uint32(len(ctx.Functions))
		case wasm.ExternalKindTable:
			max = uint32(len(ctx.Tables))
		case wasm.ExternalKindMemory:
			max = uint32(len(ctx.Memories))
		case wasm.ExternalKindGlobal:
			max = uint32(len(ctx.Globals))
		case wasm.ExternalKindEvent:
			max = uint32(len(ctx.Events))
		}
		for _, index := range payload.List {
			valid = Index(index, max, "index", ctx) && valid
			if payload.Kind.Value == wasm.ExternalKindFunction {
				ctx.declareFunction(index.Value)
			}
		}
	case wasm.ElementExpressions:
		for _, expr := range payload.List {
			valid = ElementExpression(expr, payload.Type.Value, ctx) && valid
		}
	}
	return valid
}

// ElementExpression checks a single reference-producing instruction against
// the segment's element type.
func ElementExpression(value wasm.At[wasm.ElementExpression], elemType wasm.RefType, ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "element expression")()
	if len(value.Value.Instructions) != 1 {
		ctx.Errors.OnError(value.Loc, "an element expression must be a single instruction")
		return false
	}

	valid := true
	instr := value.Value.Instructions[0]
	var actual wasm.At[wasm.RefType]
	switch instr.Value.Opcode.Value {
	case wasm.OpcodeRefNull:
		imm := instr.Value.Imm.(wasm.RefTypeImmediate)
		actual = wasm.MakeAt(value.Loc, imm.Type.Value)
	case wasm.OpcodeRefFunc:
		actual = wasm.MakeAt(value.Loc, wasm.RefTypeFuncref)
		imm := instr.Value.Imm.(wasm.IndexImmediate)
		if !Index(imm.Index, uint32(len(ctx.Functions)), "function index", ctx) {
			valid = false
		}
		ctx.declareFunction(imm.Index.Value)
	default:
		ctx.Errors.OnError(instr.Loc,
			fmt.Sprintf("invalid instruction in element expression: %s", instr.Value.Opcode.Value))
		return false
	}
	return RefTypeMatch(actual, elemType, ctx) && valid
}

// ConstantExpression checks a single producing instruction of the expected
// type. A ref.func in a global initializer is deferred rather than
// range-checked, because the element section that legalises it comes later.
func ConstantExpression(value wasm.At[wasm.ConstantExpression], kind ExprKind,
	expected wasm.ValueType, maxGlobalIndex uint32, ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "constant expression")()
	if len(value.Value.Instructions) != 1 {
		ctx.Errors.OnError(value.Loc, "a constant expression must be a single instruction")
		return false
	}

	valid := true
	instr := value.Value.Instructions[0]
	var actual wasm.ValueType
	actualLoc := instr.Loc
	switch instr.Value.Opcode.Value {
	case wasm.OpcodeI32Const:
		actual = wasm.ValueTypeI32
	case wasm.OpcodeI64Const:
		actual = wasm.ValueTypeI64
	case wasm.OpcodeF32Const:
		actual = wasm.ValueTypeF32
	case wasm.OpcodeF64Const:
		actual = wasm.ValueTypeF64
	case wasm.OpcodeGlobalGet:
		imm := instr.Value.Imm.(wasm.IndexImmediate)
		if !Index(imm.Index, maxGlobalIndex, "global index", ctx) {
			return false
		}
		global := ctx.Globals[imm.Index.Value]
		actual = global.ValType.Value
		if global.Mutable.Value {
			ctx.Errors.OnError(imm.Index.Loc,
				"a constant expression cannot contain a mutable global")
			valid = false
		}
	case wasm.OpcodeRefNull:
		imm := instr.Value.Imm.(wasm.RefTypeImmediate)
		actual = imm.Type.Value
		actualLoc = imm.Type.Loc
	case wasm.OpcodeRefFunc:
		imm := instr.Value.Imm.(wasm.IndexImmediate)
		if kind == ExprKindGlobalInit {
			// ref.func operands cannot be range-checked until the element
			// section has declared them.
			ctx.deferFunctionReference(imm.Index)
		} else if !Index(imm.Index, uint32(len(ctx.Functions)), "function index", ctx) {
			return false
		}
		actual = wasm.ValueTypeFuncref
	default:
		ctx.Errors.OnError(instr.Loc,
			fmt.Sprintf("invalid instruction in constant expression: %s", instr.Value.Opcode.Value))
		return false
	}

	return ValueTypeMatch(wasm.MakeAt(actualLoc, actual), expected, ctx) && valid
}

// DataCount stashes the declared count for the end-of-module cross-check and
// for the body validator's memory.init/data.drop rules. The section needs the
// bulk-memory feature.
func DataCount(value wasm.At[wasm.DataCount], ctx *Context) bool {
	count := value.Value.Count
	ctx.DeclaredDataCount = &count
	if !ctx.Features.IsEnabled(wasm.FeatureBulkMemory) {
		ctx.Errors.OnError(value.Loc, "data count section requires the bulk-memory-operations feature")
		return false
	}
	return true
}

// DataSegment checks an active segment's memory index and offset.
func DataSegment(value wasm.At[wasm.DataSegment], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "data segment")()
	ctx.DataSegmentCount++
	seg := value.Value
	valid := true
	if seg.MemoryIndex != nil {
		valid = Index(*seg.MemoryIndex, uint32(len(ctx.Memories)), "memory index", ctx) && valid
	}
	if seg.Offset != nil {
		valid = ConstantExpression(*seg.Offset, ExprKindOther,
			wasm.ValueTypeI32, uint32(len(ctx.Globals)), ctx) && valid
	}
	return valid
}

// Code pairs a code entry with its function, seeds the body-validation
// context, and decodes the body so read errors surface. The
// opcode-by-opcode stack checks belong to the body validator driving
// CodeContext.
func Code(value wasm.At[wasm.Code], ctx *Context) bool {
	defer wasm.ContextGuard(ctx.Errors, value.Loc, "code")()
	_, valid := BeginCode(value, ctx)

	er := binary.NewExpressionReader(value.Value.Body, ctx.Features, ctx.Errors)
	for {
		if _, ok := er.Next(); !ok {
			break
		}
	}
	return er.Done() && valid
}

// EndModule settles the cross-section obligations: every deferred ref.func
// must have been declared, and the data count section must agree with the
// data section.
func EndModule(ctx *Context) bool {
	valid := true
	for _, index := range ctx.DeferredFunctionReferences {
		if _, ok := ctx.DeclaredFunctions[index.Value]; !ok {
			ctx.Errors.OnError(index.Loc,
				fmt.Sprintf("undeclared function reference %d", index.Value))
			valid = false
		}
	}
	if ctx.DeclaredDataCount != nil && ctx.DeclaredDataCount.Value != ctx.DataSegmentCount {
		ctx.Errors.OnError(ctx.DeclaredDataCount.Loc,
			fmt.Sprintf("data count %d does not match the number of data segments %d",
				ctx.DeclaredDataCount.Value, ctx.DataSegmentCount))
		valid = false
	}
	return valid
}
