package wasm

// FunctionType is one entry of the type section: the parameter and result
// types of a function.
type FunctionType struct {
	Params  []At[ValueType]
	Results []At[ValueType]
}

// ImportDesc is the discriminated union of import descriptors. Each kind
// mirrors the defined-entity form it stands in for.
type ImportDesc interface {
	importDesc()
	// Kind returns the ExternalKind the descriptor encodes.
	Kind() ExternalKind
}

type (
	// ImportFunc imports a function of the given type.
	ImportFunc struct {
		TypeIndex At[Index]
	}

	// ImportTable imports a table.
	ImportTable struct {
		Type At[TableType]
	}

	// ImportMemory imports a memory.
	ImportMemory struct {
		Type At[MemoryType]
	}

	// ImportGlobal imports a global.
	ImportGlobal struct {
		Type At[GlobalType]
	}

	// ImportEvent imports an event.
	ImportEvent struct {
		Type At[EventType]
	}
)

func (ImportFunc) importDesc()   {}
func (ImportTable) importDesc()  {}
func (ImportMemory) importDesc() {}
func (ImportGlobal) importDesc() {}
func (ImportEvent) importDesc()  {}

func (ImportFunc) Kind() ExternalKind   { return ExternalKindFunction }
func (ImportTable) Kind() ExternalKind  { return ExternalKindTable }
func (ImportMemory) Kind() ExternalKind { return ExternalKindMemory }
func (ImportGlobal) Kind() ExternalKind { return ExternalKindGlobal }
func (ImportEvent) Kind() ExternalKind  { return ExternalKindEvent }

// Import is one entry of the import section.
type Import struct {
	Module At[string]
	Name   At[string]
	Desc   ImportDesc
}

// Function is one entry of the function section: an index into the type
// section.
type Function struct {
	TypeIndex At[Index]
}

// TableType is the element type and size bounds of a table.
type TableType struct {
	ElemType At[RefType]
	Limits   At[Limits]
}

// Table is one entry of the table section.
type Table struct {
	Type At[TableType]
}

// MemoryType is the size bounds of a memory.
type MemoryType struct {
	Limits At[Limits]
}

// Memory is one entry of the memory section.
type Memory struct {
	Type At[MemoryType]
}

// GlobalType is the value type and mutability of a global.
type GlobalType struct {
	ValType At[ValueType]
	Mutable At[bool]
}

// Global is one entry of the global section.
type Global struct {
	Type At[GlobalType]
	Init At[ConstantExpression]
}

// EventType describes an event: an attribute (0 = exception) and the index
// of its function type.
type EventType struct {
	Attribute At[uint32]
	TypeIndex At[Index]
}

// Event is one entry of the event section.
type Event struct {
	Type At[EventType]
}

// Export is one entry of the export section.
type Export struct {
	Name  At[string]
	Kind  At[ExternalKind]
	Index At[Index]
}

// Start is the start section: the index of the function run at
// instantiation.
type Start struct {
	FuncIndex At[Index]
}

// SegmentMode distinguishes how an element or data segment is applied.
type SegmentMode byte

const (
	// SegmentModeActive segments carry a target index and an offset
	// expression and are applied at instantiation.
	SegmentModeActive SegmentMode = iota
	// SegmentModePassive segments are applied by bulk-memory instructions.
	SegmentModePassive
	// SegmentModeDeclared element segments only legalise ref.func
	// references; they are never applied.
	SegmentModeDeclared
)

// ElementPayload is the discriminated union of element segment payloads:
// a flat list of indexes, or a list of element expressions.
type ElementPayload interface {
	elementPayload()
	// ElemType returns the reference type of the elements.
	ElemType() RefType
}

type (
	// ElementIndexes is the index-list payload form.
	ElementIndexes struct {
		Kind At[ExternalKind]
		List []At[Index]
	}

	// ElementExpressions is the expression-list payload form.
	ElementExpressions struct {
		Type At[RefType]
		List []At[ElementExpression]
	}
)

func (ElementIndexes) elementPayload()     {}
func (ElementExpressions) elementPayload() {}

// ElemType of an index payload is always funcref: index lists predate typed
// element segments.
func (ElementIndexes) ElemType() RefType { return RefTypeFuncref }

func (e ElementExpressions) ElemType() RefType { return e.Type.Value }

// ElementSegment is one entry of the element section.
type ElementSegment struct {
	Mode SegmentMode
	// TableIndex and Offset are set for active segments only.
	TableIndex *At[Index]
	Offset     *At[ConstantExpression]
	Payload    ElementPayload
}

// ElemType returns the reference type of the segment's elements.
func (e *ElementSegment) ElemType() RefType {
	return e.Payload.ElemType()
}

// DataCount is the data count section: the number of data segments. The
// validator consumes it before the code section, so memory.init can be
// validated in one pass.
type DataCount struct {
	Count At[uint32]
}

// Locals is one compressed local declaration of a code entry.
type Locals struct {
	Count At[uint32]
	Type  At[ValueType]
}

// Code is one entry of the code section. Body borrows the input buffer and
// contains the expression bytes including the terminating end opcode.
type Code struct {
	Locals []At[Locals]
	Body   At[[]byte]
}

// DataSegment is one entry of the data section. Init borrows the input
// buffer.
type DataSegment struct {
	Mode SegmentMode
	// MemoryIndex and Offset are set for active segments only.
	MemoryIndex *At[Index]
	Offset      *At[ConstantExpression]
	Init        At[[]byte]
}

// ConstantExpression is an instruction sequence terminated by end, used as a
// global initializer or a segment offset. The validator enforces that
// exactly one producing instruction precedes end; the terminating end is not
// retained.
type ConstantExpression struct {
	Instructions []At[Instruction]
}

// ElementExpression is an instruction sequence terminated by end producing a
// reference, used in element segments.
type ElementExpression struct {
	Instructions []At[Instruction]
}
