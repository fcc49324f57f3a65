package wasm

// Entities of the "linking", "reloc.*" and "name" custom sections. These
// carry non-semantic metadata produced by toolchains; the walker exposes
// them through the same lazy-section machinery as the known sections.

// LinkingSubsectionID identifies a subsection of the "linking" custom
// section. Unknown ids are tolerated and skipped.
type LinkingSubsectionID = byte

const (
	LinkingSubsectionSegmentInfo   LinkingSubsectionID = 5
	LinkingSubsectionInitFunctions LinkingSubsectionID = 6
	LinkingSubsectionComdatInfo    LinkingSubsectionID = 7
	LinkingSubsectionSymbolTable   LinkingSubsectionID = 8
)

// LinkingSubsection frames one subsection: its id and raw contents.
type LinkingSubsection struct {
	ID   At[LinkingSubsectionID]
	Data At[[]byte]
}

// SegmentInfo names a data segment and records its alignment and flags.
type SegmentInfo struct {
	Name      At[string]
	AlignLog2 At[uint32]
	Flags     At[uint32]
}

// InitFunction is one entry of the init-functions subsection: a symbol run
// at startup, ordered by priority.
type InitFunction struct {
	Priority At[uint32]
	Index    At[Index] // symbol index
}

// ComdatSymbolKind classifies one member of a COMDAT group.
type ComdatSymbolKind = byte

const (
	ComdatSymbolKindData ComdatSymbolKind = iota
	ComdatSymbolKindFunction
	ComdatSymbolKindGlobal
	ComdatSymbolKindEvent
)

// ComdatSymbol is one member of a COMDAT group.
type ComdatSymbol struct {
	Kind  At[ComdatSymbolKind]
	Index At[Index]
}

// Comdat is one COMDAT group: of all groups with the same name, the linker
// keeps one.
type Comdat struct {
	Name    At[string]
	Flags   At[uint32]
	Symbols []At[ComdatSymbol]
}

// SymbolInfoKind classifies a symbol-table entry.
type SymbolInfoKind = byte

const (
	SymbolInfoKindFunction SymbolInfoKind = iota
	SymbolInfoKindData
	SymbolInfoKindGlobal
	SymbolInfoKindSection
	SymbolInfoKindEvent
)

// SymbolFlagUndefined marks a symbol defined in another module.
const SymbolFlagUndefined uint32 = 0x10

// SymbolBase is the common part of every symbol-table entry.
type SymbolBase struct {
	Flags At[uint32]
}

// SymbolInfo is the discriminated union of symbol-table entries.
type SymbolInfo interface {
	symbolInfo()
	// Kind returns the SymbolInfoKind of the entry.
	Kind() SymbolInfoKind
}

type (
	// IndexSymbol covers function, global and event symbols: an index into
	// the corresponding index space, plus a name when the symbol is defined
	// in this module.
	IndexSymbol struct {
		SymbolBase
		SymbolKind At[SymbolInfoKind]
		Index      At[Index]
		Name       *At[string]
	}

	// DataSymbol references a range of a data segment. The segment fields
	// are absent for undefined symbols.
	DataSymbol struct {
		SymbolBase
		Name    At[string]
		Segment *At[Index]
		Offset  *At[uint32]
		Size    *At[uint32]
	}

	// SectionSymbol references a section by index.
	SectionSymbol struct {
		SymbolBase
		Section At[Index]
	}
)

func (IndexSymbol) symbolInfo()   {}
func (DataSymbol) symbolInfo()    {}
func (SectionSymbol) symbolInfo() {}

func (s IndexSymbol) Kind() SymbolInfoKind { return s.SymbolKind.Value }
func (DataSymbol) Kind() SymbolInfoKind    { return SymbolInfoKindData }
func (SectionSymbol) Kind() SymbolInfoKind { return SymbolInfoKindSection }

// RelocationType classifies one relocation entry.
type RelocationType = byte

const (
	RelocFunctionIndexLEB RelocationType = iota
	RelocTableIndexSLEB
	RelocTableIndexI32
	RelocMemoryAddrLEB
	RelocMemoryAddrSLEB
	RelocMemoryAddrI32
	RelocTypeIndexLEB
	RelocGlobalIndexLEB
	RelocFunctionOffsetI32
	RelocSectionOffsetI32
	RelocEventIndexLEB
)

// HasAddend returns true for relocation types followed by an addend field.
func HasAddend(t RelocationType) bool {
	switch t {
	case RelocMemoryAddrLEB, RelocMemoryAddrSLEB, RelocMemoryAddrI32,
		RelocFunctionOffsetI32, RelocSectionOffsetI32:
		return true
	}
	return false
}

// RelocationEntry is one entry of a "reloc.*" custom section.
type RelocationEntry struct {
	Type   At[RelocationType]
	Offset At[uint32]
	Index  At[Index]
	Addend *At[int32]
}

// NameSubsectionID identifies a subsection of the "name" custom section.
type NameSubsectionID = byte

const (
	NameSubsectionModule   NameSubsectionID = 0
	NameSubsectionFunction NameSubsectionID = 1
	NameSubsectionLocal    NameSubsectionID = 2
)

// NameSubsection frames one subsection of the name section.
type NameSubsection struct {
	ID   At[NameSubsectionID]
	Data At[[]byte]
}

// NameAssoc maps one index to a name.
type NameAssoc struct {
	Index At[Index]
	Name  At[string]
}

// IndirectNameAssoc maps one function index to a name map of its locals.
type IndirectNameAssoc struct {
	Index At[Index]
	Names []At[NameAssoc]
}
