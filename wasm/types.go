package wasm

// Index is a reference to an entity in one of the module's index spaces.
type Index = uint32

// SectionID identifies a known section of a module.
//
// See https://www.w3.org/TR/wasm-core-1/#sections%E2%91%A0
type SectionID = byte

const (
	// SectionIDCustom includes the standard name section, the linking and
	// relocation sections, and anything else not defined by the standard.
	SectionIDCustom SectionID = iota
	SectionIDType
	SectionIDImport
	SectionIDFunction
	SectionIDTable
	SectionIDMemory
	SectionIDGlobal
	SectionIDExport
	SectionIDStart
	SectionIDElement
	SectionIDCode
	SectionIDData
	SectionIDDataCount
	SectionIDEvent
)

// SectionIDName returns the canonical name of a module section.
func SectionIDName(sectionID SectionID) string {
	switch sectionID {
	case SectionIDCustom:
		return "custom"
	case SectionIDType:
		return "type"
	case SectionIDImport:
		return "import"
	case SectionIDFunction:
		return "function"
	case SectionIDTable:
		return "table"
	case SectionIDMemory:
		return "memory"
	case SectionIDGlobal:
		return "global"
	case SectionIDExport:
		return "export"
	case SectionIDStart:
		return "start"
	case SectionIDElement:
		return "element"
	case SectionIDCode:
		return "code"
	case SectionIDData:
		return "data"
	case SectionIDDataCount:
		return "data count"
	case SectionIDEvent:
		return "event"
	}
	return "unknown"
}

// ValueType is the binary encoding of a type such as i32.
//
// Note: This is a type alias as it is easier to encode and decode in the
// binary format.
type ValueType = byte

const (
	ValueTypeI32  ValueType = 0x7f
	ValueTypeI64  ValueType = 0x7e
	ValueTypeF32  ValueType = 0x7d
	ValueTypeF64  ValueType = 0x7c
	ValueTypeV128 ValueType = 0x7b

	// ValueTypeFuncref and the other reference types below are also value
	// types: a RefType may appear anywhere a ValueType is expected.
	ValueTypeFuncref   ValueType = 0x70
	ValueTypeExternref ValueType = 0x6f
	ValueTypeNullref   ValueType = 0x6e
)

// RefType is the subset of ValueType usable in tables and element segments.
type RefType = ValueType

const (
	RefTypeFuncref   RefType = ValueTypeFuncref
	RefTypeExternref RefType = ValueTypeExternref
	RefTypeNullref   RefType = ValueTypeNullref
)

// IsRefType returns true for the reference subset of value types.
func IsRefType(vt ValueType) bool {
	return vt == RefTypeFuncref || vt == RefTypeExternref || vt == RefTypeNullref
}

// ValueTypeName returns the name used in the WebAssembly text format for the
// given ValueType, or "unknown" for an undefined one.
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncref:
		return "funcref"
	case ValueTypeExternref:
		return "externref"
	case ValueTypeNullref:
		return "nullref"
	}
	return "unknown"
}

// ExternalKind classifies an import or export.
type ExternalKind = byte

const (
	ExternalKindFunction ExternalKind = iota
	ExternalKindTable
	ExternalKindMemory
	ExternalKindGlobal
	ExternalKindEvent
)

// ExternalKindName returns the canonical name of an import/export kind.
func ExternalKindName(k ExternalKind) string {
	switch k {
	case ExternalKindFunction:
		return "function"
	case ExternalKindTable:
		return "table"
	case ExternalKindMemory:
		return "memory"
	case ExternalKindGlobal:
		return "global"
	case ExternalKindEvent:
		return "event"
	}
	return "unknown"
}

// Limits bounds the size of a table or memory. Max is nil when unbounded.
// The reader accepts any (Min, Max) pair; the relationship rules are the
// validator's.
type Limits struct {
	Min    At[uint32]
	Max    *At[uint32]
	Shared bool
}

// BlockTypeKind discriminates the three block type forms.
type BlockTypeKind byte

const (
	// BlockTypeEmpty is the void block type, encoded 0x40.
	BlockTypeEmpty BlockTypeKind = iota
	// BlockTypeValue is a single-result shorthand.
	BlockTypeValue
	// BlockTypeIndex references the type section (multi-value).
	BlockTypeIndex
)

// BlockType is the type of a block, loop, if or try instruction: void, one
// value type, or an index into the type section.
type BlockType struct {
	Kind BlockTypeKind
	// Type is valid when Kind == BlockTypeValue.
	Type ValueType
	// Index is valid when Kind == BlockTypeIndex.
	Index Index
}
