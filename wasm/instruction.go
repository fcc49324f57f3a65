package wasm

// Instruction is a decoded opcode plus its immediate. Instructions borrow
// nothing: immediates embed their located scalar values.
type Instruction struct {
	Opcode At[Opcode]
	Imm    Immediate
}

// Immediate is the discriminated union of instruction immediates. A type
// switch over Immediate is expected to handle every variant below; the Go
// compiler does not check type switches for exhaustiveness.
type Immediate interface {
	immediate()
}

type (
	// EmptyImmediate is carried by instructions with no operands in the
	// instruction stream.
	EmptyImmediate struct{}

	// BlockTypeImmediate is carried by block, loop, if and try.
	BlockTypeImmediate struct {
		BlockType At[BlockType]
	}

	// IndexImmediate is a single index: br, br_if, call, local.*, global.*,
	// table.get/set, ref.func, throw, data.drop, elem.drop, table.grow and
	// friends.
	IndexImmediate struct {
		Index At[Index]
	}

	// CallIndirectImmediate is carried by call_indirect and
	// return_call_indirect.
	CallIndirectImmediate struct {
		TypeIndex  At[Index]
		TableIndex At[Index]
	}

	// BrTableImmediate is carried by br_table.
	BrTableImmediate struct {
		Targets []At[Index]
		Default At[Index]
	}

	// BrOnExnImmediate is carried by br_on_exn: a label and an event index.
	BrOnExnImmediate struct {
		Target At[Index]
		Event  At[Index]
	}

	// U8Immediate is a single reserved or flag byte: memory.size,
	// memory.grow, memory.fill, atomic.fence.
	U8Immediate struct {
		Value At[uint8]
	}

	// MemArgImmediate is carried by loads and stores.
	MemArgImmediate struct {
		AlignLog2 At[uint32]
		Offset    At[uint32]
	}

	// S32Immediate is carried by i32.const.
	S32Immediate struct {
		Value At[int32]
	}

	// S64Immediate is carried by i64.const.
	S64Immediate struct {
		Value At[int64]
	}

	// F32Immediate is carried by f32.const.
	F32Immediate struct {
		Value At[float32]
	}

	// F64Immediate is carried by f64.const.
	F64Immediate struct {
		Value At[float64]
	}

	// V128Immediate is carried by v128.const.
	V128Immediate struct {
		Value At[[16]byte]
	}

	// RefTypeImmediate is carried by ref.null.
	RefTypeImmediate struct {
		Type At[RefType]
	}

	// SelectTImmediate is carried by the typed select.
	SelectTImmediate struct {
		Types []At[ValueType]
	}

	// InitImmediate is carried by memory.init and table.init: the segment
	// and the destination memory or table.
	InitImmediate struct {
		Segment At[Index]
		Target  At[Index]
	}

	// CopyImmediate is carried by memory.copy and table.copy.
	CopyImmediate struct {
		Dst At[Index]
		Src At[Index]
	}

	// ShuffleImmediate is carried by i8x16.shuffle.
	ShuffleImmediate struct {
		Lanes At[[16]byte]
	}

	// LaneImmediate is carried by the lane extract/replace instructions.
	LaneImmediate struct {
		Lane At[uint8]
	}

	// MemArgLaneImmediate is carried by the v128 load/store lane
	// instructions.
	MemArgLaneImmediate struct {
		MemArg MemArgImmediate
		Lane   At[uint8]
	}
)

func (EmptyImmediate) immediate()        {}
func (BlockTypeImmediate) immediate()    {}
func (IndexImmediate) immediate()        {}
func (CallIndirectImmediate) immediate() {}
func (BrTableImmediate) immediate()      {}
func (BrOnExnImmediate) immediate()      {}
func (U8Immediate) immediate()           {}
func (MemArgImmediate) immediate()       {}
func (S32Immediate) immediate()          {}
func (S64Immediate) immediate()          {}
func (F32Immediate) immediate()          {}
func (F64Immediate) immediate()          {}
func (V128Immediate) immediate()         {}
func (RefTypeImmediate) immediate()      {}
func (SelectTImmediate) immediate()      {}
func (InitImmediate) immediate()         {}
func (CopyImmediate) immediate()         {}
func (ShuffleImmediate) immediate()      {}
func (LaneImmediate) immediate()         {}
func (MemArgLaneImmediate) immediate()   {}
