package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// readOpcode reads a one-byte opcode, or a prefix byte plus the
// LEB128-encoded index that selects within the prefixed space.
func readOpcode(r *Reader) (wasm.At[wasm.Opcode], error) {
	b, err := r.ReadByte("opcode")
	if err != nil {
		return wasm.At[wasm.Opcode]{}, err
	}
	switch b.Value {
	case wasm.MiscPrefix, wasm.VectorPrefix, wasm.AtomicPrefix:
		index, err := r.ReadUint32("opcode index")
		if err != nil {
			return wasm.At[wasm.Opcode]{}, err
		}
		if index.Value > 0xff {
			return wasm.At[wasm.Opcode]{}, r.fail(index.Loc,
				"unknown opcode 0x%02x 0x%x", b.Value, index.Value)
		}
		loc := wasm.Location{Start: b.Loc.Start, End: index.Loc.End}
		return wasm.MakeAt(loc, wasm.Prefixed(b.Value, index.Value)), nil
	}
	return wasm.MakeAt(b.Loc, wasm.Opcode(b.Value)), nil
}

// ReadInstruction reads one instruction: an opcode and the immediate its
// encoding prescribes. Unknown opcodes, and opcodes whose required feature
// is disabled, are read errors.
func ReadInstruction(r *Reader) (wasm.At[wasm.Instruction], error) {
	start := r.Pos()
	op, err := readOpcode(r)
	if err != nil {
		return wasm.At[wasm.Instruction]{}, err
	}

	imm, err := readImmediate(r, op)
	if err != nil {
		return wasm.At[wasm.Instruction]{}, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.Instruction{Opcode: op, Imm: imm}), nil
}

// require fails with a read error unless the feature is enabled; opcodes
// behind a disabled feature are indistinguishable from unknown ones to the
// caller.
func (r *Reader) require(op wasm.At[wasm.Opcode], feature wasm.Features) error {
	if err := r.features.RequireEnabled(feature); err != nil {
		return r.fail(op.Loc, "unknown opcode %s: %v", op.Value, err)
	}
	return nil
}

func readImmediate(r *Reader, op wasm.At[wasm.Opcode]) (wasm.Immediate, error) {
	switch prefix := op.Value.Prefix(); prefix {
	case wasm.MiscPrefix:
		return readMiscImmediate(r, op)
	case wasm.VectorPrefix:
		return readVectorImmediate(r, op)
	case wasm.AtomicPrefix:
		return readAtomicImmediate(r, op)
	}

	switch op.Value {
	case wasm.OpcodeUnreachable, wasm.OpcodeNop, wasm.OpcodeElse, wasm.OpcodeEnd,
		wasm.OpcodeReturn, wasm.OpcodeDrop, wasm.OpcodeSelect:
		return wasm.EmptyImmediate{}, nil

	case wasm.OpcodeBlock, wasm.OpcodeLoop, wasm.OpcodeIf:
		return readBlockTypeImmediate(r)

	case wasm.OpcodeTry:
		if err := r.require(op, wasm.FeatureExceptions); err != nil {
			return nil, err
		}
		return readBlockTypeImmediate(r)

	case wasm.OpcodeCatch, wasm.OpcodeRethrow:
		if err := r.require(op, wasm.FeatureExceptions); err != nil {
			return nil, err
		}
		return wasm.EmptyImmediate{}, nil

	case wasm.OpcodeThrow:
		if err := r.require(op, wasm.FeatureExceptions); err != nil {
			return nil, err
		}
		return readIndexImmediate(r, "event index")

	case wasm.OpcodeBrOnExn:
		if err := r.require(op, wasm.FeatureExceptions); err != nil {
			return nil, err
		}
		target, err := r.ReadIndex("branch target")
		if err != nil {
			return nil, err
		}
		event, err := r.ReadIndex("event index")
		if err != nil {
			return nil, err
		}
		return wasm.BrOnExnImmediate{Target: target, Event: event}, nil

	case wasm.OpcodeBr, wasm.OpcodeBrIf:
		return readIndexImmediate(r, "branch target")

	case wasm.OpcodeBrTable:
		count, err := r.ReadUint32("br_table target count")
		if err != nil {
			return nil, err
		}
		targets := make([]wasm.At[wasm.Index], 0, count.Value)
		for i := uint32(0); i < count.Value; i++ {
			target, err := r.ReadIndex("br_table target")
			if err != nil {
				return nil, err
			}
			targets = append(targets, target)
		}
		def, err := r.ReadIndex("br_table default target")
		if err != nil {
			return nil, err
		}
		return wasm.BrTableImmediate{Targets: targets, Default: def}, nil

	case wasm.OpcodeCall:
		return readIndexImmediate(r, "function index")

	case wasm.OpcodeCallIndirect:
		return readCallIndirectImmediate(r)

	case wasm.OpcodeReturnCall:
		if err := r.require(op, wasm.FeatureTailCall); err != nil {
			return nil, err
		}
		return readIndexImmediate(r, "function index")

	case wasm.OpcodeReturnCallIndirect:
		if err := r.require(op, wasm.FeatureTailCall); err != nil {
			return nil, err
		}
		return readCallIndirectImmediate(r)

	case wasm.OpcodeSelectT:
		if err := r.require(op, wasm.FeatureReferenceTypes); err != nil {
			return nil, err
		}
		types, err := readValueTypes(r, "select type")
		if err != nil {
			return nil, err
		}
		return wasm.SelectTImmediate{Types: types}, nil

	case wasm.OpcodeLocalGet, wasm.OpcodeLocalSet, wasm.OpcodeLocalTee:
		return readIndexImmediate(r, "local index")

	case wasm.OpcodeGlobalGet, wasm.OpcodeGlobalSet:
		return readIndexImmediate(r, "global index")

	case wasm.OpcodeTableGet, wasm.OpcodeTableSet:
		if err := r.require(op, wasm.FeatureReferenceTypes); err != nil {
			return nil, err
		}
		return readIndexImmediate(r, "table index")

	case wasm.OpcodeI32Load, wasm.OpcodeI64Load, wasm.OpcodeF32Load, wasm.OpcodeF64Load,
		wasm.OpcodeI32Load8S, wasm.OpcodeI32Load8U, wasm.OpcodeI32Load16S, wasm.OpcodeI32Load16U,
		wasm.OpcodeI64Load8S, wasm.OpcodeI64Load8U, wasm.OpcodeI64Load16S, wasm.OpcodeI64Load16U,
		wasm.OpcodeI64Load32S, wasm.OpcodeI64Load32U,
		wasm.OpcodeI32Store, wasm.OpcodeI64Store, wasm.OpcodeF32Store, wasm.OpcodeF64Store,
		wasm.OpcodeI32Store8, wasm.OpcodeI32Store16,
		wasm.OpcodeI64Store8, wasm.OpcodeI64Store16, wasm.OpcodeI64Store32:
		return readMemArgImmediate(r)

	case wasm.OpcodeMemorySize, wasm.OpcodeMemoryGrow:
		return readU8Immediate(r, "reserved memory index")

	case wasm.OpcodeI32Const:
		v, err := r.ReadInt32("i32 constant")
		if err != nil {
			return nil, err
		}
		return wasm.S32Immediate{Value: v}, nil

	case wasm.OpcodeI64Const:
		v, err := r.ReadInt64("i64 constant")
		if err != nil {
			return nil, err
		}
		return wasm.S64Immediate{Value: v}, nil

	case wasm.OpcodeF32Const:
		v, err := r.ReadFloat32("f32 constant")
		if err != nil {
			return nil, err
		}
		return wasm.F32Immediate{Value: v}, nil

	case wasm.OpcodeF64Const:
		v, err := r.ReadFloat64("f64 constant")
		if err != nil {
			return nil, err
		}
		return wasm.F64Immediate{Value: v}, nil

	case wasm.OpcodeRefNull:
		if err := r.require(op, wasm.FeatureReferenceTypes); err != nil {
			return nil, err
		}
		rt, err := readRefType(r)
		if err != nil {
			return nil, err
		}
		return wasm.RefTypeImmediate{Type: rt}, nil

	case wasm.OpcodeRefIsNull:
		if err := r.require(op, wasm.FeatureReferenceTypes); err != nil {
			return nil, err
		}
		return wasm.EmptyImmediate{}, nil

	case wasm.OpcodeRefFunc:
		if err := r.require(op, wasm.FeatureReferenceTypes); err != nil {
			return nil, err
		}
		return readIndexImmediate(r, "function index")
	}

	// The remaining single-byte space is the immediate-free numeric
	// instructions, with gaps that are unknown opcodes.
	switch {
	case op.Value >= wasm.OpcodeI32Eqz && op.Value <= wasm.OpcodeF64ReinterpretI64:
		return wasm.EmptyImmediate{}, nil
	case op.Value >= wasm.OpcodeI32Extend8S && op.Value <= wasm.OpcodeI64Extend32S:
		if err := r.require(op, wasm.FeatureSignExtension); err != nil {
			return nil, err
		}
		return wasm.EmptyImmediate{}, nil
	}
	return nil, r.fail(op.Loc, "unknown opcode %s", op.Value)
}

func readIndexImmediate(r *Reader, desc string) (wasm.Immediate, error) {
	index, err := r.ReadIndex(desc)
	if err != nil {
		return nil, err
	}
	return wasm.IndexImmediate{Index: index}, nil
}

func readU8Immediate(r *Reader, desc string) (wasm.Immediate, error) {
	b, err := r.ReadByte(desc)
	if err != nil {
		return nil, err
	}
	return wasm.U8Immediate{Value: b}, nil
}

func readBlockTypeImmediate(r *Reader) (wasm.Immediate, error) {
	bt, err := readBlockType(r)
	if err != nil {
		return nil, err
	}
	return wasm.BlockTypeImmediate{BlockType: bt}, nil
}

func readCallIndirectImmediate(r *Reader) (wasm.Immediate, error) {
	typeIndex, err := r.ReadIndex("type index")
	if err != nil {
		return nil, err
	}
	tableIndex, err := r.ReadIndex("table index")
	if err != nil {
		return nil, err
	}
	return wasm.CallIndirectImmediate{TypeIndex: typeIndex, TableIndex: tableIndex}, nil
}

func readMemArgImmediate(r *Reader) (wasm.Immediate, error) {
	align, err := r.ReadUint32("alignment")
	if err != nil {
		return nil, err
	}
	offset, err := r.ReadUint32("offset")
	if err != nil {
		return nil, err
	}
	return wasm.MemArgImmediate{AlignLog2: align, Offset: offset}, nil
}

func readInitImmediate(r *Reader, segmentDesc, targetDesc string) (wasm.Immediate, error) {
	segment, err := r.ReadIndex(segmentDesc)
	if err != nil {
		return nil, err
	}
	target, err := r.ReadIndex(targetDesc)
	if err != nil {
		return nil, err
	}
	return wasm.InitImmediate{Segment: segment, Target: target}, nil
}

func readCopyImmediate(r *Reader, desc string) (wasm.Immediate, error) {
	dst, err := r.ReadIndex("destination " + desc)
	if err != nil {
		return nil, err
	}
	src, err := r.ReadIndex("source " + desc)
	if err != nil {
		return nil, err
	}
	return wasm.CopyImmediate{Dst: dst, Src: src}, nil
}

func readMiscImmediate(r *Reader, op wasm.At[wasm.Opcode]) (wasm.Immediate, error) {
	switch op.Value {
	case wasm.OpcodeMiscI32TruncSatF32S, wasm.OpcodeMiscI32TruncSatF32U,
		wasm.OpcodeMiscI32TruncSatF64S, wasm.OpcodeMiscI32TruncSatF64U,
		wasm.OpcodeMiscI64TruncSatF32S, wasm.OpcodeMiscI64TruncSatF32U,
		wasm.OpcodeMiscI64TruncSatF64S, wasm.OpcodeMiscI64TruncSatF64U:
		if err := r.require(op, wasm.FeatureSaturatingFloatToInt); err != nil {
			return nil, err
		}
		return wasm.EmptyImmediate{}, nil

	case wasm.OpcodeMiscMemoryInit:
		if err := r.require(op, wasm.FeatureBulkMemory); err != nil {
			return nil, err
		}
		return readInitImmediate(r, "data index", "memory index")

	case wasm.OpcodeMiscDataDrop:
		if err := r.require(op, wasm.FeatureBulkMemory); err != nil {
			return nil, err
		}
		return readIndexImmediate(r, "data index")

	case wasm.OpcodeMiscMemoryCopy:
		if err := r.require(op, wasm.FeatureBulkMemory); err != nil {
			return nil, err
		}
		return readCopyImmediate(r, "memory index")

	case wasm.OpcodeMiscMemoryFill:
		if err := r.require(op, wasm.FeatureBulkMemory); err != nil {
			return nil, err
		}
		return readU8Immediate(r, "reserved memory index")

	case wasm.OpcodeMiscTableInit:
		if err := r.require(op, wasm.FeatureBulkMemory); err != nil {
			return nil, err
		}
		return readInitImmediate(r, "element index", "table index")

	case wasm.OpcodeMiscElemDrop:
		if err := r.require(op, wasm.FeatureBulkMemory); err != nil {
			return nil, err
		}
		return readIndexImmediate(r, "element index")

	case wasm.OpcodeMiscTableCopy:
		if err := r.require(op, wasm.FeatureBulkMemory); err != nil {
			return nil, err
		}
		return readCopyImmediate(r, "table index")

	case wasm.OpcodeMiscTableGrow, wasm.OpcodeMiscTableSize, wasm.OpcodeMiscTableFill:
		if err := r.require(op, wasm.FeatureReferenceTypes); err != nil {
			return nil, err
		}
		return readIndexImmediate(r, "table index")
	}
	return nil, r.fail(op.Loc, "unknown opcode %s", op.Value)
}

func readVectorImmediate(r *Reader, op wasm.At[wasm.Opcode]) (wasm.Immediate, error) {
	if err := r.require(op, wasm.FeatureSIMD); err != nil {
		return nil, err
	}

	switch {
	case op.Value >= wasm.OpcodeVecV128Load && op.Value <= wasm.OpcodeVecV128Store,
		op.Value == wasm.OpcodeVecV128Load32Zero, op.Value == wasm.OpcodeVecV128Load64Zero:
		return readMemArgImmediate(r)

	case op.Value == wasm.OpcodeVecV128Const:
		lanes, err := readLanes16(r, "v128 constant")
		if err != nil {
			return nil, err
		}
		return wasm.V128Immediate{Value: lanes}, nil

	case op.Value == wasm.OpcodeVecI8x16Shuffle:
		lanes, err := readLanes16(r, "shuffle lanes")
		if err != nil {
			return nil, err
		}
		return wasm.ShuffleImmediate{Lanes: lanes}, nil

	case op.Value >= wasm.OpcodeVecI8x16ExtractLaneS && op.Value <= wasm.OpcodeVecF64x2ReplaceLane:
		lane, err := r.ReadByte("lane index")
		if err != nil {
			return nil, err
		}
		return wasm.LaneImmediate{Lane: lane}, nil

	case op.Value >= wasm.OpcodeVecV128Load8Lane && op.Value <= wasm.OpcodeVecV128Store64Lane:
		memArg, err := readMemArgImmediate(r)
		if err != nil {
			return nil, err
		}
		lane, err := r.ReadByte("lane index")
		if err != nil {
			return nil, err
		}
		return wasm.MemArgLaneImmediate{MemArg: memArg.(wasm.MemArgImmediate), Lane: lane}, nil
	}
	// The rest of the vector space is immediate-free arithmetic.
	return wasm.EmptyImmediate{}, nil
}

func readLanes16(r *Reader, desc string) (wasm.At[[16]byte], error) {
	span, err := r.ReadBytes(16, desc)
	if err != nil {
		return wasm.At[[16]byte]{}, err
	}
	var lanes [16]byte
	copy(lanes[:], span.Value)
	return wasm.MakeAt(span.Loc, lanes), nil
}

func readAtomicImmediate(r *Reader, op wasm.At[wasm.Opcode]) (wasm.Immediate, error) {
	if err := r.require(op, wasm.FeatureThreads); err != nil {
		return nil, err
	}

	switch {
	case op.Value == wasm.OpcodeAtomicFence:
		return readU8Immediate(r, "fence flag")
	case op.Value >= wasm.OpcodeAtomicMemoryNotify && op.Value <= wasm.OpcodeAtomicMemoryWait64,
		op.Value.Index() >= 0x10 && op.Value.Index() <= 0x4e:
		return readMemArgImmediate(r)
	}
	return nil, r.fail(op.Loc, "unknown opcode %s", op.Value)
}

// ExpressionReader iterates the instructions of a code body span. It stops
// at the first read error after reporting it once.
type ExpressionReader struct {
	r      *Reader
	failed bool
}

// NewExpressionReader wraps a located body span.
func NewExpressionReader(body wasm.At[[]byte], features wasm.Features, errs wasm.Errors) *ExpressionReader {
	return &ExpressionReader{r: NewReader(body.Value, body.Loc.Start, features, errs)}
}

// Next returns the next instruction, or false at the end of the span or
// after a read error.
func (e *ExpressionReader) Next() (wasm.At[wasm.Instruction], bool) {
	if e.failed || e.r.Len() == 0 {
		return wasm.At[wasm.Instruction]{}, false
	}
	instr, err := ReadInstruction(e.r)
	if err != nil {
		e.failed = true
		return wasm.At[wasm.Instruction]{}, false
	}
	return instr, true
}

// Done returns true if the whole span was consumed without a read error.
func (e *ExpressionReader) Done() bool {
	return !e.failed && e.r.Len() == 0
}
