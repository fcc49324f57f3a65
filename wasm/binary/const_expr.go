package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// readInstructionSequence reads instructions up to and including the end
// opcode that terminates the sequence. Nested blocks keep their inner end
// instructions; only the terminating end is dropped.
func readInstructionSequence(r *Reader) ([]wasm.At[wasm.Instruction], error) {
	var instrs []wasm.At[wasm.Instruction]
	depth := 0
	for {
		instr, err := ReadInstruction(r)
		if err != nil {
			return nil, err
		}
		switch instr.Value.Opcode.Value {
		case wasm.OpcodeEnd:
			if depth == 0 {
				return instrs, nil
			}
			depth--
		case wasm.OpcodeBlock, wasm.OpcodeLoop, wasm.OpcodeIf, wasm.OpcodeTry:
			depth++
		}
		instrs = append(instrs, instr)
	}
}

// readConstantExpression reads an end-terminated instruction sequence used
// as a global initializer or segment offset. Whether the sequence is a legal
// constant expression is the validator's concern.
func readConstantExpression(r *Reader) (wasm.At[wasm.ConstantExpression], error) {
	start := r.Pos()
	instrs, err := readInstructionSequence(r)
	if err != nil {
		return wasm.At[wasm.ConstantExpression]{}, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.ConstantExpression{Instructions: instrs}), nil
}

// readElementExpression reads an end-terminated instruction sequence used
// inside an element segment.
func readElementExpression(r *Reader) (wasm.At[wasm.ElementExpression], error) {
	start := r.Pos()
	instrs, err := readInstructionSequence(r)
	if err != nil {
		return wasm.At[wasm.ElementExpression]{}, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.ElementExpression{Instructions: instrs}), nil
}
