package validate

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// ControlFrame is one entry of the body validator's control stack.
type ControlFrame struct {
	// Opcode is the instruction that opened the frame; the bottom frame
	// uses OpcodeEnd as a stand-in for the function itself.
	Opcode wasm.Opcode
	// LabelTypes are the types a branch to this frame carries.
	LabelTypes []wasm.ValueType
	// StackHeight is the operand stack height when the frame was opened.
	StackHeight int
	// Unreachable marks the rest of the frame as dead code.
	Unreachable bool
}

// CodeContext is the per-function state the opcode-by-opcode body validator
// drives: the declared type, the locals seeded from parameters and local
// declarations, an operand stack, and a control stack whose bottom frame
// labels the function results. The body validator must leave the operand
// stack matching the result types with that one frame remaining.
type CodeContext struct {
	Type         wasm.FunctionType
	Locals       []wasm.ValueType
	OperandStack []wasm.ValueType
	ControlStack []ControlFrame
}

// PushFrame opens a control frame.
func (c *CodeContext) PushFrame(opcode wasm.Opcode, labelTypes []wasm.ValueType) {
	c.ControlStack = append(c.ControlStack, ControlFrame{
		Opcode:      opcode,
		LabelTypes:  labelTypes,
		StackHeight: len(c.OperandStack),
	})
}

// PopFrame closes the innermost control frame, truncating the operand stack
// to its opening height.
func (c *CodeContext) PopFrame() (ControlFrame, bool) {
	if len(c.ControlStack) == 0 {
		return ControlFrame{}, false
	}
	frame := c.ControlStack[len(c.ControlStack)-1]
	c.ControlStack = c.ControlStack[:len(c.ControlStack)-1]
	c.OperandStack = c.OperandStack[:frame.StackHeight]
	return frame, true
}

// BeginCode pairs the next code entry with its function section entry and
// builds the body-validation context: locals are the function's parameters
// followed by the declared locals, the operand stack is empty, and the
// control stack holds one frame whose label types are the function results.
func BeginCode(value wasm.At[wasm.Code], ctx *Context) (*CodeContext, bool) {
	funcIndex := ctx.ImportedFunctionCount + ctx.CodeCount
	if funcIndex >= uint32(len(ctx.Functions)) {
		ctx.Errors.OnError(value.Loc, "unexpected code entry without a matching function")
		return nil, false
	}
	ctx.CodeCount++

	function := ctx.Functions[funcIndex]
	if int(function.TypeIndex.Value) >= len(ctx.Types) {
		// Already reported when the function section was validated.
		return nil, false
	}
	entry := ctx.Types[function.TypeIndex.Value]

	cc := &CodeContext{}
	cc.Type.Params = entry.Value.Params
	cc.Type.Results = entry.Value.Results

	for _, p := range entry.Value.Params {
		cc.Locals = append(cc.Locals, p.Value)
	}
	for _, decl := range value.Value.Locals {
		for i := uint32(0); i < decl.Value.Count.Value; i++ {
			cc.Locals = append(cc.Locals, decl.Value.Type.Value)
		}
	}

	results := make([]wasm.ValueType, 0, len(entry.Value.Results))
	for _, rt := range entry.Value.Results {
		results = append(results, rt.Value)
	}
	cc.PushFrame(wasm.OpcodeEnd, results)
	return cc, true
}
