package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmlab/wasmbin/wasm"
)

func at[T any](v T) wasm.At[T] {
	return wasm.MakeAt(wasm.Location{}, v)
}

func testContextWithFunction(params, results []wasm.ValueType) *Context {
	ctx := NewContext(wasm.FeaturesMVP, &wasm.ErrorList{})
	ft := wasm.FunctionType{}
	for _, p := range params {
		ft.Params = append(ft.Params, at(p))
	}
	for _, r := range results {
		ft.Results = append(ft.Results, at(r))
	}
	ctx.Types = append(ctx.Types, at(ft))
	ctx.Functions = append(ctx.Functions, wasm.Function{TypeIndex: at(wasm.Index(0))})
	return ctx
}

func TestBeginCode_SeedsLocalsAndFrame(t *testing.T) {
	ctx := testContextWithFunction(
		[]wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeF32},
		[]wasm.ValueType{wasm.ValueTypeI64})

	code := wasm.Code{
		Locals: []wasm.At[wasm.Locals]{
			at(wasm.Locals{Count: at(uint32(2)), Type: at(wasm.ValueTypeI64)}),
			at(wasm.Locals{Count: at(uint32(1)), Type: at(wasm.ValueTypeF64)}),
		},
	}

	cc, ok := BeginCode(at(code), ctx)
	require.True(t, ok)
	require.Equal(t, uint32(1), ctx.CodeCount)

	// Parameters first, declared locals after.
	require.Equal(t, []wasm.ValueType{
		wasm.ValueTypeI32, wasm.ValueTypeF32,
		wasm.ValueTypeI64, wasm.ValueTypeI64, wasm.ValueTypeF64,
	}, cc.Locals)

	require.Empty(t, cc.OperandStack)
	require.Len(t, cc.ControlStack, 1)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI64}, cc.ControlStack[0].LabelTypes)
}

func TestBeginCode_NoMatchingFunction(t *testing.T) {
	errs := &wasm.ErrorList{}
	ctx := NewContext(wasm.FeaturesMVP, errs)

	_, ok := BeginCode(at(wasm.Code{}), ctx)
	require.False(t, ok)
	require.Len(t, errs.Diagnostics, 1)
	require.Contains(t, errs.Diagnostics[0].Message, "unexpected code entry")
}

func TestCodeContext_Frames(t *testing.T) {
	cc := &CodeContext{}
	cc.PushFrame(wasm.OpcodeEnd, nil)
	cc.OperandStack = append(cc.OperandStack, wasm.ValueTypeI32)
	cc.PushFrame(wasm.OpcodeBlock, []wasm.ValueType{wasm.ValueTypeI32})
	cc.OperandStack = append(cc.OperandStack, wasm.ValueTypeI64)

	frame, ok := cc.PopFrame()
	require.True(t, ok)
	require.Equal(t, wasm.OpcodeBlock, frame.Opcode)
	// Popping truncates the operand stack to the frame's opening height.
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, cc.OperandStack)

	_, ok = cc.PopFrame()
	require.True(t, ok)
	_, ok = cc.PopFrame()
	require.False(t, ok)
}
