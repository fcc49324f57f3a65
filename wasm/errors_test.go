package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorList_ContextPrefix(t *testing.T) {
	errs := &ErrorList{}
	loc := Location{Start: 8, End: 12}

	pop := ContextGuard(errs, loc, "element segment")
	inner := ContextGuard(errs, loc, "constant expression")
	errs.OnError(loc, "a constant expression must be a single instruction")
	inner()
	pop()
	errs.OnError(loc, "top level")

	require.Len(t, errs.Diagnostics, 2)
	require.Equal(t,
		"element segment: constant expression: a constant expression must be a single instruction",
		errs.Diagnostics[0].Message)
	require.Equal(t, "top level", errs.Diagnostics[1].Message)
	require.Equal(t, loc, errs.Diagnostics[0].Loc)
	require.True(t, errs.HasErrors())
}

func TestZapErrors(t *testing.T) {
	core, logged := observer.New(zap.WarnLevel)
	collected := &ErrorList{}
	sink := NewZapErrors(zap.New(core), collected)

	pop := ContextGuard(sink, Location{}, "import")
	sink.OnError(Location{Start: 2, End: 4}, "mutable globals cannot be imported")
	pop()

	require.Equal(t, 1, sink.Count)
	require.Len(t, collected.Diagnostics, 1)
	require.Equal(t, "import: mutable globals cannot be imported", collected.Diagnostics[0].Message)

	entries := logged.All()
	require.Len(t, entries, 1)
	require.Equal(t, "mutable globals cannot be imported", entries[0].Message)
	require.Equal(t, "import", entries[0].ContextMap()["context"])
}

func TestZapErrors_NilLogger(t *testing.T) {
	sink := NewZapErrors(nil, nil)
	sink.OnError(Location{}, "boom")
	require.Equal(t, 1, sink.Count)
}
