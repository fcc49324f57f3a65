package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// LinkingSectionName is the name of the custom section carrying static
// linking metadata.
const LinkingSectionName = "linking"

// linkingVersion is the metadata version this walker understands.
const linkingVersion = 2

// LinkingSubsectionIterator walks the subsections of a "linking" custom
// section. Unknown subsection ids are yielded, not rejected, so callers can
// skip them.
type LinkingSubsectionIterator struct {
	r      *Reader
	failed bool
}

// ReadLinkingSection checks the version byte of a "linking" custom section
// and wraps the subsections that follow.
func ReadLinkingSection(sec CustomSection, features wasm.Features, errs wasm.Errors) (*LinkingSubsectionIterator, error) {
	r := NewReader(sec.Contents.Value, sec.Contents.Loc.Start, features, errs)
	ver, err := r.ReadUint32("linking metadata version")
	if err != nil {
		return nil, err
	}
	if ver.Value != linkingVersion {
		return nil, r.fail(ver.Loc, "unsupported linking metadata version %d", ver.Value)
	}
	return &LinkingSubsectionIterator{r: r}, nil
}

// Next returns the next subsection frame.
func (it *LinkingSubsectionIterator) Next() (wasm.At[wasm.LinkingSubsection], bool) {
	var zero wasm.At[wasm.LinkingSubsection]
	if it.failed || it.r.Len() == 0 {
		return zero, false
	}
	start := it.r.Pos()
	id, err := it.r.ReadByte("linking subsection id")
	if err != nil {
		it.failed = true
		return zero, false
	}
	data, err := it.r.ReadSizedSpan("linking subsection contents")
	if err != nil {
		it.failed = true
		return zero, false
	}
	return wasm.MakeAt(it.r.locFrom(start), wasm.LinkingSubsection{
		ID:   wasm.MakeAt(id.Loc, wasm.LinkingSubsectionID(id.Value)),
		Data: data,
	}), true
}

// ReadSegmentInfoSubsection wraps a segment-info subsection as a lazy
// sequence.
func ReadSegmentInfoSubsection(sub wasm.LinkingSubsection, features wasm.Features, errs wasm.Errors) (*LazySection[wasm.SegmentInfo], error) {
	return NewLazySection(sub.Data, features, errs, readSegmentInfo)
}

// ReadInitFunctionsSubsection wraps an init-functions subsection as a lazy
// sequence.
func ReadInitFunctionsSubsection(sub wasm.LinkingSubsection, features wasm.Features, errs wasm.Errors) (*LazySection[wasm.InitFunction], error) {
	return NewLazySection(sub.Data, features, errs, readInitFunction)
}

// ReadComdatSubsection wraps a comdat-info subsection as a lazy sequence.
func ReadComdatSubsection(sub wasm.LinkingSubsection, features wasm.Features, errs wasm.Errors) (*LazySection[wasm.Comdat], error) {
	return NewLazySection(sub.Data, features, errs, readComdat)
}

// ReadSymbolTableSubsection wraps a symbol-table subsection as a lazy
// sequence.
func ReadSymbolTableSubsection(sub wasm.LinkingSubsection, features wasm.Features, errs wasm.Errors) (*LazySection[wasm.SymbolInfo], error) {
	return NewLazySection(sub.Data, features, errs, readSymbolInfo)
}

func readSegmentInfo(r *Reader) (wasm.At[wasm.SegmentInfo], error) {
	start := r.Pos()
	var zero wasm.At[wasm.SegmentInfo]
	name, err := r.ReadName("segment name")
	if err != nil {
		return zero, err
	}
	align, err := r.ReadUint32("segment alignment")
	if err != nil {
		return zero, err
	}
	flags, err := r.ReadUint32("segment flags")
	if err != nil {
		return zero, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.SegmentInfo{
		Name:      name,
		AlignLog2: align,
		Flags:     flags,
	}), nil
}

func readInitFunction(r *Reader) (wasm.At[wasm.InitFunction], error) {
	start := r.Pos()
	var zero wasm.At[wasm.InitFunction]
	priority, err := r.ReadUint32("init function priority")
	if err != nil {
		return zero, err
	}
	index, err := r.ReadIndex("init function symbol index")
	if err != nil {
		return zero, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.InitFunction{Priority: priority, Index: index}), nil
}

func readComdat(r *Reader) (wasm.At[wasm.Comdat], error) {
	start := r.Pos()
	var zero wasm.At[wasm.Comdat]
	name, err := r.ReadName("comdat name")
	if err != nil {
		return zero, err
	}
	flags, err := r.ReadUint32("comdat flags")
	if err != nil {
		return zero, err
	}
	count, err := r.ReadUint32("comdat symbol count")
	if err != nil {
		return zero, err
	}
	symbols := make([]wasm.At[wasm.ComdatSymbol], 0, count.Value)
	for i := uint32(0); i < count.Value; i++ {
		sym, err := readComdatSymbol(r)
		if err != nil {
			return zero, err
		}
		symbols = append(symbols, sym)
	}
	return wasm.MakeAt(r.locFrom(start), wasm.Comdat{Name: name, Flags: flags, Symbols: symbols}), nil
}

func readComdatSymbol(r *Reader) (wasm.At[wasm.ComdatSymbol], error) {
	start := r.Pos()
	var zero wasm.At[wasm.ComdatSymbol]
	kind, err := r.ReadByte("comdat symbol kind")
	if err != nil {
		return zero, err
	}
	if kind.Value > wasm.ComdatSymbolKindEvent {
		return zero, r.fail(kind.Loc, "comdat symbol kind: bad tag 0x%02x", kind.Value)
	}
	index, err := r.ReadIndex("comdat symbol index")
	if err != nil {
		return zero, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.ComdatSymbol{
		Kind:  wasm.MakeAt(kind.Loc, wasm.ComdatSymbolKind(kind.Value)),
		Index: index,
	}), nil
}

func readSymbolInfo(r *Reader) (wasm.At[wasm.SymbolInfo], error) {
	start := r.Pos()
	var zero wasm.At[wasm.SymbolInfo]

	kind, err := r.ReadByte("symbol kind")
	if err != nil {
		return zero, err
	}
	flags, err := r.ReadUint32("symbol flags")
	if err != nil {
		return zero, err
	}
	base := wasm.SymbolBase{Flags: flags}
	undefined := flags.Value&wasm.SymbolFlagUndefined != 0

	var info wasm.SymbolInfo
	switch kind.Value {
	case wasm.SymbolInfoKindFunction, wasm.SymbolInfoKindGlobal, wasm.SymbolInfoKindEvent:
		index, err := r.ReadIndex("symbol target index")
		if err != nil {
			return zero, err
		}
		sym := wasm.IndexSymbol{
			SymbolBase: base,
			SymbolKind: wasm.MakeAt(kind.Loc, wasm.SymbolInfoKind(kind.Value)),
			Index:      index,
		}
		// Defined symbols carry their own name; undefined ones take the name
		// of the import they bind to.
		if !undefined {
			name, err := r.ReadName("symbol name")
			if err != nil {
				return zero, err
			}
			sym.Name = &name
		}
		info = sym
	case wasm.SymbolInfoKindData:
		name, err := r.ReadName("data symbol name")
		if err != nil {
			return zero, err
		}
		sym := wasm.DataSymbol{SymbolBase: base, Name: name}
		if !undefined {
			segment, err := r.ReadIndex("data symbol segment index")
			if err != nil {
				return zero, err
			}
			offset, err := r.ReadUint32("data symbol offset")
			if err != nil {
				return zero, err
			}
			size, err := r.ReadUint32("data symbol size")
			if err != nil {
				return zero, err
			}
			sym.Segment, sym.Offset, sym.Size = &segment, &offset, &size
		}
		info = sym
	case wasm.SymbolInfoKindSection:
		section, err := r.ReadIndex("section symbol index")
		if err != nil {
			return zero, err
		}
		info = wasm.SectionSymbol{SymbolBase: base, Section: section}
	default:
		return zero, r.fail(kind.Loc, "symbol kind: bad tag 0x%02x", kind.Value)
	}

	return wasm.MakeAt(r.locFrom(start), info), nil
}
