package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// NameSectionName is the name of the custom section carrying debug names.
const NameSectionName = "name"

// NameSubsectionIterator walks the subsections of a "name" custom section.
// Unknown subsection ids are yielded like known ones; dedicated readers
// decode the ones the caller cares about.
type NameSubsectionIterator struct {
	r      *Reader
	failed bool
}

// ReadNameSection wraps the contents of a "name" custom section.
func ReadNameSection(sec CustomSection, features wasm.Features, errs wasm.Errors) *NameSubsectionIterator {
	return &NameSubsectionIterator{
		r: NewReader(sec.Contents.Value, sec.Contents.Loc.Start, features, errs),
	}
}

// Next returns the next subsection frame.
func (it *NameSubsectionIterator) Next() (wasm.At[wasm.NameSubsection], bool) {
	var zero wasm.At[wasm.NameSubsection]
	if it.failed || it.r.Len() == 0 {
		return zero, false
	}
	start := it.r.Pos()
	id, err := it.r.ReadByte("name subsection id")
	if err != nil {
		it.failed = true
		return zero, false
	}
	data, err := it.r.ReadSizedSpan("name subsection contents")
	if err != nil {
		it.failed = true
		return zero, false
	}
	return wasm.MakeAt(it.r.locFrom(start), wasm.NameSubsection{
		ID:   wasm.MakeAt(id.Loc, wasm.NameSubsectionID(id.Value)),
		Data: data,
	}), true
}

// ReadModuleNameSubsection decodes a module-name subsection body.
func ReadModuleNameSubsection(sub wasm.NameSubsection, features wasm.Features, errs wasm.Errors) (wasm.At[string], bool) {
	r := NewReader(sub.Data.Value, sub.Data.Loc.Start, features, errs)
	name, err := r.ReadName("module name")
	if err != nil {
		return wasm.At[string]{}, false
	}
	return name, true
}

// ReadFunctionNamesSubsection wraps a function-names subsection as a lazy
// sequence of index/name pairs.
func ReadFunctionNamesSubsection(sub wasm.NameSubsection, features wasm.Features, errs wasm.Errors) (*LazySection[wasm.NameAssoc], error) {
	return NewLazySection(sub.Data, features, errs, readNameAssoc)
}

// ReadLocalNamesSubsection wraps a local-names subsection as a lazy sequence
// of per-function name maps.
func ReadLocalNamesSubsection(sub wasm.NameSubsection, features wasm.Features, errs wasm.Errors) (*LazySection[wasm.IndirectNameAssoc], error) {
	return NewLazySection(sub.Data, features, errs, readIndirectNameAssoc)
}

func readNameAssoc(r *Reader) (wasm.At[wasm.NameAssoc], error) {
	start := r.Pos()
	index, err := r.ReadIndex("name map index")
	if err != nil {
		return wasm.At[wasm.NameAssoc]{}, err
	}
	name, err := r.ReadName("name map entry")
	if err != nil {
		return wasm.At[wasm.NameAssoc]{}, err
	}
	return wasm.MakeAt(r.locFrom(start), wasm.NameAssoc{Index: index, Name: name}), nil
}

func readIndirectNameAssoc(r *Reader) (wasm.At[wasm.IndirectNameAssoc], error) {
	start := r.Pos()
	var zero wasm.At[wasm.IndirectNameAssoc]
	index, err := r.ReadIndex("function index")
	if err != nil {
		return zero, err
	}
	count, err := r.ReadUint32("local name count")
	if err != nil {
		return zero, err
	}
	names := make([]wasm.At[wasm.NameAssoc], 0, count.Value)
	for i := uint32(0); i < count.Value; i++ {
		assoc, err := readNameAssoc(r)
		if err != nil {
			return zero, err
		}
		names = append(names, assoc)
	}
	return wasm.MakeAt(r.locFrom(start), wasm.IndirectNameAssoc{Index: index, Names: names}), nil
}
