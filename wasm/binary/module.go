package binary

import (
	"bytes"

	"github.com/wasmlab/wasmbin/wasm"
)

// magic is the 4 byte preamble (literally "\0asm") of the binary format.
var magic = []byte{0x00, 0x61, 0x73, 0x6d}

// version is the format version, constant across known specification
// versions.
var version = []byte{0x01, 0x00, 0x00, 0x00}

const headerSize = 8

// Module is a lazily materialized view of a module's byte buffer. The
// buffer is never copied and must outlive the view and everything decoded
// from it.
type Module struct {
	buf      []byte
	features wasm.Features
	errs     wasm.Errors

	walked  bool
	walkOK  bool
	known   [wasm.SectionIDEvent + 1]*wasm.At[[]byte]
	customs []CustomSection
}

// ParseModule checks the 8-byte header and returns a lazy view of the
// sections that follow. Section bodies are not decoded until iterated.
func ParseModule(buf []byte, features wasm.Features, errs wasm.Errors) (*Module, error) {
	if len(buf) < 4 || !bytes.Equal(buf[:4], magic) {
		end := min(len(buf), 4)
		errs.OnError(wasm.Location{Start: 0, End: uint32(end)}, "magic mismatch")
		return nil, wasm.ErrInvalidMagicNumber
	}
	if len(buf) < headerSize || !bytes.Equal(buf[4:headerSize], version) {
		end := min(len(buf), headerSize)
		errs.OnError(wasm.Location{Start: 4, End: uint32(end)}, "version mismatch")
		return nil, wasm.ErrInvalidVersion
	}
	return &Module{buf: buf, features: features, errs: errs}, nil
}

// Features returns the feature set the view decodes under.
func (m *Module) Features() wasm.Features {
	return m.features
}

// Errors returns the view's sink.
func (m *Module) Errors() wasm.Errors {
	return m.errs
}

// Sections starts a fresh traversal over the module's sections in file
// order. Each traversal re-parses the section framing.
func (m *Module) Sections() *ModuleIterator {
	return &ModuleIterator{
		r:     NewReader(m.buf[headerSize:], headerSize, m.features, m.errs),
		order: newSectionOrder(),
	}
}

// ModuleIterator partitions the header-stripped byte stream into sections.
type ModuleIterator struct {
	r      *Reader
	order  sectionOrder
	failed bool
}

// Next returns the next well-ordered section. Sections violating the order
// check are reported and skipped, as are custom sections whose name cannot be
// read; a read error in the section framing terminates the walk.
func (it *ModuleIterator) Next() (Section, bool) {
	for {
		if it.failed || it.r.Len() == 0 {
			return nil, false
		}

		start := it.r.Pos()
		id, err := it.r.ReadByte("section id")
		if err != nil {
			it.failed = true
			return nil, false
		}
		if id.Value > wasm.SectionIDEvent {
			it.r.fail(id.Loc, "unknown section id %d", id.Value)
			it.failed = true
			return nil, false
		}
		contents, err := it.r.ReadSizedSpan("section contents")
		if err != nil {
			it.failed = true
			return nil, false
		}
		loc := wasm.Location{Start: start, End: it.r.Pos()}

		if id.Value == wasm.SectionIDCustom {
			cr := it.r.sub(contents)
			name, err := cr.ReadName("custom section name")
			if err != nil {
				// The framing is intact, so the walk continues with the next
				// section.
				continue
			}
			body, _ := cr.ReadBytes(uint32(cr.Len()), "custom section contents")
			return CustomSection{Name: name, Contents: body, loc: loc}, true
		}

		if msg := it.order.check(id.Value); msg != "" {
			it.r.Errors().OnError(id.Loc, msg)
			continue
		}
		return KnownSection{ID: wasm.MakeAt(id.Loc, wasm.SectionID(id.Value)), Contents: contents, loc: loc}, true
	}
}

// Done returns true if the walk reached the end of input without a read
// error in the section framing.
func (it *ModuleIterator) Done() bool {
	return !it.failed && it.r.Len() == 0
}

// Walk traverses every section once, recording a table of contents of the
// known sections and the custom sections, and returns true if the walk
// completed cleanly. Subsequent calls are no-ops returning the first
// verdict.
func (m *Module) Walk() bool {
	if m.walked {
		return m.walkOK
	}
	m.walked = true
	it := m.Sections()
	for {
		sec, ok := it.Next()
		if !ok {
			break
		}
		switch s := sec.(type) {
		case KnownSection:
			contents := s.Contents
			m.known[s.ID.Value] = &contents
		case CustomSection:
			m.customs = append(m.customs, s)
		}
	}
	m.walkOK = it.Done()
	return m.walkOK
}

// knownSection returns the recorded span of a known section, walking first
// if needed.
func (m *Module) knownSection(id wasm.SectionID) (wasm.At[[]byte], bool) {
	m.Walk()
	if s := m.known[id]; s != nil {
		return *s, true
	}
	return wasm.At[[]byte]{}, false
}

// CustomSections returns the module's custom sections in file order.
func (m *Module) CustomSections() []CustomSection {
	m.Walk()
	return m.customs
}

func lazy[T any](m *Module, id wasm.SectionID, read ReadFunc[T]) (*LazySection[T], bool) {
	span, ok := m.knownSection(id)
	if !ok {
		return nil, false
	}
	s, err := NewLazySection(span, m.features, m.errs, read)
	if err != nil {
		return nil, false
	}
	return s, true
}

// TypeSection returns a lazy view of the type section, or false if absent
// or unreadable.
func (m *Module) TypeSection() (*LazySection[wasm.FunctionType], bool) {
	return lazy(m, wasm.SectionIDType, readFunctionType)
}

// ImportSection returns a lazy view of the import section.
func (m *Module) ImportSection() (*LazySection[wasm.Import], bool) {
	return lazy(m, wasm.SectionIDImport, readImport)
}

// FunctionSection returns a lazy view of the function section.
func (m *Module) FunctionSection() (*LazySection[wasm.Function], bool) {
	return lazy(m, wasm.SectionIDFunction, readFunction)
}

// TableSection returns a lazy view of the table section.
func (m *Module) TableSection() (*LazySection[wasm.Table], bool) {
	return lazy(m, wasm.SectionIDTable, readTable)
}

// MemorySection returns a lazy view of the memory section.
func (m *Module) MemorySection() (*LazySection[wasm.Memory], bool) {
	return lazy(m, wasm.SectionIDMemory, readMemory)
}

// GlobalSection returns a lazy view of the global section.
func (m *Module) GlobalSection() (*LazySection[wasm.Global], bool) {
	return lazy(m, wasm.SectionIDGlobal, readGlobal)
}

// EventSection returns a lazy view of the event section.
func (m *Module) EventSection() (*LazySection[wasm.Event], bool) {
	return lazy(m, wasm.SectionIDEvent, readEvent)
}

// ExportSection returns a lazy view of the export section.
func (m *Module) ExportSection() (*LazySection[wasm.Export], bool) {
	return lazy(m, wasm.SectionIDExport, readExport)
}

// ElementSection returns a lazy view of the element section.
func (m *Module) ElementSection() (*LazySection[wasm.ElementSegment], bool) {
	return lazy(m, wasm.SectionIDElement, readElementSegment)
}

// CodeSection returns a lazy view of the code section.
func (m *Module) CodeSection() (*LazySection[wasm.Code], bool) {
	return lazy(m, wasm.SectionIDCode, readCode)
}

// DataSection returns a lazy view of the data section.
func (m *Module) DataSection() (*LazySection[wasm.DataSegment], bool) {
	return lazy(m, wasm.SectionIDData, readDataSegment)
}

// StartSection decodes the start section, which has a single entry and no
// count prefix.
func (m *Module) StartSection() (wasm.At[wasm.Start], bool) {
	return single(m, wasm.SectionIDStart, readStart)
}

// DataCountSection decodes the data count section.
func (m *Module) DataCountSection() (wasm.At[wasm.DataCount], bool) {
	return single(m, wasm.SectionIDDataCount, readDataCount)
}

func single[T any](m *Module, id wasm.SectionID, read ReadFunc[T]) (wasm.At[T], bool) {
	var zero wasm.At[T]
	span, ok := m.knownSection(id)
	if !ok {
		return zero, false
	}
	r := NewReader(span.Value, span.Loc.Start, m.features, m.errs)
	v, err := read(r)
	if err != nil {
		return zero, false
	}
	if r.Len() > 0 {
		loc := wasm.Location{Start: r.Pos(), End: r.Pos() + uint32(r.Len())}
		r.fail(loc, "section has trailing bytes")
		return zero, false
	}
	return v, true
}
