package binary

import (
	"strings"

	"github.com/wasmlab/wasmbin/wasm"
)

// RelocSectionPrefix prefixes the name of every relocation custom section;
// the suffix names the target section.
const RelocSectionPrefix = "reloc."

// IsRelocSection returns true for custom sections carrying relocations.
func IsRelocSection(sec CustomSection) bool {
	return strings.HasPrefix(sec.Name.Value, RelocSectionPrefix)
}

// RelocationSection is the decoded frame of a "reloc.*" custom section: the
// index of the section the relocations apply to, and a lazy sequence of
// entries.
type RelocationSection struct {
	SectionIndex wasm.At[wasm.Index]
	Entries      *LazySection[wasm.RelocationEntry]
}

// ReadRelocationSection decodes the frame of a relocation custom section.
func ReadRelocationSection(sec CustomSection, features wasm.Features, errs wasm.Errors) (*RelocationSection, error) {
	r := NewReader(sec.Contents.Value, sec.Contents.Loc.Start, features, errs)
	sectionIndex, err := r.ReadIndex("relocation target section index")
	if err != nil {
		return nil, err
	}
	rest, err := r.ReadBytes(uint32(r.Len()), "relocation entries")
	if err != nil {
		return nil, err
	}
	entries, err := NewLazySection(rest, features, errs, readRelocationEntry)
	if err != nil {
		return nil, err
	}
	return &RelocationSection{SectionIndex: sectionIndex, Entries: entries}, nil
}

func readRelocationEntry(r *Reader) (wasm.At[wasm.RelocationEntry], error) {
	start := r.Pos()
	var zero wasm.At[wasm.RelocationEntry]

	typ, err := r.ReadByte("relocation type")
	if err != nil {
		return zero, err
	}
	if typ.Value > wasm.RelocEventIndexLEB {
		return zero, r.fail(typ.Loc, "relocation type: bad tag 0x%02x", typ.Value)
	}
	offset, err := r.ReadUint32("relocation offset")
	if err != nil {
		return zero, err
	}
	index, err := r.ReadIndex("relocation index")
	if err != nil {
		return zero, err
	}
	entry := wasm.RelocationEntry{
		Type:   wasm.MakeAt(typ.Loc, wasm.RelocationType(typ.Value)),
		Offset: offset,
		Index:  index,
	}
	if wasm.HasAddend(typ.Value) {
		addend, err := r.ReadInt32("relocation addend")
		if err != nil {
			return zero, err
		}
		entry.Addend = &addend
	}
	return wasm.MakeAt(r.locFrom(start), entry), nil
}
