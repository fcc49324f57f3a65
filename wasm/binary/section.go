package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// Section is the discriminated union of the two section forms.
type Section interface {
	section()
	// Loc returns the byte range of the whole section including its id and
	// size prefix.
	Loc() wasm.Location
}

// KnownSection is a section with a standard id; Contents is the sized span
// that follows the id.
type KnownSection struct {
	ID       wasm.At[wasm.SectionID]
	Contents wasm.At[[]byte]

	loc wasm.Location
}

// CustomSection is an id-0 section; its name prefixes the body.
type CustomSection struct {
	Name     wasm.At[string]
	Contents wasm.At[[]byte]

	loc wasm.Location
}

func (KnownSection) section()  {}
func (CustomSection) section() {}

func (s KnownSection) Loc() wasm.Location  { return s.loc }
func (s CustomSection) Loc() wasm.Location { return s.loc }

// sectionOrder is the walker's order check: the last known id seen. A known
// id must be strictly greater than every one before it; custom sections are
// unconstrained.
type sectionOrder struct {
	lastID int
}

func newSectionOrder() sectionOrder {
	return sectionOrder{lastID: -1}
}

// check returns "" when the id may follow the ones already seen, else the
// error message to report. The state advances only on success, so a skipped
// section leaves the order unchanged.
func (o *sectionOrder) check(id wasm.SectionID) string {
	switch {
	case int(id) == o.lastID:
		return "duplicate section " + wasm.SectionIDName(id)
	case int(id) < o.lastID:
		return "section " + wasm.SectionIDName(id) + " out of order"
	}
	o.lastID = int(id)
	return ""
}
