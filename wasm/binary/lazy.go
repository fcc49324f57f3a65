package binary

import (
	"github.com/wasmlab/wasmbin/wasm"
)

// ReadFunc decodes one entity from the cursor.
type ReadFunc[T any] func(*Reader) (wasm.At[T], error)

// LazySection wraps a count-prefixed section span and an entity reader. The
// count is read eagerly; entries are parsed on demand. Each call to Iterate
// restarts the sequence, re-parsing from the start of the span, and each
// traversal reports a given read error at most once.
type LazySection[T any] struct {
	count    wasm.At[uint32]
	body     wasm.At[[]byte]
	features wasm.Features
	errs     wasm.Errors
	read     ReadFunc[T]
}

// NewLazySection reads the count prefix of span and wraps the remainder.
func NewLazySection[T any](span wasm.At[[]byte], features wasm.Features, errs wasm.Errors, read ReadFunc[T]) (*LazySection[T], error) {
	r := NewReader(span.Value, span.Loc.Start, features, errs)
	count, err := r.ReadUint32("section entry count")
	if err != nil {
		return nil, err
	}
	body, err := r.ReadBytes(uint32(r.Len()), "section contents")
	if err != nil {
		return nil, err
	}
	return &LazySection[T]{
		count:    count,
		body:     body,
		features: features,
		errs:     errs,
		read:     read,
	}, nil
}

// Count returns the declared number of entries.
func (s *LazySection[T]) Count() uint32 {
	return s.count.Value
}

// CountLoc returns the location of the count prefix.
func (s *LazySection[T]) CountLoc() wasm.Location {
	return s.count.Loc
}

// Iterate starts a fresh forward traversal.
func (s *LazySection[T]) Iterate() *SectionIterator[T] {
	return &SectionIterator[T]{
		r:         NewReader(s.body.Value, s.body.Loc.Start, s.features, s.errs),
		remaining: s.count.Value,
		read:      s.read,
	}
}

// Each traverses the whole section, calling fn per entity. It returns false
// if the traversal ended in a read error.
func (s *LazySection[T]) Each(fn func(wasm.At[T])) bool {
	it := s.Iterate()
	for {
		v, ok := it.Next()
		if !ok {
			return it.Done()
		}
		fn(v)
	}
}

// SectionIterator is one forward traversal of a LazySection.
type SectionIterator[T any] struct {
	r         *Reader
	remaining uint32
	read      ReadFunc[T]
	failed    bool
	finished  bool
}

// Next parses and returns the next entity. It returns false when the
// declared count is exhausted or a read error terminated the sequence; use
// Done to distinguish.
func (it *SectionIterator[T]) Next() (wasm.At[T], bool) {
	var zero wasm.At[T]
	if it.failed || it.finished {
		return zero, false
	}
	if it.remaining == 0 {
		it.finished = true
		// On successful completion the span must be fully consumed.
		if it.r.Len() > 0 {
			it.failed = true
			loc := wasm.Location{Start: it.r.Pos(), End: it.r.Pos() + uint32(it.r.Len())}
			it.r.Errors().OnError(loc, "section has trailing bytes")
		}
		return zero, false
	}
	v, err := it.read(it.r)
	if err != nil {
		it.failed = true
		return zero, false
	}
	it.remaining--
	return v, true
}

// Done returns true if the traversal completed without a read error.
func (it *SectionIterator[T]) Done() bool {
	return it.finished && !it.failed
}
