package wasm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("invalid version header")
	ErrInvalidByte        = errors.New("invalid byte")
	ErrInvalidSectionID   = errors.New("invalid section id")
	ErrUnexpectedEnd      = errors.New("unexpected end of input")
)

// Errors is the sink both the reader and the validator report through.
// Implementations track the context-descriptor stack pushed and popped
// around each site: ErrorList prepends it to each message, ZapErrors logs it
// as a separate field. The sink is single-writer for the duration of one parse or
// validation call.
type Errors interface {
	// PushContext enters a named parser or validator site, e.g. "export".
	PushContext(loc Location, desc string)
	// PopContext leaves the most recently pushed site.
	PopContext()
	// OnError reports a diagnostic at the given byte range.
	OnError(loc Location, message string)
}

// ContextGuard pushes desc and returns the matching pop, intended for defer:
//
//	defer wasm.ContextGuard(errs, value.Loc, "element segment")()
//
// The pop must run on every exit path, error or not.
func ContextGuard(e Errors, loc Location, desc string) func() {
	e.PushContext(loc, desc)
	return e.PopContext
}

// Diagnostic is one located message collected by ErrorList.
type Diagnostic struct {
	Loc     Location
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Loc, d.Message)
}

// ErrorList collects diagnostics in the order they are reported. That is not
// always the order of their locations: the section walk reports before any
// section is validated, sections are validated in canonical rather than file
// order, and module-level checks report after the sections they compare.
type ErrorList struct {
	Diagnostics []Diagnostic

	contexts []string
}

var _ Errors = (*ErrorList)(nil)

func (e *ErrorList) PushContext(_ Location, desc string) {
	e.contexts = append(e.contexts, desc)
}

func (e *ErrorList) PopContext() {
	e.contexts = e.contexts[:len(e.contexts)-1]
}

func (e *ErrorList) OnError(loc Location, message string) {
	if len(e.contexts) > 0 {
		message = strings.Join(e.contexts, ": ") + ": " + message
	}
	e.Diagnostics = append(e.Diagnostics, Diagnostic{Loc: loc, Message: message})
}

// HasErrors returns true if any diagnostic was reported.
func (e *ErrorList) HasErrors() bool {
	return len(e.Diagnostics) > 0
}
