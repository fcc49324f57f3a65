package wasm

import (
	"strings"

	"go.uber.org/zap"
)

// ZapErrors is an Errors sink that forwards every diagnostic to a structured
// logger. Useful when a host embeds validation into a service and wants
// diagnostics in its log stream instead of (or in addition to) a collected
// list.
type ZapErrors struct {
	logger   *zap.Logger
	next     Errors
	contexts []string

	// Count is the number of diagnostics seen so far.
	Count int
}

var _ Errors = (*ZapErrors)(nil)

// NewZapErrors returns a sink logging through logger. A nil logger falls back
// to zap.NewNop. next, if non-nil, receives every callback as well, so a
// caller can both log and collect.
func NewZapErrors(logger *zap.Logger, next Errors) *ZapErrors {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapErrors{logger: logger, next: next}
}

func (z *ZapErrors) PushContext(loc Location, desc string) {
	z.contexts = append(z.contexts, desc)
	if z.next != nil {
		z.next.PushContext(loc, desc)
	}
}

func (z *ZapErrors) PopContext() {
	z.contexts = z.contexts[:len(z.contexts)-1]
	if z.next != nil {
		z.next.PopContext()
	}
}

func (z *ZapErrors) OnError(loc Location, message string) {
	z.Count++
	z.logger.Warn(message,
		zap.String("context", strings.Join(z.contexts, ": ")),
		zap.Uint32("start", loc.Start),
		zap.Uint32("end", loc.End),
	)
	if z.next != nil {
		z.next.OnError(loc, message)
	}
}
