package diag

import (
	"strings"

	"github.com/unkn0wn-root/rdscript/internal/span"
)

// SourceContext carries the offending source line plus its neighbours so an
// error can be rendered without re-reading the script.
type SourceContext struct {
	Above    string
	Line     string
	Below    string
	HasAbove bool
	HasBelow bool
}

func NewSourceContext(loc span.Location, source string) SourceContext {
	lines := strings.Split(source, "\n")
	ctx := SourceContext{}

	at := loc.Line
	if at >= len(lines) {
		at = len(lines) - 1
	}
	if at < 0 {
		at = 0
	}
	if len(lines) > 0 {
		ctx.Line = lines[at]
	}
	if at > 0 {
		ctx.Above = lines[at-1]
		ctx.HasAbove = true
	}
	if at+1 < len(lines) {
		ctx.Below = lines[at+1]
		ctx.HasBelow = true
	}
	return ctx
}

// ContextualError pairs a structured error value with the span it covers and
// the surrounding source lines. Both parse and evaluation errors use this
// shape, and both render through the same formatter.
type ContextualError struct {
	Inner   error
	Span    span.Span
	Message string
	Context SourceContext
}

func New(inner error, sp span.Span, source string) *ContextualError {
	return &ContextualError{
		Inner:   inner,
		Span:    sp,
		Context: NewSourceContext(sp.End.Loc(), source),
	}
}

func (e *ContextualError) WithMessage(msg string) *ContextualError {
	e.Message = msg
	return e
}

func (e *ContextualError) Error() string {
	return Render(e, PlainStyles())
}

func (e *ContextualError) Unwrap() error {
	return e.Inner
}
