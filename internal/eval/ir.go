package eval

import (
	"github.com/unkn0wn-root/rdscript/internal/ast"
	"github.com/unkn0wn-root/rdscript/internal/span"
)

// LogDestination says where a request's response body should be written.
// An empty Path means standard output.
type LogDestination struct {
	Path string
}

func (d LogDestination) IsStd() bool {
	return d.Path == ""
}

type Header struct {
	Name  string
	Value string
}

// Request is a fully resolved HTTP request description, every expression
// already evaluated to plain strings.
type Request struct {
	Method  ast.Method
	URL     string
	Headers []Header
	Body    *string
}

// RequestItem pairs a resolved request with the attribute-driven metadata
// that controls how it runs.
type RequestItem struct {
	Name string
	Dbg  bool
	Log  *LogDestination
	Span span.Span
	Request
}
