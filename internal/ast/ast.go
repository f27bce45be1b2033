package ast

import (
	"github.com/unkn0wn-root/rdscript/internal/diag"
	"github.com/unkn0wn-root/rdscript/internal/span"
)

// Program is the root of a parsed script. It is always complete: constructs
// that failed to parse are present as Bad* nodes, never missing.
type Program struct {
	Source string
	Items  []Item
}

type Node interface {
	Span() span.Span
}

type Item interface {
	Node
	itemNode()
}

type Statement interface {
	Node
	stmtNode()
}

type Expression interface {
	Node
	exprNode()
}

type Endpoint interface {
	Node
	endpointNode()
}

type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	PUT    Method = "PUT"
	PATCH  Method = "PATCH"
	DELETE Method = "DELETE"
)

// ParsedNode is an AST slot that either parsed or holds the error it parsed
// into. Traversal code switches on Err == nil instead of catching anything.
type ParsedNode[T Node] struct {
	Node T
	Err  *diag.ContextualError
}

func Ok[T Node](node T) ParsedNode[T] {
	return ParsedNode[T]{Node: node}
}

func Bad[T Node](err *diag.ContextualError) ParsedNode[T] {
	return ParsedNode[T]{Err: err}
}

func (p ParsedNode[T]) IsOk() bool {
	return p.Err == nil
}

func (p ParsedNode[T]) Span() span.Span {
	if p.Err != nil {
		return p.Err.Span
	}
	return p.Node.Span()
}

// Ident names things: let/set targets, call targets, attribute names and
// object keys.
type Ident struct {
	Name string
	Sp   span.Span
}

func (*Ident) exprNode()      {}
func (e *Ident) Span() span.Span { return e.Sp }

// Literal keeps a token's raw text, used for comments and endpoints.
type Literal struct {
	Value string
	Sp    span.Span
}

func (l Literal) Span() span.Span { return l.Sp }

type StringLit struct {
	Raw   string
	Value string
	Sp    span.Span
}

func (*StringLit) exprNode()         {}
func (e *StringLit) Span() span.Span { return e.Sp }

type BoolLit struct {
	Value bool
	Sp    span.Span
}

func (*BoolLit) exprNode()         {}
func (e *BoolLit) Span() span.Span { return e.Sp }

type NumberLit struct {
	Value float64
	Raw   string
	Sp    span.Span
}

func (*NumberLit) exprNode()         {}
func (e *NumberLit) Span() span.Span { return e.Sp }

type NullLit struct {
	Sp span.Span
}

func (*NullLit) exprNode()         {}
func (e *NullLit) Span() span.Span { return e.Sp }

type Arguments struct {
	Sp    span.Span
	Exprs []Expression
}

type CallExpr struct {
	Identifier ParsedNode[*Ident]
	Args       Arguments
}

func (*CallExpr) exprNode() {}
func (e *CallExpr) Span() span.Span {
	return e.Identifier.Span().ToEndOf(e.Args.Sp)
}

// ArrayElement wraps an element with any recovery errors recorded while
// parsing it, a missing separating comma mostly.
type ArrayElement struct {
	X    Expression
	Errs []*diag.ContextualError
}

type ArrayLit struct {
	Sp    span.Span
	Elems []ArrayElement
}

func (*ArrayLit) exprNode()         {}
func (e *ArrayLit) Span() span.Span { return e.Sp }

// ObjectEntry is one key/value pair. Entries keep source order; a duplicate
// key keeps its entry but carries the error in Errs.
type ObjectEntry struct {
	Key   ParsedNode[*Ident]
	Value Expression
	Errs  []*diag.ContextualError
}

type ObjectLit struct {
	Sp      span.Span
	Entries []ObjectEntry
}

func (*ObjectLit) exprNode()         {}
func (e *ObjectLit) Span() span.Span { return e.Sp }

type EmptyArray struct {
	Sp span.Span
}

func (*EmptyArray) exprNode()         {}
func (e *EmptyArray) Span() span.Span { return e.Sp }

type EmptyObject struct {
	Sp span.Span
}

func (*EmptyObject) exprNode()         {}
func (e *EmptyObject) Span() span.Span { return e.Sp }

// TemplatePart is one piece of a template string, either a raw text
// segment or an interpolated expression.
type TemplatePart struct {
	X            Expression
	Interpolated bool
}

// TemplateLit is a backtick string with at least one interpolation. Parts
// alternate between raw segments and interpolated expressions. Templates
// without interpolations parse as a plain StringLit instead.
type TemplateLit struct {
	Sp    span.Span
	Parts []TemplatePart
}

func (*TemplateLit) exprNode()         {}
func (e *TemplateLit) Span() span.Span { return e.Sp }

type BadExpr struct {
	Err *diag.ContextualError
}

func (*BadExpr) exprNode()         {}
func (e *BadExpr) Span() span.Span { return e.Err.Span }

type URL struct {
	Literal
}

func (*URL) endpointNode() {}

type Pathname struct {
	Literal
}

func (*Pathname) endpointNode() {}

// BadEndpoint records a missing or malformed endpoint. The surrounding
// request still parses so its block stays reachable.
type BadEndpoint struct {
	Err *diag.ContextualError
}

func (*BadEndpoint) endpointNode()     {}
func (e *BadEndpoint) Span() span.Span { return e.Err.Span }

type Block struct {
	Statements []Statement
	Sp         span.Span
}

func (b *Block) Span() span.Span { return b.Sp }

type Set struct {
	Identifier ParsedNode[*Ident]
	Value      Expression
}

func (*Set) itemNode() {}
func (i *Set) Span() span.Span {
	return i.Identifier.Span().ToEndOf(i.Value.Span())
}

type Let struct {
	Identifier ParsedNode[*Ident]
	Value      Expression
}

func (*Let) itemNode() {}
func (i *Let) Span() span.Span {
	return i.Identifier.Span().ToEndOf(i.Value.Span())
}

// LineComment serves both as a top-level item and a block statement.
type LineComment struct {
	Literal
}

func (*LineComment) itemNode() {}
func (*LineComment) stmtNode() {}

type Request struct {
	Method   Method
	Endpoint Endpoint
	Block    *Block
	Sp       span.Span
}

func (*Request) itemNode()         {}
func (i *Request) Span() span.Span { return i.Sp }

type Attribute struct {
	Location   span.Pos
	Identifier ParsedNode[*Ident]
	Args       *Arguments
}

func (*Attribute) itemNode() {}
func (i *Attribute) Span() span.Span {
	if i.Args != nil {
		return span.Span{Start: i.Location, End: i.Args.Sp.End}
	}
	return span.Span{Start: i.Location, End: i.Identifier.Span().End}
}

type ExprItem struct {
	X Expression
}

func (*ExprItem) itemNode()         {}
func (i *ExprItem) Span() span.Span { return i.X.Span() }

type BadItem struct {
	Err *diag.ContextualError
}

func (*BadItem) itemNode()         {}
func (i *BadItem) Span() span.Span { return i.Err.Span }

type Header struct {
	Name  ParsedNode[*StringLit]
	Value Expression
}

func (*Header) stmtNode() {}
func (s *Header) Span() span.Span {
	return s.Name.Span().ToEndOf(s.Value.Span())
}

type Body struct {
	Value Expression
	Start span.Pos
}

func (*Body) stmtNode() {}
func (s *Body) Span() span.Span {
	return s.Start.ToEndOf(s.Value.Span())
}

type BadStmt struct {
	Err *diag.ContextualError
}

func (*BadStmt) stmtNode()         {}
func (s *BadStmt) Span() span.Span { return s.Err.Span }
