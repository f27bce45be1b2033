// Package format prints a parsed script back out in canonical shape:
// two-space indents, one object entry per line, blank lines between items
// but not inside declaration or comment streaks.
package format

import (
	"strconv"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/unkn0wn-root/rdscript/internal/ast"
	"github.com/unkn0wn-root/rdscript/internal/diag"
	"github.com/unkn0wn-root/rdscript/internal/parser"
)

// Script parses and formats source text. Documents with parse errors are
// refused rather than half-formatted.
func Script(src string) (string, []*diag.ContextualError) {
	prog := parser.Parse(src)
	if errs := prog.Errors(); len(errs) != 0 {
		return "", errs
	}
	return Source(prog) + "\n", nil
}

// Check reports whether src is already formatted, returning a unified diff
// against the canonical form when it is not.
func Check(name, src string) (diff string, clean bool, errs []*diag.ContextualError) {
	formatted, errs := Script(src)
	if len(errs) != 0 {
		return "", false, errs
	}
	if formatted == src {
		return "", true, nil
	}
	return udiff.Unified(name, name+".formatted", src, formatted), false, nil
}

// Source formats an error-free program, without a trailing newline.
func Source(prog *ast.Program) string {
	p := &printer{firstItem: true}
	for _, item := range prog.Items {
		p.item(item)
	}
	return p.b.String()
}

const tabSize = 2

type printer struct {
	b             strings.Builder
	indent        int
	firstItem     bool
	letStreak     int
	commentStreak int
	afterAttr     bool
}

func (p *printer) str(s string) {
	p.b.WriteString(s)
}

func (p *printer) nl() {
	p.b.WriteByte('\n')
}

func (p *printer) indentation() {
	p.str(strings.Repeat(" ", tabSize*p.indent))
}

func (p *printer) item(item ast.Item) {
	p.beforeItem(item)

	switch v := item.(type) {
	case *ast.LineComment:
		p.str(v.Value)
	case *ast.Set:
		p.str("set ")
		p.str(v.Identifier.Node.Name)
		p.str(" ")
		p.expr(v.Value)
	case *ast.Let:
		p.str("let ")
		p.str(v.Identifier.Node.Name)
		p.str(" = ")
		p.expr(v.Value)
	case *ast.Request:
		p.request(v)
	case *ast.Attribute:
		p.str("@")
		p.str(v.Identifier.Node.Name)
		if v.Args != nil {
			p.str("(")
			p.exprList(v.Args.Exprs)
			p.str(")")
		}
	case *ast.ExprItem:
		p.expr(v.X)
	}

	_, p.afterAttr = item.(*ast.Attribute)
}

// beforeItem separates items with a blank line, except inside a streak of
// lets or comments and right after an attribute.
func (p *printer) beforeItem(item ast.Item) {
	separator := p.separatorFor(item)
	if p.firstItem {
		p.firstItem = false
		return
	}
	if p.afterAttr {
		p.nl()
		return
	}
	p.str(separator)
}

func (p *printer) separatorFor(item ast.Item) string {
	switch item.(type) {
	case *ast.LineComment:
		p.letStreak = 0
		p.commentStreak++
		if p.commentStreak > 1 {
			return "\n"
		}
	case *ast.Let:
		p.commentStreak = 0
		p.letStreak++
		if p.letStreak > 1 {
			return "\n"
		}
	default:
		p.letStreak = 0
		p.commentStreak = 0
	}
	return "\n\n"
}

func (p *printer) request(req *ast.Request) {
	p.str(strings.ToLower(string(req.Method)))
	p.str(" ")

	switch ep := req.Endpoint.(type) {
	case *ast.URL:
		p.str(ep.Value)
	case *ast.Pathname:
		p.str(ep.Value)
	}

	if req.Block == nil {
		return
	}
	p.str(" {")
	if len(req.Block.Statements) == 0 {
		p.str("}")
		return
	}
	p.nl()
	for i, statement := range req.Block.Statements {
		p.indent++
		p.indentation()
		p.statement(statement)
		p.indent--
		if i < len(req.Block.Statements)-1 {
			p.nl()
		}
	}
	p.nl()
	p.str("}")
}

func (p *printer) statement(statement ast.Statement) {
	switch v := statement.(type) {
	case *ast.Header:
		p.str("header ")
		p.str(v.Name.Node.Raw)
		p.str(" ")
		p.expr(v.Value)
	case *ast.Body:
		p.str("body ")
		p.expr(v.Value)
	case *ast.LineComment:
		p.str(v.Value)
	}
}

func (p *printer) expr(x ast.Expression) {
	switch v := x.(type) {
	case *ast.Ident:
		p.str(v.Name)
	case *ast.StringLit:
		p.str(v.Raw)
	case *ast.BoolLit:
		p.str(strconv.FormatBool(v.Value))
	case *ast.NumberLit:
		p.str(strconv.FormatFloat(v.Value, 'f', -1, 64))
	case *ast.NullLit:
		p.str("null")
	case *ast.CallExpr:
		p.str(v.Identifier.Node.Name)
		p.str("(")
		p.exprList(v.Args.Exprs)
		p.str(")")
	case *ast.EmptyArray:
		p.str("[]")
	case *ast.EmptyObject:
		p.str("{}")
	case *ast.ArrayLit:
		p.str("[")
		for i, el := range v.Elems {
			if i > 0 {
				p.str(", ")
			}
			p.expr(el.X)
		}
		p.str("]")
	case *ast.ObjectLit:
		p.object(v)
	case *ast.TemplateLit:
		p.str("`")
		for _, part := range v.Parts {
			if part.Interpolated {
				p.str("${")
				p.expr(part.X)
				p.str("}")
				continue
			}
			p.str(part.X.(*ast.StringLit).Raw)
		}
		p.str("`")
	}
}

func (p *printer) object(obj *ast.ObjectLit) {
	p.str("{")
	p.nl()
	for i, entry := range obj.Entries {
		p.indent++
		p.indentation()
		p.str(entry.Key.Node.Name)
		p.str(": ")
		p.expr(entry.Value)
		if i < len(obj.Entries)-1 {
			p.str(",")
		}
		p.nl()
		p.indent--
	}
	p.indentation()
	p.str("}")
}

func (p *printer) exprList(exprs []ast.Expression) {
	for i, x := range exprs {
		if i > 0 {
			p.str(", ")
		}
		p.expr(x)
	}
}
