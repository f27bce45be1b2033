package ast

import (
	"github.com/unkn0wn-root/rdscript/internal/diag"
	"github.com/unkn0wn-root/rdscript/internal/span"
)

// Errors collects every parse error embedded in the tree, in source order.
// Each recorded error appears exactly once: a failed slot carries its error
// itself, never a copy from a sibling.
func (p *Program) Errors() []*diag.ContextualError {
	var errs []*diag.ContextualError
	for _, item := range p.Items {
		errs = itemErrors(errs, item)
	}
	return errs
}

func itemErrors(errs []*diag.ContextualError, item Item) []*diag.ContextualError {
	switch v := item.(type) {
	case *Set:
		errs = parsedErr(errs, v.Identifier)
		errs = exprErrors(errs, v.Value)
	case *Let:
		errs = parsedErr(errs, v.Identifier)
		errs = exprErrors(errs, v.Value)
	case *Request:
		if bad, ok := v.Endpoint.(*BadEndpoint); ok {
			errs = append(errs, bad.Err)
		}
		if v.Block != nil {
			for _, stmt := range v.Block.Statements {
				errs = stmtErrors(errs, stmt)
			}
		}
	case *Attribute:
		errs = parsedErr(errs, v.Identifier)
		if v.Args != nil {
			for _, arg := range v.Args.Exprs {
				errs = exprErrors(errs, arg)
			}
		}
	case *ExprItem:
		errs = exprErrors(errs, v.X)
	case *BadItem:
		errs = append(errs, v.Err)
	}
	return errs
}

func stmtErrors(errs []*diag.ContextualError, stmt Statement) []*diag.ContextualError {
	switch v := stmt.(type) {
	case *Header:
		errs = parsedStringErr(errs, v.Name)
		errs = exprErrors(errs, v.Value)
	case *Body:
		errs = exprErrors(errs, v.Value)
	case *BadStmt:
		errs = append(errs, v.Err)
	}
	return errs
}

func exprErrors(errs []*diag.ContextualError, expr Expression) []*diag.ContextualError {
	switch v := expr.(type) {
	case *BadExpr:
		errs = append(errs, v.Err)
	case *CallExpr:
		errs = parsedErr(errs, v.Identifier)
		for _, arg := range v.Args.Exprs {
			errs = exprErrors(errs, arg)
		}
	case *ArrayLit:
		for _, el := range v.Elems {
			errs = append(errs, el.Errs...)
			errs = exprErrors(errs, el.X)
		}
	case *ObjectLit:
		for _, entry := range v.Entries {
			errs = append(errs, entry.Errs...)
			errs = parsedErr(errs, entry.Key)
			errs = exprErrors(errs, entry.Value)
		}
	case *TemplateLit:
		for _, part := range v.Parts {
			errs = exprErrors(errs, part.X)
		}
	}
	return errs
}

func parsedErr(errs []*diag.ContextualError, p ParsedNode[*Ident]) []*diag.ContextualError {
	if p.Err != nil {
		errs = append(errs, p.Err)
	}
	return errs
}

func parsedStringErr(errs []*diag.ContextualError, p ParsedNode[*StringLit]) []*diag.ContextualError {
	if p.Err != nil {
		errs = append(errs, p.Err)
	}
	return errs
}

// Variables returns the identifiers declared by let items, in source order.
func (p *Program) Variables() []*Ident {
	var out []*Ident
	for _, item := range p.Items {
		let, ok := item.(*Let)
		if !ok || !let.Identifier.IsOk() {
			continue
		}
		out = append(out, let.Identifier.Node)
	}
	return out
}

// VariablesBefore returns the let-declared identifiers whose declaration
// starts before loc. Completion inside an expression only offers names that
// are already in scope at that point.
func (p *Program) VariablesBefore(loc span.Location) []*Ident {
	var out []*Ident
	for _, ident := range p.Variables() {
		if ident.Sp.Start.Loc().Before(loc) {
			out = append(out, ident)
		}
	}
	return out
}

// ItemAt returns the top-level item whose span contains loc, or nil.
func (p *Program) ItemAt(loc span.Location) Item {
	for _, item := range p.Items {
		if item.Span().Contains(loc) {
			return item
		}
	}
	return nil
}

// NodeChainAt returns every node whose span contains loc, outermost first.
// The last element is the innermost node under the cursor.
func (p *Program) NodeChainAt(loc span.Location) []Node {
	item := p.ItemAt(loc)
	if item == nil {
		return nil
	}
	var chain []Node
	Inspect(item, func(n Node) bool {
		if !n.Span().Contains(loc) {
			return false
		}
		chain = append(chain, n)
		return true
	})
	return chain
}
