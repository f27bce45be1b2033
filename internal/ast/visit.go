package ast

// Inspect walks the tree rooted at n in source order, calling f for every
// node. If f returns false the node's children are skipped. Bad nodes and
// error slots are leaves.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch v := n.(type) {
	case *Set:
		inspectParsed(v.Identifier, f)
		Inspect(v.Value, f)
	case *Let:
		inspectParsed(v.Identifier, f)
		Inspect(v.Value, f)
	case *Request:
		if v.Endpoint != nil {
			Inspect(v.Endpoint, f)
		}
		if v.Block != nil {
			Inspect(v.Block, f)
		}
	case *Attribute:
		inspectParsed(v.Identifier, f)
		if v.Args != nil {
			for _, arg := range v.Args.Exprs {
				Inspect(arg, f)
			}
		}
	case *ExprItem:
		Inspect(v.X, f)
	case *Block:
		for _, stmt := range v.Statements {
			Inspect(stmt, f)
		}
	case *Header:
		inspectParsed(v.Name, f)
		Inspect(v.Value, f)
	case *Body:
		Inspect(v.Value, f)
	case *CallExpr:
		inspectParsed(v.Identifier, f)
		for _, arg := range v.Args.Exprs {
			Inspect(arg, f)
		}
	case *ArrayLit:
		for _, el := range v.Elems {
			Inspect(el.X, f)
		}
	case *ObjectLit:
		for _, entry := range v.Entries {
			inspectParsed(entry.Key, f)
			Inspect(entry.Value, f)
		}
	case *TemplateLit:
		for _, part := range v.Parts {
			Inspect(part.X, f)
		}
	}
}

func inspectParsed[T Node](p ParsedNode[T], f func(Node) bool) {
	if p.IsOk() {
		Inspect(p.Node, f)
	}
}

// Walk runs Inspect over every top-level item of the program.
func Walk(p *Program, f func(Node) bool) {
	for _, item := range p.Items {
		Inspect(item, f)
	}
}
