package langsvc

import (
	"slices"

	"github.com/unkn0wn-root/rdscript/internal/ast"
	"github.com/unkn0wn-root/rdscript/internal/span"
)

type CompletionKind int

const (
	CompletionKeyword CompletionKind = iota
	CompletionFunction
	CompletionVariable
	CompletionConstant
)

type Completion struct {
	Label      string
	Kind       CompletionKind
	InsertText string
}

type suggestion int

const (
	suggestNothing suggestion = iota
	suggestIdentifiers
	suggestSetIdentifiers
	suggestFunctions
	suggestStatementKeywords
	suggestItemKeywords
	suggestAttributes
	suggestEnvVars
	suggestHeaders
)

// CompletionsAt resolves what may be typed at loc. The walk is depth first
// and the first suggestion wins: the deepest node that suggested something
// had to have contained the cursor.
func CompletionsAt(prog *ast.Program, loc span.Location, env EnvSource) []Completion {
	c := &completer{
		prog: prog,
		loc:  loc,
		vars: prog.VariablesBefore(loc),
	}
	for _, item := range prog.Items {
		c.visitItem(item)
	}
	if len(c.list) == 0 {
		c.suggest(suggestItemKeywords)
	}
	return c.resolve(c.list[0], env)
}

type completer struct {
	prog *ast.Program
	loc  span.Location
	list []suggestion
	vars []*ast.Ident
}

func (c *completer) suggest(s suggestion) {
	if !slices.Contains(c.list, s) {
		c.list = append(c.list, s)
	}
}

func (c *completer) visitItem(item ast.Item) {
	if !item.Span().Contains(c.loc) {
		return
	}

	switch v := item.(type) {
	case *ast.Set:
		if spanOnOrAfter(v.Identifier.Span(), c.loc) {
			c.suggest(suggestSetIdentifiers)
			return
		}
		c.visitExpr(v.Value)
		c.suggest(suggestIdentifiers)
	case *ast.Let:
		if spanOnOrAfter(v.Identifier.Span(), c.loc) {
			return
		}
		c.visitExpr(v.Value)
		c.suggest(suggestIdentifiers)
	case *ast.Request:
		if v.Block == nil || !v.Block.Sp.Contains(c.loc) {
			return
		}
		for _, stmt := range v.Block.Statements {
			c.visitStatement(stmt)
		}
		c.suggest(suggestStatementKeywords)
	case *ast.Attribute:
		if spanOnOrAfter(v.Identifier.Span(), c.loc) {
			c.suggest(suggestAttributes)
			return
		}
		if v.Args != nil {
			for _, arg := range v.Args.Exprs {
				c.visitExpr(arg)
			}
			if v.Args.Sp.Contains(c.loc) {
				c.suggest(suggestIdentifiers)
			}
		}
	}
}

func (c *completer) visitStatement(stmt ast.Statement) {
	if !stmt.Span().Contains(c.loc) {
		return
	}

	switch v := stmt.(type) {
	case *ast.Header:
		if spanOnOrAfter(v.Name.Span(), c.loc) {
			c.suggest(suggestHeaders)
			return
		}
		if spanAfter(v.Value.Span(), c.loc) {
			c.suggest(suggestIdentifiers)
			return
		}
		c.visitExpr(v.Value)
	case *ast.Body:
		c.visitExpr(v.Value)
		c.suggest(suggestIdentifiers)
	}
}

func (c *completer) visitExpr(x ast.Expression) {
	if !x.Span().Contains(c.loc) {
		return
	}

	switch v := x.(type) {
	case *ast.Ident:
		c.suggest(suggestIdentifiers)
	case *ast.CallExpr:
		c.visitCall(v)
	case *ast.ArrayLit:
		for _, el := range v.Elems {
			c.visitExpr(el.X)
		}
		c.suggest(suggestIdentifiers)
	case *ast.EmptyArray:
		c.suggest(suggestIdentifiers)
	case *ast.EmptyObject:
		c.suggest(suggestNothing)
	case *ast.ObjectLit:
		for _, entry := range v.Entries {
			c.visitExpr(entry.Value)
		}
		c.suggest(suggestNothing)
	case *ast.TemplateLit:
		for _, part := range v.Parts {
			if part.Interpolated {
				c.visitExpr(part.X)
			}
		}
	}
}

func (c *completer) visitCall(call *ast.CallExpr) {
	if !call.Identifier.IsOk() {
		c.suggest(suggestFunctions)
		return
	}
	if !call.Args.Sp.Contains(c.loc) {
		return
	}

	if call.Identifier.Node.Name == "env" {
		for _, arg := range call.Args.Exprs {
			if !arg.Span().Contains(c.loc) {
				continue
			}
			if _, ok := arg.(*ast.StringLit); ok {
				c.suggest(suggestEnvVars)
			}
			return
		}
		c.suggest(suggestIdentifiers)
		return
	}

	for _, arg := range call.Args.Exprs {
		c.visitExpr(arg)
	}
	c.suggest(suggestIdentifiers)
}

func (c *completer) resolve(s suggestion, env EnvSource) []Completion {
	switch s {
	case suggestIdentifiers:
		out := builtinCompletions()
		for _, v := range c.vars {
			out = append(out, Completion{Label: v.Name, Kind: CompletionVariable, InsertText: v.Name})
		}
		return out
	case suggestFunctions:
		return builtinCompletions()
	case suggestStatementKeywords:
		return keywordCompletions("header", "body")
	case suggestItemKeywords:
		return keywordCompletions("let", "set", "get", "post", "put", "patch", "delete")
	case suggestSetIdentifiers:
		return []Completion{{Label: "BASE_URL", Kind: CompletionConstant, InsertText: "BASE_URL"}}
	case suggestAttributes:
		return attributeCompletions()
	case suggestEnvVars:
		var out []Completion
		for _, name := range envVarNames(env) {
			out = append(out, Completion{Label: name, Kind: CompletionConstant, InsertText: name})
		}
		return out
	case suggestHeaders:
		var out []Completion
		for _, header := range commonHeaders {
			out = append(out, Completion{Label: header, Kind: CompletionConstant, InsertText: header})
		}
		return out
	}
	return nil
}

func builtinCompletions() []Completion {
	var out []Completion
	for _, name := range []string{"env", "read", "json", "escape_new_lines"} {
		out = append(out, Completion{
			Label:      name + "(..)",
			Kind:       CompletionFunction,
			InsertText: name + "(${1:argument})",
		})
	}
	return out
}

func keywordCompletions(words ...string) []Completion {
	out := make([]Completion, 0, len(words))
	for _, word := range words {
		out = append(out, Completion{Label: word, Kind: CompletionKeyword, InsertText: word})
	}
	return out
}

func attributeCompletions() []Completion {
	out := []Completion{
		{Label: "name(..)", Kind: CompletionFunction, InsertText: "name(${1:argument})"},
		{Label: "log(..)", Kind: CompletionFunction, InsertText: "log(${1:argument})"},
	}
	return append(out, keywordCompletions("log", "dbg", "skip")...)
}

var commonHeaders = []string{
	"Accept",
	"Accept-Charset",
	"Accept-Encoding",
	"Accept-Language",
	"Authorization",
	"Cache-Control",
	"Connection",
	"Content-Disposition",
	"Content-Encoding",
	"Content-Length",
	"Content-Type",
	"Cookie",
	"Date",
	"ETag",
	"Host",
	"If-Match",
	"If-Modified-Since",
	"If-None-Match",
	"If-Range",
	"If-Unmodified-Since",
	"Last-Modified",
	"Location",
	"Origin",
	"Referer",
	"Server",
	"User-Agent",
	"WWW-Authenticate",
	"X-Forwarded-For",
}
