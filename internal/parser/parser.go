// Package parser turns a token stream into a Program. Parsing is total:
// malformed constructs become Bad nodes in the tree and the parser resumes at
// the next safe boundary, so a single mistake never hides the rest of the
// document.
package parser

import (
	"strconv"

	"github.com/unkn0wn-root/rdscript/internal/ast"
	"github.com/unkn0wn-root/rdscript/internal/diag"
	"github.com/unkn0wn-root/rdscript/internal/lexer"
	"github.com/unkn0wn-root/rdscript/internal/span"
)

type Parser struct {
	lx     *lexer.Lexer
	source string
	tok    lexer.Tok
	peeked *lexer.Tok
}

func New(source string) *Parser {
	return &Parser{lx: lexer.New(source), source: source}
}

// Parse is the convenience entry point for one-shot parsing.
func Parse(source string) *ast.Program {
	return New(source).Parse()
}

func (p *Parser) next() lexer.Tok {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
	} else {
		p.tok = p.lx.Next()
	}
	return p.tok
}

func (p *Parser) peek() lexer.Tok {
	if p.peeked == nil {
		t := p.lx.Next()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *Parser) errExpected(found lexer.Tok, want lexer.Kind) *diag.ContextualError {
	return diag.New(&ExpectedToken{Found: found, Expected: want}, found.Span(), p.source)
}

func (p *Parser) errExpectedOneOf(found lexer.Tok, want ...lexer.Kind) *diag.ContextualError {
	return diag.New(&ExpectedEitherOfTokens{Found: found, Expected: dedupeKinds(want)}, found.Span(), p.source)
}

// expectPeek advances one token either way; on a mismatch the consumed token
// is the one the error points at.
func (p *Parser) expectPeek(want lexer.Kind) (lexer.Tok, *diag.ContextualError) {
	tok := p.next()
	if tok.Is(want) {
		return tok, nil
	}
	return tok, p.errExpected(tok, want)
}

// expectPeekOneOf leaves the stream untouched on success and stops on the
// offending token on failure.
func (p *Parser) expectPeekOneOf(want ...lexer.Kind) *diag.ContextualError {
	if p.peek().IsOneOf(want...) {
		return nil
	}
	tok := p.next()
	return p.errExpectedOneOf(tok, want...)
}

// eatTillNextTopLevel skips forward until a token that can start a top-level
// item is next, leaving it unconsumed.
func (p *Parser) eatTillNextTopLevel() {
	for {
		switch p.peek().K {
		case lexer.KW_GET, lexer.KW_POST, lexer.KW_PUT, lexer.KW_PATCH, lexer.KW_DELETE,
			lexer.KW_SET, lexer.KW_LET, lexer.AT, lexer.END:
			return
		}
		p.next()
	}
}

// Parse consumes the whole input and always returns a Program.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{Source: p.source}

	p.next()
	for p.tok.K != lexer.END {
		var (
			item ast.Item
			err  *diag.ContextualError
		)

		switch p.tok.K {
		case lexer.KW_GET:
			item = p.parseRequest(ast.GET)
		case lexer.KW_POST:
			item = p.parseRequest(ast.POST)
		case lexer.KW_PUT:
			item = p.parseRequest(ast.PUT)
		case lexer.KW_PATCH:
			item = p.parseRequest(ast.PATCH)
		case lexer.KW_DELETE:
			item = p.parseRequest(ast.DELETE)
		case lexer.LINECOMMENT, lexer.SHEBANG:
			item = &ast.LineComment{Literal: ast.Literal{Value: p.tok.Text, Sp: p.tok.Span()}}
		case lexer.KW_SET:
			item, err = p.parseSet()
		case lexer.KW_LET:
			item, err = p.parseLet()
		case lexer.AT:
			item, err = p.parseAttribute()
			if err == nil {
				if aerr := p.expectPeekOneOf(
					lexer.KW_GET, lexer.KW_POST, lexer.KW_PUT, lexer.KW_PATCH,
					lexer.KW_DELETE, lexer.AT, lexer.LINECOMMENT,
				); aerr != nil {
					prog.Items = append(prog.Items, item, &ast.BadItem{
						Err: aerr.WithMessage("after attributes should come requests or more attributes"),
					})
					// already positioned on the offender, re-dispatch on it
					continue
				}
			}
		default:
			x, xerr := p.parseExpression()
			if xerr != nil {
				err = xerr
			} else {
				item = &ast.ExprItem{X: x}
			}
		}

		if err != nil {
			prog.Items = append(prog.Items, &ast.BadItem{Err: err})
			p.eatTillNextTopLevel()
		} else {
			prog.Items = append(prog.Items, item)
		}

		p.next()
	}

	return prog
}

func (p *Parser) parseRequest(method ast.Method) ast.Item {
	start := p.tok.Start

	var endpoint ast.Endpoint
	switch p.peek().K {
	case lexer.URL:
		tok := p.next()
		endpoint = &ast.URL{Literal: ast.Literal{Value: tok.Text, Sp: tok.Span()}}
	case lexer.PATHNAME:
		tok := p.next()
		endpoint = &ast.Pathname{Literal: ast.Literal{Value: tok.Text, Sp: tok.Span()}}
	default:
		endpoint = &ast.BadEndpoint{
			Err: p.errExpectedOneOf(p.peek(), lexer.URL, lexer.PATHNAME).
				WithMessage("expecting only a url and pathname here"),
		}
	}

	end := endpoint.Span().End
	block := p.parseBlock()
	if block != nil {
		end = block.Sp.End
	}

	return &ast.Request{
		Method:   method,
		Endpoint: endpoint,
		Block:    block,
		Sp:       span.Span{Start: start, End: end},
	}
}

func (p *Parser) parseBlock() *ast.Block {
	if p.peek().K != lexer.LBRACE {
		return nil
	}

	start := p.next().Start
	p.next()

	var stmts []ast.Statement
	for p.tok.K != lexer.RBRACE && p.tok.K != lexer.END {
		stmts = append(stmts, p.parseStatement())
		p.next()
	}

	return &ast.Block{Statements: stmts, Sp: span.New(start, p.tok.End())}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.tok.K {
	case lexer.KW_HEADER:
		return p.parseHeader()
	case lexer.KW_BODY:
		return p.parseBody()
	case lexer.LINECOMMENT, lexer.SHEBANG:
		return &ast.LineComment{Literal: ast.Literal{Value: p.tok.Text, Sp: p.tok.Span()}}
	default:
		return &ast.BadStmt{
			Err: p.errExpectedOneOf(p.tok, lexer.KW_HEADER, lexer.KW_BODY, lexer.LINECOMMENT, lexer.SHEBANG).
				WithMessage("may only declare headers or a body statement here"),
		}
	}
}

func (p *Parser) parseHeader() ast.Statement {
	var name ast.ParsedNode[*ast.StringLit]
	if tok, err := p.expectPeek(lexer.STRING); err != nil {
		name = ast.Bad[*ast.StringLit](err)
	} else {
		name = ast.Ok(&ast.StringLit{Raw: tok.Text, Value: lexer.Unquote(tok.Text), Sp: tok.Span()})
	}

	p.next()
	value, err := p.parseExpression()
	if err != nil {
		value = &ast.BadExpr{Err: err}
	}

	return &ast.Header{Name: name, Value: value}
}

func (p *Parser) parseBody() ast.Statement {
	start := p.tok.Start

	p.next()
	value, err := p.parseExpression()
	if err != nil {
		value = &ast.BadExpr{Err: err}
	}

	return &ast.Body{Value: value, Start: start}
}

func (p *Parser) parseSet() (ast.Item, *diag.ContextualError) {
	tok, err := p.expectPeek(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	identifier := ast.Ok(&ast.Ident{Name: tok.Text, Sp: tok.Span()})

	p.next()
	value, verr := p.parseExpression()
	if verr != nil {
		value = &ast.BadExpr{Err: verr}
	}

	return &ast.Set{Identifier: identifier, Value: value}, nil
}

func (p *Parser) parseLet() (ast.Item, *diag.ContextualError) {
	tok, err := p.expectPeek(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	identifier := ast.Ok(&ast.Ident{Name: tok.Text, Sp: tok.Span()})

	if _, err := p.expectPeek(lexer.ASSIGN); err != nil {
		return nil, err
	}

	p.next()
	value, verr := p.parseExpression()
	if verr != nil {
		value = &ast.BadExpr{Err: verr}
	}

	return &ast.Let{Identifier: identifier, Value: value}, nil
}

func (p *Parser) parseAttribute() (ast.Item, *diag.ContextualError) {
	location := p.tok.Start

	tok, err := p.expectPeek(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	identifier := ast.Ok(&ast.Ident{Name: tok.Text, Sp: tok.Span()})

	var args *ast.Arguments
	if p.peek().K == lexer.LPAREN {
		p.next()
		args = p.parseArguments()
	}

	return &ast.Attribute{Location: location, Identifier: identifier, Args: args}, nil
}

// parseArguments reads a parenthesized, comma-separated expression list.
// A missing comma and a malformed argument both land in the list as Bad
// expressions; the list itself always comes back.
func (p *Parser) parseArguments() *ast.Arguments {
	start := p.tok.Start
	p.next()

	var exprs []ast.Expression
	first := true
	for p.tok.K != lexer.RPAREN && p.tok.K != lexer.END {
		if !first {
			if p.tok.K == lexer.COMMA {
				p.next()
				if p.tok.K == lexer.RPAREN || p.tok.K == lexer.END {
					break
				}
			} else {
				exprs = append(exprs, &ast.BadExpr{Err: p.errExpected(p.tok, lexer.COMMA)})
			}
		}

		x, err := p.parseExpression()
		if err != nil {
			x = &ast.BadExpr{Err: err}
		}
		exprs = append(exprs, x)
		first = false
		p.next()
	}

	return &ast.Arguments{Sp: span.New(start, p.tok.End()), Exprs: exprs}
}

func (p *Parser) parseExpression() (ast.Expression, *diag.ContextualError) {
	switch p.tok.K {
	case lexer.IDENT:
		if p.peek().K == lexer.LPAREN {
			return p.parseCall()
		}
		return &ast.Ident{Name: p.tok.Text, Sp: p.tok.Span()}, nil
	case lexer.STRING:
		return &ast.StringLit{Raw: p.tok.Text, Value: lexer.Unquote(p.tok.Text), Sp: p.tok.Span()}, nil
	case lexer.BOOLEAN:
		return &ast.BoolLit{Value: p.tok.Text == "true", Sp: p.tok.Span()}, nil
	case lexer.NUMBER:
		n, _ := strconv.ParseFloat(p.tok.Text, 64)
		return &ast.NumberLit{Value: n, Raw: p.tok.Text, Sp: p.tok.Span()}, nil
	case lexer.BACKTICK_OPEN:
		return p.parseTemplate()
	case lexer.LBRACE, lexer.LSQUARE:
		return p.parseJSONLike()
	case lexer.KW_NULL:
		return &ast.NullLit{Sp: p.tok.Span()}, nil
	default:
		return nil, p.errExpectedOneOf(p.tok,
			lexer.IDENT, lexer.STRING, lexer.BOOLEAN, lexer.NUMBER,
			lexer.BACKTICK_OPEN, lexer.LBRACE, lexer.LSQUARE, lexer.KW_NULL)
	}
}

// parseCall reads identifier(...). Commas between call arguments are
// tolerated but not required, matching the loose arity style of the
// built-ins.
func (p *Parser) parseCall() (ast.Expression, *diag.ContextualError) {
	identifier := ast.Ok(&ast.Ident{Name: p.tok.Text, Sp: p.tok.Span()})

	p.next()
	argsStart := p.tok.Start
	p.next()

	var args []ast.Expression
	for p.tok.K != lexer.RPAREN {
		if p.tok.K == lexer.COMMA {
			p.next()
			continue
		}
		x, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, x)
		p.next()
	}

	return &ast.CallExpr{
		Identifier: identifier,
		Args:       ast.Arguments{Sp: span.New(argsStart, p.tok.End()), Exprs: args},
	}, nil
}

// parseTemplate reads a backtick string. A template without interpolations
// degenerates to a plain string literal.
func (p *Parser) parseTemplate() (ast.Expression, *diag.ContextualError) {
	start := p.tok.Start

	var parts []ast.TemplatePart
	interpolated := false
	for {
		switch p.next().K {
		case lexer.STRING:
			parts = append(parts, ast.TemplatePart{
				X: &ast.StringLit{Raw: p.tok.Text, Value: p.tok.Text, Sp: p.tok.Span()},
			})
		case lexer.DOLLAR_LBRACE:
			interpolated = true
			p.next()
			x, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			parts = append(parts, ast.TemplatePart{X: x, Interpolated: true})
			if _, err := p.expectPeek(lexer.RBRACE); err != nil {
				return nil, err
			}
		case lexer.BACKTICK_CLOSE:
			sp := span.New(start, p.tok.End())
			if !interpolated {
				value := ""
				if len(parts) == 1 {
					value = parts[0].X.(*ast.StringLit).Value
				}
				return &ast.StringLit{Raw: p.source[start.Off:p.tok.End().Off], Value: value, Sp: sp}, nil
			}
			return &ast.TemplateLit{Sp: sp, Parts: parts}, nil
		default:
			// unfinished template or end of input
			return nil, p.errExpected(p.tok, lexer.BACKTICK_CLOSE)
		}
	}
}

func (p *Parser) parseJSONLike() (ast.Expression, *diag.ContextualError) {
	switch p.tok.K {
	case lexer.LBRACE:
		return p.parseObject()
	case lexer.LSQUARE:
		return p.parseArray()
	default:
		return p.parseExpression()
	}
}

func (p *Parser) parseObject() (ast.Expression, *diag.ContextualError) {
	start := p.tok.Start

	if p.peek().K == lexer.RBRACE {
		p.next()
		return &ast.EmptyObject{Sp: span.New(start, p.tok.End())}, nil
	}

	var (
		entries []ast.ObjectEntry
		pending []*diag.ContextualError
	)
	seen := map[string]bool{}

	for p.peek().K != lexer.RBRACE {
		if p.peek().K == lexer.LINECOMMENT {
			p.next()
			continue
		}

		entry, err := p.parseObjectEntry()
		if err != nil {
			return nil, err
		}
		entry.Errs = append(pending, entry.Errs...)
		pending = nil

		if entry.Key.IsOk() {
			name := entry.Key.Node.Name
			if seen[name] {
				entry.Errs = append(entry.Errs,
					diag.New(&DuplicateKey{Key: name}, entry.Key.Node.Sp, p.source))
			}
			seen[name] = true
		}
		entries = append(entries, entry)

		if p.peek().K == lexer.RBRACE {
			break
		}
		if p.peek().K == lexer.COMMA {
			p.next()
		} else {
			pending = append(pending, p.errExpected(p.peek(), lexer.COMMA))
		}
	}

	p.next()
	return &ast.ObjectLit{Sp: span.New(start, p.tok.End()), Entries: entries}, nil
}

func (p *Parser) parseObjectEntry() (ast.ObjectEntry, *diag.ContextualError) {
	key := p.next()
	if key.K != lexer.IDENT {
		return ast.ObjectEntry{}, p.errExpected(key, lexer.IDENT)
	}
	keyNode := ast.Ok(&ast.Ident{Name: key.Text, Sp: key.Span()})

	if _, err := p.expectPeek(lexer.COLON); err != nil {
		return ast.ObjectEntry{}, err
	}

	p.next()
	value, err := p.parseJSONLike()
	if err != nil {
		return ast.ObjectEntry{}, err
	}

	return ast.ObjectEntry{Key: keyNode, Value: value}, nil
}

func (p *Parser) parseArray() (ast.Expression, *diag.ContextualError) {
	start := p.tok.Start

	if p.peek().K == lexer.RSQUARE {
		p.next()
		return &ast.EmptyArray{Sp: span.New(start, p.tok.End())}, nil
	}

	var (
		elems   []ast.ArrayElement
		pending []*diag.ContextualError
	)

	for p.peek().K != lexer.RSQUARE {
		if p.peek().K == lexer.LINECOMMENT {
			p.next()
			continue
		}

		p.next()
		x, err := p.parseJSONLike()
		if err != nil {
			return nil, err
		}
		elems = append(elems, ast.ArrayElement{X: x, Errs: pending})
		pending = nil

		if p.peek().K == lexer.RSQUARE {
			break
		}
		if p.peek().K == lexer.COMMA {
			p.next()
		} else {
			pending = append(pending, p.errExpected(p.peek(), lexer.COMMA))
		}
	}

	p.next()
	return &ast.ArrayLit{Sp: span.New(start, p.tok.End()), Elems: elems}, nil
}
