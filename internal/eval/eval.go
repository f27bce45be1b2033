// Package eval walks a parsed program and materializes fully resolved
// request descriptions. Evaluation only runs on programs whose parse error
// list is empty; a Bad node reaching this package is a bug, not user input.
//
// Unlike the parser, which keeps partial results, evaluation is all or
// nothing: every error across the whole program is collected first, and if
// any occurred no requests are returned.
package eval

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unkn0wn-root/rdscript/internal/ast"
	"github.com/unkn0wn-root/rdscript/internal/diag"
	"github.com/unkn0wn-root/rdscript/internal/errdef"
	"github.com/unkn0wn-root/rdscript/internal/span"
)

// Environment supplies values for the env(..) built-in from the currently
// selected namespace.
type Environment interface {
	Lookup(name string) (string, bool)
}

type Option func(*Evaluator)

// WithBaseDir resolves relative read(..) paths against dir instead of the
// process working directory.
func WithBaseDir(dir string) Option {
	return func(e *Evaluator) { e.baseDir = dir }
}

type Evaluator struct {
	prog    *ast.Program
	env     Environment
	baseDir string

	baseURL  string
	hasBase  bool
	bindings map[string]Value
	atts     attributeStack
	errs     []*diag.ContextualError
}

// Evaluate resolves every request in the program. On any error it returns
// nil items and the full error list.
func Evaluate(prog *ast.Program, env Environment, opts ...Option) ([]RequestItem, []*diag.ContextualError) {
	e := &Evaluator{prog: prog, env: env, bindings: map[string]Value{}}
	for _, opt := range opts {
		opt(e)
	}

	items := e.run()
	if len(e.errs) > 0 {
		return nil, e.errs
	}
	return items, nil
}

func (e *Evaluator) fail(inner error, sp span.Span) *diag.ContextualError {
	return diag.New(inner, sp, e.prog.Source)
}

func (e *Evaluator) report(err *diag.ContextualError) {
	e.errs = append(e.errs, err)
}

func (e *Evaluator) run() []RequestItem {
	var items []RequestItem

	for _, item := range e.prog.Items {
		switch v := item.(type) {
		case *ast.Set:
			e.evalSet(v)
		case *ast.Let:
			e.evalLet(v)
		case *ast.Attribute:
			e.evalAttribute(v)
		case *ast.Request:
			if req, ok := e.evalRequest(v); ok {
				items = append(items, req)
			}
		case *ast.ExprItem:
			if _, err := e.evalExpression(v.X); err != nil {
				e.report(err)
			}
		case *ast.LineComment:
		case *ast.BadItem:
			unreachableSyntax(v.Err)
		}
	}

	return items
}

func (e *Evaluator) evalSet(v *ast.Set) {
	ident := mustIdent(v.Identifier)
	if ident.Name != "BASE_URL" {
		e.report(e.fail(&UnknownConstant{Constant: ident.Name}, ident.Sp))
		return
	}

	val, err := e.evalExpression(v.Value)
	if err != nil {
		e.report(err)
		return
	}
	if val.Kind != KindString {
		e.report(e.fail(&TypeMismatch{Expected: KindString, Found: val.Kind}, v.Value.Span()).
			WithMessage(hintStringifyWithJSON))
		return
	}

	e.baseURL = val.Str
	e.hasBase = true
}

func (e *Evaluator) evalLet(v *ast.Let) {
	val, err := e.evalExpression(v.Value)
	if err != nil {
		e.report(err)
		return
	}
	e.bindings[mustIdent(v.Identifier).Name] = val
}

func (e *Evaluator) evalAttribute(v *ast.Attribute) {
	ident := mustIdent(v.Identifier)

	switch ident.Name {
	case "name", "log", "dbg", "skip":
		if e.atts.has(ident.Name) {
			e.report(e.fail(&DuplicateAttribute{Name: ident.Name}, ident.Sp))
			return
		}
		e.atts.add(ident, v.Args)
	default:
		e.report(e.fail(&UnsupportedAttribute{Name: ident.Name}, ident.Sp).
			WithMessage(hintSupportedAttributes))
	}
}

func (e *Evaluator) evalRequest(req *ast.Request) (RequestItem, bool) {
	defer e.atts.clear()

	if e.atts.has("skip") {
		return RequestItem{}, false
	}

	before := len(e.errs)

	url := e.evalEndpoint(req.Endpoint)

	var (
		headers []Header
		body    *string
	)
	if req.Block != nil {
		for _, stmt := range req.Block.Statements {
			switch s := stmt.(type) {
			case *ast.Header:
				name := mustStringLit(s.Name)
				if value, ok := e.evalString(s.Value); ok {
					headers = append(headers, Header{Name: name.Value, Value: value})
				}
			case *ast.Body:
				// only the first body takes effect; later ones are still
				// evaluated so their errors surface
				if value, ok := e.evalString(s.Value); ok && body == nil {
					b := value
					body = &b
				}
			case *ast.LineComment:
			case *ast.BadStmt:
				unreachableSyntax(s.Err)
			}
		}
	}

	name := e.evalNameAttribute()
	log := e.evalLogAttribute()
	dbg := e.atts.has("dbg")

	if len(e.errs) > before {
		return RequestItem{}, false
	}

	return RequestItem{
		Name: name,
		Dbg:  dbg,
		Log:  log,
		Span: req.Sp,
		Request: Request{
			Method:  req.Method,
			URL:     url,
			Headers: headers,
			Body:    body,
		},
	}, true
}

func (e *Evaluator) evalEndpoint(endpoint ast.Endpoint) string {
	switch ep := endpoint.(type) {
	case *ast.URL:
		return ep.Value
	case *ast.Pathname:
		if !e.hasBase {
			e.report(e.fail(&PathnameWithoutBaseURL{}, ep.Sp))
			return ""
		}
		url := e.baseURL
		// a bare "/" resolves to the base url itself
		if len(ep.Value) > 1 {
			url += ep.Value
		}
		return url
	case *ast.BadEndpoint:
		unreachableSyntax(ep.Err)
	}
	return ""
}

func (e *Evaluator) evalNameAttribute() string {
	att, ok := e.atts.get("name")
	if !ok {
		return ""
	}

	if att.args == nil || len(att.args.Exprs) == 0 {
		sp := att.ident.Sp
		if att.args != nil {
			sp = att.args.Sp
		}
		e.report(e.fail(&RequiredArguments{Required: 1, Received: 0}, sp).
			WithMessage(hintNameNeedsArgument))
		return ""
	}
	if len(att.args.Exprs) != 1 {
		e.report(e.fail(&RequiredArguments{Required: 1, Received: len(att.args.Exprs)}, att.args.Sp))
		return ""
	}

	name, _ := e.evalString(att.args.Exprs[0])
	return name
}

func (e *Evaluator) evalLogAttribute() *LogDestination {
	att, ok := e.atts.get("log")
	if !ok {
		return nil
	}

	if att.args == nil || len(att.args.Exprs) == 0 {
		return &LogDestination{}
	}
	if len(att.args.Exprs) != 1 {
		e.report(e.fail(&RequiredArguments{Required: 1, Received: len(att.args.Exprs)}, att.args.Sp))
		return nil
	}

	path, ok := e.evalString(att.args.Exprs[0])
	if !ok {
		return nil
	}
	return &LogDestination{Path: path}
}

// evalString evaluates an expression that must produce a string. Failures
// are reported here; the bool result says whether value is usable.
func (e *Evaluator) evalString(expr ast.Expression) (string, bool) {
	val, err := e.evalExpression(expr)
	if err != nil {
		e.report(err)
		return "", false
	}
	if val.Kind != KindString {
		e.report(e.fail(&TypeMismatch{Expected: KindString, Found: val.Kind}, expr.Span()).
			WithMessage(hintStringifyWithJSON))
		return "", false
	}
	return val.Str, true
}

func (e *Evaluator) evalExpression(expr ast.Expression) (Value, *diag.ContextualError) {
	switch x := expr.(type) {
	case *ast.Ident:
		val, ok := e.bindings[x.Name]
		if !ok {
			return Value{}, e.fail(&UndeclaredIdentifier{Name: x.Name}, x.Sp)
		}
		return val, nil
	case *ast.StringLit:
		return StringValue(x.Value), nil
	case *ast.BoolLit:
		return BoolValue(x.Value), nil
	case *ast.NumberLit:
		return NumberValue(x.Value), nil
	case *ast.NullLit:
		return NullValue(), nil
	case *ast.TemplateLit:
		return e.evalTemplate(x)
	case *ast.CallExpr:
		return e.evalCall(x)
	case *ast.ArrayLit:
		vals := make([]Value, 0, len(x.Elems))
		for _, el := range x.Elems {
			v, err := e.evalExpression(el.X)
			if err != nil {
				return Value{}, err
			}
			vals = append(vals, v)
		}
		return Value{Kind: KindArray, Arr: vals}, nil
	case *ast.ObjectLit:
		obj := make(map[string]Value, len(x.Entries))
		for _, entry := range x.Entries {
			v, err := e.evalExpression(entry.Value)
			if err != nil {
				return Value{}, err
			}
			obj[mustIdent(entry.Key).Name] = v
		}
		return Value{Kind: KindObject, Obj: obj}, nil
	case *ast.EmptyArray:
		return Value{Kind: KindArray}, nil
	case *ast.EmptyObject:
		return Value{Kind: KindObject}, nil
	case *ast.BadExpr:
		unreachableSyntax(x.Err)
	}
	return Value{}, nil
}

func (e *Evaluator) evalTemplate(tpl *ast.TemplateLit) (Value, *diag.ContextualError) {
	var b strings.Builder

	for _, part := range tpl.Parts {
		val, err := e.evalExpression(part.X)
		if err != nil {
			return Value{}, err
		}
		if val.Kind != KindString {
			return Value{}, e.fail(&TypeMismatch{Expected: KindString, Found: val.Kind}, part.X.Span()).
				WithMessage(hintStringifyWithJSON)
		}
		b.WriteString(val.Str)
	}

	return StringValue(b.String()), nil
}

func (e *Evaluator) evalCall(call *ast.CallExpr) (Value, *diag.ContextualError) {
	ident := mustIdent(call.Identifier)

	switch ident.Name {
	case "env":
		return e.callEnv(call.Args)
	case "read":
		return e.callRead(call.Args)
	case "json":
		return e.callJSON(call.Args)
	case "escape_new_lines":
		return e.callEscapeNewLines(call.Args)
	default:
		return Value{}, e.fail(&UndefinedCallable{Name: ident.Name}, ident.Sp).
			WithMessage(hintSupportedCalls)
	}
}

func (e *Evaluator) callEnv(args ast.Arguments) (Value, *diag.ContextualError) {
	arg, err := e.expectOneArg(args)
	if err != nil {
		return Value{}, err
	}

	val, err := e.evalExpression(arg)
	if err != nil {
		return Value{}, err
	}
	if val.Kind != KindString {
		return Value{}, e.fail(&TypeMismatch{Expected: KindString, Found: val.Kind}, arg.Span())
	}

	if e.env != nil {
		if v, ok := e.env.Lookup(val.Str); ok {
			return StringValue(v), nil
		}
	}
	return Value{}, e.fail(&EnvVariableNotFound{Name: val.Str}, arg.Span())
}

func (e *Evaluator) callRead(args ast.Arguments) (Value, *diag.ContextualError) {
	arg, err := e.expectOneArg(args)
	if err != nil {
		return Value{}, err
	}

	val, err := e.evalExpression(arg)
	if err != nil {
		return Value{}, err
	}
	if val.Kind != KindString {
		return Value{}, e.fail(&TypeMismatch{Expected: KindString, Found: val.Kind}, arg.Span())
	}

	path := val.Str
	if e.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(e.baseDir, path)
	}
	data, rerr := os.ReadFile(path)
	if rerr != nil {
		return Value{}, e.fail(errdef.Wrap(errdef.CodeFilesystem, rerr, "failed to read a file"), arg.Span())
	}
	return StringValue(string(data)), nil
}

func (e *Evaluator) callJSON(args ast.Arguments) (Value, *diag.ContextualError) {
	arg, err := e.expectOneArg(args)
	if err != nil {
		return Value{}, err
	}

	val, err := e.evalExpression(arg)
	if err != nil {
		return Value{}, err
	}
	return StringValue(val.Stringify()), nil
}

func (e *Evaluator) callEscapeNewLines(args ast.Arguments) (Value, *diag.ContextualError) {
	arg, err := e.expectOneArg(args)
	if err != nil {
		return Value{}, err
	}

	val, err := e.evalExpression(arg)
	if err != nil {
		return Value{}, err
	}
	if val.Kind != KindString {
		return Value{}, e.fail(&TypeMismatch{Expected: KindString, Found: val.Kind}, arg.Span())
	}
	return StringValue(strings.ReplaceAll(val.Str, "\n", `\n`)), nil
}

func (e *Evaluator) expectOneArg(args ast.Arguments) (ast.Expression, *diag.ContextualError) {
	if len(args.Exprs) != 1 {
		return nil, e.fail(&RequiredArguments{Required: 1, Received: len(args.Exprs)}, args.Sp)
	}
	return args.Exprs[0], nil
}

func mustIdent(p ast.ParsedNode[*ast.Ident]) *ast.Ident {
	if !p.IsOk() {
		unreachableSyntax(p.Err)
	}
	return p.Node
}

func mustStringLit(p ast.ParsedNode[*ast.StringLit]) *ast.StringLit {
	if !p.IsOk() {
		unreachableSyntax(p.Err)
	}
	return p.Node
}

func unreachableSyntax(err *diag.ContextualError) {
	panic(fmt.Sprintf("all syntax errors should have been caught, but found %s", err.Inner))
}
