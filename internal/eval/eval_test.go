package eval

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unkn0wn-root/rdscript/internal/diag"
	"github.com/unkn0wn-root/rdscript/internal/parser"
)

type mapEnv map[string]string

func (m mapEnv) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func evalSrc(t *testing.T, src string, env Environment, opts ...Option) ([]RequestItem, []*diag.ContextualError) {
	t.Helper()
	prog := parser.Parse(src)
	if errs := prog.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return Evaluate(prog, env, opts...)
}

func evalOK(t *testing.T, src string, env Environment, opts ...Option) []RequestItem {
	t.Helper()
	items, errs := evalSrc(t, src, env, opts...)
	if len(errs) != 0 {
		t.Fatalf("eval errors: %v", errs)
	}
	return items
}

func singleErr(t *testing.T, src string, env Environment) *diag.ContextualError {
	t.Helper()
	items, errs := evalSrc(t, src, env)
	if len(items) != 0 {
		t.Fatalf("items should be discarded on error, got %d", len(items))
	}
	if len(errs) != 1 {
		t.Fatalf("errors: %v", errs)
	}
	return errs[0]
}

func TestEndpointResolution(t *testing.T) {
	items := evalOK(t, "set BASE_URL \"http://h\"\nget /p", nil)
	if len(items) != 1 || items[0].URL != "http://h/p" {
		t.Fatalf("items: %#v", items)
	}

	items = evalOK(t, "set BASE_URL \"http://h\"\nget /", nil)
	if items[0].URL != "http://h" {
		t.Fatalf("bare slash url: %q", items[0].URL)
	}

	items = evalOK(t, "get http://other/x", nil)
	if items[0].URL != "http://other/x" {
		t.Fatalf("absolute url: %q", items[0].URL)
	}
}

func TestPathnameWithoutBaseURL(t *testing.T) {
	err := singleErr(t, "get /p", nil)
	var want *PathnameWithoutBaseURL
	if !errors.As(err.Inner, &want) {
		t.Fatalf("inner: %T", err.Inner)
	}
}

func TestHeadersAndBody(t *testing.T) {
	items := evalOK(t, `post http://h {
	header "Content-Type" "application/json"
	body "first"
	body "second"
}`, nil)

	req := items[0]
	if len(req.Headers) != 1 || req.Headers[0].Value != "application/json" {
		t.Fatalf("headers: %#v", req.Headers)
	}
	if req.Body == nil || *req.Body != "first" {
		t.Fatalf("body: %v", req.Body)
	}
}

func TestExtraBodyStillEvaluated(t *testing.T) {
	_, errs := evalSrc(t, `post http://h {
	body "first"
	body missing_var
}`, nil)

	if len(errs) != 1 {
		t.Fatalf("errors: %v", errs)
	}
	var undeclared *UndeclaredIdentifier
	if !errors.As(errs[0].Inner, &undeclared) || undeclared.Name != "missing_var" {
		t.Fatalf("inner: %v", errs[0].Inner)
	}
}

func TestSkipAttribute(t *testing.T) {
	items := evalOK(t, "@skip\nget http://h\nget http://h/second", nil)
	if len(items) != 1 || items[0].URL != "http://h/second" {
		t.Fatalf("items: %#v", items)
	}
}

func TestDuplicateAttribute(t *testing.T) {
	err := singleErr(t, "@log\n@log\nget http://h", nil)
	if err.Inner.Error() != "duplicate attribute: @log is already set for this request" {
		t.Fatalf("message: %q", err.Inner.Error())
	}
}

func TestAttributesDoNotLeak(t *testing.T) {
	items := evalOK(t, "@dbg\nget http://h/a\nget http://h/b", nil)
	if !items[0].Dbg || items[1].Dbg {
		t.Fatalf("dbg flags: %v %v", items[0].Dbg, items[1].Dbg)
	}
}

func TestNameAttribute(t *testing.T) {
	items := evalOK(t, "@name(\"req_1\")\nget http://h", nil)
	if items[0].Name != "req_1" {
		t.Fatalf("name: %q", items[0].Name)
	}

	err := singleErr(t, "@name\nget http://h", nil)
	var required *RequiredArguments
	if !errors.As(err.Inner, &required) || required.Required != 1 || required.Received != 0 {
		t.Fatalf("inner: %v", err.Inner)
	}
	if err.Message != hintNameNeedsArgument {
		t.Fatalf("hint: %q", err.Message)
	}
}

func TestLogAttribute(t *testing.T) {
	items := evalOK(t, "@log\nget http://h", nil)
	if items[0].Log == nil || !items[0].Log.IsStd() {
		t.Fatalf("log: %#v", items[0].Log)
	}

	items = evalOK(t, "@log(\"out/res.json\")\nget http://h", nil)
	if items[0].Log == nil || items[0].Log.Path != "out/res.json" {
		t.Fatalf("log: %#v", items[0].Log)
	}

	items = evalOK(t, "get http://h", nil)
	if items[0].Log != nil {
		t.Fatalf("log should be unset: %#v", items[0].Log)
	}
}

func TestUnsupportedAttribute(t *testing.T) {
	err := singleErr(t, "@retry\nget http://h", nil)
	if err.Inner.Error() != "unsupported attribute: retry" {
		t.Fatalf("message: %q", err.Inner.Error())
	}
	if err.Message != hintSupportedAttributes {
		t.Fatalf("hint: %q", err.Message)
	}
}

func TestEnvCall(t *testing.T) {
	items := evalOK(t, `get http://h { header "Authorization" env("TOKEN") }`,
		mapEnv{"TOKEN": "Bearer abc"})
	if items[0].Headers[0].Value != "Bearer abc" {
		t.Fatalf("header: %#v", items[0].Headers)
	}
}

func TestEnvVariableNotFound(t *testing.T) {
	err := singleErr(t, `get http://h { header "k" env("missing") }`, mapEnv{})
	var notFound *EnvVariableNotFound
	if !errors.As(err.Inner, &notFound) || notFound.Name != "missing" {
		t.Fatalf("inner: %v", err.Inner)
	}
}

func TestReadCall(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "payload.json"), []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	items := evalOK(t, `post http://h { body read("payload.json") }`, nil, WithBaseDir(dir))
	if *items[0].Body != `{"a":1}` {
		t.Fatalf("body: %q", *items[0].Body)
	}
}

func TestReadCallFailure(t *testing.T) {
	err := singleErr(t, `post http://h { body read("nope.txt") }`, nil)
	if !strings.Contains(err.Inner.Error(), "failed to read a file") {
		t.Fatalf("message: %q", err.Inner.Error())
	}
}

func TestJSONCall(t *testing.T) {
	items := evalOK(t, `post http://h { body json({ a: 1, ok: true, who: null }) }`, nil)
	body := *items[0].Body
	for _, want := range []string{`"a":1`, `"ok":true`, `"who":null`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body %q missing %q", body, want)
		}
	}

	items = evalOK(t, `post http://h { body json([1, "two", false]) }`, nil)
	if *items[0].Body != `[1,"two",false]` {
		t.Fatalf("body: %q", *items[0].Body)
	}
}

func TestEscapeNewLinesCall(t *testing.T) {
	items := evalOK(t, "post http://h { body escape_new_lines(`a\nb`) }", nil)
	if *items[0].Body != `a\nb` {
		t.Fatalf("body: %q", *items[0].Body)
	}
}

func TestUndefinedCallable(t *testing.T) {
	err := singleErr(t, "let x = nope()\nget http://h", nil)
	if err.Inner.Error() != "attempting to call an undefined function: nope" {
		t.Fatalf("message: %q", err.Inner.Error())
	}
	if err.Message != hintSupportedCalls {
		t.Fatalf("hint: %q", err.Message)
	}
}

func TestTemplateConcat(t *testing.T) {
	items := evalOK(t, "let who = \"world\"\nget http://h { header \"x\" `hello ${who}!` }", nil)
	if items[0].Headers[0].Value != "hello world!" {
		t.Fatalf("header: %q", items[0].Headers[0].Value)
	}
}

func TestTemplateRequiresStringParts(t *testing.T) {
	err := singleErr(t, "let s = `n=${42}`\nget http://h", nil)
	var mismatch *TypeMismatch
	if !errors.As(err.Inner, &mismatch) || mismatch.Found != KindNumber {
		t.Fatalf("inner: %v", err.Inner)
	}
	if err.Message != hintStringifyWithJSON {
		t.Fatalf("hint: %q", err.Message)
	}
}

func TestSetUnknownConstant(t *testing.T) {
	err := singleErr(t, `set OTHER "x"`, nil)
	if err.Inner.Error() != "trying to set an unknown constant OTHER" {
		t.Fatalf("message: %q", err.Inner.Error())
	}
}

func TestSetRequiresString(t *testing.T) {
	err := singleErr(t, "set BASE_URL 42", nil)
	var mismatch *TypeMismatch
	if !errors.As(err.Inner, &mismatch) {
		t.Fatalf("inner: %T", err.Inner)
	}
}

func TestLetShadowing(t *testing.T) {
	items := evalOK(t, "let v = \"a\"\nlet v = \"b\"\nget http://h { body v }", nil)
	if *items[0].Body != "b" {
		t.Fatalf("body: %q", *items[0].Body)
	}
}

func TestUndeclaredIdentifier(t *testing.T) {
	err := singleErr(t, "get http://h { body nope }", nil)
	if err.Inner.Error() != "undeclared variable: nope" {
		t.Fatalf("message: %q", err.Inner.Error())
	}
}

func TestCollectsAllErrors(t *testing.T) {
	_, errs := evalSrc(t, "get /a\nget /b\nlet x = env(\"gone\")", mapEnv{})
	if len(errs) != 3 {
		t.Fatalf("errors: %d (%v)", len(errs), errs)
	}
}

func TestAllOrNothing(t *testing.T) {
	items, errs := evalSrc(t, "get http://h/good\nget /bad", nil)
	if len(errs) == 0 {
		t.Fatal("expected an error")
	}
	if items != nil {
		t.Fatalf("successful items must be discarded: %#v", items)
	}
}

func TestBareExpressionItem(t *testing.T) {
	items := evalOK(t, "json({})\nget http://h", mapEnv{})
	if len(items) != 1 {
		t.Fatalf("items: %d", len(items))
	}

	_, errs := evalSrc(t, "env(\"gone\")\nget http://h", mapEnv{})
	if len(errs) != 1 {
		t.Fatalf("errors: %v", errs)
	}
}
