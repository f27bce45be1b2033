package langsvc

import (
	"sort"
	"strings"
	"testing"

	"github.com/unkn0wn-root/rdscript/internal/eval"
	"github.com/unkn0wn-root/rdscript/internal/parser"
	"github.com/unkn0wn-root/rdscript/internal/span"
)

type fakeEnv struct {
	selected   string
	path       string
	namespaces map[string]map[string]string
}

func (f *fakeEnv) Selected() string { return f.selected }

func (f *fakeEnv) Path() string { return f.path }

func (f *fakeEnv) Namespaces() []string {
	names := make([]string, 0, len(f.namespaces))
	for name := range f.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *fakeEnv) Values(namespace string) map[string]string {
	return f.namespaces[namespace]
}

func testEnv() *fakeEnv {
	return &fakeEnv{
		selected: "default",
		path:     "/home/u/.env.rd.json",
		namespaces: map[string]map[string]string{
			"default": {"TOKEN": "v1", "HOST": "h1"},
			"prod":    {"TOKEN": "v2"},
		},
	}
}

func labels(comps []Completion) []string {
	out := make([]string, 0, len(comps))
	for _, c := range comps {
		out = append(out, c.Label)
	}
	return out
}

func TestDiagnosticsFromParseErrors(t *testing.T) {
	prog := parser.Parse("get")

	diags := Diagnostics(prog)
	if len(diags) != 1 {
		t.Fatalf("diagnostics: %d", len(diags))
	}
	if diags[0].Severity != SeverityError {
		t.Fatalf("severity: %v", diags[0].Severity)
	}
	if !strings.Contains(diags[0].Message, "expecting only a url and pathname here") {
		t.Fatalf("message: %q", diags[0].Message)
	}
}

func TestWarningsMissingFromNamespace(t *testing.T) {
	prog := parser.Parse(`let t = env("HOST")`)

	warns := Warnings(prog, testEnv())
	if len(warns) != 1 {
		t.Fatalf("warnings: %d", len(warns))
	}
	want := "variable 'HOST' missing from some namespaces: prod"
	if warns[0].Message != want {
		t.Fatalf("message: %q", warns[0].Message)
	}
	if warns[0].Severity != SeverityWarning {
		t.Fatalf("severity: %v", warns[0].Severity)
	}
}

func TestWarningsNoneWhenEverywhere(t *testing.T) {
	prog := parser.Parse(`let t = env("TOKEN")`)

	if warns := Warnings(prog, testEnv()); len(warns) != 0 {
		t.Fatalf("warnings: %v", warns)
	}
}

func TestCompletionsSetIdentifier(t *testing.T) {
	prog := parser.Parse(`set BASE_URL "v"`)

	comps := CompletionsAt(prog, span.Location{Line: 0, Col: 5}, nil)
	if len(comps) != 1 || comps[0].Label != "BASE_URL" {
		t.Fatalf("completions: %v", labels(comps))
	}
}

func TestCompletionsInsideBlock(t *testing.T) {
	prog := parser.Parse("get /a {\n  \n}")

	got := labels(CompletionsAt(prog, span.Location{Line: 1, Col: 1}, nil))
	if len(got) != 2 || got[0] != "header" || got[1] != "body" {
		t.Fatalf("completions: %v", got)
	}
}

func TestCompletionsEnvArgument(t *testing.T) {
	prog := parser.Parse(`let t = env("TOK")`)

	got := labels(CompletionsAt(prog, span.Location{Line: 0, Col: 14}, testEnv()))
	if len(got) != 2 || got[0] != "HOST" || got[1] != "TOKEN" {
		t.Fatalf("completions: %v", got)
	}
}

func TestCompletionsVariablesInScope(t *testing.T) {
	prog := parser.Parse("let first = 1\nlet second = first")

	got := labels(CompletionsAt(prog, span.Location{Line: 1, Col: 14}, nil))
	var hasVar, hasBuiltin bool
	for _, label := range got {
		if label == "first" {
			hasVar = true
		}
		if label == "env(..)" {
			hasBuiltin = true
		}
	}
	if !hasVar || !hasBuiltin {
		t.Fatalf("completions: %v", got)
	}
}

func TestCompletionsAttributes(t *testing.T) {
	prog := parser.Parse("@name(\"x\")\nget /a")

	got := labels(CompletionsAt(prog, span.Location{Line: 0, Col: 2}, nil))
	joined := strings.Join(got, " ")
	for _, want := range []string{"name(..)", "log(..)", "dbg", "skip"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %v", want, got)
		}
	}
}

func TestCompletionsTopLevel(t *testing.T) {
	prog := parser.Parse("")

	got := labels(CompletionsAt(prog, span.Location{}, nil))
	joined := strings.Join(got, " ")
	for _, want := range []string{"let", "set", "get", "post", "delete"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %v", want, got)
		}
	}
}

func TestHoverBuiltin(t *testing.T) {
	prog := parser.Parse(`let t = env("TOK")`)

	docs, ok := HoverAt(prog, span.Location{Line: 0, Col: 9}, nil, nil)
	if !ok {
		t.Fatal("expected docs")
	}
	if !strings.Contains(docs, "(builtin) env(variable: string): string") {
		t.Fatalf("docs: %q", docs)
	}
}

func TestHoverEnvVariable(t *testing.T) {
	prog := parser.Parse(`let t = env("TOKEN")`)

	docs, ok := HoverAt(prog, span.Location{Line: 0, Col: 15}, testEnv(), nil)
	if !ok {
		t.Fatal("expected docs")
	}
	for _, want := range []string{`default: "v1" (current)`, `prod: "v2"`, "/home/u/.env.rd.json"} {
		if !strings.Contains(docs, want) {
			t.Fatalf("missing %q in %q", want, docs)
		}
	}
}

func TestHoverEndpointShowsResolvedURL(t *testing.T) {
	prog := parser.Parse("set BASE_URL \"http://h\"\nget /status")
	items, errs := eval.Evaluate(prog, nil)
	if len(errs) != 0 {
		t.Fatalf("eval errors: %v", errs)
	}

	docs, ok := HoverAt(prog, span.Location{Line: 1, Col: 6}, nil, items)
	if !ok {
		t.Fatal("expected docs")
	}
	if docs != "http://h/status" {
		t.Fatalf("docs: %q", docs)
	}
}

func TestHoverNothing(t *testing.T) {
	prog := parser.Parse("let a = 1")

	if _, ok := HoverAt(prog, span.Location{Line: 5, Col: 0}, nil, nil); ok {
		t.Fatal("expected no docs")
	}
}
