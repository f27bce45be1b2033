package ast_test

import (
	"strings"
	"testing"

	"github.com/unkn0wn-root/rdscript/internal/ast"
	"github.com/unkn0wn-root/rdscript/internal/parser"
	"github.com/unkn0wn-root/rdscript/internal/span"
)

const querySource = `let token = "abc"
get http://example.com {
  header "Authorization" token
}
let later = "xyz"`

func TestVariables(t *testing.T) {
	prog := parser.Parse(querySource)

	vars := prog.Variables()
	if len(vars) != 2 {
		t.Fatalf("Variables returned %d idents, want 2", len(vars))
	}
	if vars[0].Name != "token" || vars[1].Name != "later" {
		t.Errorf("Variables = %q, %q; want token, later", vars[0].Name, vars[1].Name)
	}
}

func TestVariablesBefore(t *testing.T) {
	prog := parser.Parse(querySource)

	if got := prog.VariablesBefore(span.Location{Line: 0, Col: 0}); len(got) != 0 {
		t.Errorf("nothing is in scope at the start, got %d idents", len(got))
	}
	got := prog.VariablesBefore(span.Location{Line: 2, Col: 25})
	if len(got) != 1 || got[0].Name != "token" {
		t.Fatalf("VariablesBefore inside the block = %v, want just token", got)
	}
}

func TestItemAt(t *testing.T) {
	prog := parser.Parse(querySource)

	item := prog.ItemAt(span.Location{Line: 1, Col: 6})
	req, ok := item.(*ast.Request)
	if !ok {
		t.Fatalf("ItemAt on the endpoint = %T, want *ast.Request", item)
	}
	if req.Method != ast.GET {
		t.Errorf("request method = %q, want %q", req.Method, ast.GET)
	}

	if prog.ItemAt(span.Location{Line: 10, Col: 0}) != nil {
		t.Error("ItemAt past the program should be nil")
	}
}

func TestNodeChainAt(t *testing.T) {
	prog := parser.Parse(querySource)

	loc := span.Location{Line: 2, Col: 12}
	chain := prog.NodeChainAt(loc)
	if len(chain) < 2 {
		t.Fatalf("chain at header name has %d nodes, want at least item and leaf", len(chain))
	}
	if _, ok := chain[0].(*ast.Request); !ok {
		t.Errorf("outermost node = %T, want *ast.Request", chain[0])
	}
	last := chain[len(chain)-1]
	if !last.Span().Contains(loc) {
		t.Error("innermost node must contain the query location")
	}
}

func TestErrorsInSourceOrder(t *testing.T) {
	prog := parser.Parse("let = 5\nget http://ok.example\nset = 1")

	errs := prog.Errors()
	if len(errs) < 2 {
		t.Fatalf("Errors returned %d, want one per broken item", len(errs))
	}
	for i := 1; i < len(errs); i++ {
		if errs[i].Span.Start.Line < errs[i-1].Span.Start.Line {
			t.Fatal("errors out of source order")
		}
	}
}

func TestErrorsCleanProgram(t *testing.T) {
	prog := parser.Parse(querySource)
	if errs := prog.Errors(); len(errs) != 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Inner.Error()
		}
		t.Fatalf("clean program reported errors: %s", strings.Join(msgs, "; "))
	}
}
