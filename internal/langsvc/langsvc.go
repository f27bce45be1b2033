// Package langsvc provides the editor-facing analyses: diagnostics,
// completions and hover docs. It works purely on parsed programs and the
// variables store; wire protocol concerns live with the caller.
package langsvc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/unkn0wn-root/rdscript/internal/ast"
	"github.com/unkn0wn-root/rdscript/internal/span"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

type Diagnostic struct {
	Span     span.Span
	Message  string
	Severity Severity
}

// EnvSource is the slice of the variables store the analyses need. The
// concrete store in internal/vars satisfies it.
type EnvSource interface {
	Selected() string
	Namespaces() []string
	Values(namespace string) map[string]string
	Path() string
}

// Diagnostics converts the program's parse errors into diagnostics.
func Diagnostics(prog *ast.Program) []Diagnostic {
	var out []Diagnostic
	for _, err := range prog.Errors() {
		message := err.Inner.Error()
		if err.Message != "" {
			message += "; " + err.Message
		}
		out = append(out, Diagnostic{Span: err.Span, Message: message, Severity: SeverityError})
	}
	return out
}

// Warnings flags env(..) reads whose variable is absent from one or more
// namespaces. Such scripts break as soon as someone runs them with the other
// namespace selected.
func Warnings(prog *ast.Program, env EnvSource) []Diagnostic {
	if env == nil {
		return nil
	}

	var out []Diagnostic
	ast.Walk(prog, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || !call.Identifier.IsOk() || call.Identifier.Node.Name != "env" {
			return true
		}
		if len(call.Args.Exprs) == 0 {
			return true
		}
		lit, ok := call.Args.Exprs[0].(*ast.StringLit)
		if !ok {
			return true
		}

		var missing []string
		for _, namespace := range env.Namespaces() {
			if _, exists := env.Values(namespace)[lit.Value]; !exists {
				missing = append(missing, namespace)
			}
		}
		if len(missing) > 0 {
			out = append(out, Diagnostic{
				Span: lit.Sp,
				Message: fmt.Sprintf("variable '%s' missing from some namespaces: %s",
					lit.Value, strings.Join(missing, ", ")),
				Severity: SeverityWarning,
			})
		}
		return true
	})
	return out
}

// envVarNames is the union of variable names across every namespace, sorted.
func envVarNames(env EnvSource) []string {
	if env == nil {
		return nil
	}
	seen := map[string]bool{}
	for _, namespace := range env.Namespaces() {
		for name := range env.Values(namespace) {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// spanAfter reports whether the span starts strictly after loc.
func spanAfter(s span.Span, loc span.Location) bool {
	if s.Start.Line < loc.Line {
		return false
	}
	if s.Start.Line == loc.Line {
		return s.Start.Col > loc.Col
	}
	return true
}

func spanOnOrAfter(s span.Span, loc span.Location) bool {
	return spanAfter(s, loc) || s.Contains(loc)
}
