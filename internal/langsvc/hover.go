package langsvc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/rdscript/internal/ast"
	"github.com/unkn0wn-root/rdscript/internal/eval"
	"github.com/unkn0wn-root/rdscript/internal/span"
	"github.com/unkn0wn-root/rdscript/internal/vars"
)

// HoverAt produces markdown docs for the node under the cursor: builtin
// signatures on call identifiers, per-namespace values on env(..) argument
// strings, and the fully resolved URL on endpoints. items may be nil when
// the document does not evaluate.
func HoverAt(prog *ast.Program, loc span.Location, env EnvSource, items []eval.RequestItem) (string, bool) {
	chain := prog.NodeChainAt(loc)

	inEnvCall := false
	for _, n := range chain {
		switch v := n.(type) {
		case *ast.CallExpr:
			if !v.Identifier.IsOk() {
				continue
			}
			if v.Identifier.Node.Sp.Contains(loc) {
				if docs, ok := builtinDocs[v.Identifier.Node.Name]; ok {
					return docs, true
				}
				return "", false
			}
			if v.Identifier.Node.Name == "env" {
				inEnvCall = true
			}
		case *ast.URL:
			return resolvedURL(loc, items)
		case *ast.Pathname:
			return resolvedURL(loc, items)
		case *ast.StringLit:
			if inEnvCall {
				return envVarDocs(v.Value, env)
			}
		}
	}
	return "", false
}

func resolvedURL(loc span.Location, items []eval.RequestItem) (string, bool) {
	for _, item := range items {
		if item.Span.Contains(loc) {
			return item.Request.URL, true
		}
	}
	return "", false
}

// envVarDocs shows the variable's value in every namespace that defines it,
// marking the selected one.
func envVarDocs(name string, env EnvSource) (string, bool) {
	if env == nil {
		return "", false
	}

	var values []string
	for _, namespace := range env.Namespaces() {
		value, ok := env.Values(namespace)[name]
		if !ok {
			continue
		}
		line := fmt.Sprintf("%s: %s", namespace, strconv.Quote(value))
		if namespace == env.Selected() {
			line += " (current)"
		}
		values = append(values, line)
	}
	if len(values) == 0 {
		return "", false
	}

	var b strings.Builder
	if current, ok := env.Values(env.Selected())[name]; ok {
		fmt.Fprintf(&b, "```json\n%s\n```\n", strconv.Quote(current))
	}
	b.WriteString("Resolved from env file:\n```sh\n")
	b.WriteString(env.Path())
	b.WriteString("\n```\n```js\n")
	b.WriteString(strings.Join(values, "\n"))
	b.WriteString("\n```")
	return b.String(), true
}

var builtinDocs = map[string]string{
	"env": strings.Join([]string{
		"Read env file to grab values.",
		"Reads `" + vars.FileName + "` from the current workspace if there is one,",
		"otherwise the one in the home directory.",
		"```typescript",
		"(builtin) env(variable: string): string",
		"```",
	}, "\n"),
	"json": strings.Join([]string{
		"Convert any value to a json string.",
		"```typescript",
		"(builtin) json(value: any): string",
		"```",
	}, "\n"),
	"read": strings.Join([]string{
		"Read file contents into a string and return that string.",
		"```typescript",
		"(builtin) read(filename: string): string",
		"```",
	}, "\n"),
	"escape_new_lines": strings.Join([]string{
		"Escape the '\\n' characters in a string.",
		"```typescript",
		"(builtin) escape_new_lines(value: string): string",
		"```",
	}, "\n"),
}
