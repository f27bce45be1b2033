// Package openapi turns an OpenAPI 3 document into a runnable script
// scaffold: one request per operation, with the first server as BASE_URL,
// example bodies where the spec provides them and auth header placeholders
// resolved through env(..).
package openapi

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"go.yaml.in/yaml/v4"

	"github.com/unkn0wn-root/rdscript/internal/errdef"
	"github.com/unkn0wn-root/rdscript/internal/format"
)

type Options struct {
	IncludeDeprecated    bool
	PreferredServerIndex int
}

// GenerateFromFile reads an OpenAPI document and renders the script.
func GenerateFromFile(path string, opts Options) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errdef.Wrap(errdef.CodeFilesystem, err, "read OpenAPI document %s", path)
	}
	return Generate(data, opts)
}

// Generate renders a script from raw OpenAPI JSON or YAML. The output is
// round-tripped through the formatter, so it always parses.
func Generate(data []byte, opts Options) (string, error) {
	doc, err := libopenapi.NewDocument(data)
	if err != nil {
		return "", errdef.Wrap(errdef.CodeScript, err, "load OpenAPI document")
	}
	m, buildErr := doc.BuildV3Model()
	if buildErr != nil {
		return "", errdef.Wrap(errdef.CodeScript, buildErr, "build OpenAPI model")
	}

	g := &generator{model: &m.Model, opts: opts}
	script := g.render()

	formatted, ferrs := format.Script(script)
	if len(ferrs) > 0 {
		return "", errdef.New(errdef.CodeScript, "generated script does not parse: %s", ferrs[0].Inner)
	}
	return formatted, nil
}

type generator struct {
	model *v3.Document
	opts  Options
	b     strings.Builder
}

func (g *generator) render() string {
	g.header()
	g.baseURL()

	for _, entry := range g.operations() {
		g.operation(entry)
	}
	return g.b.String()
}

func (g *generator) header() {
	if g.model.Info == nil {
		return
	}
	title := g.model.Info.Title
	if g.model.Info.Version != "" {
		title += " " + g.model.Info.Version
	}
	if title != "" {
		fmt.Fprintf(&g.b, "// %s\n", title)
	}
	if desc := firstLine(g.model.Info.Description); desc != "" {
		fmt.Fprintf(&g.b, "// %s\n", desc)
	}
	g.b.WriteString("\n")
}

func (g *generator) baseURL() {
	servers := g.model.Servers
	if len(servers) == 0 {
		return
	}
	idx := g.opts.PreferredServerIndex
	if idx < 0 || idx >= len(servers) {
		idx = 0
	}
	fmt.Fprintf(&g.b, "set BASE_URL %s\n\n", quote(resolveServerURL(servers[idx])))
}

type opEntry struct {
	method string
	path   string
	op     *v3.Operation
}

// operations lists every supported operation, paths sorted and methods in a
// fixed order within a path.
func (g *generator) operations() []opEntry {
	if g.model.Paths == nil || g.model.Paths.PathItems == nil {
		return nil
	}

	type pathEntry struct {
		path string
		item *v3.PathItem
	}
	var paths []pathEntry
	for pair := g.model.Paths.PathItems.First(); pair != nil; pair = pair.Next() {
		paths = append(paths, pathEntry{path: pair.Key(), item: pair.Value()})
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].path < paths[j].path })

	var out []opEntry
	for _, p := range paths {
		for _, candidate := range []opEntry{
			{method: "get", op: p.item.Get},
			{method: "post", op: p.item.Post},
			{method: "put", op: p.item.Put},
			{method: "patch", op: p.item.Patch},
			{method: "delete", op: p.item.Delete},
		} {
			if candidate.op == nil {
				continue
			}
			if isDeprecated(candidate.op) && !g.opts.IncludeDeprecated {
				continue
			}
			candidate.path = p.path
			out = append(out, candidate)
		}
	}
	return out
}

func (g *generator) operation(entry opEntry) {
	if summary := firstLine(entry.op.Summary); summary != "" {
		fmt.Fprintf(&g.b, "// %s\n", summary)
	}
	if entry.op.OperationId != "" {
		fmt.Fprintf(&g.b, "@name(%s)\n", quote(entry.op.OperationId))
	}

	path := entry.path
	if query := requiredQuery(entry.op.Parameters); query != "" {
		path += "?" + query
	}
	fmt.Fprintf(&g.b, "%s %s", entry.method, path)

	var statements []string
	if header, ok := g.authHeader(entry.op); ok {
		statements = append(statements, header)
	}
	contentType, body := requestBody(entry.op.RequestBody)
	if contentType != "" {
		statements = append(statements, fmt.Sprintf("header %q %s", "Content-Type", quote(contentType)))
	}
	if body != "" {
		statements = append(statements, "body "+quote(body))
	}

	if len(statements) > 0 {
		g.b.WriteString(" {\n")
		for _, statement := range statements {
			g.b.WriteString("  " + statement + "\n")
		}
		g.b.WriteString("}")
	}
	g.b.WriteString("\n\n")
}

// authHeader maps the operation's first resolvable security requirement to a
// header statement reading the credential from the variables store.
func (g *generator) authHeader(op *v3.Operation) (string, bool) {
	requirements := op.Security
	if requirements == nil {
		requirements = g.model.Security
	}
	if len(requirements) == 0 {
		return "", false
	}

	schemes := g.securitySchemes()
	for _, requirement := range requirements {
		if requirement == nil || requirement.Requirements == nil {
			continue
		}
		for pair := requirement.Requirements.First(); pair != nil; pair = pair.Next() {
			scheme, ok := schemes[pair.Key()]
			if !ok {
				continue
			}
			envRead := fmt.Sprintf("env(%s)", quote(strings.ToUpper(pair.Key())))
			switch {
			case scheme.Type == "http" && strings.EqualFold(scheme.Scheme, "bearer"):
				return fmt.Sprintf("header %q `Bearer ${%s}`", "Authorization", envRead), true
			case scheme.Type == "http" && strings.EqualFold(scheme.Scheme, "basic"):
				return fmt.Sprintf("header %q `Basic ${%s}`", "Authorization", envRead), true
			case scheme.Type == "apiKey" && scheme.In == "header":
				return fmt.Sprintf("header %s %s", quote(scheme.Name), envRead), true
			}
		}
	}
	return "", false
}

func (g *generator) securitySchemes() map[string]*v3.SecurityScheme {
	out := map[string]*v3.SecurityScheme{}
	if g.model.Components == nil || g.model.Components.SecuritySchemes == nil {
		return out
	}
	for pair := g.model.Components.SecuritySchemes.First(); pair != nil; pair = pair.Next() {
		out[pair.Key()] = pair.Value()
	}
	return out
}

// requestBody picks the JSON media type when present, otherwise the first
// one, and renders its example as a compact JSON body.
func requestBody(rb *v3.RequestBody) (contentType, body string) {
	if rb == nil || rb.Content == nil {
		return "", ""
	}

	var chosen *v3.MediaType
	for pair := rb.Content.First(); pair != nil; pair = pair.Next() {
		if chosen == nil || pair.Key() == "application/json" {
			chosen = pair.Value()
			contentType = pair.Key()
		}
		if contentType == "application/json" {
			break
		}
	}
	if chosen == nil {
		return "", ""
	}
	return contentType, exampleJSON(chosen)
}

func exampleJSON(mt *v3.MediaType) string {
	if node := mediaExample(mt); node != nil {
		if rendered, ok := renderNode(node); ok {
			return rendered
		}
	}
	return ""
}

func mediaExample(mt *v3.MediaType) *yaml.Node {
	if mt.Example != nil {
		return mt.Example
	}
	if mt.Examples != nil {
		for pair := mt.Examples.First(); pair != nil; pair = pair.Next() {
			if ex := pair.Value(); ex != nil && ex.Value != nil {
				return ex.Value
			}
		}
	}
	if mt.Schema != nil {
		if schema := mt.Schema.Schema(); schema != nil {
			return schemaExample(schema)
		}
	}
	return nil
}

func schemaExample(schema *base.Schema) *yaml.Node {
	if schema.Example != nil {
		return schema.Example
	}
	if schema.Default != nil {
		return schema.Default
	}
	if len(schema.Enum) > 0 {
		return schema.Enum[0]
	}
	return nil
}

func renderNode(node *yaml.Node) (string, bool) {
	var value any
	if err := node.Decode(&value); err != nil {
		return "", false
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// requiredQuery builds a query string from the operation's required query
// parameters, using example values when the spec has them.
func requiredQuery(params []*v3.Parameter) string {
	var parts []string
	for _, param := range params {
		if param == nil || param.In != "query" || param.Required == nil || !*param.Required {
			continue
		}
		value := "VALUE"
		if param.Example != nil {
			var decoded any
			if err := param.Example.Decode(&decoded); err == nil {
				value = fmt.Sprintf("%v", decoded)
			}
		}
		parts = append(parts, param.Name+"="+value)
	}
	return strings.Join(parts, "&")
}

func resolveServerURL(server *v3.Server) string {
	if server == nil {
		return ""
	}
	url := server.URL
	if server.Variables == nil {
		return url
	}
	for pair := server.Variables.First(); pair != nil; pair = pair.Next() {
		variable := pair.Value()
		if variable == nil {
			continue
		}
		replacement := variable.Default
		if replacement == "" && len(variable.Enum) > 0 {
			replacement = variable.Enum[0]
		}
		url = strings.ReplaceAll(url, "{"+pair.Key()+"}", replacement)
	}
	return url
}

func isDeprecated(op *v3.Operation) bool {
	return op.Deprecated != nil && *op.Deprecated
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// quote renders a script string literal with the two supported escapes.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}
