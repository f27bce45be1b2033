// Package runner executes evaluated request items over a pluggable strategy
// and routes responses to the destinations their attributes ask for.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/rdscript/internal/errdef"
	"github.com/unkn0wn-root/rdscript/internal/eval"
	"github.com/unkn0wn-root/rdscript/internal/history"
	"github.com/unkn0wn-root/rdscript/internal/span"
)

// RunStrategy performs one request and returns the response body, already
// prettified when the strategy knows how.
type RunStrategy interface {
	RunRequest(ctx context.Context, item eval.RequestItem) (string, error)
}

// RunError carries the span of the request item that failed so callers can
// render it against the script source.
type RunError struct {
	Span span.Span
	Err  error
}

func (e *RunError) Error() string {
	return e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}

type styles struct {
	method lipgloss.Style
	url    lipgloss.Style
	note   lipgloss.Style
}

func newStyles(colored bool) styles {
	if !colored {
		return styles{}
	}
	return styles{
		method: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		url:    lipgloss.NewStyle().Bold(true),
		note:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	}
}

type Runner struct {
	strategy   RunStrategy
	out        io.Writer
	progress   io.Writer
	styles     styles
	hist       *history.Store
	namespace  string
	scriptPath string
}

type RunnerOption func(*Runner)

// WithOutput redirects response bodies; progress notes go to the second
// writer. Defaults are stdout and stderr.
func WithOutput(out, progress io.Writer) RunnerOption {
	return func(r *Runner) {
		if out != nil {
			r.out = out
		}
		if progress != nil {
			r.progress = progress
		}
	}
}

func WithColor(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.styles = newStyles(enabled)
	}
}

// WithHistory records every executed request in the store. Recording
// failures surface as progress notes, never as run failures.
func WithHistory(store *history.Store, namespace, scriptPath string) RunnerOption {
	return func(r *Runner) {
		r.hist = store
		r.namespace = namespace
		r.scriptPath = scriptPath
	}
}

func New(strategy RunStrategy, opts ...RunnerOption) *Runner {
	r := &Runner{
		strategy: strategy,
		out:      os.Stdout,
		progress: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sends every item in order, stopping at the first failure. A non-empty
// names filter keeps only named requests on that list; unnamed requests
// never match a filter.
func (r *Runner) Run(ctx context.Context, items []eval.RequestItem, names []string) error {
	for _, item := range items {
		if len(names) > 0 && (item.Name == "" || !slices.Contains(names, item.Name)) {
			continue
		}

		fmt.Fprintf(
			r.progress,
			"sending %s request to %s\n",
			r.styles.method.Render(string(item.Method)),
			r.styles.url.Render(item.URL),
		)

		if item.Dbg {
			fmt.Fprintln(r.progress, r.styles.note.Render(" ↳ with request data:"))
			fmt.Fprintln(r.progress, indentLines(dumpRequest(item), 6))
		}

		body, err := r.strategy.RunRequest(ctx, item)
		r.record(item, err)
		if err != nil {
			return &RunError{Span: item.Span, Err: err}
		}

		if item.Log == nil {
			continue
		}
		if item.Log.IsStd() {
			fmt.Fprintln(r.out, indentLines(body, 4))
			continue
		}
		if err := logToFile(body, item.Log.Path); err != nil {
			return &RunError{Span: item.Span, Err: err}
		}
		fmt.Fprintln(
			r.progress,
			r.styles.note.Render(fmt.Sprintf("saved response to %s", item.Log.Path)),
		)
	}
	return nil
}

func (r *Runner) record(item eval.RequestItem, runErr error) {
	if r.hist == nil {
		return
	}

	entry := history.NewEntry(string(item.Method), item.URL)
	entry.RequestName = item.Name
	entry.Namespace = r.namespace
	entry.ScriptPath = r.scriptPath
	entry.OK = runErr == nil
	if runErr != nil {
		entry.Error = runErr.Error()
	}
	if err := r.hist.Append(entry); err != nil {
		fmt.Fprintf(r.progress, "could not record history: %v\n", err)
	}
}

func dumpRequest(item eval.RequestItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", item.Method, item.URL)
	for _, header := range item.Headers {
		fmt.Fprintf(&b, "%s: %s\n", header.Name, header.Value)
	}
	if item.Body != nil {
		fmt.Fprintf(&b, "Body: %s", *item.Body)
	} else {
		b.WriteString("Body: (no body)")
	}
	return b.String()
}

func logToFile(content, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errdef.Wrap(errdef.CodeFilesystem, err, "create log dir %s", dir)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "write log file %s", path)
	}
	return nil
}

func indentLines(s string, indent int) string {
	pad := strings.Repeat(" ", indent)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}
