// Package snap renders evaluated requests as curl commands so a script can
// be shared with or replayed by people who don't run the tool.
package snap

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/unkn0wn-root/rdscript/internal/errdef"
	"github.com/unkn0wn-root/rdscript/internal/eval"
)

// Curl renders one request item. Debug items get wrapped in set -xe/+xe so
// the generated shell echoes what it executes.
func Curl(item eval.RequestItem) string {
	var b strings.Builder

	if item.Dbg {
		b.WriteString("set -xe\n")
	}
	if item.Name != "" {
		fmt.Fprintf(&b, "echo %s\n", shellQuote(item.Name))
	}

	fmt.Fprintf(&b, "curl -X %s ", item.Method)
	for _, header := range item.Headers {
		fmt.Fprintf(&b, "-H %q ", header.Name+": "+header.Value)
	}
	if item.Body != nil {
		fmt.Fprintf(&b, "-d %s ", shellQuote(*item.Body))
	}
	b.WriteString(item.URL)

	if item.Log != nil && !item.Log.IsStd() {
		fmt.Fprintf(&b, " 1> %s", item.Log.Path)
	}
	if item.Dbg {
		b.WriteString("\nset +xe")
	}
	return b.String()
}

// Script joins every item's curl command with blank lines between them.
func Script(items []eval.RequestItem) string {
	commands := make([]string, len(items))
	for i, item := range items {
		commands[i] = Curl(item)
	}
	return strings.Join(commands, "\n\n") + "\n"
}

func CopyToClipboard(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return errdef.Wrap(errdef.CodeUnknown, err, "copy snapshot to clipboard")
	}
	return nil
}

// single quotes keep the shell out of the payload; embedded quotes close,
// escape, and reopen
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
