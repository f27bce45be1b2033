package diag

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	squiggleChar = "≈"
	arrowChar    = "↳"
)

// Styles controls how the pieces of a rendered error are coloured. The zero
// value renders everything unstyled.
type Styles struct {
	Location lipgloss.Style
	Squiggle lipgloss.Style
	Error    lipgloss.Style
	Hint     lipgloss.Style
}

func PlainStyles() Styles {
	return Styles{}
}

func DefaultStyles() Styles {
	return Styles{
		Location: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Squiggle: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Hint:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Render lays the error out as: the line above, the offending line, a
// squiggle under the span, an arrow with location and message, the optional
// hint, then the line below.
func Render(e *ContextualError, st Styles) string {
	var b strings.Builder

	if e.Context.HasAbove {
		b.WriteString(e.Context.Above)
		b.WriteByte('\n')
	}
	b.WriteString(e.Context.Line)
	b.WriteByte('\n')

	indent := strings.Repeat(" ", indentWidth(e.Context.Line, e.Span.Start.Col))
	location := e.Span.Start.Loc().String()

	b.WriteString(indent)
	b.WriteString(st.Squiggle.Render(strings.Repeat(squiggleChar, max(e.Span.Width(), 1))))
	b.WriteByte('\n')

	b.WriteString(indent)
	b.WriteString(st.Location.Render(arrowChar + " " + location))
	b.WriteByte(' ')
	b.WriteString(st.Error.Render(e.Inner.Error()))
	b.WriteByte('\n')

	if e.Message != "" {
		b.WriteString(strings.Repeat(" ", indentWidth(e.Context.Line, e.Span.Start.Col)+len(location)))
		b.WriteString("   ")
		b.WriteString(st.Hint.Render(e.Message))
		b.WriteByte('\n')
	}

	if e.Context.HasBelow {
		b.WriteString(e.Context.Below)
		b.WriteByte('\n')
	}

	return b.String()
}

// indentWidth measures the display width of the line up to col, so the
// squiggle lines up even when the prefix holds wide characters.
func indentWidth(line string, col int) int {
	if col <= 0 {
		return 0
	}
	if col > len(line) {
		return col
	}
	return runewidth.StringWidth(line[:col])
}
