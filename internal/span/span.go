package span

import "fmt"

// Location is a zero-indexed line/column pair within source text.
type Location struct {
	Line int
	Col  int
}

// String renders the location 1-based for display.
func (l Location) String() string {
	return fmt.Sprintf("[%d:%d]", l.Line+1, l.Col+1)
}

// Before reports whether l comes at or before other in source order.
func (l Location) Before(other Location) bool {
	if l.Line == other.Line {
		return l.Col <= other.Col
	}
	return l.Line < other.Line
}

// Pos is a Location plus the byte offset into the source buffer. The offset
// is what slicing works off; line/col exist for display and containment.
type Pos struct {
	Off  int
	Line int
	Col  int
}

func (p Pos) Loc() Location {
	return Location{Line: p.Line, Col: p.Col}
}

func (p Pos) String() string {
	return p.Loc().String()
}

// ToEndOf builds a span from p to the end of other.
func (p Pos) ToEndOf(other Span) Span {
	return Span{Start: p, End: other.End}
}

// Span covers source text from Start up to but not including End's offset.
// End's column is the column one past the last covered character, so
// containment checks treat the end column as inclusive.
type Span struct {
	Start Pos
	End   Pos
}

func New(start, end Pos) Span {
	return Span{Start: start, End: end}
}

func (s Span) ToEndOf(other Span) Span {
	return Span{Start: s.Start, End: other.End}
}

func (s Span) ExtendTo(end Pos) Span {
	return Span{Start: s.Start, End: end}
}

// Width is the column distance the span covers on its start line. Used for
// squiggle rendering; multi-line spans underline only the start line.
func (s Span) Width() int {
	left := s.Start.Col
	right := s.End.Col
	if s.Start.Line != s.End.Line {
		return 1
	}
	if right > left {
		return right - left
	}
	return left - right
}

// Contains reports whether the location falls inside the span. Columns are
// inclusive on both ends when the span sits on a single line.
func (s Span) Contains(loc Location) bool {
	if s.Start.Line == s.End.Line && s.Start.Line == loc.Line {
		return s.Start.Col <= loc.Col && loc.Col <= s.End.Col
	}
	return s.Start.Line <= loc.Line && loc.Line <= s.End.Line
}
