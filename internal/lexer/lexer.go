package lexer

import (
	"strings"

	"github.com/unkn0wn-root/rdscript/internal/span"
)

// Lexer walks the source one byte at a time. Template strings are the one
// place a single scan step can produce more than one logical token (the
// opening backtick, a text segment, an interpolation open), so those get
// buffered in a FIFO that Next drains before touching the cursor again.
type Lexer struct {
	src   []byte
	pos   span.Pos
	depth int
	queue []Tok
}

func New(src string) *Lexer {
	return &Lexer{src: []byte(src)}
}

func (l *Lexer) Source() string {
	return string(l.src)
}

// Next returns the next token. Once the input is exhausted it returns END
// tokens forever.
func (l *Lexer) Next() Tok {
	if len(l.queue) > 0 {
		t := l.queue[0]
		l.queue = l.queue[1:]
		return t
	}

	l.skipWhitespace()

	ch, ok := l.ch()
	if !ok {
		return Tok{K: END, Start: l.pos}
	}

	start := l.pos

	switch {
	case ch == '"':
		return l.stringLiteral(start)
	case ch == '`':
		l.advance(1)
		l.depth++
		l.scanTemplateText()
		return Tok{K: BACKTICK_OPEN, Text: "`", Start: start}
	case ch == '}' && l.depth > 0:
		l.advance(1)
		l.scanTemplateText()
		return Tok{K: RBRACE, Text: "}", Start: start}
	case ch == '$' && l.peekIs('{'):
		l.advance(2)
		return Tok{K: DOLLAR_LBRACE, Text: "${", Start: start}
	case ch == '/' && l.peekIs('/'):
		return l.lineComment(start)
	case ch == '/':
		return l.pathname(start)
	case ch == '#' && l.peekIs('!'):
		return l.shebang(start)
	case isAlpha(ch):
		return l.keywordOrIdentifier(start)
	case isDigit(ch):
		return l.number(start)
	}

	switch ch {
	case '(':
		l.advance(1)
		return Tok{K: LPAREN, Text: "(", Start: start}
	case ')':
		l.advance(1)
		return Tok{K: RPAREN, Text: ")", Start: start}
	case '{':
		l.advance(1)
		return Tok{K: LBRACE, Text: "{", Start: start}
	case '}':
		l.advance(1)
		return Tok{K: RBRACE, Text: "}", Start: start}
	case '[':
		l.advance(1)
		return Tok{K: LSQUARE, Text: "[", Start: start}
	case ']':
		l.advance(1)
		return Tok{K: RSQUARE, Text: "]", Start: start}
	case ',':
		l.advance(1)
		return Tok{K: COMMA, Text: ",", Start: start}
	case ':':
		l.advance(1)
		return Tok{K: COLON, Text: ":", Start: start}
	case '=':
		l.advance(1)
		return Tok{K: ASSIGN, Text: "=", Start: start}
	case '@':
		l.advance(1)
		return Tok{K: AT, Text: "@", Start: start}
	}

	l.advance(1)
	return Tok{K: ILLEGAL, Text: string(ch), Start: start}
}

func (l *Lexer) ch() (byte, bool) {
	if l.pos.Off >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos.Off], true
}

func (l *Lexer) peekIs(ch byte) bool {
	if l.pos.Off+1 >= len(l.src) {
		return false
	}
	return l.src[l.pos.Off+1] == ch
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.pos.Off < len(l.src); i++ {
		if l.src[l.pos.Off] == '\n' {
			l.pos.Line++
			l.pos.Col = 0
		} else {
			l.pos.Col++
		}
		l.pos.Off++
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		ch, ok := l.ch()
		if !ok || !isSpace(ch) {
			return
		}
		l.advance(1)
	}
}

func (l *Lexer) slice(from, to int) string {
	return string(l.src[from:to])
}

// stringLiteral scans a quoted string. The token text keeps both quotes.
// Hitting a newline or the end of input first yields UNFINISHED_STRING with
// everything scanned so far and the newline left unconsumed.
func (l *Lexer) stringLiteral(start span.Pos) Tok {
	l.advance(1)
	for {
		ch, ok := l.ch()
		if !ok || ch == '\n' {
			return Tok{
				K:     UNFINISHED_STRING,
				Text:  l.slice(start.Off, l.pos.Off),
				Start: start,
			}
		}
		if ch == '\\' {
			l.advance(2)
			continue
		}
		if ch == '"' {
			l.advance(1)
			return Tok{
				K:     STRING,
				Text:  l.slice(start.Off, l.pos.Off),
				Start: start,
			}
		}
		l.advance(1)
	}
}

// scanTemplateText consumes template text after an opening backtick or a
// closed interpolation and queues the resulting tokens. Normal scanning
// resumes either inside an interpolation or after the closing backtick.
func (l *Lexer) scanTemplateText() {
	segStart := l.pos
	for {
		ch, ok := l.ch()
		if !ok {
			l.queue = append(l.queue, Tok{
				K:     UNFINISHED_TEMPLATE,
				Text:  l.slice(segStart.Off, l.pos.Off),
				Start: segStart,
			})
			return
		}
		if ch == '`' {
			if l.pos.Off > segStart.Off {
				l.queue = append(l.queue, Tok{
					K:     STRING,
					Text:  l.slice(segStart.Off, l.pos.Off),
					Start: segStart,
				})
			}
			l.queue = append(l.queue, Tok{K: BACKTICK_CLOSE, Text: "`", Start: l.pos})
			l.advance(1)
			l.depth--
			return
		}
		if ch == '$' && l.peekIs('{') {
			if l.pos.Off > segStart.Off {
				l.queue = append(l.queue, Tok{
					K:     STRING,
					Text:  l.slice(segStart.Off, l.pos.Off),
					Start: segStart,
				})
			}
			l.queue = append(l.queue, Tok{K: DOLLAR_LBRACE, Text: "${", Start: l.pos})
			l.advance(2)
			return
		}
		l.advance(1)
	}
}

func (l *Lexer) lineComment(start span.Pos) Tok {
	l.advanceToLineEnd()
	return Tok{K: LINECOMMENT, Text: l.slice(start.Off, l.pos.Off), Start: start}
}

func (l *Lexer) shebang(start span.Pos) Tok {
	l.advanceToLineEnd()
	return Tok{K: SHEBANG, Text: l.slice(start.Off, l.pos.Off), Start: start}
}

func (l *Lexer) advanceToLineEnd() {
	for {
		ch, ok := l.ch()
		if !ok || ch == '\n' {
			return
		}
		l.advance(1)
	}
}

func (l *Lexer) pathname(start span.Pos) Tok {
	l.advanceWhile(func(ch byte) bool { return !isSpace(ch) })
	return Tok{K: PATHNAME, Text: l.slice(start.Off, l.pos.Off), Start: start}
}

func (l *Lexer) keywordOrIdentifier(start span.Pos) Tok {
	l.advanceWhile(func(ch byte) bool { return isAlpha(ch) || ch == '_' })
	word := l.slice(start.Off, l.pos.Off)

	if word == "http" || word == "https" {
		l.advanceWhile(func(ch byte) bool { return !isSpace(ch) })
		return Tok{K: URL, Text: l.slice(start.Off, l.pos.Off), Start: start}
	}

	if k, ok := kw[word]; ok {
		return Tok{K: k, Text: word, Start: start}
	}
	return Tok{K: IDENT, Text: word, Start: start}
}

func (l *Lexer) number(start span.Pos) Tok {
	l.advanceWhile(isDigit)
	// one fractional part, but only when a digit actually follows the dot
	if ch, ok := l.ch(); ok && ch == '.' {
		if l.pos.Off+1 < len(l.src) && isDigit(l.src[l.pos.Off+1]) {
			l.advance(1)
			l.advanceWhile(isDigit)
		}
	}
	return Tok{K: NUMBER, Text: l.slice(start.Off, l.pos.Off), Start: start}
}

func (l *Lexer) advanceWhile(pred func(byte) bool) {
	for {
		ch, ok := l.ch()
		if !ok || !pred(ch) {
			return
		}
		l.advance(1)
	}
}

// Unquote strips string delimiters from a token's text and resolves the two
// escapes quoted strings support.
func Unquote(text string) string {
	n := len(text)
	switch {
	case n > 1 && text[0] == '"' && text[n-1] == '"':
		inner := text[1 : n-1]
		if strings.IndexByte(inner, '\\') < 0 {
			return inner
		}
		var b strings.Builder
		for i := 0; i < len(inner); i++ {
			if inner[i] == '\\' && i+1 < len(inner) &&
				(inner[i+1] == '"' || inner[i+1] == '\\') {
				i++
			}
			b.WriteByte(inner[i])
		}
		return b.String()
	case n > 1 && text[0] == '`' && text[n-1] == '`':
		return text[1 : n-1]
	case n > 0 && text[n-1] == '`':
		return text[:n-1]
	case n > 0 && text[0] == '`':
		return text[1:]
	case n > 0 && text[0] == '"':
		return text[1:]
	default:
		return text
	}
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
