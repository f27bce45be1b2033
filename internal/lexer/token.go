package lexer

import (
	"strings"

	"github.com/unkn0wn-root/rdscript/internal/span"
)

type Kind int

const (
	END Kind = iota
	ILLEGAL

	IDENT

	KW_GET
	KW_POST
	KW_PUT
	KW_PATCH
	KW_DELETE
	KW_HEADER
	KW_BODY
	KW_SET
	KW_LET
	KW_NULL

	BOOLEAN
	NUMBER
	STRING
	URL
	PATHNAME

	LINECOMMENT
	SHEBANG

	ASSIGN

	DOLLAR_LBRACE
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LSQUARE
	RSQUARE
	COLON
	AT
	COMMA
	BACKTICK_OPEN
	BACKTICK_CLOSE

	UNFINISHED_STRING
	UNFINISHED_TEMPLATE
)

func (k Kind) String() string {
	switch k {
	case END:
		return "Eof"
	case ILLEGAL:
		return "illegal"
	case IDENT:
		return "identifier"
	case KW_GET:
		return "get"
	case KW_POST:
		return "post"
	case KW_PUT:
		return "put"
	case KW_PATCH:
		return "patch"
	case KW_DELETE:
		return "delete"
	case KW_HEADER:
		return "header"
	case KW_BODY:
		return "body"
	case KW_SET:
		return "set"
	case KW_LET:
		return "let"
	case KW_NULL:
		return "null"
	case BOOLEAN:
		return "boolean"
	case NUMBER:
		return "number"
	case STRING:
		return "string"
	case URL:
		return "url"
	case PATHNAME:
		return "pathname"
	case LINECOMMENT:
		return "comment"
	case SHEBANG:
		return "#!..."
	case ASSIGN:
		return "="
	case DOLLAR_LBRACE:
		return "${"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACE:
		return "{"
	case RBRACE:
		return "}"
	case LSQUARE:
		return "["
	case RSQUARE:
		return "]"
	case COLON:
		return ":"
	case AT:
		return "@"
	case COMMA:
		return ","
	case BACKTICK_OPEN, BACKTICK_CLOSE:
		return "`"
	case UNFINISHED_STRING:
		return "\"..."
	case UNFINISHED_TEMPLATE:
		return "`..."
	default:
		return "?"
	}
}

var kw = map[string]Kind{
	"get":    KW_GET,
	"post":   KW_POST,
	"put":    KW_PUT,
	"patch":  KW_PATCH,
	"delete": KW_DELETE,
	"header": KW_HEADER,
	"body":   KW_BODY,
	"set":    KW_SET,
	"let":    KW_LET,
	"null":   KW_NULL,
	"true":   BOOLEAN,
	"false":  BOOLEAN,
}

// Tok's Text is a slice of the original source buffer, quotes and backticks
// included for string literals.
type Tok struct {
	K     Kind
	Text  string
	Start span.Pos
}

// End is the position one past the last character of the token.
func (t Tok) End() span.Pos {
	end := span.Pos{
		Off:  t.Start.Off + len(t.Text),
		Line: t.Start.Line,
		Col:  t.Start.Col + len(t.Text),
	}
	if n := strings.Count(t.Text, "\n"); n > 0 {
		end.Line = t.Start.Line + n
		end.Col = len(t.Text) - (strings.LastIndexByte(t.Text, '\n') + 1)
	}
	return end
}

func (t Tok) Span() span.Span {
	return span.New(t.Start, t.End())
}

func (t Tok) Is(k Kind) bool {
	return t.K == k
}

func (t Tok) IsOneOf(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.K == k {
			return true
		}
	}
	return false
}

// IsMethod reports whether the token is one of the request method keywords.
func (t Tok) IsMethod() bool {
	return t.IsOneOf(KW_GET, KW_POST, KW_PUT, KW_PATCH, KW_DELETE)
}
