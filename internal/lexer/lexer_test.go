package lexer

import (
	"strings"
	"testing"
)

func lexAll(src string) []Tok {
	lx := New(src)
	var out []Tok
	for {
		t := lx.Next()
		if t.K == END {
			return out
		}
		out = append(out, t)
	}
}

func kinds(toks []Tok) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.K
	}
	return out
}

func assertKinds(t *testing.T, src string, want ...Kind) {
	t.Helper()
	got := kinds(lexAll(src))
	if len(got) != len(want) {
		t.Fatalf("token count: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s want %s (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestKeywordsAndLiterals(t *testing.T) {
	assertKinds(t, `set BASE_URL "http://x"`, KW_SET, IDENT, STRING)
	assertKinds(t, `let x = 12.5`, KW_LET, IDENT, ASSIGN, NUMBER)
	assertKinds(t, `let ok = true`, KW_LET, IDENT, ASSIGN, BOOLEAN)
	assertKinds(t, `let n = null`, KW_LET, IDENT, ASSIGN, KW_NULL)
}

func TestUrlAndPathname(t *testing.T) {
	toks := lexAll("get http://localhost:8080/api?q=1")
	if toks[1].K != URL || toks[1].Text != "http://localhost:8080/api?q=1" {
		t.Fatalf("url token: %v %q", toks[1].K, toks[1].Text)
	}

	toks = lexAll("post /users/1")
	if toks[1].K != PATHNAME || toks[1].Text != "/users/1" {
		t.Fatalf("pathname token: %v %q", toks[1].K, toks[1].Text)
	}
}

func TestRequestBlock(t *testing.T) {
	assertKinds(t, `get /a { header "k" "v" body "b" }`,
		KW_GET, PATHNAME, LBRACE,
		KW_HEADER, STRING, STRING,
		KW_BODY, STRING,
		RBRACE)
}

func TestCommentsAndShebang(t *testing.T) {
	assertKinds(t, "#!/usr/bin/env rdscript\n// hello\nget /a",
		SHEBANG, LINECOMMENT, KW_GET, PATHNAME)

	toks := lexAll("// trailing comment")
	if toks[0].Text != "// trailing comment" {
		t.Fatalf("comment text: %q", toks[0].Text)
	}
}

func TestNumberTrailingDot(t *testing.T) {
	toks := lexAll("1.")
	if toks[0].K != NUMBER || toks[0].Text != "1" {
		t.Fatalf("number: %v %q", toks[0].K, toks[0].Text)
	}
	if toks[1].K != ILLEGAL {
		t.Fatalf("dot should be illegal, got %v", toks[1].K)
	}
}

func TestUnfinishedStringLiteral(t *testing.T) {
	toks := lexAll("\"abc\nget /x")
	if toks[0].K != UNFINISHED_STRING || toks[0].Text != `"abc` {
		t.Fatalf("unfinished string: %v %q", toks[0].K, toks[0].Text)
	}
	if toks[1].K != KW_GET {
		t.Fatalf("lexing should continue after the broken string, got %v", toks[1].K)
	}
}

func TestEscapedQuote(t *testing.T) {
	toks := lexAll(`"a\"b"`)
	if toks[0].K != STRING {
		t.Fatalf("kind: %v", toks[0].K)
	}
	if got := Unquote(toks[0].Text); got != `a"b` {
		t.Fatalf("unquote: %q", got)
	}
}

func TestTemplateString(t *testing.T) {
	assertKinds(t, "`x${1}y${2}z`",
		BACKTICK_OPEN, STRING, DOLLAR_LBRACE, NUMBER, RBRACE,
		STRING, DOLLAR_LBRACE, NUMBER, RBRACE, STRING, BACKTICK_CLOSE)

	assertKinds(t, "`plain`", BACKTICK_OPEN, STRING, BACKTICK_CLOSE)
	assertKinds(t, "``", BACKTICK_OPEN, BACKTICK_CLOSE)
}

func TestNestedTemplate(t *testing.T) {
	assertKinds(t, "`a${`b`}c`",
		BACKTICK_OPEN, STRING, DOLLAR_LBRACE,
		BACKTICK_OPEN, STRING, BACKTICK_CLOSE,
		RBRACE, STRING, BACKTICK_CLOSE)
}

func TestRBraceOutsideTemplateIsPlain(t *testing.T) {
	assertKinds(t, "{ a: 1 }", LBRACE, IDENT, COLON, NUMBER, RBRACE)
}

func TestUnfinishedTemplate(t *testing.T) {
	toks := lexAll("`abc")
	if toks[len(toks)-1].K != UNFINISHED_TEMPLATE {
		t.Fatalf("kinds: %v", kinds(toks))
	}
}

func TestEndForever(t *testing.T) {
	lx := New("get")
	lx.Next()
	for i := 0; i < 3; i++ {
		if got := lx.Next(); got.K != END {
			t.Fatalf("call %d: got %v", i, got.K)
		}
	}
}

func TestRoundTripSpans(t *testing.T) {
	src := "set BASE_URL \"http://h\"\nget /p {\n  header \"a\" `x${env(\"k\")}y`\n}\n"
	for _, tok := range lexAll(src) {
		got := src[tok.Start.Off:tok.End().Off]
		if got != tok.Text {
			t.Fatalf("span slice %q != text %q", got, tok.Text)
		}
	}
}

func TestTotalLexing(t *testing.T) {
	src := "let a = `x${ 1 }y`\n// c\nget http://h/p { body \"b\" }\n"
	toks := lexAll(src)

	var b strings.Builder
	cursor := 0
	for _, tok := range toks {
		// whitespace between tokens
		b.WriteString(src[cursor:tok.Start.Off])
		b.WriteString(tok.Text)
		cursor = tok.End().Off
	}
	b.WriteString(src[cursor:])

	if b.String() != src {
		t.Fatalf("reconstructed %q != %q", b.String(), src)
	}
}

func TestPositions(t *testing.T) {
	toks := lexAll("get /a\nget /b")
	second := toks[2]
	if second.Start.Line != 1 || second.Start.Col != 0 {
		t.Fatalf("second get at %d:%d", second.Start.Line, second.Start.Col)
	}
	path := toks[3]
	if path.Start.Line != 1 || path.Start.Col != 4 {
		t.Fatalf("second pathname at %d:%d", path.Start.Line, path.Start.Col)
	}
}
