package parser

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/rdscript/internal/lexer"
)

// ExpectedToken is a parse error for a position where exactly one token kind
// was acceptable.
type ExpectedToken struct {
	Found    lexer.Tok
	Expected lexer.Kind
}

func (e *ExpectedToken) Error() string {
	return fmt.Sprintf("expected '%s' but got %s", e.Expected, displayTok(e.Found))
}

// ExpectedEitherOfTokens is a parse error for a position where several token
// kinds were acceptable.
type ExpectedEitherOfTokens struct {
	Found    lexer.Tok
	Expected []lexer.Kind
}

func (e *ExpectedEitherOfTokens) Error() string {
	quoted := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		quoted[i] = "'" + k.String() + "'"
	}
	return fmt.Sprintf("expected either one of %s but got %s",
		strings.Join(quoted, ","), displayTok(e.Found))
}

// DuplicateKey is reported when an object literal declares the same key
// twice.
type DuplicateKey struct {
	Key string
}

func (e *DuplicateKey) Error() string {
	return fmt.Sprintf("duplicate key: %s is already set for this object", e.Key)
}

// displayTok renders the offending token for an error message. Kinds whose
// text varies per occurrence show it, the rest are identified by kind alone.
func displayTok(t lexer.Tok) string {
	switch t.K {
	case lexer.URL, lexer.LINECOMMENT, lexer.ILLEGAL:
		return fmt.Sprintf("%s<%s>", t.K, t.Text)
	default:
		return t.K.String()
	}
}

func dedupeKinds(kinds []lexer.Kind) []lexer.Kind {
	var out []lexer.Kind
	for _, k := range kinds {
		seen := false
		for _, have := range out {
			if have == k {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, k)
		}
	}
	return out
}
