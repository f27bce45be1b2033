package eval

import "github.com/unkn0wn-root/rdscript/internal/ast"

type attribute struct {
	ident *ast.Ident
	args  *ast.Arguments
}

// attributeStack accumulates attributes seen since the last request. It is
// cleared after every request, including skipped ones.
type attributeStack struct {
	inner []attribute
}

func (s *attributeStack) add(ident *ast.Ident, args *ast.Arguments) {
	if s.has(ident.Name) {
		return
	}
	s.inner = append(s.inner, attribute{ident: ident, args: args})
}

func (s *attributeStack) get(name string) (attribute, bool) {
	for _, att := range s.inner {
		if att.ident.Name == name {
			return att, true
		}
	}
	return attribute{}, false
}

func (s *attributeStack) has(name string) bool {
	_, ok := s.get(name)
	return ok
}

func (s *attributeStack) clear() {
	s.inner = s.inner[:0]
}
