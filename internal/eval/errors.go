package eval

import "fmt"

type UnknownConstant struct {
	Constant string
}

func (e *UnknownConstant) Error() string {
	return fmt.Sprintf("trying to set an unknown constant %s", e.Constant)
}

type RequiredArguments struct {
	Required int
	Received int
}

func (e *RequiredArguments) Error() string {
	return fmt.Sprintf("%d argument(s) required, received %d", e.Required, e.Received)
}

type EnvVariableNotFound struct {
	Name string
}

func (e *EnvVariableNotFound) Error() string {
	return fmt.Sprintf("no variable found by the name %q", e.Name)
}

type PathnameWithoutBaseURL struct{}

func (e *PathnameWithoutBaseURL) Error() string {
	return `BASE_URL needs to be set first for requests to work with just pathnames; try writing like set BASE_URL "<api origin>" before this request`
}

type UndefinedCallable struct {
	Name string
}

func (e *UndefinedCallable) Error() string {
	return fmt.Sprintf("attempting to call an undefined function: %s", e.Name)
}

type UndeclaredIdentifier struct {
	Name string
}

func (e *UndeclaredIdentifier) Error() string {
	return fmt.Sprintf("undeclared variable: %s", e.Name)
}

type UnsupportedAttribute struct {
	Name string
}

func (e *UnsupportedAttribute) Error() string {
	return fmt.Sprintf("unsupported attribute: %s", e.Name)
}

type DuplicateAttribute struct {
	Name string
}

func (e *DuplicateAttribute) Error() string {
	return fmt.Sprintf("duplicate attribute: @%s is already set for this request", e.Name)
}

type TypeMismatch struct {
	Expected ValueKind
	Found    ValueKind
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("expected a %s value but got a %s", e.Expected, e.Found)
}

const (
	hintSupportedAttributes = "@name, @log, @skip and @dbg are the only supported attributes"
	hintSupportedCalls      = "env(..), read(..), json(..), and escape_new_lines(..) are the only calls supported"
	hintNameNeedsArgument   = `@name(..) must be given an argument, like @name("req_1")`
	hintStringifyWithJSON   = "wrap the value in json(..) to stringify it"
)
