package decl

import "fmt"

// ParseError is returned by the definition parsers when a syntax node does
// not have the shape the parser expects.
type ParseError struct {
	Loc Location
	Msg string
}

func Errorf(loc Location, format string, args ...any) *ParseError {
	return &ParseError{Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}
