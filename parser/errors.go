package parser

import (
	"fmt"

	"github.com/panyam/graphqxl/decl"
)

// SyntaxError is returned when a document does not match the grammar.
type SyntaxError struct {
	Loc  decl.Location
	Near string
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("%s: syntax error: %s", e.Loc, e.Msg)
	}
	return fmt.Sprintf("%s: syntax error near '%s': %s", e.Loc, e.Near, e.Msg)
}
