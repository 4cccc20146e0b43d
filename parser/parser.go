// Package parser is the GraphQXL grammar engine.  It turns the raw text of a
// document into a decl.Node tree: a KindSpec root whose children are the
// document's imports and declarations, in source order, followed by exactly
// one KindEOI node.
package parser

import (
	"io"
	"strings"
)

// Parse parses a whole document.  sourceName is recorded on every location
// and is usually the document's canonical path.  Failures are *SyntaxError.
func Parse(input io.Reader, sourceName string) (*Node, error) {
	p := NewLLParser(NewLexer(input, sourceName))
	return p.Parse()
}

// ParseString is a convenience wrapper over Parse.
func ParseString(input, sourceName string) (*Node, error) {
	return Parse(strings.NewReader(input), sourceName)
}
