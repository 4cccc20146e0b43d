package loader

import (
	"io"

	"github.com/panyam/graphqxl/decl"
	"github.com/panyam/graphqxl/parser"
)

// Parser defines the interface for parsing GraphQXL content.
type Parser interface {
	// Parse reads from the input reader and returns the root syntax node,
	// a decl.KindSpec node.  sourceName is used for locations in the tree and
	// in errors.
	Parse(input io.Reader, sourceName string) (*decl.Node, error)
}

// FileSystem abstracts the storage documents are read from so the loader
// can work against local disk, memory, HTTP or a mix of these.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	ListFiles(dir string) ([]string, error)

	// Exists never fails, any uncertainty is reported as false.
	Exists(path string) bool

	// Canonicalize returns a stable absolute form of path, suitable for
	// comparing documents.  It fails if the path cannot be resolved.
	Canonicalize(path string) (string, error)
}

// GraphqxlParser adapts parser.Parse to the Parser interface.
type GraphqxlParser struct{}

func (GraphqxlParser) Parse(input io.Reader, sourceName string) (*decl.Node, error) {
	return parser.Parse(input, sourceName)
}
