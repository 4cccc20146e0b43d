package loader

import (
	"fmt"
	"strings"

	"github.com/panyam/graphqxl/decl"
)

// DuplicateDefinitionError is returned when a name is declared twice in a
// namespace, either directly in one document (Merge == false) or when an
// imported document is folded into its importer (Merge == true).
type DuplicateDefinitionError struct {
	Kind  string
	Name  string
	Loc   decl.Location
	Merge bool
}

func (e *DuplicateDefinitionError) Error() string {
	var msg string
	switch {
	case e.Kind == "schema" && e.Merge:
		msg = "schema defined multiple times"
	case e.Kind == "schema":
		msg = "schema is already defined"
	case e.Merge:
		msg = fmt.Sprintf("duplicated %s %q", e.Kind, e.Name)
	default:
		msg = fmt.Sprintf("%s %q is already defined", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Loc, msg)
}

// CyclicImportError reports an import cycle.  Chain runs from the first
// occurrence of the repeated document to the import that closes the loop.
type CyclicImportError struct {
	Chain []string
	Loc   decl.Location
}

func (e *CyclicImportError) Error() string {
	return fmt.Sprintf("%s: cyclical import %s", e.Loc, e.Rendered())
}

// Rendered returns the cycle as "a -> b -> a".
func (e *CyclicImportError) Rendered() string {
	return strings.Join(e.Chain, " -> ")
}

// MissingImportError is returned when an import names a file the file
// system does not have.
type MissingImportError struct {
	Path string
	Loc  decl.Location
}

func (e *MissingImportError) Error() string {
	return fmt.Sprintf("%s: file %q does not exist", e.Loc, e.Path)
}

// UnknownDeclarationError is returned when a top level syntax node is of a
// kind the builder does not know how to file.
type UnknownDeclarationError struct {
	Kind     decl.Kind
	Expected []string
	Loc      decl.Location
}

func (e *UnknownDeclarationError) Error() string {
	return fmt.Sprintf("%s: unexpected %s, expected one of: %s", e.Loc, e.Kind, strings.Join(e.Expected, ", "))
}

// FileAccessError wraps a file system failure.
type FileAccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// ImportDepthError is returned when a (non cyclic) import chain grows past
// the loader's depth limit.
type ImportDepthError struct {
	Max   int
	Chain []string
	Loc   decl.Location
}

func (e *ImportDepthError) Error() string {
	return fmt.Sprintf("%s: import depth exceeds %d (via %s)", e.Loc, e.Max, strings.Join(e.Chain, " -> "))
}
