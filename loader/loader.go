package loader

import (
	"bytes"
	"log/slog"

	"github.com/panyam/graphqxl/decl"
)

// DefaultMaxDepth bounds import nesting for the convenience entry points.
const DefaultMaxDepth = 64

// LoadResult holds the outcome of a loading operation.
type LoadResult struct {
	Spec  *Spec    // Definitions of the entry document and everything it imports.
	Files []string // Canonical paths of the documents read, in pre-order.
}

// Loader resolves an entry document and its imports into a single Spec.
type Loader struct {
	parser   Parser
	fs       FileSystem
	maxDepth int

	// NewKeyGen creates the extension key generator for one Load.  Defaults
	// to UUIDKeyGen.
	NewKeyGen func() KeyGen

	// Logger receives debug output.  Defaults to slog.Default().
	Logger *slog.Logger
}

// loadContext is the state of one Load call, handed down through every
// recursive step of it.
type loadContext struct {
	visited map[string]bool // documents whose definitions were already contributed
	keys    KeyGen
	files   []string
}

// NewLoader creates a new loader.  A nil parser uses GraphqxlParser and a nil
// file system uses the local disk.  maxDepth limits how deep imports may nest
// (0 means no limit).
func NewLoader(parser Parser, fs FileSystem, maxDepth int) *Loader {
	if parser == nil {
		parser = GraphqxlParser{}
	}
	if fs == nil {
		fs = NewLocalFS("")
	}
	return &Loader{
		parser:   parser,
		fs:       fs,
		maxDepth: maxDepth,
	}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// FileSystem returns the file system documents are read from.
func (l *Loader) FileSystem() FileSystem {
	return l.fs
}

// LoadSpec resolves entryPath and returns only the resulting Spec.
func (l *Loader) LoadSpec(entryPath string) (*Spec, error) {
	result, err := l.Load(entryPath)
	if err != nil {
		return nil, err
	}
	return result.Spec, nil
}

// Load resolves entryPath and all the documents it imports.  The first error
// anywhere aborts the whole load, there is no partial result.
func (l *Loader) Load(entryPath string) (*LoadResult, error) {
	ctx := &loadContext{visited: map[string]bool{}}
	if l.NewKeyGen != nil {
		ctx.keys = l.NewKeyGen()
	} else {
		ctx.keys = UUIDKeyGen{}
	}

	canonicalPath, err := l.fs.Canonicalize(entryPath)
	if err != nil {
		return nil, &FileAccessError{Op: "canonicalize", Path: entryPath, Err: err}
	}
	spec, err := l.loadFile(ctx, canonicalPath, []string{canonicalPath})
	if err != nil {
		return nil, err
	}
	return &LoadResult{Spec: spec, Files: ctx.files}, nil
}

// loadFile resolves one document.  importStack holds the chain of documents
// being resolved (ending with this one); it is copied for each import so that
// siblings never see each other's frames.
func (l *Loader) loadFile(ctx *loadContext, filePath string, importStack []string) (*Spec, error) {
	canonicalPath, err := l.fs.Canonicalize(filePath)
	if err != nil {
		return nil, &FileAccessError{Op: "canonicalize", Path: filePath, Err: err}
	}

	spec := NewSpec(ctx.keys)
	if ctx.visited[canonicalPath] {
		l.logger().Debug("skipping already imported document", "path", canonicalPath)
		return spec, nil
	}

	content, err := l.fs.ReadFile(canonicalPath)
	if err != nil {
		return nil, &FileAccessError{Op: "read", Path: canonicalPath, Err: err}
	}
	root, err := l.parser.Parse(bytes.NewReader(content), canonicalPath)
	if err != nil {
		return nil, err
	}
	if root.Kind != decl.KindSpec {
		return nil, &UnknownDeclarationError{Kind: root.Kind, Expected: []string{decl.KindSpec.String()}, Loc: root.Loc.WithFile(canonicalPath)}
	}
	l.logger().Debug("resolving document", "path", canonicalPath, "depth", len(importStack)-1, "declarations", len(root.Children)-1)
	ctx.files = append(ctx.files, canonicalPath)

	for _, child := range root.Children {
		switch child.Kind {
		case decl.KindEOI:
			// nothing to do here
		case decl.KindImport:
			imported, err := l.loadImport(ctx, child, canonicalPath, importStack)
			if err != nil {
				return nil, err
			}
			if err := spec.Merge(imported); err != nil {
				return nil, err
			}
		default:
			if err := spec.Add(child, canonicalPath); err != nil {
				return nil, err
			}
		}
	}

	ctx.visited[canonicalPath] = true
	return spec, nil
}

// loadImport resolves the document named by an import statement of
// importerPath.
func (l *Loader) loadImport(ctx *loadContext, node *decl.Node, importerPath string, importStack []string) (*Spec, error) {
	imp, err := decl.ParseImport(node, importerPath)
	if err != nil {
		return nil, err
	}
	importPath := resolveImportPath(importerPath, importFileName(imp.FileName))
	if !l.fs.Exists(importPath) {
		return nil, &MissingImportError{Path: importPath, Loc: imp.Loc}
	}
	canonicalPath, err := l.fs.Canonicalize(importPath)
	if err != nil {
		return nil, &FileAccessError{Op: "canonicalize", Path: importPath, Err: err}
	}

	stack := make([]string, len(importStack), len(importStack)+1)
	copy(stack, importStack)
	stack = append(stack, canonicalPath)
	if chain, found := checkImportLoop(stack); found {
		return nil, &CyclicImportError{Chain: chain, Loc: imp.Loc}
	}
	if l.maxDepth > 0 && len(stack)-1 > l.maxDepth {
		return nil, &ImportDepthError{Max: l.maxDepth, Chain: stack, Loc: imp.Loc}
	}
	return l.loadFile(ctx, canonicalPath, stack)
}

// ParseSpec resolves a document on the local file system.
func ParseSpec(path string) (*Spec, error) {
	return ParseSpecFS(path, NewLocalFS(""))
}

// ParseSpecFS resolves a document held by fs, e.g. a MemoryFS supplied by a
// host without file system access.
func ParseSpecFS(path string, fs FileSystem) (*Spec, error) {
	return NewLoader(nil, fs, DefaultMaxDepth).LoadSpec(path)
}
