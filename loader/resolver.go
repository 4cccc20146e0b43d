package loader

import (
	"net/url"
	"path/filepath"
	"strings"
)

// FileExtension is appended to imports that do not name it.
const FileExtension = ".graphqxl"

// importFileName adds the conventional extension when missing.
func importFileName(name string) string {
	if strings.HasSuffix(name, FileExtension) {
		return name
	}
	return name + FileExtension
}

// resolveImportPath resolves an import relative to the importing document.
// URLs are resolved as references against the importer's URL; everything else
// is joined onto the importer's directory, absolute imports are kept.
func resolveImportPath(importerPath, importPath string) string {
	if strings.Contains(importPath, "://") {
		return importPath
	}
	if strings.Contains(importerPath, "://") {
		base, err := url.Parse(importerPath)
		if err == nil {
			if ref, err := url.Parse(importPath); err == nil {
				return base.ResolveReference(ref).String()
			}
		}
	}
	if filepath.IsAbs(importPath) {
		return importPath
	}
	return filepath.Join(filepath.Dir(importerPath), importPath)
}

// checkImportLoop scans stack from the start and reports the first document
// that appears twice, as the chain from its first occurrence to the repeat.
func checkImportLoop(stack []string) (chain []string, found bool) {
	seen := make(map[string]int, len(stack))
	for i, p := range stack {
		if first, ok := seen[p]; ok {
			return append([]string(nil), stack[first:i+1]...), true
		}
		seen[p] = i
	}
	return nil, false
}
