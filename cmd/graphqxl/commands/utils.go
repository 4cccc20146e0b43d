package commands

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/panyam/graphqxl/config"
	"github.com/panyam/graphqxl/loader"
)

var errNoEntry = errors.New("no entry document: pass a file or set entry in " + config.DefaultFileName)

// newFileSystem reads local paths from disk and URLs over HTTP.
func newFileSystem() *loader.CompositeFS {
	fs := loader.NewCompositeFS()
	fs.SetFallback(loader.NewLocalFS(""))
	fs.Mount("http://", loader.NewHTTPFileSystem(""))
	fs.Mount("https://", loader.NewHTTPFileSystem(""))
	return fs
}

// newLoader builds a loader from the effective settings.
func newLoader(cfg *config.Config) (*loader.Loader, error) {
	// fail early on a bad generator name
	if _, err := loader.NewKeyGen(cfg.KeyGen); err != nil {
		return nil, err
	}
	l := loader.NewLoader(nil, newFileSystem(), cfg.MaxDepth)
	l.NewKeyGen = func() loader.KeyGen {
		keys, _ := loader.NewKeyGen(cfg.KeyGen)
		return keys
	}
	l.Logger = slog.Default()
	return l, nil
}

// entryPaths returns the documents named on the command line, expanding
// directories to the documents they hold.  With no arguments the configured
// entry is used.
func entryPaths(fs loader.FileSystem, cfg *config.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		if cfg.Entry == "" {
			return nil, errNoEntry
		}
		return []string{cfg.Entry}, nil
	}
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			out = append(out, arg)
			continue
		}
		files, err := fs.ListFiles(arg)
		if err != nil {
			return nil, err
		}
		sort.Strings(files)
		for _, f := range files {
			if filepath.Ext(f) == loader.FileExtension {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// singleEntry returns the one document dump and watch resolve.
func singleEntry(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Entry == "" {
		return "", errNoEntry
	}
	return cfg.Entry, nil
}
