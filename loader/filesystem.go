package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CompositeFS allows multiple file systems to be composed with different mount points
type CompositeFS struct {
	mu          sync.RWMutex
	filesystems map[string]FileSystem
	fallback    FileSystem
}

func NewCompositeFS() *CompositeFS {
	return &CompositeFS{
		filesystems: make(map[string]FileSystem),
	}
}

func (c *CompositeFS) SetFallback(fs FileSystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = fs
}

func (c *CompositeFS) Mount(prefix string, fs FileSystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filesystems[prefix] = fs
}

func (c *CompositeFS) findFS(path string) FileSystem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Longest prefix wins
	var bestMatch string
	var bestFS FileSystem
	for prefix, fs := range c.filesystems {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(bestMatch) {
			bestMatch = prefix
			bestFS = fs
		}
	}
	if bestFS != nil {
		return bestFS
	}

	// Then protocol handlers (https://)
	if scheme, _, found := strings.Cut(path, "://"); found {
		if fs, exists := c.filesystems[scheme+"://"]; exists {
			return fs
		}
	}
	return c.fallback
}

func (c *CompositeFS) ReadFile(path string) ([]byte, error) {
	fs := c.findFS(path)
	if fs == nil {
		return nil, fmt.Errorf("no filesystem mounted for path: %s", path)
	}
	return fs.ReadFile(path)
}

func (c *CompositeFS) WriteFile(path string, data []byte) error {
	fs := c.findFS(path)
	if fs == nil {
		return fmt.Errorf("no filesystem mounted for path: %s", path)
	}
	return fs.WriteFile(path, data)
}

func (c *CompositeFS) ListFiles(dir string) ([]string, error) {
	fs := c.findFS(dir)
	if fs == nil {
		return nil, fmt.Errorf("no filesystem mounted for path: %s", dir)
	}
	return fs.ListFiles(dir)
}

func (c *CompositeFS) Exists(path string) bool {
	fs := c.findFS(path)
	if fs == nil {
		return false
	}
	return fs.Exists(path)
}

func (c *CompositeFS) Canonicalize(path string) (string, error) {
	fs := c.findFS(path)
	if fs == nil {
		return "", fmt.Errorf("no filesystem mounted for path: %s", path)
	}
	return fs.Canonicalize(path)
}

// LocalFS implements FileSystem using the local disk.  Relative paths are
// taken relative to basePath (the working directory when empty).
type LocalFS struct {
	basePath string
}

func NewLocalFS(basePath string) *LocalFS {
	return &LocalFS{basePath: basePath}
}

func (l *LocalFS) resolvePath(path string) string {
	if filepath.IsAbs(path) || l.basePath == "" {
		return path
	}
	return filepath.Join(l.basePath, path)
}

func (l *LocalFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(l.resolvePath(path))
}

func (l *LocalFS) WriteFile(path string, data []byte) error {
	fullPath := l.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0644)
}

func (l *LocalFS) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(l.resolvePath(dir))
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func (l *LocalFS) Exists(path string) bool {
	info, err := os.Stat(l.resolvePath(path))
	return err == nil && !info.IsDir()
}

// Canonicalize makes path absolute and resolves symlinks, so the same file
// reached through different routes compares equal.
func (l *LocalFS) Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(l.resolvePath(path))
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// MemoryFS implements an in-memory file system.  This is what hosts without
// a native file system hand to the loader: a mapping of path to content.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: make(map[string][]byte),
	}
}

// NewMemoryFSFromMap builds a MemoryFS from path -> document text.
func NewMemoryFSFromMap(files map[string]string) *MemoryFS {
	m := NewMemoryFS()
	for p, content := range files {
		m.files[path.Clean(p)] = []byte(content)
	}
	return m
}

func (m *MemoryFS) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.files[path.Clean(p)]
	if !exists {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryFS) WriteFile(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[path.Clean(p)] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryFS) ListFiles(dir string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := path.Clean(dir)
	switch prefix {
	case ".":
		prefix = ""
	case "/":
	default:
		prefix += "/"
	}
	var files []string
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			files = append(files, p)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (m *MemoryFS) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.files[path.Clean(p)]
	return exists
}

// Canonicalize cleans the path; keys are compared as given otherwise.
func (m *MemoryFS) Canonicalize(p string) (string, error) {
	cleaned := path.Clean(p)
	if !m.Exists(cleaned) {
		return "", &fs.PathError{Op: "canonicalize", Path: p, Err: fs.ErrNotExist}
	}
	return cleaned, nil
}

// PreloadFiles adds files to the memory filesystem
func (m *MemoryFS) PreloadFiles(files map[string][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for p, content := range files {
		m.files[path.Clean(p)] = append([]byte(nil), content...)
	}
}

// DefaultHTTPCacheSize is the number of documents an HTTPFileSystem keeps.
const DefaultHTTPCacheSize = 256

// HTTPFileSystem fetches documents over HTTP.  It is read-only and keeps the
// most recently fetched documents in an LRU cache.
type HTTPFileSystem struct {
	baseURL string
	client  *http.Client
	cache   *lru.Cache[string, []byte]
}

func NewHTTPFileSystem(baseURL string) *HTTPFileSystem {
	return NewHTTPFileSystemWithClient(baseURL, &http.Client{}, DefaultHTTPCacheSize)
}

func NewHTTPFileSystemWithClient(baseURL string, client *http.Client, cacheSize int) *HTTPFileSystem {
	if cacheSize <= 0 {
		cacheSize = DefaultHTTPCacheSize
	}
	cache, _ := lru.New[string, []byte](cacheSize)
	return &HTTPFileSystem{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		cache:   cache,
	}
}

func (h *HTTPFileSystem) url(p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return h.baseURL + "/" + strings.TrimPrefix(p, "/")
}

func (h *HTTPFileSystem) ReadFile(p string) ([]byte, error) {
	u := h.url(p)
	if cached, ok := h.cache.Get(u); ok {
		return cached, nil
	}

	resp, err := h.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &fs.PathError{Op: "read", Path: u, Err: fs.ErrNotExist}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	h.cache.Add(u, data)
	return data, nil
}

func (h *HTTPFileSystem) WriteFile(path string, data []byte) error {
	return errors.New("HTTP filesystem is read-only")
}

func (h *HTTPFileSystem) ListFiles(dir string) ([]string, error) {
	return nil, errors.New("directory listing not supported for HTTP filesystem")
}

// Exists fetches the document, which also warms the cache for the read that
// usually follows.
func (h *HTTPFileSystem) Exists(path string) bool {
	_, err := h.ReadFile(path)
	return err == nil
}

// Canonicalize returns the absolute URL with a cleaned path.
func (h *HTTPFileSystem) Canonicalize(p string) (string, error) {
	u, err := url.Parse(h.url(p))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("not an absolute URL: %s", u)
	}
	u.Path = path.Clean("/" + u.Path)
	return u.String(), nil
}

// ClearCache drops every cached document.
func (h *HTTPFileSystem) ClearCache() {
	h.cache.Purge()
}
