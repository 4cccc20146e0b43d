package loader

import (
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tfs "gotest.tools/v3/fs"
)

func TestMemoryFSListFiles(t *testing.T) {
	mfs := NewMemoryFS()
	for path, content := range map[string]string{
		"/workspace/test.graphqxl":     "type Test { a: Int }",
		"/workspace/foo.graphqxl":      "type Foo { a: Int }",
		"/workspace/sub/bar.graphqxl":  "type Bar { a: Int }",
		"/examples/starwars.graphqxl":  "type Droid { a: Int }",
		"/workspace2/other.graphqxl":   "type Other { a: Int }",
		"/workspace.graphqxl":          "type Sibling { a: Int }",
	} {
		require.NoError(t, mfs.WriteFile(path, []byte(content)))
	}

	want := []string{"/workspace/foo.graphqxl", "/workspace/sub/bar.graphqxl", "/workspace/test.graphqxl"}
	files, err := mfs.ListFiles("/workspace/")
	require.NoError(t, err)
	assert.Equal(t, want, files)

	// Directories sharing a name prefix stay apart.
	files, err = mfs.ListFiles("/workspace")
	require.NoError(t, err)
	assert.Equal(t, want, files)

	files, err = mfs.ListFiles("/")
	require.NoError(t, err)
	assert.Len(t, files, 6)
}

func TestMemoryFSReadWrite(t *testing.T) {
	mfs := NewMemoryFSFromMap(map[string]string{"/a/./b.graphqxl": "scalar B"})
	assert.True(t, mfs.Exists("/a/b.graphqxl"))

	data, err := mfs.ReadFile("/a/c/../b.graphqxl")
	require.NoError(t, err)
	assert.Equal(t, "scalar B", string(data))

	// Callers get copies, never the stored slice.
	data[0] = 'X'
	again, _ := mfs.ReadFile("/a/b.graphqxl")
	assert.Equal(t, "scalar B", string(again))

	_, err = mfs.ReadFile("/missing.graphqxl")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	canonical, err := mfs.Canonicalize("/a//b.graphqxl")
	require.NoError(t, err)
	assert.Equal(t, "/a/b.graphqxl", canonical)
	_, err = mfs.Canonicalize("/missing.graphqxl")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	mfs.PreloadFiles(map[string][]byte{"/bundled/x.graphqxl": []byte("scalar X")})
	assert.True(t, mfs.Exists("/bundled/x.graphqxl"))
}

func TestCompositeFSMounts(t *testing.T) {
	cfs := NewCompositeFS()
	workspace := NewMemoryFS()
	examples := NewMemoryFS()
	nested := NewMemoryFS()
	cfs.Mount("/workspace/", workspace)
	cfs.Mount("/examples/", examples)
	cfs.Mount("/examples/nested/", nested)

	require.NoError(t, cfs.WriteFile("/workspace/test.graphqxl", []byte("scalar T")))
	require.NoError(t, cfs.WriteFile("/examples/demo.graphqxl", []byte("scalar D")))
	require.NoError(t, cfs.WriteFile("/examples/nested/deep.graphqxl", []byte("scalar N")))

	assert.True(t, workspace.Exists("/workspace/test.graphqxl"))
	assert.True(t, examples.Exists("/examples/demo.graphqxl"))
	assert.True(t, nested.Exists("/examples/nested/deep.graphqxl"), "longest prefix wins")
	assert.False(t, examples.Exists("/examples/nested/deep.graphqxl"))

	content, err := cfs.ReadFile("/workspace/test.graphqxl")
	require.NoError(t, err)
	assert.Equal(t, "scalar T", string(content))

	files, err := cfs.ListFiles("/workspace/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/workspace/test.graphqxl"}, files)

	assert.False(t, cfs.Exists("/elsewhere/x.graphqxl"))
	_, err = cfs.ReadFile("/elsewhere/x.graphqxl")
	assert.ErrorContains(t, err, "no filesystem mounted")
	_, err = cfs.Canonicalize("/elsewhere/x.graphqxl")
	assert.Error(t, err)

	fallback := NewMemoryFSFromMap(map[string]string{"/elsewhere/x.graphqxl": "scalar X"})
	cfs.SetFallback(fallback)
	assert.True(t, cfs.Exists("/elsewhere/x.graphqxl"))
}

func TestCompositeFSLoad(t *testing.T) {
	cfs := NewCompositeFS()
	cfs.Mount("/workspace/", NewMemoryFSFromMap(map[string]string{
		"/workspace/main.graphqxl": "import \"../lib/relay\"\ntype Query { node(id: ID!): Node }",
	}))
	cfs.Mount("/lib/", NewMemoryFSFromMap(map[string]string{
		"/lib/relay.graphqxl": "interface Node { id: ID! }",
	}))

	spec, err := NewLoader(nil, cfs, DefaultMaxDepth).LoadSpec("/workspace/main.graphqxl")
	require.NoError(t, err)
	assert.Equal(t, []string{"Node", "Query"}, orderNames(spec))
}

func TestLocalFS(t *testing.T) {
	dir := tfs.NewDir(t, "graphqxl",
		tfs.WithFile("a.graphqxl", "scalar A"),
		tfs.WithFile("b.graphqxl", "scalar B"),
		tfs.WithDir("sub", tfs.WithFile("c.graphqxl", "scalar C")),
	)
	defer dir.Remove()

	local := NewLocalFS(dir.Path())
	assert.True(t, local.Exists("a.graphqxl"))
	assert.True(t, local.Exists(dir.Join("sub", "c.graphqxl")))
	assert.False(t, local.Exists("sub"), "directories are not documents")
	assert.False(t, local.Exists("missing.graphqxl"))

	data, err := local.ReadFile("b.graphqxl")
	require.NoError(t, err)
	assert.Equal(t, "scalar B", string(data))

	files, err := local.ListFiles(".")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.graphqxl", "b.graphqxl"}, files)

	require.NoError(t, local.WriteFile("new/d.graphqxl", []byte("scalar D")))
	assert.FileExists(t, dir.Join("new", "d.graphqxl"))
}

func TestLocalFSCanonicalize(t *testing.T) {
	dir := tfs.NewDir(t, "graphqxl", tfs.WithFile("a.graphqxl", "scalar A"))
	defer dir.Remove()

	local := NewLocalFS("")
	direct, err := local.Canonicalize(dir.Join("a.graphqxl"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(direct))

	roundabout, err := local.Canonicalize(dir.Join("x", "..", "a.graphqxl"))
	require.NoError(t, err)
	assert.Equal(t, direct, roundabout)

	link := dir.Join("link.graphqxl")
	if err := os.Symlink(dir.Join("a.graphqxl"), link); err == nil {
		viaLink, err := local.Canonicalize(link)
		require.NoError(t, err)
		assert.Equal(t, direct, viaLink)
	}

	_, err = local.Canonicalize(dir.Join("missing.graphqxl"))
	assert.Error(t, err)
}

func TestHTTPFileSystem(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/schemas/a.graphqxl":
			w.Write([]byte("scalar A"))
		case "/broken.graphqxl":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	hfs := NewHTTPFileSystemWithClient(server.URL+"/", server.Client(), 2)

	data, err := hfs.ReadFile("/schemas/a.graphqxl")
	require.NoError(t, err)
	assert.Equal(t, "scalar A", string(data))
	_, err = hfs.ReadFile(server.URL + "/schemas/a.graphqxl")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second read is served from the cache")

	hfs.ClearCache()
	assert.True(t, hfs.Exists("schemas/a.graphqxl"))
	assert.Equal(t, int32(2), hits.Load())

	assert.False(t, hfs.Exists("/nope.graphqxl"))
	_, err = hfs.ReadFile("/nope.graphqxl")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	_, err = hfs.ReadFile("/broken.graphqxl")
	assert.ErrorContains(t, err, "HTTP 500")

	canonical, err := hfs.Canonicalize("/schemas/../schemas/./a.graphqxl")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/schemas/a.graphqxl", canonical)

	assert.Error(t, hfs.WriteFile("/x.graphqxl", nil))
	_, err = hfs.ListFiles("/")
	assert.Error(t, err)

	_, err = NewHTTPFileSystem("").Canonicalize("relative.graphqxl")
	assert.Error(t, err)
}
