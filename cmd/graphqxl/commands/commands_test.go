package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"gotest.tools/v3/fs"
)

// runCLI executes the root command with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags undoes the flag values left behind by an earlier run.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// schemaDir creates a document tree and makes it the working directory.
func schemaDir(t *testing.T, ops ...fs.PathOp) *fs.Dir {
	t.Helper()
	dir := fs.NewDir(t, "graphqxl", ops...)
	t.Cleanup(dir.Remove)
	t.Chdir(dir.Path())
	return dir
}

func TestCheckValid(t *testing.T) {
	schemaDir(t,
		fs.WithFile("main.graphqxl", "import \"types\"\ntype Query { user: User }\n"),
		fs.WithFile("types.graphqxl", "type User { id: ID! }\nextend type User { name: String }\n"),
	)

	out, err := runCLI(t, "check", "main.graphqxl")
	require.NoError(t, err)
	assert.Contains(t, out, "ok:")
	assert.Contains(t, out, "main.graphqxl (2 documents, 3 definitions)")
}

func TestCheckReportsErrors(t *testing.T) {
	schemaDir(t,
		fs.WithFile("a.graphqxl", "import \"b\"\ntype A { a: Int }\n"),
		fs.WithFile("b.graphqxl", "import \"a\"\n"),
		fs.WithFile("dup.graphqxl", "type A { a: Int }\ntype A { b: Int }\n"),
	)

	out, err := runCLI(t, "check", "a.graphqxl", "dup.graphqxl")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "error:")
	assert.Contains(t, out, "cyclical import")
	assert.Contains(t, out, `type "A" is already defined`)
}

func TestCheckDirectory(t *testing.T) {
	schemaDir(t,
		fs.WithDir("schemas",
			fs.WithFile("one.graphqxl", "scalar One\n"),
			fs.WithFile("two.graphqxl", "scalar Two\n"),
			fs.WithFile("notes.txt", "not a document"),
		),
	)

	out, err := runCLI(t, "check", "--json", "schemas")
	require.NoError(t, err)

	var result checkJSONResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "check", result.Type)
	assert.Equal(t, "success", result.Status)
	require.Len(t, result.Entries, 2)
	assert.Contains(t, result.Entries[0].Entry, "one.graphqxl")
	assert.Contains(t, result.Entries[1].Entry, "two.graphqxl")
	assert.Equal(t, 1, result.Entries[1].Definitions)
}

func TestCheckMaxDepthFlag(t *testing.T) {
	schemaDir(t,
		fs.WithFile("a.graphqxl", "import \"b\"\n"),
		fs.WithFile("b.graphqxl", "import \"c\"\n"),
		fs.WithFile("c.graphqxl", "scalar C\n"),
	)

	out, err := runCLI(t, "check", "--max-depth", "1", "a.graphqxl")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "import depth exceeds 1")

	_, err = runCLI(t, "check", "a.graphqxl")
	assert.NoError(t, err, "the default depth allows the chain")
}

func TestDumpYAML(t *testing.T) {
	schemaDir(t,
		fs.WithFile("main.graphqxl", "import \"ext\"\ntype Foo { a: Int }\nextend type Foo { b: Int }\n"),
		fs.WithFile("ext.graphqxl", "extend type Foo { c: Int }\n"),
	)

	out, err := runCLI(t, "dump", "--key-gen", "counter", "main.graphqxl")
	require.NoError(t, err)

	var dump DumpOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &dump))
	assert.Equal(t, "main.graphqxl", dump.Entry)
	require.Len(t, dump.Files, 2)
	require.Len(t, dump.Definitions, 3)

	ext := dump.Definitions[0]
	assert.Equal(t, "Foo", ext.Name)
	assert.True(t, ext.Extension)
	assert.Equal(t, "Foo__extend__1", ext.Key)

	assert.Equal(t, "Foo", dump.Definitions[1].Name)
	assert.False(t, dump.Definitions[1].Extension)
	assert.Equal(t, "Foo__extend__2", dump.Definitions[2].Key)
}

func TestDumpJSONFromConfig(t *testing.T) {
	schemaDir(t,
		fs.WithFile("graphqxl.yaml", "entry: api.graphqxl\nformat: json\n"),
		fs.WithFile("api.graphqxl", "type Query { hello: String }\n"),
	)

	out, err := runCLI(t, "dump")
	require.NoError(t, err)

	var dump DumpOutput
	require.NoError(t, json.Unmarshal([]byte(out), &dump))
	assert.Equal(t, "api.graphqxl", dump.Entry)
	require.Len(t, dump.Definitions, 1)
	assert.Equal(t, "type", dump.Definitions[0].Category)
	assert.Equal(t, "Query", dump.Definitions[0].Name)
	assert.Equal(t, 1, dump.Definitions[0].Line)
}

func TestDumpErrors(t *testing.T) {
	schemaDir(t, fs.WithFile("main.graphqxl", "type A { a: Int }\n"))

	_, err := runCLI(t, "dump")
	assert.ErrorIs(t, err, errNoEntry)

	_, err = runCLI(t, "dump", "--format", "toml", "main.graphqxl")
	assert.ErrorContains(t, err, `unknown format "toml"`)

	_, err = runCLI(t, "dump", "missing.graphqxl")
	assert.Error(t, err)

	_, err = runCLI(t, "dump", "--key-gen", "random", "main.graphqxl")
	assert.ErrorContains(t, err, "key_gen must be uuid or counter")
}

func TestEntryWatchFiles(t *testing.T) {
	dir := schemaDir(t, fs.WithFile("main.graphqxl", "scalar A\n"))
	root, err := filepath.EvalSymlinks(dir.Path())
	require.NoError(t, err)
	fsys := newFileSystem()

	assert.Equal(t, []string{filepath.Join(root, "main.graphqxl")}, entryWatchFiles(fsys, "main.graphqxl"))

	// Not created yet: its directory is still watched.
	files := entryWatchFiles(fsys, "later.graphqxl")
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "later.graphqxl"), files[0])
	assert.Equal(t, root, filepath.Dir(files[0]))

	// URLs canonicalize without a fetch.
	assert.Equal(t, []string{"https://example.invalid/missing.graphqxl"}, entryWatchFiles(fsys, "https://example.invalid/a/../missing.graphqxl"))
}

func TestVersion(t *testing.T) {
	schemaDir(t, fs.WithFile("graphqxl.yaml", "max_depth: -1\n"))

	out, err := runCLI(t, "version")
	require.NoError(t, err, "version ignores a broken config")
	assert.Equal(t, "graphqxl dev\n", out)
}
