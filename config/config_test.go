package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func TestDefaults(t *testing.T) {
	dir := fs.NewDir(t, "config")
	defer dir.Remove()
	t.Chdir(dir.Path())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFile(t *testing.T) {
	dir := fs.NewDir(t, "config", fs.WithFile("graphqxl.yaml", `
entry: schemas/main.graphqxl
max_depth: 8
key_gen: counter
format: json
log_level: debug
watch:
  exclude: ["**/*.tmp"]
  debounce: 250ms
`))
	defer dir.Remove()

	cfg, err := Load(dir.Join("graphqxl.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "schemas/main.graphqxl", cfg.Entry)
	assert.Equal(t, 8, cfg.MaxDepth)
	assert.Equal(t, "counter", cfg.KeyGen)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"**/*.tmp"}, cfg.Watch.Exclude)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)

	// The default file is picked up from the working directory.
	t.Chdir(dir.Path())
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxDepth)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	dir := fs.NewDir(t, "config", fs.WithFile("c.yaml", "max_depth: 3\n"))
	defer dir.Remove()

	cfg, err := Load(dir.Join("c.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, "uuid", cfg.KeyGen)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Debounce)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := fs.NewDir(t, "config", fs.WithFile("graphqxl.yaml", "max_depth: 8\nformat: json\nlog_level: warn\n"))
	defer dir.Remove()

	t.Setenv("GRAPHQXL_MAX_DEPTH", "2")
	t.Setenv("GRAPHQXL_ENTRY", "api.graphqxl")
	t.Setenv("GRAPHQXL_KEY_GEN", "counter")
	t.Setenv("GRAPHQXL_WATCH_EXCLUDE", "a/**, ,b/*.bak")
	t.Setenv("GRAPHQXL_WATCH_DEBOUNCE", "1s")

	cfg, err := Load(dir.Join("graphqxl.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxDepth)
	assert.Equal(t, "api.graphqxl", cfg.Entry)
	assert.Equal(t, "counter", cfg.KeyGen)
	assert.Equal(t, "json", cfg.Format, "file value survives when the environment is silent")
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []string{"a/**", "b/*.bak"}, cfg.Watch.Exclude)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
}

func TestLoadErrors(t *testing.T) {
	dir := fs.NewDir(t, "config",
		fs.WithFile("bad.yaml", "max_depth: [1"),
		fs.WithFile("negative.yaml", "max_depth: -1"),
		fs.WithFile("keygen.yaml", "key_gen: random"),
		fs.WithFile("format.yaml", "format: toml"),
		fs.WithFile("level.yaml", "log_level: loud"),
	)
	defer dir.Remove()

	tests := []struct {
		file          string
		errorContains string
	}{
		{"missing.yaml", "config file"},
		{"bad.yaml", "bad.yaml"},
		{"negative.yaml", "max_depth must not be negative"},
		{"keygen.yaml", "key_gen must be uuid or counter"},
		{"format.yaml", "format must be yaml or json"},
		{"level.yaml", "log_level"},
	}
	for _, tt := range tests {
		_, err := Load(dir.Join(tt.file))
		require.Error(t, err, tt.file)
		assert.Contains(t, err.Error(), tt.errorContains, tt.file)
	}

	t.Setenv("GRAPHQXL_MAX_DEPTH", "deep")
	_, err := Load(dir.Join("format.yaml"))
	assert.ErrorContains(t, err, "GRAPHQXL_MAX_DEPTH")
}

func TestLoadEnvFile(t *testing.T) {
	dir := fs.NewDir(t, "config", fs.WithFile("custom.env", "GRAPHQXL_TEST_FROM_ENV_FILE=yes\n"))
	defer dir.Remove()
	t.Chdir(dir.Path())

	// No .env in the directory: nothing to do.
	require.NoError(t, LoadEnvFile())

	t.Setenv(EnvFileVar, dir.Join("custom.env"))
	t.Setenv("GRAPHQXL_TEST_FROM_ENV_FILE", "")
	os.Unsetenv("GRAPHQXL_TEST_FROM_ENV_FILE")
	require.NoError(t, LoadEnvFile())
	assert.Equal(t, "yes", os.Getenv("GRAPHQXL_TEST_FROM_ENV_FILE"))
}
