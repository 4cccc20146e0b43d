// Package config holds the settings of the graphqxl command line tool.
//
// Values are layered: built in defaults, then the YAML file, then GRAPHQXL_*
// environment variables.  Command line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFileName is read when no config file is named explicitly.
	DefaultFileName = "graphqxl.yaml"

	// EnvPrefix prefixes every environment variable the tool reads.
	EnvPrefix = "GRAPHQXL_"

	// EnvFileVar names a dotenv file to load instead of ".env".
	EnvFileVar = EnvPrefix + "ENV_FILE"
)

type Config struct {
	Entry    string      `yaml:"entry"`
	MaxDepth int         `yaml:"max_depth"`
	KeyGen   string      `yaml:"key_gen"`
	Format   string      `yaml:"format"`
	LogLevel string      `yaml:"log_level"`
	Watch    WatchConfig `yaml:"watch"`
}

type WatchConfig struct {
	Exclude  []string      `yaml:"exclude"`
	Debounce time.Duration `yaml:"debounce"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxDepth: 64,
		KeyGen:   "uuid",
		Format:   "yaml",
		LogLevel: "info",
		Watch: WatchConfig{
			Exclude:  []string{"**/.git/**", "**/node_modules/**"},
			Debounce: 100 * time.Millisecond,
		},
	}
}

// LoadEnvFile loads the dotenv file named by GRAPHQXL_ENV_FILE, or ".env",
// into the process environment.  Variables already set are kept.  A missing
// file is not an error.
func LoadEnvFile() error {
	envfile := os.Getenv(EnvFileVar)
	if envfile == "" {
		envfile = ".env"
	}
	if _, err := os.Stat(envfile); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(envfile); err != nil {
		return fmt.Errorf("env file %s: %w", envfile, err)
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment.  An empty path reads DefaultFileName if it exists; a path
// given explicitly must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	if err := loadYAMLFile(path, cfg, explicit); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := applyEnvironment(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAMLFile(path string, cfg *Config, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func applyEnvironment(cfg *Config) error {
	if v := os.Getenv(EnvPrefix + "ENTRY"); v != "" {
		cfg.Entry = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_DEPTH: %w", EnvPrefix, err)
		}
		cfg.MaxDepth = n
	}
	if v := os.Getenv(EnvPrefix + "KEY_GEN"); v != "" {
		cfg.KeyGen = v
	}
	if v := os.Getenv(EnvPrefix + "FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "WATCH_EXCLUDE"); v != "" {
		cfg.Watch.Exclude = nil
		for _, pattern := range strings.Split(v, ",") {
			if pattern = strings.TrimSpace(pattern); pattern != "" {
				cfg.Watch.Exclude = append(cfg.Watch.Exclude, pattern)
			}
		}
	}
	if v := os.Getenv(EnvPrefix + "WATCH_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sWATCH_DEBOUNCE: %w", EnvPrefix, err)
		}
		cfg.Watch.Debounce = d
	}
	return nil
}

// Validate checks that every setting holds a value the tool understands.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	switch strings.ToLower(c.KeyGen) {
	case "uuid", "counter":
	default:
		return fmt.Errorf("key_gen must be uuid or counter, got %q", c.KeyGen)
	}
	switch strings.ToLower(c.Format) {
	case "yaml", "json":
	default:
		return fmt.Errorf("format must be yaml or json, got %q", c.Format)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// SlogLevel parses LogLevel (debug, info, warn or error).
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
