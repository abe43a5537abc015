// Package config loads codesnippet settings from a YAML file, an optional
// .env file next to it, and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jward/codesnippet/internal/source"
)

// FileName is the configuration file looked up in the repository root.
const FileName = ".codesnippet.yaml"

// DefaultDB is the snapshot database path relative to the repository root.
const DefaultDB = ".codesnippet/index.db"

// DefaultMaxLineLength is the line length limit when none is configured.
const DefaultMaxLineLength = 80

// Root is one search root.
type Root struct {
	Path string `yaml:"path"`
	// Visible roots also feed the type index. Default: true.
	Visible *bool `yaml:"visible,omitempty"`
}

// IsVisible reports whether the root feeds the type index.
func (r Root) IsVisible() bool {
	return r.Visible == nil || *r.Visible
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the complete configuration.
type Config struct {
	Roots []Root `yaml:"roots"`
	// MaxLineLength <= 0 disables the long line check.
	MaxLineLength *int      `yaml:"max_line_length,omitempty"`
	Encoding      string    `yaml:"encoding"`
	KnownTypes    []string  `yaml:"known_types"`
	Exclude       []string  `yaml:"exclude"`
	Parallel      bool      `yaml:"parallel"`
	DB            string    `yaml:"db"`
	Log           LogConfig `yaml:"log"`
}

// Error describes a configuration failure.
type Error struct {
	Key    string
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Key, e.Reason, e.Cause)
	}
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Default returns the built-in configuration.
func Default() *Config {
	n := DefaultMaxLineLength
	return &Config{
		MaxLineLength: &n,
		Encoding:      "utf-8",
		DB:            DefaultDB,
		Log:           LogConfig{Level: "info", Format: "text"},
	}
}

// LineLimit returns the effective maximum line length.
func (c *Config) LineLimit() int {
	if c.MaxLineLength == nil {
		return DefaultMaxLineLength
	}
	return *c.MaxLineLength
}

// Load reads configPath (skipped when empty), then a .env file in the same
// directory, then environment variables, and validates the result. Relative
// root, manifest and database paths in the file are resolved against the
// file's directory.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &Error{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
		envPath := filepath.Join(filepath.Dir(configPath), ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, &Error{Key: "env_file", Reason: fmt.Sprintf("failed to load %s", envPath), Cause: err}
			}
		}
	}

	cfg.applyDefaults()
	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, &Error{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	// db is only resolved against the file's directory when the file sets
	// it; applyDefaults restores the repo-relative default otherwise.
	c.DB = ""
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	dir := filepath.Dir(path)
	for i := range c.Roots {
		c.Roots[i].Path = resolve(dir, c.Roots[i].Path)
	}
	for i := range c.KnownTypes {
		c.KnownTypes[i] = resolve(dir, c.KnownTypes[i])
	}
	if c.DB != "" {
		c.DB = resolve(dir, c.DB)
	}
	return nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if c.MaxLineLength == nil {
		c.MaxLineLength = defaults.MaxLineLength
	}
	if c.Encoding == "" {
		c.Encoding = defaults.Encoding
	}
	if c.DB == "" {
		c.DB = defaults.DB
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
}

func (c *Config) loadFromEnv() error {
	if val := os.Getenv("CODESNIPPET_MAX_LINE_LENGTH"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return &Error{Key: "CODESNIPPET_MAX_LINE_LENGTH", Reason: "not an integer", Cause: err}
		}
		c.MaxLineLength = &n
	}
	if val := os.Getenv("CODESNIPPET_ENCODING"); val != "" {
		c.Encoding = val
	}
	if val := os.Getenv("CODESNIPPET_DB"); val != "" {
		c.DB = val
	}
	if val := os.Getenv("CODESNIPPET_PARALLEL"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return &Error{Key: "CODESNIPPET_PARALLEL", Reason: "not a boolean", Cause: err}
		}
		c.Parallel = b
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []string

	for i, r := range c.Roots {
		if strings.TrimSpace(r.Path) == "" {
			errs = append(errs, fmt.Sprintf("roots[%d].path must not be empty", i))
		}
	}
	if _, err := source.NewDecoder(c.Encoding); err != nil {
		errs = append(errs, fmt.Sprintf("encoding: %v", err))
	}
	if err := source.ValidatePatterns(c.Exclude); err != nil {
		errs = append(errs, fmt.Sprintf("exclude: %v", err))
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
