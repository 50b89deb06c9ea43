// Package config loads and saves the aidboard TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/source"
)

// Config holds all aidboard configuration.
type Config struct {
	General    GeneralConfig     `toml:"general"`
	Files      map[string]string `toml:"files,omitempty"`
	Catalog    CatalogConfig     `toml:"catalog"`
	Cache      CacheConfig       `toml:"cache"`
	Server     ServerConfig      `toml:"server"`
	Log        LogConfig         `toml:"log"`
	Appearance AppearanceConfig  `toml:"appearance"`
}

// GeneralConfig holds data location and parsing preferences.
type GeneralConfig struct {
	DataDir        string `toml:"data_dir,omitempty"`
	Encoding       string `toml:"encoding"`
	Delimiter      string `toml:"delimiter"`
	DefaultProgram string `toml:"default_program,omitempty"`
}

// CatalogConfig points at an optional cluster label catalog.
type CatalogConfig struct {
	Path string `toml:"path,omitempty"`
}

// CacheConfig controls parsed-dataset caching.
type CacheConfig struct {
	Enabled       bool `toml:"enabled"`
	MemoryEntries int  `toml:"memory_entries"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Encoding:  source.DefaultEncoding,
			Delimiter: string(source.DefaultDelimiter),
		},
		Cache: CacheConfig{
			Enabled:       true,
			MemoryEntries: 16,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8642",
		},
		Log: LogConfig{
			Level: "info",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "aidboard")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "aidboard")
}

// ConfigPath returns the full path to the default config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

func resolve(path string) string {
	if path == "" {
		return ConfigPath()
	}
	return path
}

// Load reads the config file at path (the default location when empty),
// returning defaults if it doesn't exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(resolve(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Save writes the config to path (the default location when empty).
func Save(path string, cfg Config) error {
	path = resolve(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists at path (the default location when empty).
func Exists(path string) bool {
	_, err := os.Stat(resolve(path))
	return err == nil
}

// Validate checks values that would otherwise fail later at load time.
func (c Config) Validate() error {
	if c.General.Delimiter != "" {
		r, n := utf8.DecodeRuneInString(c.General.Delimiter)
		if n != len(c.General.Delimiter) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			return fmt.Errorf("config: delimiter %q must be a single character other than a quote or newline", c.General.Delimiter)
		}
	}
	if _, err := source.LookupEncoding(c.General.Encoding); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if p := c.General.DefaultProgram; p != "" {
		if _, ok := model.ParseProgram(p); !ok {
			return fmt.Errorf("config: unknown default_program %q", p)
		}
	}
	for name := range c.Files {
		if _, ok := model.ParseProgram(name); !ok {
			return fmt.Errorf("config: [files] names unknown program %q", name)
		}
	}
	return nil
}

// SourceOptions returns the CSV options described by the config.
func (c Config) SourceOptions() source.Options {
	opts := source.DefaultOptions()
	if r, _ := utf8.DecodeRuneInString(c.General.Delimiter); r != utf8.RuneError {
		opts.Delimiter = r
	}
	if c.General.Encoding != "" {
		opts.Encoding = c.General.Encoding
	}
	return opts
}

// GetDataDir returns the data directory from env var or config, in that
// order, falling back to the working directory.
func GetDataDir(cfg Config) string {
	if dir := os.Getenv("AIDBOARD_DATA_DIR"); dir != "" {
		return dir
	}
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	return "."
}
