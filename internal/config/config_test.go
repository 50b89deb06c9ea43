package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := DefaultConfig()
	if cfg.General.Encoding != def.General.Encoding || cfg.Server.Addr != def.Server.Addr {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.General.DataDir = "/srv/extracts"
	cfg.General.Delimiter = ","
	cfg.General.DefaultProgram = "Zakat"
	cfg.Files = map[string]string{"Masjid": "masjid_2024.csv"}
	cfg.Cache.Enabled = false
	cfg.Log.Level = "debug"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists(path) {
		t.Fatal("Exists = false after Save")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.DataDir != "/srv/extracts" || got.General.DefaultProgram != "Zakat" {
		t.Errorf("general = %+v", got.General)
	}
	if got.Files["Masjid"] != "masjid_2024.csv" {
		t.Errorf("files = %v", got.Files)
	}
	if got.Cache.Enabled || got.Log.Level != "debug" {
		t.Errorf("cache/log = %+v / %+v", got.Cache, got.Log)
	}
	if opts := got.SourceOptions(); opts.Delimiter != ',' || opts.Encoding != "latin1" {
		t.Errorf("SourceOptions = %+v", opts)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general]\ndata_dir = \"/data\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.DataDir != "/data" || cfg.General.Delimiter != ";" || !cfg.Cache.Enabled {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"multi-char delimiter", func(c *Config) { c.General.Delimiter = ";;" }},
		{"quote delimiter", func(c *Config) { c.General.Delimiter = `"` }},
		{"bad encoding", func(c *Config) { c.General.Encoding = "ebcdic-klingon" }},
		{"bad default program", func(c *Config) { c.General.DefaultProgram = "Wakaf" }},
		{"bad files key", func(c *Config) { c.Files = map[string]string{"Wakaf": "x.csv"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("AIDBOARD_DATA_DIR", "")
	if got := GetDataDir(cfg); got != "." {
		t.Errorf("GetDataDir = %q, want .", got)
	}
	cfg.General.DataDir = "/cfg"
	if got := GetDataDir(cfg); got != "/cfg" {
		t.Errorf("GetDataDir = %q, want /cfg", got)
	}
	t.Setenv("AIDBOARD_DATA_DIR", "/env")
	if got := GetDataDir(cfg); got != "/env" {
		t.Errorf("GetDataDir = %q, want /env", got)
	}
}

func TestConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := ConfigPath(); got != filepath.Join("/xdg", "aidboard", "config.toml") {
		t.Errorf("ConfigPath = %q", got)
	}
	if _, ok := model.ParseProgram(DefaultConfig().General.DefaultProgram); ok {
		t.Error("default program should be unset")
	}
}
