package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if Exists() {
		t.Error("Exists = true before Save")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Data.File = "/data/precios.csv"
	cfg.Data.Mode = "lookup"
	cfg.Data.UseCache = false
	cfg.Server.Burst = 5
	cfg.Appearance.Theme = "terminal"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("Load = %+v, want %+v", got, cfg)
	}
	if got.Mode() != model.ModeLookup {
		t.Errorf("Mode = %s, want lookup", got.Mode())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := "[data]\nfile = \"file.xlsx\"\nmode = \"lookup\"\n\n[logging]\nlevel = \"debug\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GASOLINA_DATA_FILE", "env.xlsx")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Data.File != "env.xlsx" {
		t.Errorf("Data.File = %q, want env override", cfg.Data.File)
	}
	if cfg.Data.Mode != "lookup" || cfg.Logging.Level != "debug" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.Server.Addr != DefaultConfig().Server.Addr {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[data\nfile ="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad mode", func(c *Config) { c.Data.Mode = "guess" }, true},
		{"no file", func(c *Config) { c.Data.File = "" }, true},
		{"zero rate", func(c *Config) { c.Server.RatePerSecond = 0 }, true},
		{"zero burst", func(c *Config) { c.Server.Burst = 0 }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"upper mode", func(c *Config) { c.Data.Mode = "LOOKUP" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
