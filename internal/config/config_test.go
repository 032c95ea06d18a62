package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Store.Driver != "sqlite" || cfg.LLM.Model != "gemini-2.5-flash" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if got := AutosaveDelay(cfg); got != 1500*time.Millisecond {
		t.Fatalf("AutosaveDelay = %v, want 1.5s", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pmx", "config.toml")
	cfg := DefaultConfig()
	cfg.General.Owner = "pm@example.com"
	cfg.Store.Driver = "postgres"
	cfg.Store.DSN = "postgres://localhost/pmx"
	cfg.Appearance.Theme = "tokyo-night"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip = %+v, want %+v", got, cfg)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\nowner = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom(invalid) err = nil, want error")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "from-config"
	cfg.Store.DSN = "from-config"
	cfg.General.Owner = "config-owner"

	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("PMX_OWNER", "env-owner")
	t.Setenv("PORT", "9000")

	if got := GetAPIKey(cfg); got != "from-env" {
		t.Fatalf("GetAPIKey = %q, want from-env", got)
	}
	if got := GetDSN(cfg); got != "postgres://env" {
		t.Fatalf("GetDSN = %q, want postgres://env", got)
	}
	if got := GetOwner(cfg); got != "env-owner" {
		t.Fatalf("GetOwner = %q, want env-owner", got)
	}
	if got := GetAddr(cfg); got != "127.0.0.1:9000" {
		t.Fatalf("GetAddr = %q, want 127.0.0.1:9000", got)
	}
}

func TestXDGPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	if got, want := ConfigPath(), filepath.Join(dir, "cfg", "pmx", "config.toml"); got != want {
		t.Fatalf("ConfigPath = %q, want %q", got, want)
	}
	if got, want := GetDBPath(DefaultConfig()), filepath.Join(dir, "data", "pmx", "pmx.db"); got != want {
		t.Fatalf("GetDBPath = %q, want %q", got, want)
	}
	if Exists() {
		t.Fatal("Exists = true before Save")
	}
	if err := Save(DefaultConfig()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists = false after Save")
	}
}
