package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetPaths(t *testing.T) {
	paths := GetPaths()

	for name, p := range map[string]string{
		"ConfigDir":  paths.ConfigDir,
		"DataDir":    paths.DataDir,
		"ConfigFile": paths.ConfigFile,
		"DBFile":     paths.DBFile,
		"HooksDir":   paths.HooksDir,
		"PluginsDir": paths.PluginsDir,
	} {
		if p == "" {
			t.Fatalf("%s should not be empty", name)
		}
	}
}

func TestGetPathsRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/testxdg/config")
	t.Setenv("XDG_DATA_HOME", "/tmp/testxdg/data")

	paths := GetPaths()

	if paths.ConfigDir != "/tmp/testxdg/config/exmachina" {
		t.Fatalf("expected /tmp/testxdg/config/exmachina, got %s", paths.ConfigDir)
	}
	if paths.DataDir != "/tmp/testxdg/data/exmachina" {
		t.Fatalf("expected /tmp/testxdg/data/exmachina, got %s", paths.DataDir)
	}
	if paths.HooksDir != "/tmp/testxdg/config/exmachina/hooks" {
		t.Fatalf("unexpected hooks dir %s", paths.HooksDir)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Theme.Slug != DefaultSlug {
		t.Fatalf("expected slug %q, got %q", DefaultSlug, cfg.Theme.Slug)
	}
	if cfg.Theme.IsChildTheme() {
		t.Fatal("default config should not have a child theme")
	}
	if cfg.Log.FileEnabled() || cfg.Log.JournalEnabled() {
		t.Fatal("file and journal logging should default to off")
	}
}

func TestSettingsField(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.SettingsField(); got != "beta_theme_settings" {
		t.Fatalf("SettingsField() = %q, want beta_theme_settings", got)
	}
	cfg.Settings.Field = "custom_row"
	if got := cfg.SettingsField(); got != "custom_row" {
		t.Fatalf("SettingsField() = %q, want custom_row", got)
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	paths := GetPaths()
	if err := os.MkdirAll(paths.ConfigDir, 0o755); err != nil {
		t.Fatal(err)
	}
	data := "[theme]\nslug = \"gamma\"\n"
	if err := os.WriteFile(filepath.Join(paths.ConfigDir, "config.toml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme.Slug != "gamma" {
		t.Fatalf("Slug = %q, want gamma", cfg.Theme.Slug)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("Level = %q, want default warn", cfg.Log.Level)
	}
	if !Initialized() {
		t.Fatal("Initialized() should be true once the file exists")
	}
}

func TestEnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir+"/config")
	t.Setenv("XDG_DATA_HOME", tmpDir+"/data")
	t.Setenv("XDG_CACHE_HOME", tmpDir+"/cache")
	t.Setenv("XDG_STATE_HOME", tmpDir+"/state")

	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	for _, dir := range []string{paths.ConfigDir, paths.DataDir, paths.CacheDir, paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("dir %s not created: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
}
