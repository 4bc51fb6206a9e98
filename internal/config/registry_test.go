package config

import (
	"sort"
	"testing"
)

func TestValidKeyNames_Sorted(t *testing.T) {
	names := ValidKeyNames()
	if len(names) == 0 {
		t.Fatal("expected non-empty key list")
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("expected sorted key names, got %v", names)
	}
}

func TestValidKeyNames_ContainsKnownKeys(t *testing.T) {
	expected := []string{"theme.slug", "theme.name", "log.level", "log.journal", "settings.field"}
	nameSet := make(map[string]bool)
	for _, n := range ValidKeyNames() {
		nameSet[n] = true
	}
	for _, want := range expected {
		if !nameSet[want] {
			t.Errorf("ValidKeyNames missing expected key %q", want)
		}
	}
}

func TestLookupKey(t *testing.T) {
	entry, ok := LookupKey("theme.slug")
	if !ok {
		t.Fatal("expected theme.slug to be found")
	}
	if entry.Type != KeyTypeString {
		t.Fatalf("expected string type for theme.slug, got %q", entry.Type)
	}
	if entry.DefaultStr != DefaultSlug {
		t.Fatalf("DefaultStr = %q, want %q", entry.DefaultStr, DefaultSlug)
	}

	if _, ok := LookupKey("not.a.real.key"); ok {
		t.Fatal("expected unknown key to return false")
	}
}

func TestParseBoolValue(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"YES", true, false},
		{"On", true, false},
		{"1", true, false},
		{"false", false, false},
		{"0", false, false},
		{"Off", false, false},
		{"maybe", false, true},
		{"", false, true},
		{"2", false, true},
	}
	for _, tt := range tests {
		got, err := ParseBoolValue(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBoolValue(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBoolValue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel(" DEBUG "); err != nil || l != "debug" {
		t.Fatalf("ParseLevel(DEBUG) = %q, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestSetGetUnset_StringKey(t *testing.T) {
	cfg := defaultConfig()
	entry, _ := LookupKey("theme.slug")

	if err := entry.Set(cfg, "gamma"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := entry.Get(cfg); got != "gamma" {
		t.Fatalf("Get: expected 'gamma', got %q", got)
	}

	entry.Unset(cfg)
	if got := entry.Get(cfg); got != DefaultSlug {
		t.Fatalf("Unset: expected %q, got %q", DefaultSlug, got)
	}
}

func TestSetGetUnset_BoolKey(t *testing.T) {
	cfg := &Config{}
	entry, ok := LookupKey("log.journal")
	if !ok {
		t.Fatal("log.journal not found in registry")
	}
	if got := entry.Get(cfg); got != "false" {
		t.Fatalf("Get on nil pointer: expected 'false', got %q", got)
	}

	if err := entry.Set(cfg, "yes"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !cfg.Log.JournalEnabled() {
		t.Fatal("expected journal to be enabled")
	}

	entry.Unset(cfg)
	if got := entry.Get(cfg); got != "false" {
		t.Fatalf("Unset: expected 'false', got %q", got)
	}

	if err := entry.Set(cfg, "notabool"); err == nil {
		t.Fatal("expected error for invalid bool value")
	}
}

func TestSet_LogLevelValidates(t *testing.T) {
	cfg := defaultConfig()
	entry, _ := LookupKey("log.level")
	if err := entry.Set(cfg, "chatty"); err == nil {
		t.Fatal("expected error for invalid level")
	}
	if err := entry.Set(cfg, "INFO"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("Level = %q, want info", cfg.Log.Level)
	}
}

func TestAllSchemaKeys_Wellformed(t *testing.T) {
	cfg := defaultConfig()
	for key, entry := range SchemaKeys {
		if entry.Desc == "" {
			t.Errorf("key %q has empty Desc", key)
		}
		switch entry.Type {
		case KeyTypeString, KeyTypeBool:
		default:
			t.Errorf("key %q has invalid Type %q", key, entry.Type)
		}

		_ = entry.Get(cfg)
		entry.Unset(cfg)
		if got := entry.Get(cfg); got != entry.DefaultStr {
			t.Errorf("key %q: Get after Unset = %q, want default %q", key, got, entry.DefaultStr)
		}
		if err := entry.Set(cfg, entry.DefaultStr); err != nil {
			t.Errorf("key %q: Set with default value %q failed: %v", key, entry.DefaultStr, err)
		}
	}
}

func TestRoundTrip_SiteName(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir+"/config")
	t.Setenv("XDG_DATA_HOME", tmpDir+"/data")
	t.Setenv("XDG_CACHE_HOME", tmpDir+"/cache")
	t.Setenv("XDG_STATE_HOME", tmpDir+"/state")

	entry, _ := LookupKey("theme.site_name")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := entry.Set(cfg, "Machina Weekly"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if got := entry.Get(loaded); got != "Machina Weekly" {
		t.Fatalf("round-trip failed: got %q", got)
	}
}
