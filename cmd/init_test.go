package cmd

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/rnwolfe/exmachina/internal/config"
)

func TestRunInitWithReader(t *testing.T) {
	configTestEnv(t)

	input := strings.Join([]string{
		"Gamma Theme", // slug, sanitized
		"Gamma",
		"",                       // site title keeps the default
		"https://example.com",
		"Gamma Child",
		"https://example.com/child",
	}, "\n") + "\n"

	out := captureStdout(t, func() {
		if err := runInitWithReader(bufio.NewReader(strings.NewReader(input))); err != nil {
			t.Errorf("runInitWithReader: %v", err)
		}
	})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme.Slug != "gammatheme" {
		t.Errorf("Slug = %q, want gammatheme", cfg.Theme.Slug)
	}
	if cfg.Theme.Name != "Gamma" || cfg.Theme.HomeURL != "https://example.com" {
		t.Errorf("Theme = %+v", cfg.Theme)
	}
	if cfg.Theme.SiteName != "My Site" {
		t.Errorf("SiteName = %q, want the default", cfg.Theme.SiteName)
	}
	if !cfg.Theme.IsChildTheme() || cfg.Theme.ChildURL != "https://example.com/child" {
		t.Errorf("child theme not saved: %+v", cfg.Theme)
	}

	paths := config.GetPaths()
	for _, dir := range []string{paths.HooksDir, paths.PluginsDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("expected %s to exist: %v", dir, err)
		}
	}
	if _, err := os.Stat(paths.DBFile); err != nil {
		t.Errorf("expected database at %s: %v", paths.DBFile, err)
	}
	if !strings.Contains(out, "gammatheme_singular-post_header") {
		t.Errorf("expected example hook names in output:\n%s", out)
	}
}

func TestRunInitWithReader_Defaults(t *testing.T) {
	configTestEnv(t)

	captureStdout(t, func() {
		if err := runInitWithReader(bufio.NewReader(strings.NewReader("\n\n\n\n\n"))); err != nil {
			t.Errorf("runInitWithReader: %v", err)
		}
	})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme.Slug != config.DefaultSlug || cfg.Theme.IsChildTheme() {
		t.Errorf("expected defaults, got %+v", cfg.Theme)
	}
	if !config.Initialized() {
		t.Error("expected the config file to be written")
	}
}

func TestRunInitWithReader_InvalidSlug(t *testing.T) {
	configTestEnv(t)

	var err error
	captureStdout(t, func() {
		err = runInitWithReader(bufio.NewReader(strings.NewReader("!!!\n")))
	})
	if err == nil {
		t.Fatal("expected an error for a slug with no valid characters")
	}
	if config.Initialized() {
		t.Error("config must not be written after an invalid slug")
	}
}
