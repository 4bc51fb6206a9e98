package cmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rnwolfe/exmachina/internal/config"
)

func TestGatherStatus_Defaults(t *testing.T) {
	configTestEnv(t)
	a := testApp(t)

	data := gatherStatus(a)
	if data.Theme != "Beta" || data.Prefix != "beta" {
		t.Errorf("Theme/Prefix = %q/%q", data.Theme, data.Prefix)
	}
	if data.Callbacks == 0 {
		t.Error("Callbacks = 0, want the theme defaults")
	}
	if data.Plugins != 0 || data.HookScripts != 0 {
		t.Errorf("Plugins = %d, HookScripts = %d, want 0", data.Plugins, data.HookScripts)
	}
	if !data.ConfigModified.IsZero() {
		t.Error("ConfigModified should be zero without a config file")
	}
	if data.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestGatherStatus_ChildTheme(t *testing.T) {
	configTestEnv(t)
	cfg := config.Default()
	cfg.Theme.ChildName = "Gamma"
	if err := config.Save(cfg); err != nil {
		t.Fatal(err)
	}
	writePlugin(t, "noop", `exmachina.add_action(exmachina.format_hook("footer"), function() end)`)

	data := gatherStatus(testApp(t))
	if data.ChildTheme != "Gamma" {
		t.Errorf("ChildTheme = %q", data.ChildTheme)
	}
	if data.Plugins != 1 {
		t.Errorf("Plugins = %d, want 1", data.Plugins)
	}
	if data.ConfigModified.IsZero() {
		t.Error("ConfigModified should be set once a config file exists")
	}
}

func TestFormatStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data := StatusData{
		Theme:          "Beta",
		Prefix:         "beta",
		ChildTheme:     "Gamma",
		Callbacks:      7,
		HookScripts:    2,
		Plugins:        1,
		ConfigModified: now.Add(-3 * time.Hour),
	}

	want := "Theme: Beta (prefix beta)\n" +
		"Child theme: Gamma\n" +
		"Callbacks: 7 (2 scripts, 1 plugins)\n" +
		"Config changed 3 hours ago\n"
	if got := formatStatus(data, now); got != want {
		t.Errorf("formatStatus() =\n%s\nwant\n%s", got, want)
	}

	data.ChildTheme = ""
	data.ConfigModified = time.Time{}
	if got := formatStatus(data, now); strings.Contains(got, "Child theme") || strings.Contains(got, "Config changed") {
		t.Errorf("formatStatus() printed empty fields:\n%s", got)
	}
}

func TestStatusJSONOmitsZeroTime(t *testing.T) {
	b, err := json.Marshal(StatusData{Theme: "Beta", Prefix: "beta"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "config_modified") || strings.Contains(string(b), "child_theme") {
		t.Errorf("expected zero fields to be omitted: %s", b)
	}
}
