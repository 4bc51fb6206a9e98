package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/exmachina/internal/config"
	"github.com/rnwolfe/exmachina/internal/hook"
	"github.com/rnwolfe/exmachina/internal/logs"
	"github.com/rnwolfe/exmachina/internal/plugin"
	"github.com/rnwolfe/exmachina/internal/settings"
	"github.com/rnwolfe/exmachina/internal/store"
	"github.com/rnwolfe/exmachina/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check your exmachina setup for problems",
	Long:  `Run a suite of health checks and report what's working (and what isn't).`,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// checkResult holds the outcome of a single health check.
type checkResult struct {
	name    string
	ok      bool
	detail  string
	fixHint string
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	cfg, _ := config.Load()

	results := []checkResult{
		checkConfig(),
		checkStore(),
		checkSettings(cfg),
		checkHookScripts(),
		checkPlugins(ctx, cfg),
	}

	fmt.Println()

	allPassed := true
	for _, r := range results {
		printCheck(r)
		if !r.ok {
			allPassed = false
		}
	}

	fmt.Println()

	if !allPassed {
		return fmt.Errorf("one or more checks failed, see suggestions above")
	}
	return nil
}

func printCheck(r checkResult) {
	label := fmt.Sprintf("%-16s", r.name)
	if r.ok {
		icon := ui.Success.Render(ui.IconOk)
		fmt.Printf("  %s %s %s\n", icon, ui.KeyStyle.Render(label), ui.Muted.Render(r.detail))
	} else {
		icon := ui.Error.Render(ui.IconError)
		fmt.Printf("  %s %s %s\n", icon, ui.KeyStyle.Render(label), r.detail)
		if r.fixHint != "" {
			fmt.Printf("  %s %s %s\n", "  ", "                ", ui.Muted.Render(ui.IconArrow+" "+r.fixHint))
		}
	}
}

func checkConfig() checkResult {
	if !config.Initialized() {
		return checkResult{
			name:    "Config",
			ok:      false,
			detail:  "config file not found",
			fixHint: fmt.Sprintf("Run %s to create it", ui.Accent.Render("exmachina init")),
		}
	}
	paths := config.GetPaths()
	if _, err := config.Load(); err != nil {
		return checkResult{
			name:    "Config",
			ok:      false,
			detail:  fmt.Sprintf("parse error: %v", err),
			fixHint: fmt.Sprintf("Check %s for syntax errors", paths.ConfigFile),
		}
	}
	return checkResult{
		name:   "Config",
		ok:     true,
		detail: paths.ConfigFile + " found and valid",
	}
}

func checkStore() checkResult {
	db, err := store.Open()
	if err != nil {
		return checkResult{
			name:    "Store",
			ok:      false,
			detail:  fmt.Sprintf("cannot open database: %v", err),
			fixHint: "Check available disk space and permissions on the data directory",
		}
	}
	db.Close()
	return checkResult{
		name:   "Store",
		ok:     true,
		detail: "SQLite database opens and responds",
	}
}

func checkSettings(cfg *config.Config) checkResult {
	if cfg == nil {
		cfg = config.Default()
	}
	db, err := store.Open()
	if err != nil {
		return checkResult{name: "Settings", ok: false, detail: "store unavailable"}
	}
	defer db.Close()

	field := cfg.SettingsField()
	raw, ok, err := db.Option(field)
	switch {
	case err != nil:
		return checkResult{name: "Settings", ok: false, detail: fmt.Sprintf("reading %s: %v", field, err)}
	case !ok:
		return checkResult{name: "Settings", ok: true, detail: field + " not stored yet, defaults apply"}
	}

	var blob map[string]settings.Value
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return checkResult{
			name:    "Settings",
			ok:      false,
			detail:  fmt.Sprintf("%s is not a valid settings blob: %v", field, err),
			fixHint: fmt.Sprintf("Run %s to start over", ui.Accent.Render("exmachina settings reset")),
		}
	}
	return checkResult{
		name:   "Settings",
		ok:     true,
		detail: fmt.Sprintf("%s holds %d values", field, len(blob)),
	}
}

func checkHookScripts() checkResult {
	dir := hook.HooksDir()
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return checkResult{name: "Hook scripts", ok: true, detail: "no hooks directory"}
	}
	scripts, err := hook.Discover()
	if err != nil {
		return checkResult{name: "Hook scripts", ok: false, detail: err.Error()}
	}
	return checkResult{
		name:   "Hook scripts",
		ok:     true,
		detail: fmt.Sprintf("%d executable scripts in %s", len(scripts), dir),
	}
}

// checkPlugins loads every plugin into a scratch dispatcher.
func checkPlugins(ctx context.Context, cfg *config.Config) checkResult {
	if cfg == nil {
		cfg = config.Default()
	}
	d := hook.New(cfg.Theme.Slug, hook.NewRegistry())
	m := plugin.NewManager(d, nil, plugin.WithLogger(logs.Discard()))
	defer m.Close()

	if err := m.LoadDir(ctx, plugin.PluginsDir()); err != nil {
		return checkResult{
			name:    "Plugins",
			ok:      false,
			detail:  err.Error(),
			fixHint: fmt.Sprintf("Fix or remove the plugin in %s", plugin.PluginsDir()),
		}
	}
	return checkResult{
		name:   "Plugins",
		ok:     true,
		detail: fmt.Sprintf("%d plugins load cleanly", len(m.List())),
	}
}
