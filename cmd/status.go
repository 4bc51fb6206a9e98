package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rnwolfe/exmachina/internal/config"
	"github.com/rnwolfe/exmachina/internal/hook"
	"github.com/rnwolfe/exmachina/internal/version"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show exmachina status",
	Long:  `Output a summary of the active theme, its hooks and plugins, as text or JSON.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
}

// StatusData holds the status snapshot.
type StatusData struct {
	Theme          string    `json:"theme"`
	Prefix         string    `json:"prefix"`
	ChildTheme     string    `json:"child_theme,omitempty"`
	Callbacks      int       `json:"callbacks"`
	HookScripts    int       `json:"hook_scripts"`
	Plugins        int       `json:"plugins"`
	ConfigModified time.Time `json:"config_modified,omitzero"`
	Version        string    `json:"version"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		data := gatherStatus(a)

		if statusJSON {
			enc := json.NewEncoder(os.Stdout)
			return enc.Encode(data)
		}

		fmt.Print(formatStatus(data, time.Now()))
		return nil
	})
}

func gatherStatus(a *app) StatusData {
	data := StatusData{
		Theme:     a.cfg.Theme.Name,
		Prefix:    a.hooks.Prefix(),
		Callbacks: a.hooks.Registry().Count(),
		Plugins:   len(a.plugins.List()),
		Version:   version.Short(),
	}
	if a.cfg.Theme.IsChildTheme() {
		data.ChildTheme = a.cfg.Theme.ChildName
	}
	if scripts, err := hook.Discover(); err == nil {
		data.HookScripts = len(scripts)
	}
	if info, err := os.Stat(config.GetPaths().ConfigFile); err == nil {
		data.ConfigModified = info.ModTime()
	}
	return data
}

func formatStatus(data StatusData, now time.Time) string {
	s := fmt.Sprintf("Theme: %s (prefix %s)\n", data.Theme, data.Prefix)
	if data.ChildTheme != "" {
		s += fmt.Sprintf("Child theme: %s\n", data.ChildTheme)
	}
	s += fmt.Sprintf("Callbacks: %d (%d scripts, %d plugins)\n", data.Callbacks, data.HookScripts, data.Plugins)
	if !data.ConfigModified.IsZero() {
		s += fmt.Sprintf("Config changed %s\n", humanize.RelTime(data.ConfigModified, now, "ago", "from now"))
	}
	return s
}
