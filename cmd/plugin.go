package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/exmachina/internal/plugin"
	"github.com/rnwolfe/exmachina/internal/ui"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "List Lua plugins",
	Long:  `Show the Lua plugins loaded from ~/.config/exmachina/plugins/ and the hooks they register.`,
	RunE:  runPluginList,
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded plugins",
	RunE:  runPluginList,
}

var pluginInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show a plugin's manifest, permissions and hooks",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginInfo,
}

func init() {
	rootCmd.AddCommand(pluginCmd)
	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginInfoCmd)
}

func runPluginList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		plugins := a.plugins.List()
		if len(plugins) == 0 {
			fmt.Println()
			fmt.Println(ui.Muted.Render("  No plugins loaded."))
			fmt.Println()
			fmt.Printf("  Plugins directory: %s\n", ui.Accent.Render(plugin.PluginsDir()))
			fmt.Println()
			return nil
		}

		fmt.Println()
		fmt.Println(ui.Title.Render("  " + ui.IconPlugin + " Plugins"))
		fmt.Println()
		for _, p := range plugins {
			fmt.Printf("  %s %-20s %s  %s\n",
				ui.Success.Render("●"),
				ui.Accent.Render(p.Name()),
				ui.Muted.Render(p.Manifest.Plugin.Version),
				ui.Muted.Render(fmt.Sprintf("%d hooks", len(a.plugins.Hooks(p.Name())))),
			)
		}
		fmt.Println()
		return nil
	})
}

func runPluginInfo(cmd *cobra.Command, args []string) error {
	name := args[0]
	return withApp(cmd, func(_ context.Context, a *app) error {
		p, ok := a.plugins.Get(name)
		if !ok {
			return fmt.Errorf("plugin %q is not loaded", name)
		}
		m := p.Manifest.Plugin

		ui.Header(m.Name)
		fmt.Println()
		ui.Kv("Version", m.Version)
		if m.Description != "" {
			ui.Kv("Description", m.Description)
		}
		if m.Author != "" {
			ui.Kv("Author", m.Author)
		}
		ui.Kv("Script", p.Path)
		fmt.Println()

		fmt.Println(ui.Subtitle.Render("  Permissions"))
		for _, line := range plugin.PermissionSummary(p.Manifest.Permissions) {
			fmt.Printf("    %s %s\n", ui.IconDot, line)
		}
		fmt.Println()

		fmt.Println(ui.Subtitle.Render("  Hooks"))
		for _, e := range a.plugins.Hooks(name) {
			fmt.Printf("    %s %s %s\n", ui.KindLabel(string(e.Kind)), ui.Accent.Render(e.Hook),
				ui.Muted.Render(fmt.Sprintf("priority %d", e.Priority)))
		}
		fmt.Println()
		return nil
	})
}
