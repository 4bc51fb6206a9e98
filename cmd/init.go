package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/exmachina/internal/config"
	"github.com/rnwolfe/exmachina/internal/hook"
	"github.com/rnwolfe/exmachina/internal/store"
	"github.com/rnwolfe/exmachina/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up exmachina for a theme",
	Long:  `Write a config file for the active theme and create the data, hooks and plugins directories.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	return runInitWithReader(bufio.NewReader(os.Stdin))
}

func runInitWithReader(reader *bufio.Reader) error {
	fmt.Println(ui.Title.Render("  Welcome to exmachina"))
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	t := &cfg.Theme
	t.Slug = hook.SanitizeKey(prompt(reader, "  Theme slug (hook prefix)?", t.Slug))
	if t.Slug == "" {
		return fmt.Errorf("theme slug must contain letters, digits, - or _")
	}
	t.Name = prompt(reader, "  Theme name?", t.Name)
	t.SiteName = prompt(reader, "  Site title?", t.SiteName)
	t.HomeURL = prompt(reader, "  Home URL?", t.HomeURL)
	t.ChildName = prompt(reader, "  Child theme name? (blank for none)", t.ChildName)
	if t.ChildName != "" {
		t.ChildURL = prompt(reader, "  Child theme URL?", t.ChildURL)
	}
	fmt.Println()

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	paths := config.GetPaths()
	for _, dir := range []string{paths.HooksDir, paths.PluginsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	db.Close()

	ui.Ok("Config saved to " + paths.ConfigFile)
	ui.Ok("Database ready at " + paths.DBFile)
	fmt.Println()
	fmt.Printf("  Hooks fire as %s, %s, ...\n",
		ui.Accent.Render(hook.FormatHook(t.Slug, "header", "")),
		ui.Accent.Render(hook.FormatHook(t.Slug, "header", "singular-post")),
	)
	fmt.Println()
	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s %s ", question, ui.Muted.Render(fmt.Sprintf("(%s)", defaultVal)))
	} else {
		fmt.Printf("%s ", question)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}
