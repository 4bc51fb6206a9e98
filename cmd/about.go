package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/exmachina/internal/ui"
	"github.com/rnwolfe/exmachina/internal/version"
)

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "What exmachina is and which version you run",
	Run:   runAbout,
}

func init() {
	rootCmd.AddCommand(aboutCmd)
}

func runAbout(_ *cobra.Command, _ []string) {
	fmt.Println()
	fmt.Println(ui.Title.Render("  " + ui.IconHook + "exmachina"))
	fmt.Println(ui.Muted.Render("  ────────────────────────────────────────────"))
	fmt.Println()
	fmt.Println("  " + ui.Subtitle.Render("Atomic, context-aware hooks for ExMachina themes."))
	fmt.Println()
	fmt.Println(ui.Muted.Render("  One tag fires a base hook and then a hook per request context,"))
	fmt.Println(ui.Muted.Render("  so the most specific callback always gets the last word."))
	fmt.Println()
	ui.Kv("Version", version.Full())
	ui.Kv("License", "GPL-2.0-or-later")
	fmt.Println()
	ui.Tip("run `exmachina help` to explore every command")
	fmt.Println()
}
