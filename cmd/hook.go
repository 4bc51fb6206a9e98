package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/exmachina/internal/hook"
	"github.com/rnwolfe/exmachina/internal/ui"
)

var (
	hookRaw       bool
	hookExpandReq requestFlags
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Inspect and script theme hooks",
	Long:  `List registered callbacks, expand atomic hook names, and manage hook scripts in ~/.config/exmachina/hooks/.`,
	RunE:  runHookList,
}

var hookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered callbacks and hook scripts",
	RunE:  runHookList,
}

var hookExpandCmd = &cobra.Command{
	Use:   "expand <tag>",
	Short: "Show the hook names an atomic tag fires for a request",
	Long: `Print every expanded hook name, in firing order, with the callbacks
registered on each.

Examples:
  exmachina hook expand header --singular post --id 42
  exmachina hook expand footer --archive --author admin --raw`,
	Args: cobra.ExactArgs(1),
	RunE: runHookExpand,
}

var hookCreateCmd = &cobra.Command{
	Use:   "create <hook> <action|filter>",
	Short: "Scaffold a new hook script",
	Long: `Create a starter hook script. The hook is an expanded name.

Examples:
  exmachina hook create beta_footer action
  exmachina hook create beta_singular-post_site_title filter`,
	Args: cobra.ExactArgs(2),
	RunE: runHookCreate,
}

var hookTestCmd = &cobra.Command{
	Use:   "test <file>",
	Short: "Dry-run a hook script with sample input",
	Args:  cobra.ExactArgs(1),
	RunE:  runHookTest,
}

func init() {
	rootCmd.AddCommand(hookCmd)
	hookCmd.AddCommand(hookListCmd)
	hookCmd.AddCommand(hookExpandCmd)
	hookCmd.AddCommand(hookCreateCmd)
	hookCmd.AddCommand(hookTestCmd)

	hookCmd.PersistentFlags().BoolVar(&hookRaw, "raw", false, "Print plain markdown instead of rendering it")
	hookExpandReq.register(hookExpandCmd.Flags())
}

func runHookList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		entries := a.hooks.Registry().Entries()

		w := ui.NewMarkdownWriter(os.Stdout, hookRaw)
		fmt.Fprintf(w, "## Callbacks (%d)\n\n", len(entries))
		if len(entries) == 0 {
			fmt.Fprintln(w, "_none registered_")
		} else {
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{"`" + e.Hook + "`", string(e.Kind), strconv.Itoa(e.Priority), e.Name, e.Source})
			}
			fmt.Fprint(w, ui.MarkdownTable([]string{"Hook", "Kind", "Priority", "Name", "Source"}, rows))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		scripts, err := hook.Discover()
		if err != nil {
			return err
		}
		fmt.Println()
		if len(scripts) == 0 {
			fmt.Println(ui.Muted.Render("  No hook scripts found."))
			fmt.Printf("  Hooks directory: %s\n", ui.Accent.Render(hook.HooksDir()))
			fmt.Printf("  Create one: %s\n", ui.Accent.Render("exmachina hook create "+a.hooks.FormatHook("footer", "")+" action"))
			fmt.Println()
			return nil
		}
		for _, s := range scripts {
			fmt.Printf("  %s %-36s %s  %s\n",
				ui.Success.Render("●"),
				ui.Accent.Render(s.Hook),
				ui.Muted.Render(ui.KindLabel(string(s.Kind))),
				ui.Muted.Render("priority "+strconv.Itoa(s.Priority)),
			)
		}
		fmt.Println()
		fmt.Printf("  %s\n", ui.Muted.Render(fmt.Sprintf("%d scripts in %s", len(scripts), hook.HooksDir())))
		fmt.Println()
		return nil
	})
}

func runHookExpand(cmd *cobra.Command, args []string) error {
	tag := args[0]
	req, err := hookExpandReq.Request(cmd.Flags())
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		ctx, err := a.theme.Request(ctx, req)
		if err != nil {
			return err
		}

		w := ui.NewMarkdownWriter(os.Stdout, hookRaw)
		fmt.Fprintf(w, "## %s\n\n", tag)
		for i, name := range a.hooks.Names(ctx, tag) {
			cbs := a.hooks.Registry().Callbacks(name)
			fmt.Fprintf(w, "%d. `%s`", i+1, name)
			if len(cbs) == 0 {
				fmt.Fprintln(w)
				continue
			}
			fmt.Fprintf(w, " (%d)\n", len(cbs))
			for _, cb := range cbs {
				fmt.Fprintf(w, "    - %s **%s** priority %d, %s\n", cb.Kind, cb.Name, cb.Priority, cb.Source)
			}
		}
		return w.Flush()
	})
}

func runHookCreate(_ *cobra.Command, args []string) error {
	name := args[0]
	kind, err := hook.ParseKind(args[1])
	if err != nil {
		return err
	}

	path, err := hook.CreateHookScript(name, kind)
	if err != nil {
		return err
	}

	ui.Ok(fmt.Sprintf("Created hook: %s", path))
	fmt.Println()
	fmt.Printf("  Hook:  %s\n", ui.Accent.Render(name))
	fmt.Printf("  Kind:  %s\n", ui.Accent.Render(string(kind)))
	fmt.Println()
	fmt.Printf("  Edit:  %s\n", ui.Accent.Render("$EDITOR "+path))
	fmt.Printf("  Test:  %s\n", ui.Accent.Render("exmachina hook test "+path))
	fmt.Println()
	return nil
}

func runHookTest(cmd *cobra.Command, args []string) error {
	path := args[0]

	fmt.Println()
	fmt.Printf("  Testing: %s\n", ui.Accent.Render(path))
	fmt.Println()

	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	output, err := hook.TestHook(ctx, path)
	if err != nil {
		return err
	}

	ui.Ok("Hook executed successfully")
	if output != "" {
		fmt.Println()
		fmt.Printf("  Output:\n  %s\n", ui.Muted.Render(output))
	}
	fmt.Println()
	return nil
}
