package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/exmachina/internal/ui"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change theme settings",
	Long:  `Read and write the theme settings blob stored in the options table.`,
	RunE:  runSettingsList,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its effective value",
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting",
	Long: `Store a setting. The value is parsed by the key's type: booleans accept
true/false/1/0/yes/no/on/off, lists are comma separated.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Restore one setting, or all of them, to the default",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsReset,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		values := a.settings.All(ctx)

		ui.Header("Settings (" + a.settings.Field() + ")")
		fmt.Println()
		for _, e := range a.settings.Schema().Entries() {
			v := values[e.Key]
			label := v.String()
			if v.Equal(e.Default) {
				label += ui.Muted.Render("  (default)")
			}
			ui.Kv(e.Key, label)
		}
		fmt.Println()
		return nil
	})
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if _, ok := a.settings.Schema().Lookup(key); !ok {
			if _, stored := a.settings.All(ctx)[key]; !stored {
				return fmt.Errorf("unknown setting %q", key)
			}
		}
		fmt.Println(a.settings.Get(ctx, key).String())
		return nil
	})
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	return withApp(cmd, func(ctx context.Context, a *app) error {
		v, err := a.settings.Schema().Parse(key, raw)
		if err != nil {
			return err
		}
		if err := a.settings.Set(ctx, key, v); err != nil {
			return err
		}
		ui.Ok(fmt.Sprintf("%s = %s", key, v.String()))
		return nil
	})
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	key := ""
	if len(args) == 1 {
		key = args[0]
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.settings.Reset(ctx, key); err != nil {
			return err
		}
		if key == "" {
			ui.Ok("All settings reset to defaults")
		} else {
			ui.Ok(fmt.Sprintf("%s reset to default", key))
		}
		return nil
	})
}
