package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/exmachina/internal/config"
	"github.com/rnwolfe/exmachina/internal/hook"
	"github.com/rnwolfe/exmachina/internal/logs"
	"github.com/rnwolfe/exmachina/internal/plugin"
	"github.com/rnwolfe/exmachina/internal/settings"
	"github.com/rnwolfe/exmachina/internal/shortcode"
	"github.com/rnwolfe/exmachina/internal/store"
	"github.com/rnwolfe/exmachina/internal/theme"
	"github.com/rnwolfe/exmachina/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "exmachina",
	Short: "Contextual hooks for ExMachina themes",
	Long: `exmachina fires a theme's atomic hooks: a base hook followed by one
contextual hook per request token, least specific first.`,
	RunE: runDashboard,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.Err(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// app is everything a command needs to fire hooks for the configured theme.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *store.DB
	hooks    *hook.Dispatcher
	settings *settings.Accessor
	theme    *theme.Theme
	plugins  *plugin.Manager

	closers []func() error
}

// bootstrap wires config, logging, the options store, the dispatcher, the
// theme defaults, then plugins and user hook scripts. Plugins and scripts
// that fail to load are logged and skipped.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	paths := config.GetPaths()
	logger, closeLog := logs.New(cfg.Log, paths.LogFile, os.Stderr)
	a := &app{cfg: cfg, logger: logger, closers: []func() error{closeLog}}

	a.db, err = store.Open()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	a.closers = append(a.closers, a.db.Close)

	a.hooks = hook.New(cfg.Theme.Slug, hook.NewRegistry(), hook.WithLogger(logger))
	schema := settings.DefaultSchema(cfg.Theme)
	a.settings = settings.New(a.db, cfg.SettingsField(), schema,
		settings.WithHooks(a.hooks), settings.WithLogger(logger))

	a.theme = theme.New(theme.InfoFromConfig(cfg.Theme), a.hooks, a.settings, shortcode.New(),
		theme.WithLogger(logger))
	if err := a.theme.Setup(); err != nil {
		a.Close()
		return nil, fmt.Errorf("theme setup: %w", err)
	}

	a.plugins = plugin.NewManager(a.hooks, a.settings, plugin.WithLogger(logger))
	a.closers = append(a.closers, a.plugins.Close)
	if err := a.plugins.LoadDir(ctx, plugin.PluginsDir()); err != nil {
		logger.Warn("loading plugins", "error", err)
	}

	if err := hook.RegisterUserHooks(a.hooks.Registry()); err != nil {
		logger.Warn("loading user hooks", "error", err)
	}

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// withApp runs fn with a bootstrapped app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// runDashboard shows the active theme at a glance when you just type
// `exmachina`.
func runDashboard(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		info := a.theme.Info()

		fmt.Println()
		fmt.Println(ui.Title.Render("  " + info.Name + " " + info.Version))
		fmt.Println()
		ui.Kv("Prefix", a.hooks.Prefix())
		if info.IsChildTheme() {
			ui.Kv("Child theme", info.ChildName)
		}
		ui.Kv("Settings row", a.settings.Field())
		ui.Kv(ui.IconHook+"Callbacks", fmt.Sprintf("%d", a.hooks.Registry().Count()))
		ui.Kv(ui.IconPlugin+" Plugins", fmt.Sprintf("%d", len(a.plugins.List())))
		ui.Kv("Shortcodes", fmt.Sprintf("%v", a.theme.Shortcodes().Tags()))

		if !config.Initialized() {
			ui.Tip(fmt.Sprintf("`%s` to write a config file.", "exmachina init"))
		} else {
			ui.Tip("`exmachina context --singular post --id 42` to see a request's hooks.")
		}
		fmt.Println()
		return nil
	})
}
