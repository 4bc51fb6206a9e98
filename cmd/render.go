package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/exmachina/internal/request"
	"github.com/rnwolfe/exmachina/internal/theme"
)

var (
	renderReq   requestFlags
	renderCache bool
)

var renderCmd = &cobra.Command{
	Use:   "render [element]",
	Short: "Render the page skeleton or one theme element",
	Long: `Render a page by firing every section hook for the request, or render a
single element: site-title, site-description, meta-template, footer-content, or any
section name (head, header, entry, footer, ...).

Examples:
  exmachina render --singular post --id 42
  exmachina render site-title --front --blog
  exmachina render entry --archive --taxonomy category --term news`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderReq.register(renderCmd.Flags())
	renderCmd.Flags().BoolVar(&renderCache, "cache", false, "Serve from and store to the transient cache")
}

// renderElements are the helpers that return markup rather than write it.
var renderElements = map[string]func(*theme.Theme, context.Context) (string, error){
	"site-title":       (*theme.Theme).SiteTitle,
	"site-description": (*theme.Theme).SiteDescription,
	"meta-template":    (*theme.Theme).MetaTemplate,
	"footer-content":   (*theme.Theme).FooterContent,
}

func elementNames() []string {
	names := make([]string, 0, len(renderElements)+len(theme.Sections))
	for name := range renderElements {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(names, theme.Sections...)
}

func runRender(cmd *cobra.Command, args []string) error {
	req, err := renderReq.Request(cmd.Flags())
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		ctx, err := a.theme.Request(ctx, req)
		if err != nil {
			return err
		}
		if !renderCache {
			return renderTo(ctx, a.theme, os.Stdout, args)
		}
		return renderCached(ctx, a, os.Stdout, args)
	})
}

// renderCached serves the output from a transient keyed by the request's
// context tokens and the element, rendering and storing it on a miss.
func renderCached(ctx context.Context, a *app, w io.Writer, args []string) error {
	key := renderCacheKey(request.TokensFrom(ctx), args)
	if out, ok, err := a.db.Transient(key); err != nil {
		a.logger.Warn("reading render cache", "key", key, "error", err)
	} else if ok {
		a.logger.Debug("render cache hit", "key", key)
		_, err := io.WriteString(w, out)
		return err
	}

	var b strings.Builder
	if err := renderTo(ctx, a.theme, &b, args); err != nil {
		return err
	}
	ttl := a.theme.TransientExpiration(ctx)
	if err := a.db.SetTransient(key, b.String(), ttl); err != nil {
		a.logger.Warn("writing render cache", "key", key, "error", err)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderCacheKey(tokens, args []string) string {
	element := "page"
	if len(args) > 0 {
		element = args[0]
	}
	if len(tokens) == 0 {
		return "render_" + element
	}
	return "render_" + element + "_" + strings.Join(tokens, "+")
}

func renderTo(ctx context.Context, t *theme.Theme, w io.Writer, args []string) error {
	if len(args) == 0 {
		if err := t.Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}

	element := args[0]
	if fn, ok := renderElements[element]; ok {
		out, err := fn(t, ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	}

	section := strings.ReplaceAll(element, "-", "_")
	if slices.Contains(theme.Sections, section) {
		if _, err := t.Hooks().DoAtomic(ctx, section, w); err != nil {
			return fmt.Errorf("rendering %s: %w", section, err)
		}
		_, err := fmt.Fprintln(w)
		return err
	}

	return fmt.Errorf("unknown element %q (choose from: %s)", element, strings.Join(elementNames(), ", "))
}
