package theme

import (
	"context"
	"fmt"
	"html"
	"io"
	"strconv"

	"github.com/rnwolfe/exmachina/internal/version"
)

// WordPressURL is linked by the [wp-link] shortcode.
const WordPressURL = "https://wordpress.org"

// RegisterShortcodes adds the footer shortcodes: the-year, site-link,
// wp-link, theme-link and child-link.
func (t *Theme) RegisterShortcodes() {
	x := t.shortcodes
	x.Add("the-year", func(map[string]string, string) string {
		return strconv.Itoa(t.clock.Now().Year())
	})
	x.Add("site-link", func(map[string]string, string) string {
		return fmt.Sprintf(`<a class="site-link" href="%s" title="%s" rel="home"><span>%s</span></a>`,
			html.EscapeString(t.info.HomeURL), html.EscapeString(t.info.SiteName), html.EscapeString(t.info.SiteName))
	})
	x.Add("wp-link", func(map[string]string, string) string {
		return fmt.Sprintf(`<a class="wp-link" href="%s" title="State-of-the-art semantic personal publishing platform"><span>WordPress</span></a>`, WordPressURL)
	})
	x.Add("theme-link", func(map[string]string, string) string {
		return fmt.Sprintf(`<a class="theme-link" href="%s" title="%s"><span>%s</span></a>`,
			html.EscapeString(t.info.URL), html.EscapeString(t.info.Name), html.EscapeString(t.info.Name))
	})
	x.Add("child-link", func(map[string]string, string) string {
		if !t.info.IsChildTheme() {
			return ""
		}
		return fmt.Sprintf(`<a class="child-link" href="%s" title="%s"><span>%s</span></a>`,
			html.EscapeString(t.info.ChildURL), html.EscapeString(t.info.ChildName), html.EscapeString(t.info.ChildName))
	})
}

// SiteTitle returns the site title markup: an <h1> on the front page and a
// <div> elsewhere, filtered through the site_title atomic filter.
func (t *Theme) SiteTitle(ctx context.Context) (string, error) {
	tag := "div"
	if t.isFrontPage(ctx) {
		tag = "h1"
	}

	title := ""
	if name := t.info.SiteName; name != "" {
		esc := html.EscapeString(name)
		title = fmt.Sprintf(`<%[1]s id="site-title"><a href="%[2]s" title="%[3]s" rel="home"><span>%[3]s</span></a></%[1]s>`,
			tag, html.EscapeString(t.info.HomeURL), esc)
	}
	return t.hooks.ApplyAtomicString(ctx, "site_title", title)
}

// SiteDescription returns the tagline markup: an <h2> on the front page and
// a <div> elsewhere, filtered through the site_description atomic filter.
func (t *Theme) SiteDescription(ctx context.Context) (string, error) {
	tag := "div"
	if t.isFrontPage(ctx) {
		tag = "h2"
	}

	desc := ""
	if d := t.info.Description; d != "" {
		desc = fmt.Sprintf(`<%[1]s id="site-description"><span>%[2]s</span></%[1]s>`, tag, html.EscapeString(d))
	}
	return t.hooks.ApplyAtomicString(ctx, "site_description", desc)
}

// MetaTemplate returns the template meta tag naming the parent theme.
func (t *Theme) MetaTemplate(ctx context.Context) (string, error) {
	tmpl := fmt.Sprintf(`<meta name="template" content="%s" />`+"\n",
		html.EscapeString(t.info.Name+" "+t.info.Version))
	return t.hooks.ApplyAtomicString(ctx, "meta_template", tmpl)
}

// FooterContent returns the footer_insert setting run through the
// footer_content atomic filter and shortcode expansion.
func (t *Theme) FooterContent(ctx context.Context) (string, error) {
	insert := ""
	if t.settings != nil {
		insert = t.settings.String(ctx, "footer_insert")
	}
	out, err := t.hooks.ApplyAtomicShortcode(ctx, "footer_content", insert)
	if err != nil {
		return "", err
	}
	s, _ := out.(string)
	return s, nil
}

func (t *Theme) headAction(ctx context.Context, args ...any) error {
	w := writerArg(args)
	if w == nil {
		return nil
	}
	meta, err := t.MetaTemplate(ctx)
	if err != nil {
		return err
	}
	scripts := ""
	if t.settings != nil {
		scripts = t.settings.String(ctx, "header_scripts")
	}
	generator := fmt.Sprintf(`<meta name="generator" content="%s" />`+"\n", html.EscapeString(version.Generator()))
	_, err = io.WriteString(w, meta+generator+scripts)
	return err
}

func (t *Theme) headerAction(ctx context.Context, args ...any) error {
	w := writerArg(args)
	if w == nil {
		return nil
	}
	title, err := t.SiteTitle(ctx)
	if err != nil {
		return err
	}
	desc, err := t.SiteDescription(ctx)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, title+desc)
	return err
}

func (t *Theme) footerAction(ctx context.Context, args ...any) error {
	w := writerArg(args)
	if w == nil {
		return nil
	}
	footer, err := t.FooterContent(ctx)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, footer)
	return err
}

func (t *Theme) footerScriptsAction(ctx context.Context, args ...any) error {
	w := writerArg(args)
	if w == nil || t.settings == nil {
		return nil
	}
	_, err := io.WriteString(w, t.settings.String(ctx, "footer_scripts"))
	return err
}

// writerArg returns the first io.Writer among a hook's arguments.
func writerArg(args []any) io.Writer {
	for _, a := range args {
		if w, ok := a.(io.Writer); ok {
			return w
		}
	}
	return nil
}
