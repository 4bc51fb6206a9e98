// Package theme wires the hook dispatcher, the settings accessor and the
// shortcode expander into the parent theme's presentation helpers.
package theme

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/rnwolfe/exmachina/internal/config"
	"github.com/rnwolfe/exmachina/internal/hook"
	"github.com/rnwolfe/exmachina/internal/request"
	"github.com/rnwolfe/exmachina/internal/settings"
	"github.com/rnwolfe/exmachina/internal/shortcode"
)

// DefaultTransientExpiration is how long cached theme fragments live.
const DefaultTransientExpiration = 12 * time.Hour

// DefaultContentWidth is applied by Setup when no width has been set.
const DefaultContentWidth = 600

// Info describes the active theme and site.
type Info struct {
	Name        string
	Version     string
	Slug        string
	URL         string
	SiteName    string
	Description string
	HomeURL     string
	ChildName   string
	ChildURL    string
}

// InfoFromConfig builds Info from the [theme] config section.
func InfoFromConfig(c config.ThemeConfig) Info {
	return Info{
		Name:        c.Name,
		Version:     c.Version,
		Slug:        c.Slug,
		URL:         c.ThemeURL,
		SiteName:    c.SiteName,
		Description: c.SiteDescription,
		HomeURL:     c.HomeURL,
		ChildName:   c.ChildName,
		ChildURL:    c.ChildURL,
	}
}

// IsChildTheme reports whether a child theme is active.
func (i Info) IsChildTheme() bool { return i.ChildName != "" }

// Theme is the parent theme runtime.
type Theme struct {
	info       Info
	hooks      *hook.Dispatcher
	settings   *settings.Accessor
	shortcodes *shortcode.Expander
	clock      clockz.Clock
	logger     *slog.Logger

	mu           sync.Mutex
	contentWidth int
}

// Option configures a Theme.
type Option func(*Theme)

// WithClock sets the clock used by [the-year] and relative times.
func WithClock(c clockz.Clock) Option {
	return func(t *Theme) {
		t.clock = c
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Theme) {
		t.logger = l
	}
}

// New creates a theme. A nil expander is replaced with an empty one.
func New(info Info, d *hook.Dispatcher, s *settings.Accessor, x *shortcode.Expander, opts ...Option) *Theme {
	if x == nil {
		x = shortcode.New()
	}
	t := &Theme{
		info:       info,
		hooks:      d,
		settings:   s,
		shortcodes: x,
		clock:      clockz.RealClock,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Info returns the theme description.
func (t *Theme) Info() Info { return t.info }

// Hooks returns the dispatcher.
func (t *Theme) Hooks() *hook.Dispatcher { return t.hooks }

// Settings returns the settings accessor.
func (t *Theme) Settings() *settings.Accessor { return t.settings }

// Shortcodes returns the shortcode expander.
func (t *Theme) Shortcodes() *shortcode.Expander { return t.shortcodes }

// Setup registers the theme's shortcodes and default callbacks. Call it
// once during bootstrap, before plugins and user hooks load, so their
// callbacks can be ordered around the defaults.
func (t *Theme) Setup() error {
	t.RegisterShortcodes()
	t.hooks.SetExpander(t.shortcodes)

	t.mu.Lock()
	if t.contentWidth == 0 {
		t.contentWidth = DefaultContentWidth
	}
	t.mu.Unlock()

	d := t.hooks
	reg := []struct {
		hook string
		name string
		fn   any
	}{
		{"feed_link", "feed_links_filter", hook.FilterFunc(t.feedLinkFilter)},
		{d.FormatHook("head", ""), "meta_template", hook.ActionFunc(t.headAction)},
		{d.FormatHook("header", ""), "site_branding", hook.ActionFunc(t.headerAction)},
		{d.FormatHook("footer", ""), "footer_content", hook.ActionFunc(t.footerAction)},
		{d.FormatHook("after_html", ""), "footer_scripts", hook.ActionFunc(t.footerScriptsAction)},
	}
	for _, r := range reg {
		opts := []hook.Option{hook.WithName(r.name), hook.WithSource("theme")}
		var err error
		switch fn := r.fn.(type) {
		case hook.FilterFunc:
			_, err = d.AddFilter(r.hook, fn, opts...)
		case hook.ActionFunc:
			_, err = d.AddAction(r.hook, fn, opts...)
		}
		if err != nil {
			return err
		}
	}

	t.logger.Debug("theme setup", "prefix", d.Prefix(), "shortcodes", t.shortcodes.Tags())
	return nil
}

// Request resolves req into context tokens, lets the {prefix}_context filter
// adjust them, and returns ctx carrying the resulting scope.
func (t *Theme) Request(ctx context.Context, req request.Request) (context.Context, error) {
	scope := request.NewScope(req)
	tokens := scope.Tokens()

	out, err := t.hooks.ApplyFilters(ctx, t.hooks.FormatHook("context", ""), tokens)
	if err != nil {
		return ctx, err
	}
	if filtered, ok := toStrings(out); ok {
		scope = scope.Override(filtered)
	}
	return request.NewContext(ctx, scope), nil
}

// TransientExpiration returns the cache lifetime for theme fragments,
// filtered through {prefix}_transient_expiration (seconds).
func (t *Theme) TransientExpiration(ctx context.Context) time.Duration {
	def := int64(DefaultTransientExpiration / time.Second)
	out, err := t.hooks.ApplyFilters(ctx, t.hooks.FormatHook("transient_expiration", ""), def)
	if err != nil {
		t.logger.Warn("transient_expiration filter failed", "error", err)
		return DefaultTransientExpiration
	}
	secs := settings.FromAny(out).Int()
	if secs <= 0 {
		return DefaultTransientExpiration
	}
	return time.Duration(secs) * time.Second
}

// SetContentWidth overwrites the content width with the absolute value of w.
func (t *Theme) SetContentWidth(w int) {
	if w < 0 {
		w = -w
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.contentWidth = w
}

// ContentWidth returns the content width through the {prefix}_content_width filter.
func (t *Theme) ContentWidth(ctx context.Context) int {
	t.mu.Lock()
	w := t.contentWidth
	t.mu.Unlock()

	out, err := t.hooks.ApplyFilters(ctx, t.hooks.FormatHook("content_width", ""), w)
	if err != nil {
		t.logger.Warn("content_width filter failed", "error", err)
		return w
	}
	return int(settings.FromAny(out).Int())
}

func (t *Theme) isFrontPage(ctx context.Context) bool {
	s := request.FromContext(ctx)
	if s == nil {
		return false
	}
	return s.Request().FrontPage || s.Has("home")
}

func toStrings(x any) ([]string, bool) {
	switch v := x.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			s, ok := it.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
