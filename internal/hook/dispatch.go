package hook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rnwolfe/exmachina/internal/request"
)

// MacroExpander post-processes markup after a filter chain, e.g. shortcodes.
type MacroExpander interface {
	Expand(content string) string
}

// Dispatcher fires hooks against a Registry using the theme prefix and the
// context tokens carried by each call's context.Context.
type Dispatcher struct {
	prefix   string
	reg      *Registry
	expander MacroExpander
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithExpander sets the expander used by ApplyAtomicShortcode.
func WithExpander(x MacroExpander) DispatcherOption {
	return func(d *Dispatcher) {
		d.expander = x
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// PrefixHook is the unprefixed filter that may rename the theme prefix. It
// runs once in New, so callbacks must be on reg before the dispatcher is
// built.
const PrefixHook = "exmachina_prefix"

// New creates a dispatcher. prefix passes through the PrefixHook filters on
// reg and is then sanitized with SanitizeKey. A failing or non-string
// filter result is logged and the given prefix kept.
func New(prefix string, reg *Registry, opts ...DispatcherOption) *Dispatcher {
	if reg == nil {
		reg = NewRegistry()
	}
	d := &Dispatcher{
		reg:    reg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if reg.Has(PrefixHook) {
		filtered, err := d.ApplyFiltersString(context.Background(), PrefixHook, prefix)
		if err != nil {
			d.logger.Warn("prefix filter failed", "prefix", prefix, "error", err)
		} else if filtered != "" {
			prefix = filtered
		}
	}
	d.prefix = SanitizeKey(prefix)
	return d
}

// Prefix returns the sanitized hook prefix.
func (d *Dispatcher) Prefix() string {
	return d.prefix
}

// Registry returns the underlying registry.
func (d *Dispatcher) Registry() *Registry {
	return d.reg
}

// SetExpander replaces the macro expander.
func (d *Dispatcher) SetExpander(x MacroExpander) {
	d.expander = x
}

// FormatHook prefixes tag, adding context when non-empty.
func (d *Dispatcher) FormatHook(tag, context string) string {
	return FormatHook(d.prefix, tag, context)
}

// Names returns the expanded hook names DoAtomic/ApplyAtomic would fire for
// tag under the tokens in ctx.
func (d *Dispatcher) Names(ctx context.Context, tag string) []string {
	return ExpandHookNames(d.prefix, tag, request.TokensFrom(ctx))
}

// AddAction registers fn on an already-expanded hook name.
func (d *Dispatcher) AddAction(hookName string, fn ActionFunc, opts ...Option) (Handle, error) {
	if fn == nil {
		return Handle{}, ErrNilCallback
	}
	cb := func(ctx context.Context, value any, args ...any) (any, error) {
		return value, fn(ctx, args...)
	}
	return d.reg.Add(hookName, KindAction, cb, opts...)
}

// AddFilter registers fn on an already-expanded hook name.
func (d *Dispatcher) AddFilter(hookName string, fn FilterFunc, opts ...Option) (Handle, error) {
	if fn == nil {
		return Handle{}, ErrNilCallback
	}
	return d.reg.Add(hookName, KindFilter, Callback(fn), opts...)
}

// DoAction runs every callback on one expanded hook name.
func (d *Dispatcher) DoAction(ctx context.Context, hookName string, args ...any) error {
	_, err := d.run(ctx, hookName, nil, args)
	return err
}

// ApplyFilters folds value through every callback on one expanded hook name.
func (d *Dispatcher) ApplyFilters(ctx context.Context, hookName string, value any, args ...any) (any, error) {
	return d.run(ctx, hookName, value, args)
}

// DoAtomic fires the base hook for tag and then one contextual hook per
// context token, least specific first. An empty tag does nothing and
// reports false.
func (d *Dispatcher) DoAtomic(ctx context.Context, tag string, args ...any) (bool, error) {
	if tag == "" {
		return false, nil
	}
	names := d.Names(ctx, tag)
	d.logger.Debug("do_atomic", "tag", tag, "hooks", names)

	for _, name := range names {
		if _, err := d.run(ctx, name, nil, args); err != nil {
			return true, err
		}
	}
	return true, nil
}

// ApplyAtomic threads value through the base hook's filters and then each
// contextual hook's filters, returning the final value. An empty tag returns
// false.
func (d *Dispatcher) ApplyAtomic(ctx context.Context, tag string, value any, args ...any) (any, error) {
	if tag == "" {
		return false, nil
	}
	names := d.Names(ctx, tag)
	d.logger.Debug("apply_atomic", "tag", tag, "hooks", names)

	var err error
	for _, name := range names {
		value, err = d.run(ctx, name, value, args)
		if err != nil {
			return value, err
		}
	}
	return value, nil
}

// ApplyAtomicShortcode is ApplyAtomic followed by macro expansion of a
// string result. Non-string results and dispatchers without an expander
// pass through unchanged.
func (d *Dispatcher) ApplyAtomicShortcode(ctx context.Context, tag string, value any, args ...any) (any, error) {
	out, err := d.ApplyAtomic(ctx, tag, value, args...)
	if err != nil {
		return out, err
	}
	if s, ok := out.(string); ok && d.expander != nil {
		return d.expander.Expand(s), nil
	}
	return out, nil
}

// ApplyAtomicString is ApplyAtomic for string values. An empty tag returns
// the empty string.
func (d *Dispatcher) ApplyAtomicString(ctx context.Context, tag, value string, args ...any) (string, error) {
	if tag == "" {
		return "", nil
	}
	out, err := d.ApplyAtomic(ctx, tag, value, args...)
	if err != nil {
		return "", err
	}
	return asString(tag, out)
}

// ApplyFiltersString is ApplyFilters for string values.
func (d *Dispatcher) ApplyFiltersString(ctx context.Context, hookName, value string, args ...any) (string, error) {
	out, err := d.ApplyFilters(ctx, hookName, value, args...)
	if err != nil {
		return "", err
	}
	return asString(hookName, out)
}

func asString(name string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("hook %q: filter returned %T, want string", name, v)
	}
}

// run folds value through the callbacks on one expanded name.
func (d *Dispatcher) run(ctx context.Context, hookName string, value any, args []any) (any, error) {
	for _, e := range d.reg.callbacks(hookName) {
		out, err := e.cb(ctx, value, args...)
		if err != nil {
			return value, fmt.Errorf("hook %q (%s): %w", hookName, e.label(), err)
		}
		value = out
	}
	return value, nil
}

func (e entry) label() string {
	if e.name != "" {
		return e.name
	}
	return e.id
}
