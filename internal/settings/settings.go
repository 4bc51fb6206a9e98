// Package settings reads and writes the theme settings blob: one options row
// holding every theme setting as JSON, loaded lazily and cached until the
// next save.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/rnwolfe/exmachina/internal/hook"
)

// Backend is the option storage the blob lives in.
type Backend interface {
	Option(name string) (string, bool, error)
	UpdateOption(name, value string) error
}

// Accessor is a read-through cache over the settings blob.
type Accessor struct {
	backend Backend
	field   string
	schema  *Schema
	hooks   *hook.Dispatcher
	logger  *slog.Logger

	mu     sync.Mutex
	cache  map[string]Value
	loaded bool
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithHooks runs the pre_get_option_{key}, options and
// default_theme_settings filters through d.
func WithHooks(d *hook.Dispatcher) Option {
	return func(a *Accessor) {
		a.hooks = d
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Accessor) {
		a.logger = l
	}
}

// New creates an accessor for the blob stored under field.
func New(backend Backend, field string, schema *Schema, opts ...Option) *Accessor {
	if schema == nil {
		schema = NewSchema()
	}
	a := &Accessor{
		backend: backend,
		field:   field,
		schema:  schema,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Field returns the option name holding the blob.
func (a *Accessor) Field() string { return a.field }

// Schema returns the declared keys.
func (a *Accessor) Schema() *Schema { return a.schema }

// FieldName returns the form field name for key, e.g. "beta_theme_settings[feed_uri]".
func (a *Accessor) FieldName(key string) string {
	return a.field + "[" + key + "]"
}

// FieldID returns the form field id for key. It matches FieldName.
func (a *Accessor) FieldID(key string) string {
	return a.FieldName(key)
}

// Get returns the value for key. A key missing from the stored blob falls
// back to its declared default, and an undeclared key to the empty string.
// Get never fails: storage errors are logged and read as an empty blob.
func (a *Accessor) Get(ctx context.Context, key string) Value {
	if key == "" {
		return Value{}
	}

	if a.hooks != nil {
		pre, err := a.hooks.ApplyFilters(ctx, a.hooks.FormatHook("pre_get_option_"+key, ""), nil, key)
		if err != nil {
			a.logger.Warn("pre_get_option filter failed", "key", key, "error", err)
		} else if pre != nil {
			v := FromAny(pre)
			if c, err := a.schema.Coerce(key, v); err == nil {
				v = c
			}
			return v
		}
	}

	if v, ok := a.load(ctx)[key]; ok {
		return v
	}
	return Value{}
}

// String returns key as text.
func (a *Accessor) String(ctx context.Context, key string) string {
	return a.Get(ctx, key).String()
}

// Int returns key as an integer.
func (a *Accessor) Int(ctx context.Context, key string) int64 {
	return a.Get(ctx, key).Int()
}

// Bool returns key's truthiness.
func (a *Accessor) Bool(ctx context.Context, key string) bool {
	return a.Get(ctx, key).Bool()
}

// List returns key as a list.
func (a *Accessor) List(ctx context.Context, key string) []string {
	return a.Get(ctx, key).List()
}

// All returns a copy of the merged blob.
func (a *Accessor) All(ctx context.Context) map[string]Value {
	return maps.Clone(a.load(ctx))
}

// Defaults returns the declared defaults after the default_theme_settings filter.
func (a *Accessor) Defaults(ctx context.Context) map[string]Value {
	defaults := a.schema.Defaults()
	if a.hooks == nil {
		return defaults
	}
	out, err := a.hooks.ApplyFilters(ctx, a.hooks.FormatHook("default_theme_settings", ""), defaults)
	if err != nil {
		a.logger.Warn("default_theme_settings filter failed", "error", err)
		return defaults
	}
	return a.toBlob(out, defaults)
}

// Invalidate drops the cached blob so the next read reloads it.
func (a *Accessor) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = nil
	a.loaded = false
}

// Set validates value against key's kind and saves the whole blob.
func (a *Accessor) Set(ctx context.Context, key string, value Value) error {
	if _, ok := a.schema.Lookup(key); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	v, err := a.schema.Coerce(key, value)
	if err != nil {
		return err
	}

	blob, err := a.stored()
	if err != nil {
		return err
	}
	blob[key] = v
	return a.persist(blob)
}

// Reset restores key to its default. An empty key resets every setting.
func (a *Accessor) Reset(ctx context.Context, key string) error {
	defaults := a.Defaults(ctx)
	if key == "" {
		return a.persist(defaults)
	}

	def, ok := defaults[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	blob, err := a.stored()
	if err != nil {
		return err
	}
	blob[key] = def
	return a.persist(blob)
}

// Save replaces the stored blob. Every key must be declared; values are
// converted to their declared kinds.
func (a *Accessor) Save(ctx context.Context, blob map[string]Value) error {
	out := make(map[string]Value, len(blob))
	for k, v := range blob {
		if _, ok := a.schema.Lookup(k); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKey, k)
		}
		c, err := a.schema.Coerce(k, v)
		if err != nil {
			return err
		}
		out[k] = c
	}
	return a.persist(out)
}

// load returns the cached blob, reading and merging it on first use.
// Filters run without the lock held so they may call back into Get.
func (a *Accessor) load(ctx context.Context) map[string]Value {
	a.mu.Lock()
	if a.loaded {
		cache := a.cache
		a.mu.Unlock()
		return cache
	}
	a.mu.Unlock()

	stored, err := a.stored()
	if err != nil {
		a.logger.Warn("loading theme settings", "field", a.field, "error", err)
		stored = map[string]Value{}
	}

	blob := a.Defaults(ctx)
	maps.Copy(blob, stored)

	if a.hooks != nil {
		out, err := a.hooks.ApplyFilters(ctx, a.hooks.FormatHook("options", ""), blob, a.field)
		if err != nil {
			a.logger.Warn("options filter failed", "error", err)
		} else {
			blob = a.toBlob(out, blob)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		a.cache = blob
		a.loaded = true
	}
	return a.cache
}

// stored reads and decodes the persisted blob without defaults.
func (a *Accessor) stored() (map[string]Value, error) {
	blob := map[string]Value{}
	if a.backend == nil {
		return blob, nil
	}

	raw, ok, err := a.backend.Option(a.field)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", a.field, err)
	}
	if !ok || raw == "" {
		return blob, nil
	}

	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", a.field, err)
	}
	for k, v := range blob {
		if c, err := a.schema.Coerce(k, v); err == nil {
			blob[k] = c
		}
	}
	return blob, nil
}

func (a *Accessor) persist(blob map[string]Value) error {
	if a.backend == nil {
		return fmt.Errorf("saving %s: no backend", a.field)
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", a.field, err)
	}
	if err := a.backend.UpdateOption(a.field, string(data)); err != nil {
		return fmt.Errorf("saving %s: %w", a.field, err)
	}
	a.Invalidate()
	a.logger.Debug("theme settings saved", "field", a.field, "keys", len(blob))
	return nil
}

// toBlob accepts a filter result as either map[string]Value or
// map[string]any. Anything else keeps fallback.
func (a *Accessor) toBlob(x any, fallback map[string]Value) map[string]Value {
	switch m := x.(type) {
	case map[string]Value:
		return m
	case map[string]any:
		out := make(map[string]Value, len(m))
		for k, v := range m {
			val := FromAny(v)
			if c, err := a.schema.Coerce(k, val); err == nil {
				val = c
			}
			out[k] = val
		}
		return out
	default:
		a.logger.Warn("settings filter returned unexpected type", "type", fmt.Sprintf("%T", x))
		return fallback
	}
}
