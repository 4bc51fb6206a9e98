// Package hook is the contextual hook system for exmachina themes.
//
// Callbacks register against expanded hook names. DoAtomic and ApplyAtomic
// fire a base hook ("beta_header") followed by one contextual hook per
// request context token ("beta_singular_header",
// "beta_singular-post_header", "beta_singular-post-42_header"), each in
// priority order.
//
//	reg := hook.NewRegistry()
//	d := hook.New("beta", reg)
//
//	d.AddAction(d.FormatHook("header", "singular-post"), func(ctx context.Context, args ...any) error {
//		fmt.Fprint(args[0].(io.Writer), "<h1>post</h1>")
//		return nil
//	})
//
//	ctx = request.NewContext(ctx, request.NewScope(req))
//	d.DoAtomic(ctx, "header", w)
//
// Dispatch is synchronous. A callback error stops the fan-out and is
// returned to the caller; callbacks that already ran are not undone.
package hook

import (
	"context"
	"time"
)

// Kind distinguishes side-effect callbacks from value transforms.
type Kind string

const (
	KindAction Kind = "action" // side effects, value passes through untouched
	KindFilter Kind = "filter" // receives and returns the value
)

// Callback is the unified form every registered callback is stored as.
// value is the current filter value (nil for actions).
type Callback func(ctx context.Context, value any, args ...any) (any, error)

// ActionFunc is a side-effecting callback.
type ActionFunc func(ctx context.Context, args ...any) error

// FilterFunc transforms value and returns the result for the next callback.
type FilterFunc func(ctx context.Context, value any, args ...any) (any, error)

// DefaultPriority is the priority used when none is given.
const DefaultPriority = 10

// Entry is a read-only view of one registered callback.
type Entry struct {
	ID       string
	Hook     string // expanded hook name
	Name     string // human-readable label
	Source   string // "theme", "user", "plugin:<name>", ...
	Kind     Kind
	Priority int
}

// Option configures a callback registration.
type Option func(*entry)

// WithPriority sets the callback priority. Lower runs first.
func WithPriority(p int) Option {
	return func(e *entry) {
		e.priority = p
	}
}

// WithName labels the callback for listings.
func WithName(name string) Option {
	return func(e *entry) {
		e.name = name
	}
}

// WithSource records where the callback came from so it can be removed in bulk.
func WithSource(source string) Option {
	return func(e *entry) {
		e.source = source
	}
}

// Handle is returned by registration and removes exactly that callback.
type Handle struct {
	id     string
	unhook func() error
}

// ID returns the registered callback's identifier.
func (h *Handle) ID() string {
	return h.id
}

// Unhook removes the callback. A second call returns ErrAlreadyUnhooked.
func (h *Handle) Unhook() error {
	if h.unhook == nil {
		return ErrAlreadyUnhooked
	}
	err := h.unhook()
	h.unhook = nil
	return err
}

// DefaultFilterTimeout bounds external filter scripts.
const DefaultFilterTimeout = 5 * time.Second

// DefaultActionTimeout bounds external action scripts.
const DefaultActionTimeout = 30 * time.Second
