package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/rnwolfe/exmachina/internal/hook"
	"github.com/rnwolfe/exmachina/internal/request"
)

// api is the exmachina table a plugin script sees.
type api struct {
	m *Manager
	p *Plugin
}

func (a *api) install(L *lua.LState) {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"add_action":  a.addAction,
		"add_filter":  a.addFilter,
		"remove_hook": a.removeHook,
		"format_hook": a.formatHook,
		"prefix":      a.prefix,
		"tokens":      a.tokens,
		"get_option":  a.getOption,
		"log":         a.log,
	})
	mod.RawSetString("plugin", lua.LString(a.p.Name()))
	L.SetGlobal("exmachina", mod)
	L.SetGlobal("print", L.NewFunction(a.print))
}

// exmachina.add_action(hook, fn [, priority]) -> id
func (a *api) addAction(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	prio := L.OptInt(3, hook.DefaultPriority)

	h, err := a.m.hooks.AddAction(name, a.action(fn), a.opts(prio)...)
	if err != nil {
		L.RaiseError("add_action %q: %v", name, err)
		return 0
	}
	L.Push(lua.LString(h.ID()))
	return 1
}

// exmachina.add_filter(hook, fn [, priority]) -> id
func (a *api) addFilter(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	prio := L.OptInt(3, hook.DefaultPriority)

	h, err := a.m.hooks.AddFilter(name, a.filter(fn), a.opts(prio)...)
	if err != nil {
		L.RaiseError("add_filter %q: %v", name, err)
		return 0
	}
	L.Push(lua.LString(h.ID()))
	return 1
}

// exmachina.remove_hook(hook, id) -> bool
func (a *api) removeHook(L *lua.LState) int {
	err := a.m.hooks.Registry().Remove(L.CheckString(1), L.CheckString(2))
	L.Push(lua.LBool(err == nil))
	return 1
}

// exmachina.format_hook(tag [, context]) -> name
func (a *api) formatHook(L *lua.LState) int {
	L.Push(lua.LString(a.m.hooks.FormatHook(L.CheckString(1), L.OptString(2, ""))))
	return 1
}

func (a *api) prefix(L *lua.LState) int {
	L.Push(lua.LString(a.m.hooks.Prefix()))
	return 1
}

// exmachina.tokens() -> context tokens of the current request
func (a *api) tokens(L *lua.LState) int {
	t := L.NewTable()
	for _, tok := range request.TokensFrom(a.p.state.currentContext()) {
		t.Append(lua.LString(tok))
	}
	L.Push(t)
	return 1
}

// exmachina.get_option(key) -> value or nil
func (a *api) getOption(L *lua.LState) int {
	key := L.CheckString(1)
	if !a.p.Manifest.Permissions.Settings {
		L.RaiseError("get_option: %v: plugin %s lacks the settings permission", ErrPermission, a.p.Name())
		return 0
	}
	if a.m.settings == nil {
		L.Push(lua.LNil)
		return 1
	}
	ctx := a.p.state.currentContext()
	if _, ok := a.m.settings.All(ctx)[key]; !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(toLua(L, a.m.settings.Get(ctx, key)))
	return 1
}

// exmachina.log(msg, ...)
func (a *api) log(L *lua.LState) int {
	if !a.p.Manifest.Permissions.Log {
		L.RaiseError("log: %v: plugin %s lacks the log permission", ErrPermission, a.p.Name())
		return 0
	}
	a.m.logger.Info(joinArgs(L), "plugin", a.p.Name())
	return 0
}

// print is kept for script debugging and goes to the debug log.
func (a *api) print(L *lua.LState) int {
	a.m.logger.Debug(joinArgs(L), "plugin", a.p.Name())
	return 0
}

func joinArgs(L *lua.LState) string {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	return strings.Join(parts, " ")
}

func (a *api) opts(prio int) []hook.Option {
	return []hook.Option{
		hook.WithPriority(prio),
		hook.WithSource(a.p.Source()),
		hook.WithName(a.p.Name()),
	}
}

// action wraps a Lua function as a hook action. Writer arguments are not
// passed to Lua; a string the function returns is written to the first one.
func (a *api) action(fn *lua.LFunction) hook.ActionFunc {
	return func(ctx context.Context, args ...any) error {
		w, rest := splitWriter(args)
		out, err := a.p.state.call(ctx, fn, rest...)
		if errors.Is(err, ErrStateClosed) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("plugin %s: %w", a.p.Name(), err)
		}
		if w != nil && len(out) > 0 {
			if s, ok := out[0].(string); ok {
				_, err := io.WriteString(w, s)
				return err
			}
		}
		return nil
	}
}

// filter wraps a Lua function as a hook filter. Returning nothing (or nil)
// keeps the current value.
func (a *api) filter(fn *lua.LFunction) hook.FilterFunc {
	return func(ctx context.Context, value any, args ...any) (any, error) {
		_, rest := splitWriter(args)
		out, err := a.p.state.call(ctx, fn, append([]any{value}, rest...)...)
		if errors.Is(err, ErrStateClosed) {
			return value, nil
		}
		if err != nil {
			return value, fmt.Errorf("plugin %s: %w", a.p.Name(), err)
		}
		if len(out) == 0 || out[0] == nil {
			return value, nil
		}
		return out[0], nil
	}
}

func splitWriter(args []any) (io.Writer, []any) {
	var w io.Writer
	rest := make([]any, 0, len(args))
	for _, arg := range args {
		if aw, ok := arg.(io.Writer); ok {
			if w == nil {
				w = aw
			}
			continue
		}
		rest = append(rest, arg)
	}
	return w, rest
}
