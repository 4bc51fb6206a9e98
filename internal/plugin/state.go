package plugin

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultCallTimeout bounds a single Lua callback.
const DefaultCallTimeout = 5 * time.Second

// state is one sandboxed interpreter. gopher-lua's LState is not
// goroutine-safe, so every entry point takes mu. Callbacks that re-enter
// the same state on the same dispatch (a filter that reads a setting whose
// filter lives in this plugin) are detected through the context and run
// under the lock already held.
type state struct {
	L       *lua.LState
	mu      sync.Mutex
	timeout time.Duration
	closed  bool
}

type heldKey struct{ s *state }

func newState(timeout time.Duration) *state {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	// io, os, debug and package stay closed.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	L.SetTop(0)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}

	return &state{L: L, timeout: timeout}
}

// doFile runs a script once, at load time.
func (s *state) doFile(ctx context.Context, path string) error {
	return s.with(ctx, func(context.Context) error {
		return s.L.DoFile(path)
	})
}

// call invokes fn with args converted for Lua and returns every value it
// returned, converted back. Conversion happens under the lock.
func (s *state) call(ctx context.Context, fn *lua.LFunction, args ...any) ([]any, error) {
	var results []any
	err := s.with(ctx, func(context.Context) error {
		top := s.L.GetTop()
		s.L.Push(fn)
		for _, a := range args {
			s.L.Push(toLua(s.L, a))
		}
		if err := s.L.PCall(len(args), lua.MultRet, nil); err != nil {
			s.L.SetTop(top)
			return err
		}
		n := s.L.GetTop() - top
		results = make([]any, n)
		for i := range n {
			results[i] = toGo(s.L.Get(top + i + 1))
		}
		s.L.SetTop(top)
		return nil
	})
	return results, err
}

func (s *state) with(ctx context.Context, fn func(context.Context) error) (err error) {
	nested := ctx.Value(heldKey{s}) != nil
	if !nested {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if s.closed {
		return ErrStateClosed
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	if nested {
		return fn(ctx)
	}

	ctx = context.WithValue(ctx, heldKey{s}, true)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	return fn(ctx)
}

// currentContext is the context of the call in progress, for API functions
// running inside Lua.
func (s *state) currentContext() context.Context {
	if ctx := s.L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (s *state) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}
