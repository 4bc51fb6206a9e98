package hook

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Resource limits enforced during registration.
const (
	maxCallbacksPerHook = 100
	maxTotalCallbacks   = 10000
)

type entry struct {
	id       string
	hook     string
	name     string
	source   string
	kind     Kind
	priority int
	seq      uint64
	cb       Callback
}

func (e entry) view() Entry {
	return Entry{
		ID:       e.id,
		Hook:     e.hook,
		Name:     e.name,
		Source:   e.source,
		Kind:     e.kind,
		Priority: e.priority,
	}
}

// Registry maps expanded hook names to callbacks ordered by
// (priority, registration order).
type Registry struct {
	mu    sync.RWMutex
	hooks map[string][]entry
	seq   uint64
	total int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string][]entry)}
}

// Add registers cb under the expanded hook name.
func (r *Registry) Add(hookName string, kind Kind, cb Callback, opts ...Option) (Handle, error) {
	if hookName == "" {
		return Handle{}, ErrEmptyHookName
	}
	if cb == nil {
		return Handle{}, ErrNilCallback
	}

	e := entry{
		id:       uuid.New().String(),
		hook:     hookName,
		kind:     kind,
		priority: DefaultPriority,
		cb:       cb,
	}
	for _, opt := range opts {
		opt(&e)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hooks == nil {
		r.hooks = make(map[string][]entry)
	}
	if len(r.hooks[hookName]) >= maxCallbacksPerHook || r.total >= maxTotalCallbacks {
		return Handle{}, ErrTooManyHooks
	}

	r.seq++
	e.seq = r.seq

	// Insert after every entry with priority <= e.priority so ties keep
	// registration order.
	list := r.hooks[hookName]
	i := sort.Search(len(list), func(i int) bool { return list[i].priority > e.priority })
	list = append(list, entry{})
	copy(list[i+1:], list[i:])
	list[i] = e
	r.hooks[hookName] = list
	r.total++

	id := e.id
	return Handle{
		id: id,
		unhook: func() error {
			return r.Remove(hookName, id)
		},
	}, nil
}

// Remove deletes one callback by id.
func (r *Registry) Remove(hookName, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.hooks[hookName]
	for i, e := range list {
		if e.id != id {
			continue
		}
		r.hooks[hookName] = append(list[:i:i], list[i+1:]...)
		if len(r.hooks[hookName]) == 0 {
			delete(r.hooks, hookName)
		}
		r.total--
		return nil
	}
	return ErrHookNotFound
}

// RemoveSource deletes every callback registered with the given source and
// returns how many were removed.
func (r *Registry) RemoveSource(source string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for name, list := range r.hooks {
		kept := list[:0]
		for _, e := range list {
			if e.source == source {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(r.hooks, name)
		} else {
			r.hooks[name] = kept
		}
	}
	r.total -= removed
	return removed
}

// Clear removes all callbacks for one hook name.
func (r *Registry) Clear(hookName string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.hooks[hookName])
	r.total -= n
	delete(r.hooks, hookName)
	return n
}

// callbacks returns a snapshot of the ordered callbacks for hookName.
// Dispatch iterates the snapshot so callbacks may register or remove hooks.
func (r *Registry) callbacks(hookName string) []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.hooks[hookName]
	if len(list) == 0 {
		return nil
	}
	out := make([]entry, len(list))
	copy(out, list)
	return out
}

// Callbacks returns the ordered callbacks registered under hookName.
func (r *Registry) Callbacks(hookName string) []Entry {
	list := r.callbacks(hookName)
	out := make([]Entry, len(list))
	for i, e := range list {
		out[i] = e.view()
	}
	return out
}

// Has reports whether any callback is registered under hookName.
func (r *Registry) Has(hookName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[hookName]) > 0
}

// Count returns the total number of registered callbacks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Names returns every hook name with at least one callback, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.hooks))
	for n := range r.hooks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entries returns every registered callback grouped by sorted hook name.
func (r *Registry) Entries() []Entry {
	var out []Entry
	for _, name := range r.Names() {
		out = append(out, r.Callbacks(name)...)
	}
	return out
}
