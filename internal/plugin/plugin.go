package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rnwolfe/exmachina/internal/hook"
	"github.com/rnwolfe/exmachina/internal/settings"
)

// Plugin is a loaded Lua plugin.
type Plugin struct {
	Manifest *Manifest
	Path     string // entrypoint script
	Dir      string // plugin directory, empty for single-file plugins

	state *state
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return p.Manifest.Plugin.Name
}

// Source is the hook source every callback from this plugin is tagged with.
func (p *Plugin) Source() string {
	return "plugin:" + p.Name()
}

// Manager loads plugins and owns their interpreters.
type Manager struct {
	hooks    *hook.Dispatcher
	settings *settings.Accessor
	logger   *slog.Logger
	timeout  time.Duration

	mu      sync.Mutex
	plugins map[string]*Plugin
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger scripts write to.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithTimeout bounds each Lua callback. Default DefaultCallTimeout.
func WithTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.timeout = d
	}
}

// NewManager creates a manager registering into d. s may be nil, in which
// case exmachina.get_option always returns nil.
func NewManager(d *hook.Dispatcher, s *settings.Accessor, opts ...ManagerOption) *Manager {
	m := &Manager{
		hooks:    d,
		settings: s,
		logger:   slog.Default(),
		timeout:  DefaultCallTimeout,
		plugins:  make(map[string]*Plugin),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadDir loads every plugin in dir: each *.lua file and each
// subdirectory holding a manifest. A missing dir is not an error. Plugins
// that fail are skipped and their errors joined.
func (m *Manager) LoadDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading plugins dir: %w", err)
	}

	var errs []error
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		switch {
		case e.IsDir():
			if _, err := os.Stat(filepath.Join(path, ManifestFile)); err != nil {
				continue
			}
		case strings.HasSuffix(e.Name(), ".lua"):
		default:
			continue
		}
		if _, err := m.Load(ctx, path); err != nil {
			m.logger.Warn("plugin failed to load", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load loads one plugin from a .lua file or a plugin directory and runs
// its entrypoint. If the script fails, any hooks it registered are removed.
func (m *Manager) Load(ctx context.Context, path string) (*Plugin, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("loading plugin: %w", err)
	}

	p := &Plugin{}
	if info.IsDir() {
		p.Manifest, err = ParseManifest(filepath.Join(path, ManifestFile))
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", filepath.Base(path), err)
		}
		p.Dir = path
		p.Path = filepath.Join(path, p.Manifest.Entrypoint())
	} else {
		p.Manifest, err = singleFileManifest(path)
		if err != nil {
			return nil, err
		}
		p.Path = path
	}

	m.mu.Lock()
	if _, ok := m.plugins[p.Name()]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("plugin %s: %w", p.Name(), ErrPluginExists)
	}
	m.plugins[p.Name()] = p
	m.mu.Unlock()

	p.state = newState(m.timeout)
	(&api{m: m, p: p}).install(p.state.L)

	if err := p.state.doFile(ctx, p.Path); err != nil {
		m.discard(p)
		return nil, fmt.Errorf("plugin %s: %w", p.Name(), err)
	}

	m.logger.Debug("plugin loaded", "plugin", p.Name(), "path", p.Path,
		"hooks", len(m.hooksOf(p)))
	return p, nil
}

// Get returns a loaded plugin by name.
func (m *Manager) Get(name string) (*Plugin, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plugins[name]
	return p, ok
}

// List returns loaded plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Plugin, 0, len(m.plugins))
	for _, p := range m.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Hooks returns the callbacks the plugin has registered.
func (m *Manager) Hooks(name string) []hook.Entry {
	p, ok := m.Get(name)
	if !ok {
		return nil
	}
	return m.hooksOf(p)
}

func (m *Manager) hooksOf(p *Plugin) []hook.Entry {
	var out []hook.Entry
	for _, e := range m.hooks.Registry().Entries() {
		if e.Source == p.Source() {
			out = append(out, e)
		}
	}
	return out
}

// Unload removes the plugin's hooks and closes its interpreter.
func (m *Manager) Unload(name string) error {
	p, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrPluginNotFound)
	}
	m.discard(p)
	m.logger.Debug("plugin unloaded", "plugin", name)
	return nil
}

// Close unloads every plugin.
func (m *Manager) Close() error {
	for _, p := range m.List() {
		m.discard(p)
	}
	return nil
}

func (m *Manager) discard(p *Plugin) {
	m.hooks.Registry().RemoveSource(p.Source())
	if p.state != nil {
		p.state.close()
	}
	m.mu.Lock()
	delete(m.plugins, p.Name())
	m.mu.Unlock()
}
