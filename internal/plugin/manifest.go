// Package plugin loads Lua plugins that register theme hooks, the way a
// WordPress plugin calls add_action and add_filter.
//
// A plugin is either a single file, plugins/<name>.lua, or a directory,
// plugins/<name>/, holding an exmachina-plugin.toml manifest and its
// entrypoint script (init.lua by default).
package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/rnwolfe/exmachina/internal/config"
)

// ManifestFile is the manifest name inside a plugin directory.
const ManifestFile = "exmachina-plugin.toml"

// DefaultEntrypoint is the script run when the manifest names none.
const DefaultEntrypoint = "init.lua"

// validPluginName allows lowercase words separated by hyphens or underscores.
var validPluginName = regexp.MustCompile(`^[a-z][a-z0-9]*([-_][a-z0-9]+)*$`)

// Manifest represents a parsed exmachina-plugin.toml file.
type Manifest struct {
	Plugin      PluginMeta  `toml:"plugin"`
	Permissions Permissions `toml:"permissions"`
}

// PluginMeta holds plugin identification.
type PluginMeta struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
	Author      string `toml:"author"`
	Entrypoint  string `toml:"entrypoint"`
}

// PluginsDir returns the directory plugins are loaded from.
func PluginsDir() string {
	return config.GetPaths().PluginsDir
}

// ParseManifest reads and validates a manifest file.
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	return &m, nil
}

// Validate checks that required manifest fields are present.
func (m *Manifest) Validate() error {
	if m.Plugin.Name == "" {
		return fmt.Errorf("plugin.name is required")
	}
	if !validPluginName.MatchString(m.Plugin.Name) {
		return fmt.Errorf("plugin.name %q must be lowercase letters and digits separated by - or _", m.Plugin.Name)
	}
	if m.Plugin.Version == "" {
		return fmt.Errorf("plugin.version is required")
	}
	if ep := m.Plugin.Entrypoint; ep != "" {
		if filepath.IsAbs(ep) || strings.Contains(ep, "..") {
			return fmt.Errorf("plugin.entrypoint %q must be a relative path inside the plugin", ep)
		}
		if filepath.Ext(ep) != ".lua" {
			return fmt.Errorf("plugin.entrypoint %q must be a .lua file", ep)
		}
	}
	return nil
}

// Entrypoint returns the script name for this plugin.
func (m *Manifest) Entrypoint() string {
	if m.Plugin.Entrypoint != "" {
		return m.Plugin.Entrypoint
	}
	return DefaultEntrypoint
}

// singleFileManifest describes a bare <name>.lua plugin. Single-file
// plugins get no extra permissions.
func singleFileManifest(path string) (*Manifest, error) {
	name := strings.TrimSuffix(filepath.Base(path), ".lua")
	m := &Manifest{Plugin: PluginMeta{
		Name:       name,
		Version:    "0.0.0",
		Entrypoint: filepath.Base(path),
	}}
	if !validPluginName.MatchString(name) {
		return nil, fmt.Errorf("plugin file %q: name must be lowercase letters and digits separated by - or _", filepath.Base(path))
	}
	return m, nil
}
