package config

import (
	"fmt"
	"sort"
	"strings"
)

// KeyType represents the data type of a config key.
type KeyType string

const (
	KeyTypeString KeyType = "string"
	KeyTypeBool   KeyType = "bool"
)

// KeyEntry describes a known, settable config key.
type KeyEntry struct {
	// Type is the value's data type.
	Type KeyType
	// Desc is a human-readable description shown in `exmachina config list`.
	Desc string
	// DefaultStr is the string representation of the default value.
	DefaultStr string

	get   func(*Config) string
	set   func(cfg *Config, value string) error
	unset func(cfg *Config)
}

// Get returns the current value of the key as a string.
func (e *KeyEntry) Get(cfg *Config) string { return e.get(cfg) }

// Set validates and sets the value, returning a descriptive error on type mismatch.
func (e *KeyEntry) Set(cfg *Config, value string) error { return e.set(cfg, value) }

// Unset resets the key to its schema default.
func (e *KeyEntry) Unset(cfg *Config) { e.unset(cfg) }

// stringKey builds a KeyEntry for a plain string field.
func stringKey(desc string, field func(*Config) *string) *KeyEntry {
	def := *field(defaultConfig())
	return &KeyEntry{
		Type:       KeyTypeString,
		Desc:       desc,
		DefaultStr: def,
		get:        func(cfg *Config) string { return *field(cfg) },
		set:        func(cfg *Config, v string) error { *field(cfg) = v; return nil },
		unset:      func(cfg *Config) { *field(cfg) = def },
	}
}

// boolKey builds a KeyEntry for an optional bool field.
func boolKey(name, desc string, field func(*Config) **bool) *KeyEntry {
	return &KeyEntry{
		Type:       KeyTypeBool,
		Desc:       desc,
		DefaultStr: "false",
		get: func(cfg *Config) string {
			p := *field(cfg)
			return fmt.Sprintf("%t", p != nil && *p)
		},
		set: func(cfg *Config, v string) error {
			b, err := ParseBoolValue(v)
			if err != nil {
				return fmt.Errorf("invalid value %q for %s: %w", v, name, err)
			}
			*field(cfg) = BoolPtr(b)
			return nil
		},
		unset: func(cfg *Config) { *field(cfg) = BoolPtr(false) },
	}
}

// SchemaKeys is the authoritative registry of all settable config keys.
// Keys use dot-notation matching the TOML section structure.
var SchemaKeys = map[string]*KeyEntry{
	"theme.slug": stringKey("Theme slug, used as the hook prefix",
		func(c *Config) *string { return &c.Theme.Slug }),
	"theme.name": stringKey("Theme display name",
		func(c *Config) *string { return &c.Theme.Name }),
	"theme.version": stringKey("Theme version",
		func(c *Config) *string { return &c.Theme.Version }),
	"theme.child_name": stringKey("Child theme name (empty when no child theme is active)",
		func(c *Config) *string { return &c.Theme.ChildName }),
	"theme.child_url": stringKey("Child theme URL",
		func(c *Config) *string { return &c.Theme.ChildURL }),
	"theme.theme_url": stringKey("Parent theme URL",
		func(c *Config) *string { return &c.Theme.ThemeURL }),
	"theme.home_url": stringKey("Site home URL",
		func(c *Config) *string { return &c.Theme.HomeURL }),
	"theme.site_name": stringKey("Site title",
		func(c *Config) *string { return &c.Theme.SiteName }),
	"theme.site_description": stringKey("Site tagline",
		func(c *Config) *string { return &c.Theme.SiteDescription }),
	"settings.field": stringKey("Options row holding the settings blob (default {slug}_theme_settings)",
		func(c *Config) *string { return &c.Settings.Field }),
	"log.level": {
		Type:       KeyTypeString,
		Desc:       "Log level (debug, info, warn, error)",
		DefaultStr: "warn",
		get:        func(cfg *Config) string { return cfg.Log.Level },
		set: func(cfg *Config, v string) error {
			if _, err := ParseLevel(v); err != nil {
				return err
			}
			cfg.Log.Level = strings.ToLower(v)
			return nil
		},
		unset: func(cfg *Config) { cfg.Log.Level = "warn" },
	},
	"log.file": boolKey("log.file", "Write JSON logs to the state directory",
		func(c *Config) **bool { return &c.Log.File }),
	"log.journal": boolKey("log.journal", "Send logs to the systemd journal",
		func(c *Config) **bool { return &c.Log.Journal }),
}

// ValidKeyNames returns the sorted list of all known config key names.
func ValidKeyNames() []string {
	names := make([]string, 0, len(SchemaKeys))
	for k := range SchemaKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LookupKey returns the KeyEntry for a known config key.
func LookupKey(key string) (*KeyEntry, bool) {
	entry, ok := SchemaKeys[key]
	return entry, ok
}

// ParseBoolValue accepts common boolean string representations.
// Valid truthy values: true, 1, yes, on.
// Valid falsy values: false, 0, no, off.
func ParseBoolValue(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q (use one of: true/false, 1/0, yes/no, on/off)", s)
	}
}

// ParseLevel validates a log level name.
func ParseLevel(s string) (string, error) {
	switch l := strings.ToLower(strings.TrimSpace(s)); l {
	case "debug", "info", "warn", "error":
		return l, nil
	default:
		return "", fmt.Errorf("invalid log level %q (use debug, info, warn, error)", s)
	}
}
