package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// AppName names the XDG subdirectories and the CLI binary.
const AppName = "exmachina"

// Config holds the top-level exmachina configuration.
type Config struct {
	Theme    ThemeConfig    `toml:"theme"`
	Settings SettingsConfig `toml:"settings"`
	Log      LogConfig      `toml:"log"`
}

// ThemeConfig describes the active theme. Slug doubles as the hook prefix.
type ThemeConfig struct {
	Slug            string `toml:"slug"`
	Name            string `toml:"name"`
	Version         string `toml:"version"`
	ChildName       string `toml:"child_name"`
	ChildURL        string `toml:"child_url"`
	ThemeURL        string `toml:"theme_url"`
	HomeURL         string `toml:"home_url"`
	SiteName        string `toml:"site_name"`
	SiteDescription string `toml:"site_description"`
}

// IsChildTheme reports whether a child theme is active on top of the parent.
func (t ThemeConfig) IsChildTheme() bool {
	return t.ChildName != ""
}

// SettingsConfig controls where the settings blob is persisted.
type SettingsConfig struct {
	// Field overrides the options row name. Empty means "{slug}_theme_settings".
	Field string `toml:"field"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	// File enables a JSON log file in the state dir when true.
	File *bool `toml:"file,omitempty"`
	// Journal enables the systemd journal handler when true.
	Journal *bool `toml:"journal,omitempty"`
}

// FileEnabled returns whether JSON file logging is on. Defaults to false.
func (l LogConfig) FileEnabled() bool {
	return l.File != nil && *l.File
}

// JournalEnabled returns whether journal logging is on. Defaults to false.
func (l LogConfig) JournalEnabled() bool {
	return l.Journal != nil && *l.Journal
}

// Paths returns standard XDG-compliant paths.
type Paths struct {
	ConfigDir  string
	DataDir    string
	CacheDir   string
	StateDir   string
	ConfigFile string
	DBFile     string
	HooksDir   string
	PluginsDir string
	LogFile    string
}

// GetPaths returns the resolved paths, respecting XDG env vars.
func GetPaths() Paths {
	home, _ := os.UserHomeDir()

	configDir := envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	dataDir := envOr("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	cacheDir := envOr("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	stateDir := envOr("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	appConfig := filepath.Join(configDir, AppName)
	appData := filepath.Join(dataDir, AppName)
	appState := filepath.Join(stateDir, AppName)

	return Paths{
		ConfigDir:  appConfig,
		DataDir:    appData,
		CacheDir:   filepath.Join(cacheDir, AppName),
		StateDir:   appState,
		ConfigFile: filepath.Join(appConfig, "config.toml"),
		DBFile:     filepath.Join(appData, AppName+".db"),
		HooksDir:   filepath.Join(appConfig, "hooks"),
		PluginsDir: filepath.Join(appConfig, "plugins"),
		LogFile:    filepath.Join(appState, AppName+".log"),
	}
}

// EnsureDirs creates all required directories.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.ConfigDir, p.DataDir, p.CacheDir, p.StateDir}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Load reads config from disk, returning defaults if not found.
// Keys missing from the file keep their default values.
func Load() (*Config, error) {
	paths := GetPaths()
	cfg := defaultConfig()

	data, err := os.ReadFile(paths.ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to disk.
func Save(cfg *Config) error {
	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	f, err := os.Create(paths.ConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Initialized returns true if a config file has been written.
func Initialized() bool {
	paths := GetPaths()
	_, err := os.Stat(paths.ConfigFile)
	return err == nil
}

// SettingsField returns the options row name holding the settings blob.
func (c *Config) SettingsField() string {
	if c.Settings.Field != "" {
		return c.Settings.Field
	}
	return c.Theme.Slug + "_theme_settings"
}

// BoolPtr returns a pointer to a bool value.
func BoolPtr(v bool) *bool {
	return &v
}

// DefaultSlug is the parent theme slug used when none is configured.
const DefaultSlug = "beta"

func defaultConfig() *Config {
	return &Config{
		Theme: ThemeConfig{
			Slug:     DefaultSlug,
			Name:     "Beta",
			Version:  "1.0.0",
			ThemeURL: "http://themeexmachina.com",
			HomeURL:  "http://localhost",
			SiteName: "My Site",
		},
		Log: LogConfig{
			Level:   "warn",
			File:    BoolPtr(false),
			Journal: BoolPtr(false),
		},
	}
}

// Default returns a fresh copy of the default configuration.
func Default() *Config {
	return defaultConfig()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
