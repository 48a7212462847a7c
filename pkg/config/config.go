// Package config handles loading hv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/hv/config.yaml
//   - State:  ~/.local/state/hv/ (per-file view state)
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UIConfig holds UI preference settings.
type UIConfig struct {
	SplitRatio float64 `yaml:"split_ratio,omitempty"` // Tree pane share of width (0.2-0.8)
	ShowDetail *bool   `yaml:"show_detail,omitempty"` // Detail pane visible at startup
}

// Config is the top-level configuration for hv. Keys maps an action name to
// the list of keys bound to it; actions absent from the map keep their
// defaults. Action names are listed in pkg/ui keymap documentation.
type Config struct {
	UI   UIConfig            `yaml:"ui,omitempty"`
	Keys map[string][]string `yaml:"keys,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	show := true
	return Config{
		UI: UIConfig{
			SplitRatio: 0.45,
			ShowDetail: &show,
		},
		Keys: make(map[string][]string),
	}
}

// ConfigDir returns the XDG config directory for hv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "hv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hv")
}

// StateDir returns the XDG state directory for hv.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "hv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "hv")
}

// ConfigPath returns the path of the config file.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file. A missing file yields defaults; a malformed
// file is an error, since silently ignoring user configuration is worse than
// refusing to start.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize clamps out-of-range values back to defaults.
func (c *Config) normalize() {
	if c.UI.SplitRatio < 0.2 || c.UI.SplitRatio > 0.8 {
		c.UI.SplitRatio = 0.45
	}
	if c.UI.ShowDetail == nil {
		show := true
		c.UI.ShowDetail = &show
	}
	if c.Keys == nil {
		c.Keys = make(map[string][]string)
	}
}

// KeysFor returns the configured keys for an action, or the given defaults.
func (c Config) KeysFor(action string, defaults ...string) []string {
	if keys, ok := c.Keys[action]; ok && len(keys) > 0 {
		return keys
	}
	return defaults
}
