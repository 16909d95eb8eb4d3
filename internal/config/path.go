package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigPath returns where relay looks for relay.json when no path is
// given: $XDG_CONFIG_HOME/relay, then the OS user config dir, then ./relay.json.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "relay", "relay.json")
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "relay", "relay.json")
	}
	return "./relay.json"
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
