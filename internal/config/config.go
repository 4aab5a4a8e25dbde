package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultCatalogPath = "~/Zotero/zotero.sqlite"
	DefaultLogLevel    = "info"
)

// CatalogPath returns the catalog database path from COLLJUMP_CATALOG,
// falling back to DefaultCatalogPath.
func CatalogPath() string {
	if env := os.Getenv("COLLJUMP_CATALOG"); env != "" {
		return env
	}
	return DefaultCatalogPath
}

// PrefsPath returns the preference file path from COLLJUMP_PREFS, falling
// back to $XDG_CONFIG_HOME/colljump/prefs.toml.
func PrefsPath() string {
	if env := os.Getenv("COLLJUMP_PREFS"); env != "" {
		return env
	}
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "colljump", "prefs.toml")
}

// LogPath returns the log file used by the TUI from COLLJUMP_LOG, falling
// back to $XDG_STATE_HOME/colljump/colljump.log.
func LogPath() string {
	if env := os.Getenv("COLLJUMP_LOG"); env != "" {
		return env
	}
	return filepath.Join(xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state")), "colljump", "colljump.log")
}

// LogLevel returns the level name from COLLJUMP_LOG_LEVEL, falling back to
// DefaultLogLevel.
func LogLevel() string {
	if env := os.Getenv("COLLJUMP_LOG_LEVEL"); env != "" {
		return env
	}
	return DefaultLogLevel
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, fallback)
}
