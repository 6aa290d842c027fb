// Package config resolves filesystem locations for taxora: operator-supplied
// paths with shell-style shortcuts, plus the default config and data
// directories.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading ~ and any $VAR references in an
// operator-supplied path. Paths that need neither are returned unchanged; if
// the home directory cannot be determined the ~ is left as-is.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}

// DefaultConfigDir is where taxora looks for its config file when no explicit
// --config flag is given.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "taxora")
}

// DefaultDatabasePath is the SQLite location used when database.path is not
// configured.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "taxora.db"
	}
	return filepath.Join(home, ".local", "share", "taxora", "taxora.db")
}
