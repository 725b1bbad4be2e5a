// Package filesystem resolves the per-user paths unlp writes to.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// StateDirName is the directory under $HOME holding config, logs and traces.
const StateDirName = ".unlp"

// UserHomeDir returns the home directory, or "." when it cannot be determined.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// StatePath joins name onto ~/.unlp.
func StatePath(name string) string {
	return filepath.Join(UserHomeDir(), StateDirName, name)
}

// ExpandHome resolves a leading "~/" and cleans the result. Empty stays empty.
func ExpandHome(path string) string {
	switch {
	case path == "":
		return ""
	case path == "~":
		return UserHomeDir()
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(path), perm)
}
