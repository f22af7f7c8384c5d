// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DataDir is the per-project directory holding the database and config.
	DataDir = ".finder"
	// DBFile is the database file name inside DataDir.
	DBFile = "finder.db"
)

// ResolveDBPath resolves the SQLite file from user input, which may name the
// file itself, a data directory or a project directory.
//
// Input normalization:
//   - "" -> ".finder/finder.db"
//   - "/path/to/children.db" -> "/path/to/children.db"
//   - "/path/to/project/.finder" -> "/path/to/project/.finder/finder.db"
//   - "/path/to/data" (containing finder.db) -> "/path/to/data/finder.db"
//   - "/path/to/project" -> "/path/to/project/.finder/finder.db"
//
// A data directory holding a redirect file is followed to the directory it
// names, so git worktrees can share the main worktree's database.
func ResolveDBPath(path string) string {
	if path == "" {
		path = "."
	}
	path = filepath.Clean(path)

	if filepath.Ext(path) == ".db" || isFile(path) {
		return path
	}

	if filepath.Base(path) == DataDir || isFile(filepath.Join(path, DBFile)) {
		return filepath.Join(followRedirect(path), DBFile)
	}

	return filepath.Join(followRedirect(filepath.Join(path, DataDir)), DBFile)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// followRedirect returns the directory named by dataDir/redirect, relative
// to dataDir, or dataDir itself when there is no redirect.
func followRedirect(dataDir string) string {
	content, err := os.ReadFile(filepath.Join(dataDir, "redirect")) //nolint:gosec // redirect path is within the data dir
	if err != nil {
		return dataDir
	}

	target := strings.TrimSpace(string(content))
	if target == "" {
		return dataDir
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(dataDir, target))
}
