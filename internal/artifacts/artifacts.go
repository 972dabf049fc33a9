// Package artifacts manages the on-disk home of diagnostic run
// artifacts, currently the compressed kernel log snapshots taken when
// an OOM kill is detected.
package artifacts

import (
	"os"
	"path/filepath"
	"sort"
)

const appName = "stresser"

// Dir resolves the artifact directory following the XDG base directory
// spec (XDG_STATE_HOME, falling back to ~/.local/state) and creates it
// on first use.
func Dir() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		base = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Prune deletes the oldest artifacts matching pattern in dir, keeping
// the keep most recent ones. Best effort: the first removal error is
// returned but earlier removals stand.
func Prune(dir, pattern string, keep int) error {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return err
	}
	if len(matches) <= keep {
		return nil
	}

	type aged struct {
		path string
		mod  int64
	}
	files := make([]aged, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		files = append(files, aged{path: m, mod: info.ModTime().UnixNano()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod < files[j].mod })

	if keep < 0 {
		keep = 0
	}
	for _, f := range files[:max(0, len(files)-keep)] {
		if err := os.Remove(f.path); err != nil {
			return err
		}
	}
	return nil
}
