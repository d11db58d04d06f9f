package pathlocator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aaviondb/aaviondb/internal/apperr"
)

// Locator resolves every path AavionDB reads or writes from a single
// configured storage root.
type Locator struct {
	root string
}

// New creates a Locator rooted at root and ensures the directory tree
// exists. root is made absolute if it isn't already.
func New(root string) (*Locator, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "filesystem_error", "resolve storage root", err)
	}
	l := &Locator{root: abs}
	for _, dir := range []string{
		l.UserBrainsDir(),
		l.BackupsDir(),
		l.ExportsDir(),
		l.LogsDir(),
		l.SystemModulesDir(),
		l.UserModulesDir(),
		l.CacheDir(),
	} {
		if err := l.Ensure(dir); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Ensure idempotently creates dir (and any missing parents).
func (l *Locator) Ensure(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrap(apperr.KindStorage, "filesystem_error", fmt.Sprintf("ensure directory %s", dir), err)
	}
	return nil
}

// Root returns the configured storage root.
func (l *Locator) Root() string { return l.root }

// SystemBrainPath is the single process-wide system brain file.
func (l *Locator) SystemBrainPath() string {
	return filepath.Join(l.root, "system.brain")
}

// UserBrainsDir holds one file per user brain.
func (l *Locator) UserBrainsDir() string {
	return filepath.Join(l.root, "brains")
}

// UserBrainPath resolves the file for a user brain by slug.
func (l *Locator) UserBrainPath(slug string) string {
	return filepath.Join(l.UserBrainsDir(), slug+".brain")
}

// BackupsDir is the backups directory under the storage root. New
// creates it; no code in this module writes backups into it.
func (l *Locator) BackupsDir() string {
	return filepath.Join(l.root, "backups")
}

// ExportsDir holds rendered export bundles.
func (l *Locator) ExportsDir() string {
	return filepath.Join(l.root, "exports")
}

// LogsDir is the logs directory under the storage root. New creates
// it; log output goes to the writer passed to log.Init (stdout by
// default), not to this directory.
func (l *Locator) LogsDir() string {
	return filepath.Join(l.root, "logs")
}

// CacheDir holds one JSON file per cache key.
func (l *Locator) CacheDir() string {
	return filepath.Join(l.root, "cache")
}

// SystemModulesDir holds system-scope module descriptors.
func (l *Locator) SystemModulesDir() string {
	return filepath.Join(l.root, "modules", "system")
}

// UserModulesDir holds user-scope module descriptors.
func (l *Locator) UserModulesDir() string {
	return filepath.Join(l.root, "modules", "user")
}
