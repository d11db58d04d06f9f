package module

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aaviondb/aaviondb/internal/apperr"
)

// Scope distinguishes the two directory roots a Descriptor can be
// discovered under; system modules receive a broader default
// capability set than user modules (spec.md §4.6).
type Scope string

const (
	ScopeSystem Scope = "system"
	ScopeUser   Scope = "user"
)

// Descriptor is one module manifest discovered on disk.
type Descriptor struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Autoload     bool     `json:"autoload"`
	Requires     []string `json:"requires"`
	Capabilities []string `json:"capabilities"`
	Scope        Scope    `json:"-"`
	Dir          string   `json:"-"`
}

// Scan walks systemDir and userDir, reading a manifest.json from each
// immediate subdirectory, and returns every descriptor found, sorted
// by name for deterministic iteration.
func Scan(systemDir, userDir string) ([]*Descriptor, error) {
	var out []*Descriptor

	for _, root := range []struct {
		dir   string
		scope Scope
	}{{systemDir, ScopeSystem}, {userDir, ScopeUser}} {
		descs, err := scanRoot(root.dir, root.scope)
		if err != nil {
			return nil, err
		}
		out = append(out, descs...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func scanRoot(dir string, scope Scope) ([]*Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindStorage, "filesystem_error", "scan module directory", err)
	}

	var out []*Descriptor
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		manifestPath := filepath.Join(dir, ent.Name(), "manifest.json")
		raw, err := os.ReadFile(manifestPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, apperr.Wrap(apperr.KindStorage, "filesystem_error", "read module manifest", err)
		}
		var d Descriptor
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, apperr.Wrap(apperr.KindInvalidArgument, "invalid_manifest", "parse module manifest: "+manifestPath, err)
		}
		d.Scope = scope
		d.Dir = filepath.Join(dir, ent.Name())
		out = append(out, &d)
	}
	return out, nil
}

// ParseRequirement splits a "slug[@version]" dependency reference.
func ParseRequirement(req string) (slug, version string) {
	if idx := strings.IndexByte(req, '@'); idx >= 0 {
		return req[:idx], req[idx+1:]
	}
	return req, ""
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s@%s", d.Name, d.Version)
}
