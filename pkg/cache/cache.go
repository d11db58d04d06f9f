package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aaviondb/aaviondb/internal/apperr"
)

// entry is the on-disk shape of one cache key (spec.md §4.7).
type entry struct {
	Value     interface{} `json:"value"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
}

// Cache is a file-backed key/value store consulted but never required
// by callers; when Disabled it behaves as a null store.
type Cache struct {
	dir      string
	mu       sync.Mutex
	Disabled bool
}

// New constructs a Cache rooted at dir.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key)+".json")
}

func sanitizeKey(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		b := key[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '-' || b == '_' || b == '.':
			out = append(out, b)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// Get reads key, returning def if the key is absent, expired, or the
// cache is disabled. Expired entries are deleted as a side effect
// (lazy TTL enforcement, spec.md §4.7).
func (c *Cache) Get(key string, def interface{}) interface{} {
	if c.Disabled {
		return def
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return def
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return def
	}
	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		os.Remove(c.path(key))
		return def
	}
	return e.Value
}

// Put stores value under key with an optional ttl (zero means no
// expiry) and tags for selective flush.
func (c *Cache) Put(key string, value interface{}, ttl time.Duration, tags []string) error {
	if c.Disabled {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{Value: value, Tags: tags}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		e.ExpiresAt = &exp
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "internal", "marshal cache entry", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return apperr.Wrap(apperr.KindStorage, "filesystem_error", "ensure cache directory", err)
	}

	target := c.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return apperr.Wrap(apperr.KindStorage, "filesystem_error", "write cache entry", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return apperr.Wrap(apperr.KindStorage, "filesystem_error", "rename cache entry", err)
	}
	return nil
}

// Forget removes key unconditionally.
func (c *Cache) Forget(key string) error {
	if c.Disabled {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return apperr.Wrap(apperr.KindStorage, "filesystem_error", "remove cache entry", err)
	}
	return nil
}

// Flush removes every entry carrying any of tags. With no tags it
// clears the entire cache.
func (c *Cache) Flush(tags ...string) error {
	if c.Disabled {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	files, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperr.Wrap(apperr.KindStorage, "filesystem_error", "list cache directory", err)
	}

	wanted := toSet(tags)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		full := filepath.Join(c.dir, f.Name())
		if len(wanted) == 0 {
			os.Remove(full)
			continue
		}
		raw, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		for _, t := range e.Tags {
			if wanted[t] {
				os.Remove(full)
				break
			}
		}
	}
	return nil
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}
