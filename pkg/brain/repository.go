package brain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/codec"
	"github.com/aaviondb/aaviondb/pkg/events"
	"github.com/aaviondb/aaviondb/pkg/log"
	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/aaviondb/aaviondb/pkg/pathlocator"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const systemCacheKey = "\x00system"

// Repository is the BrainRepository from spec.md §4.3: the exclusive
// owner of every brain file and its in-memory cache. Every mutation
// goes through writeBrain, which implements the atomic commit protocol
// (load → mutate a copy → canonicalize → lock → write tmp → fsync →
// verify → rename → emit).
type Repository struct {
	loc    *pathlocator.Locator
	bus    *events.Bus
	logger zerolog.Logger

	writeMu sync.Mutex // serializes writers across all brains (single-writer-per-process model, spec.md §5)

	cacheMu sync.RWMutex
	cache   map[string]*cacheEntry

	activeMu        sync.RWMutex
	activeUserBrain string
}

type cacheEntry struct {
	brain *model.Brain
	hash  string
}

// New constructs a Repository rooted at loc, fanning storage events out
// through bus.
func New(loc *pathlocator.Locator, bus *events.Bus) *Repository {
	return &Repository{
		loc:    loc,
		bus:    bus,
		logger: log.WithComponent("brain"),
		cache:  map[string]*cacheEntry{},
	}
}

func userCacheKey(slug string) string { return "user:" + slug }

func (r *Repository) pathFor(system bool, slug string) string {
	if system {
		return r.loc.SystemBrainPath()
	}
	return r.loc.UserBrainPath(slug)
}

// EnsureSystemBrain creates the system brain file if it doesn't exist.
func (r *Repository) EnsureSystemBrain() error {
	path := r.loc.SystemBrainPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	b := model.NewBrain("system", uuid.NewString(), time.Now().UTC(), true)
	return r.writeBrain(systemCacheKey, path, b)
}

// EnsureActiveBrain ensures at least one user brain exists and is
// selected active, creating a "default" brain on first run.
func (r *Repository) EnsureActiveBrain(defaultSlug string) error {
	if defaultSlug == "" {
		defaultSlug = "default"
	}
	path := r.loc.UserBrainPath(defaultSlug)
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return apperr.Wrap(apperr.KindStorage, "filesystem_error", "stat user brain", err)
		}
		b := model.NewBrain(defaultSlug, uuid.NewString(), time.Now().UTC(), false)
		if err := r.writeBrain(userCacheKey(defaultSlug), path, b); err != nil {
			return err
		}
	}
	return r.SetActiveBrain(defaultSlug)
}

// SetActiveBrain selects slug as the active user brain; user brains
// are mutually exclusive (spec.md §3).
func (r *Repository) SetActiveBrain(slug string) error {
	if !validSlug(slug) {
		return apperr.InvalidArgument("invalid_slug", "brain slug must match [a-z0-9._-]+")
	}
	path := r.loc.UserBrainPath(slug)
	if _, err := os.Stat(path); err != nil {
		return apperr.NotFound("not_found", "brain not found: "+slug)
	}
	r.activeMu.Lock()
	r.activeUserBrain = slug
	r.activeMu.Unlock()
	return nil
}

// ActiveBrain returns the currently selected user brain slug.
func (r *Repository) ActiveBrain() string {
	r.activeMu.RLock()
	defer r.activeMu.RUnlock()
	return r.activeUserBrain
}

// load returns the cached brain document for (system, slug), reading
// it from disk on first access.
func (r *Repository) load(system bool, slug string) (*model.Brain, error) {
	key := systemCacheKey
	if !system {
		key = userCacheKey(slug)
	}

	r.cacheMu.RLock()
	if ce, ok := r.cache[key]; ok {
		r.cacheMu.RUnlock()
		return ce.brain, nil
	}
	r.cacheMu.RUnlock()

	path := r.pathFor(system, slug)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("not_found", "brain not found: "+slug)
		}
		return nil, apperr.Wrap(apperr.KindStorage, "filesystem_error", "read brain file", err)
	}

	b, err := decodeBrain(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "invalid_payload", "parse brain file", err)
	}

	canon, err := codec.CanonicalFromJSON(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "invalid_payload", "canonicalize brain file", err)
	}

	r.cacheMu.Lock()
	r.cache[key] = &cacheEntry{brain: b, hash: codec.HashBytes(canon)}
	r.cacheMu.Unlock()
	return b, nil
}

// decodeBrain parses raw JSON into a *model.Brain preserving number
// precision throughout, including inside every entity payload, by
// configuring the decoder with UseNumber once for the whole document.
func decodeBrain(raw []byte) (*model.Brain, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var b model.Brain
	if err := dec.Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// mutate loads (system, slug), hands a deep copy to fn, and if fn
// succeeds, commits the result through the atomic write protocol. fn
// must not retain the pointer it receives beyond its own call.
func (r *Repository) mutate(system bool, slug string, fn func(*model.Brain) error) (*model.Brain, error) {
	current, err := r.load(system, slug)
	if err != nil {
		return nil, err
	}

	cp, err := deepCopyBrain(current)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "internal", "copy brain document", err)
	}

	if err := fn(cp); err != nil {
		return nil, err
	}

	key := systemCacheKey
	if !system {
		key = userCacheKey(slug)
	}
	path := r.pathFor(system, slug)
	if err := r.writeBrain(key, path, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func deepCopyBrain(b *model.Brain) (*model.Brain, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return decodeBrain(raw)
}

// writeBrain implements the atomic commit protocol of spec.md §4.3.
func (r *Repository) writeBrain(cacheKey, path string, b *model.Brain) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	raw, err := json.Marshal(b)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "internal", "marshal brain document", err)
	}
	canon, err := codec.CanonicalFromJSON(raw)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "internal", "canonicalize brain document", err)
	}
	expectedHash := codec.HashBytes(canon)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperr.Wrap(apperr.KindStorage, "filesystem_error", "ensure brain directory", err)
	}

	if err := r.attemptWrite(path, canon, expectedHash); err != nil {
		r.emitIntegrityFailed(path, err)
		// retry the tmp write once with the same canonical bytes; the
		// brain document is not reloaded or re-serialized for the retry
		if err := r.attemptWrite(path, canon, expectedHash); err != nil {
			return apperr.Wrap(apperr.KindStorage, "storage_error", "atomic brain write failed after retry", err)
		}
	}

	r.cacheMu.Lock()
	r.cache[cacheKey] = &cacheEntry{brain: b, hash: expectedHash}
	r.cacheMu.Unlock()

	if r.bus != nil {
		r.bus.Emit("storage.write_completed", map[string]interface{}{
			"path":      path,
			"hash":      expectedHash,
			"timestamp": time.Now().UTC(),
		})
	}
	return nil
}

func (r *Repository) emitIntegrityFailed(path string, cause error) {
	r.logger.Warn().Err(cause).Str("path", path).Msg("brain write integrity check failed, retrying")
	if r.bus != nil {
		r.bus.Emit("storage.integrity_failed", map[string]interface{}{
			"path":  path,
			"error": cause.Error(),
		})
	}
}

// attemptWrite performs one lock→write-tmp→fsync→verify→rename cycle.
func (r *Repository) attemptWrite(path string, canon []byte, expectedHash string) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open tmp file: %w", err)
	}
	fd := int(f.Fd())

	if err := syscall.Flock(fd, syscall.LOCK_EX); err != nil {
		f.Close()
		return fmt.Errorf("acquire lock: %w", err)
	}

	writeErr := func() error {
		if _, err := f.Write(canon); err != nil {
			return fmt.Errorf("write tmp file: %w", err)
		}
		if err := f.Sync(); err != nil {
			return fmt.Errorf("fsync tmp file: %w", err)
		}
		verify, err := os.ReadFile(tmp)
		if err != nil {
			return fmt.Errorf("re-read tmp file: %w", err)
		}
		if codec.HashBytes(verify) != expectedHash {
			return fmt.Errorf("hash mismatch after write")
		}
		return nil
	}()

	if writeErr == nil {
		if err := os.Rename(tmp, path); err != nil {
			writeErr = fmt.Errorf("rename tmp file: %w", err)
		}
	}

	syscall.Flock(fd, syscall.LOCK_UN)
	if err := f.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("close tmp file: %w", err)
	}
	return writeErr
}

func validSlug(slug string) bool {
	if slug == "" {
		return false
	}
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
