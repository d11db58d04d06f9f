package security

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/cache"
	"github.com/aaviondb/aaviondb/pkg/log"
)

const configPrefix = "security."

// settings is the resolved security.* config for one preflight/attempt
// cycle; zero values fall back to defaults chosen to be permissive
// (rate limiting only engages once an operator sets these explicitly).
type settings struct {
	active        bool
	rateLimit     int
	globalLimit   int
	blockDuration time.Duration
	ddosLockdown  time.Duration
	failedLimit   int
	failedBlock   time.Duration
}

// Manager enforces rate limiting, failure tracking, and lockdown for
// every inbound request, per spec.md §4.8.
type Manager struct {
	repo  *brain.Repository
	cache *cache.Cache
}

// New constructs a Manager backed by repo's system brain config and
// cache for ephemeral counters.
func New(repo *brain.Repository, c *cache.Cache) *Manager {
	return &Manager{repo: repo, cache: c}
}

func (m *Manager) settings() settings {
	s := settings{
		active:        true,
		rateLimit:     0,
		globalLimit:   0,
		blockDuration: 60 * time.Second,
		ddosLockdown:  300 * time.Second,
		failedLimit:   0,
		failedBlock:   300 * time.Second,
	}
	if v, ok, _ := m.repo.SystemConfigValue(configPrefix + "active"); ok {
		if b, ok := v.(bool); ok {
			s.active = b
		}
	}
	s.rateLimit = intConfig(m.repo, "rate_limit", s.rateLimit)
	s.globalLimit = intConfig(m.repo, "global_limit", s.globalLimit)
	s.failedLimit = intConfig(m.repo, "failed_limit", s.failedLimit)
	if secs := intConfig(m.repo, "block_duration", -1); secs >= 0 {
		s.blockDuration = time.Duration(secs) * time.Second
	}
	if secs := intConfig(m.repo, "ddos_lockdown", -1); secs >= 0 {
		s.ddosLockdown = time.Duration(secs) * time.Second
	}
	if secs := intConfig(m.repo, "failed_block", -1); secs >= 0 {
		s.failedBlock = time.Duration(secs) * time.Second
	}
	return s
}

func intConfig(repo *brain.Repository, key string, def int) int {
	v, ok, _ := repo.SystemConfigValue(configPrefix + key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// normalizeClient lowercases client, treating an empty string as
// "anonymous" (spec.md §4.8).
func normalizeClient(client string) string {
	client = strings.ToLower(strings.TrimSpace(client))
	if client == "" {
		return "anonymous"
	}
	return client
}

// hashClient derives the counter-key fragment for client.
func hashClient(client string) string {
	sum := sha256.Sum256([]byte(normalizeClient(client)))
	return hex.EncodeToString(sum[:])
}

func window(now time.Time) int64 {
	return now.Unix() / 60
}

func (m *Manager) blockKey(hash string) string { return "security:block:" + hash }
func (m *Manager) failKey(hash string) string  { return "security:fail:" + hash }
func (m *Manager) rateKey(hash string, w int64) string {
	return fmt.Sprintf("security:rate:%s:%d", hash, w)
}
func (m *Manager) globalKey(w int64) string { return fmt.Sprintf("security:global:%d", w) }

const lockdownKey = "security:lockdown"

// Preflight rejects the request outright if a lockdown is in effect or
// the client is currently blocked, before any counters are touched.
func (m *Manager) Preflight(client string) error {
	if until, ok := m.cache.Get(lockdownKey, nil).(string); ok {
		if t, err := time.Parse(time.RFC3339, until); err == nil && time.Now().Before(t) {
			return apperr.New(apperr.KindLockedDown, "lockdown_active", "the service is in lockdown").
				WithStatus(503).
				WithRetryAfter(int(time.Until(t).Seconds()) + 1)
		}
	}

	hash := hashClient(client)
	if until, ok := m.cache.Get(m.blockKey(hash), nil).(string); ok {
		if t, err := time.Parse(time.RFC3339, until); err == nil && time.Now().Before(t) {
			return apperr.New(apperr.KindRateLimited, "client_blocked", "client is temporarily blocked").
				WithStatus(429).
				WithRetryAfter(int(time.Until(t).Seconds()) + 1)
		}
	}
	return nil
}

// RegisterAttempt increments the client's and the aggregate 60-second
// window counters, blocking the client or starting a lockdown when
// either configured limit is exceeded.
func (m *Manager) RegisterAttempt(client string) error {
	cfg := m.settings()
	if !cfg.active {
		return nil
	}
	now := time.Now()
	w := window(now)
	hash := hashClient(client)

	clientCount := m.increment(m.rateKey(hash, w), now)
	if cfg.rateLimit > 0 && clientCount > cfg.rateLimit {
		until := now.Add(cfg.blockDuration)
		m.cache.Put(m.blockKey(hash), until.UTC().Format(time.RFC3339), cfg.blockDuration, []string{"security"})
		log.WithComponent("security").Warn().Str("client_hash", hash).Int("count", clientCount).Msg("client rate limit exceeded, blocking")
		return apperr.New(apperr.KindRateLimited, "rate_limited", "rate limit exceeded").
			WithStatus(429).
			WithRetryAfter(int(cfg.blockDuration.Seconds()))
	}

	globalCount := m.increment(m.globalKey(w), now)
	if cfg.globalLimit > 0 && globalCount > cfg.globalLimit {
		if err := m.Lockdown(cfg.ddosLockdown); err != nil {
			return err
		}
		log.WithComponent("security").Warn().Int("count", globalCount).Msg("global rate limit exceeded, entering lockdown")
		return apperr.New(apperr.KindLockedDown, "lockdown_triggered", "aggregate rate limit exceeded").
			WithStatus(503).
			WithRetryAfter(int(cfg.ddosLockdown.Seconds()))
	}
	return nil
}

// increment bumps the counter at key within the current 60-second
// window, returning the new count. The TTL is set just past the
// window boundary so stale windows expire on their own.
func (m *Manager) increment(key string, now time.Time) int {
	count := 0
	if v, ok := m.cache.Get(key, nil).(float64); ok {
		count = int(v)
	}
	count++
	ttl := time.Until(now.Truncate(time.Minute).Add(2 * time.Minute))
	m.cache.Put(key, float64(count), ttl, []string{"security"})
	return count
}

// RegisterFailure increments client's failure counter, blocking it for
// failed_block once failed_limit is exceeded.
func (m *Manager) RegisterFailure(client string) error {
	cfg := m.settings()
	if cfg.failedLimit <= 0 {
		return nil
	}
	hash := hashClient(client)
	count := 0
	if v, ok := m.cache.Get(m.failKey(hash), nil).(float64); ok {
		count = int(v)
	}
	count++
	m.cache.Put(m.failKey(hash), float64(count), cfg.failedBlock, []string{"security"})

	if count > cfg.failedLimit {
		until := time.Now().Add(cfg.failedBlock)
		m.cache.Put(m.blockKey(hash), until.UTC().Format(time.RFC3339), cfg.failedBlock, []string{"security"})
		log.WithComponent("security").Warn().Str("client_hash", hash).Int("failures", count).Msg("failure limit exceeded, blocking client")
	}
	return nil
}

// RegisterSuccess clears client's failure counter; for mode
// "admin_secret" it also clears any standing block, since an
// admin-secret request bypasses normal auth and should not be left
// penalized by prior failures (spec.md §4.8, §4.9).
func (m *Manager) RegisterSuccess(client string, mode string) {
	hash := hashClient(client)
	m.cache.Forget(m.failKey(hash))
	if mode == "admin_secret" {
		m.cache.Forget(m.blockKey(hash))
	}
}

// Lockdown starts a service-wide lockdown for duration.
func (m *Manager) Lockdown(duration time.Duration) error {
	until := time.Now().Add(duration)
	return m.cache.Put(lockdownKey, until.UTC().Format(time.RFC3339), duration, []string{"security"})
}

// Purge clears all security counters and the active lockdown, used by
// administrative recovery and tests.
func (m *Manager) Purge() error {
	return m.cache.Flush("security")
}
