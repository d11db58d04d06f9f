package security

import (
	"testing"
	"time"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/cache"
	"github.com/aaviondb/aaviondb/pkg/events"
	"github.com/aaviondb/aaviondb/pkg/pathlocator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *brain.Repository) {
	t.Helper()
	loc, err := pathlocator.New(t.TempDir())
	require.NoError(t, err)
	repo := brain.New(loc, events.New())
	require.NoError(t, repo.EnsureSystemBrain())
	require.NoError(t, repo.EnsureActiveBrain("default"))
	return New(repo, cache.New(t.TempDir())), repo
}

func TestRegisterAttemptBlocksClientOverRateLimit(t *testing.T) {
	mgr, repo := newTestManager(t)
	require.NoError(t, repo.SetSystemConfigValue("security.active", true))
	require.NoError(t, repo.SetSystemConfigValue("security.rate_limit", 2))
	require.NoError(t, repo.SetSystemConfigValue("security.block_duration", 30))

	require.NoError(t, mgr.RegisterAttempt("client-a"))
	require.NoError(t, mgr.RegisterAttempt("client-a"))

	err := mgr.RegisterAttempt("client-a")
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindRateLimited, appErr.Kind)
	assert.Equal(t, 429, appErr.HTTPStatus)

	// Preflight now rejects the same client while the block stands.
	assert.Error(t, mgr.Preflight("client-a"))
	// A different client is unaffected.
	assert.NoError(t, mgr.Preflight("client-b"))
}

func TestRegisterAttemptCounterDoesNotDecreaseWithinWindow(t *testing.T) {
	mgr, repo := newTestManager(t)
	require.NoError(t, repo.SetSystemConfigValue("security.active", true))

	hash := hashClient("client-a")
	w := window(time.Now())
	key := mgr.rateKey(hash, w)

	require.NoError(t, mgr.RegisterAttempt("client-a"))
	first := mgr.cacheGet(key)
	require.NoError(t, mgr.RegisterAttempt("client-a"))
	second := mgr.cacheGet(key)

	assert.GreaterOrEqual(t, second, first)
	assert.Equal(t, first+1, second)
}

func TestRegisterAttemptTriggersGlobalLockdown(t *testing.T) {
	mgr, repo := newTestManager(t)
	require.NoError(t, repo.SetSystemConfigValue("security.active", true))
	require.NoError(t, repo.SetSystemConfigValue("security.global_limit", 1))
	require.NoError(t, repo.SetSystemConfigValue("security.ddos_lockdown", 30))

	require.NoError(t, mgr.RegisterAttempt("client-a"))
	err := mgr.RegisterAttempt("client-b")
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindLockedDown, appErr.Kind)
	assert.Equal(t, 503, appErr.HTTPStatus)

	assert.Error(t, mgr.Preflight("client-c"))
}

func TestRegisterFailureBlocksAfterLimit(t *testing.T) {
	mgr, repo := newTestManager(t)
	require.NoError(t, repo.SetSystemConfigValue("security.failed_limit", 1))
	require.NoError(t, repo.SetSystemConfigValue("security.failed_block", 30))

	require.NoError(t, mgr.RegisterFailure("client-a"))
	require.NoError(t, mgr.RegisterFailure("client-a"))

	assert.Error(t, mgr.Preflight("client-a"))
}

func TestRegisterSuccessClearsFailuresAndAdminSecretClearsBlock(t *testing.T) {
	mgr, repo := newTestManager(t)
	require.NoError(t, repo.SetSystemConfigValue("security.failed_limit", 1))
	require.NoError(t, repo.SetSystemConfigValue("security.failed_block", 30))

	require.NoError(t, mgr.RegisterFailure("client-a"))
	require.NoError(t, mgr.RegisterFailure("client-a"))
	require.Error(t, mgr.Preflight("client-a"))

	mgr.RegisterSuccess("client-a", "admin_secret")
	assert.NoError(t, mgr.Preflight("client-a"))
}

func TestPurgeClearsLockdownAndBlocks(t *testing.T) {
	mgr, repo := newTestManager(t)
	require.NoError(t, repo.SetSystemConfigValue("security.active", true))
	require.NoError(t, mgr.Lockdown(30*time.Second))
	require.Error(t, mgr.Preflight("client-a"))

	require.NoError(t, mgr.Purge())
	assert.NoError(t, mgr.Preflight("client-a"))
}

// cacheGet is a small test-only accessor reading the raw numeric
// counter back out, mirroring increment's own read path.
func (m *Manager) cacheGet(key string) int {
	if v, ok := m.cache.Get(key, nil).(float64); ok {
		return int(v)
	}
	return 0
}
