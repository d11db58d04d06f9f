package auth

import (
	"testing"

	"github.com/aaviondb/aaviondb/pkg/brain"
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
	return New(repo), repo
}

func TestGuardRestAccessCronBypassesAuth(t *testing.T) {
	mgr, _ := newTestManager(t)
	d, err := mgr.GuardRestAccess("", "cron")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, "cron_bypass", d.Mode)
}

func TestGuardRestAccessAdminSecretGrantsAll(t *testing.T) {
	mgr, repo := newTestManager(t)
	require.NoError(t, repo.SetSystemConfigValue("auth.admin_secret", "_supersecret"))

	d, err := mgr.GuardRestAccess("_supersecret", "save")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, "ALL", d.Scope)
	assert.Equal(t, []string{"*"}, d.Projects)
	assert.Equal(t, "admin_secret", d.Mode)
}

func TestGuardRestAccessRejectsMalformedAdminSecret(t *testing.T) {
	mgr, repo := newTestManager(t)
	require.NoError(t, repo.SetSystemConfigValue("auth.admin_secret", "short"))

	d, err := mgr.GuardRestAccess("short", "save")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, "token_invalid", d.Reason)
}

func TestGuardRestAccessAPIDisabled(t *testing.T) {
	mgr, repo := newTestManager(t)
	require.NoError(t, repo.SetAPIEnabled(false))

	d, err := mgr.GuardRestAccess("anything", "save")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 503, d.StatusCode)
	assert.Equal(t, "api_disabled", d.Reason)
}

func TestGuardRestAccessMissingToken(t *testing.T) {
	mgr, _ := newTestManager(t)
	d, err := mgr.GuardRestAccess("", "save")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 401, d.StatusCode)
	assert.Equal(t, "token_missing", d.Reason)
}

func TestGuardRestAccessBootstrapKeyForbidden(t *testing.T) {
	mgr, repo := newTestManager(t)
	require.NoError(t, repo.UpdateBootstrapKey("boot-123456"))

	d, err := mgr.GuardRestAccess("boot-123456", "save")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 403, d.StatusCode)
	assert.Equal(t, "bootstrap_forbidden", d.Reason)
}

func TestGuardRestAccessInvalidToken(t *testing.T) {
	mgr, _ := newTestManager(t)
	d, err := mgr.GuardRestAccess("not-a-real-token", "save")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 401, d.StatusCode)
	assert.Equal(t, "token_invalid", d.Reason)
}

func TestGuardRestAccessInactiveToken(t *testing.T) {
	mgr, repo := newTestManager(t)
	raw, id, err := repo.RegisterAuthToken("ALL", nil, 16)
	require.NoError(t, err)
	require.NoError(t, repo.RevokeAuthToken(id))

	d, err := mgr.GuardRestAccess(raw, "save")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 403, d.StatusCode)
	assert.Equal(t, "token_inactive", d.Reason)
}

func TestGuardRestAccessValidTokenGrantsScope(t *testing.T) {
	mgr, repo := newTestManager(t)
	raw, id, err := repo.RegisterAuthToken("storyverse,another", nil, 16)
	require.NoError(t, err)

	d, err := mgr.GuardRestAccess(raw, "save")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, id, d.TokenID)
	assert.Equal(t, []string{"storyverse", "another"}, d.Projects)
}
