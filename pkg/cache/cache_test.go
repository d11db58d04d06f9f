package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Put("k1", map[string]interface{}{"a": float64(1)}, 0, nil))

	got := c.Get("k1", nil)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, got)
}

func TestGetMissingReturnsDefault(t *testing.T) {
	c := New(t.TempDir())
	assert.Equal(t, "default", c.Get("nope", "default"))
}

func TestGetExpiredEvictsEntry(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Put("k1", "v1", time.Nanosecond, nil))
	time.Sleep(time.Millisecond)

	assert.Equal(t, "default", c.Get("k1", "default"))
}

func TestFlushByTag(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Put("k1", "v1", 0, []string{"alpha"}))
	require.NoError(t, c.Put("k2", "v2", 0, []string{"beta"}))

	require.NoError(t, c.Flush("alpha"))

	assert.Nil(t, c.Get("k1", nil))
	assert.Equal(t, "v2", c.Get("k2", nil))
}

func TestFlushAllWithNoTags(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Put("k1", "v1", 0, nil))
	require.NoError(t, c.Put("k2", "v2", 0, nil))

	require.NoError(t, c.Flush())

	assert.Nil(t, c.Get("k1", nil))
	assert.Nil(t, c.Get("k2", nil))
}

func TestDisabledCacheActsAsNullStore(t *testing.T) {
	c := New(t.TempDir())
	c.Disabled = true
	require.NoError(t, c.Put("k1", "v1", 0, nil))
	assert.Nil(t, c.Get("k1", nil))
}
