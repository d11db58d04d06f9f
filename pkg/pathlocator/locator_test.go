package pathlocator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEnsuresDirectories(t *testing.T) {
	root := t.TempDir()
	l, err := New(filepath.Join(root, "data"))
	require.NoError(t, err)

	for _, dir := range []string{l.UserBrainsDir(), l.BackupsDir(), l.ExportsDir(), l.CacheDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestUserBrainPath(t *testing.T) {
	root := t.TempDir()
	l, err := New(root)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(l.UserBrainsDir(), "storyverse.brain"), l.UserBrainPath("storyverse"))
}
