package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareBuildDirClearsStaleOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "old-page"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old-page", "index.html"), []byte("stale"), 0o644))

	require.NoError(t, PrepareBuildDir(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCopyDirPreservesTree(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "css", "main.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "logo.png"), []byte{0x89}, 0o644))

	require.NoError(t, CopyDir(src, dst))

	css, err := os.ReadFile(filepath.Join(dst, "css", "main.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(css))
	_, err = os.Stat(filepath.Join(dst, "logo.png"))
	assert.NoError(t, err)
}

func TestCopyDirMissingSourceIsFine(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, CopyDir(filepath.Join(t.TempDir(), "nope"), dst))

	_, err := os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}
