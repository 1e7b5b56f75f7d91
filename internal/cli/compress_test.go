package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCompress(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append([]string{"compress"}, args...))
	return rootCmd.Execute()
}

func writeStale(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("partial"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
}

func TestCompressRejectsOverlapBeforeSweep(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, "data.tmp")
	writeStale(t, tmp)

	// in == out must fail without deleting anything under the tree
	err := runCompress(t, "--in", dir, "--out", dir)
	require.Error(t, err)
	assert.FileExists(t, tmp)

	// output nested inside the input tree is rejected the same way
	err = runCompress(t, "--in", dir, "--out", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.FileExists(t, tmp)
}

func TestCompressSweepsOnlyStaleTemp(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	stale := filepath.Join(out, "video.mp4.tmp")
	writeStale(t, stale)
	fresh := filepath.Join(out, "busy.webp.tmp")
	require.NoError(t, os.WriteFile(fresh, []byte("writing"), 0o644))

	require.NoError(t, runCompress(t, "--in", in, "--out", out))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale temp should be swept")
	assert.FileExists(t, fresh, "a file inside the keep window must survive")
}
