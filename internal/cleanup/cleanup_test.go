package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepTemp(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "sub", "video.mp4.tmp")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("partial"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := filepath.Join(dir, "busy.webp.tmp")
	require.NoError(t, os.WriteFile(fresh, []byte("writing"), 0o644))

	done := filepath.Join(dir, "sub", "video.mp4")
	require.NoError(t, os.WriteFile(done, []byte("final"), 0o644))
	require.NoError(t, os.Chtimes(done, old, old))

	SweepTemp(dir, 30*time.Minute)

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale temp should be removed")
	assert.FileExists(t, fresh)
	assert.FileExists(t, done)
}
