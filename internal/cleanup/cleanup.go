package cleanup

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SweepTemp removes stale .tmp outputs left behind by aborted encodes under
// root. Files younger than keep are left alone since a transcode may still
// be writing them.
func SweepTemp(root string, keep time.Duration) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".tmp") {
			return nil
		}
		if time.Since(info.ModTime()) > keep {
			_ = os.Remove(path)
		}
		return nil
	})
}
