package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "mediapress/internal/config"
	"mediapress/internal/store"
)

func testDeps() (Deps, *store.MemoryStore) {
	st := store.NewMemoryStore()
	cfg := cfgpkg.Config{ImageQuality: 80, VideoCRF: 23, VideoPreset: "medium"}
	return Deps{Cfg: cfg, Store: st}, st
}

func TestJobValidation(t *testing.T) {
	deps, _ := testDeps()
	r := NewRouter(deps)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(`{"input_dir":""}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// output nested inside input is rejected before a job is created
	in := t.TempDir()
	body := `{"input_dir":"` + filepath.ToSlash(in) + `","output_dir":"` + filepath.ToSlash(filepath.Join(in, "out")) + `"}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobNotFound(t *testing.T) {
	deps, _ := testDeps()
	r := NewRouter(deps)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobRunsToDone(t *testing.T) {
	deps, st := testDeps()
	r := NewRouter(deps)

	in := t.TempDir()
	out := t.TempDir()
	// a non-media file only: the job finishes without touching any encoder
	require.NoError(t, os.WriteFile(filepath.Join(in, "readme.txt"), []byte("x"), 0o644))

	body := `{"input_dir":"` + filepath.ToSlash(in) + `","output_dir":"` + filepath.ToSlash(out) + `"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)

	deadline := time.Now().Add(5 * time.Second)
	for {
		j, ok := st.Get(context.Background(), resp.ID)
		if ok && (j.Status == "done" || j.Status == "error") {
			assert.Equal(t, "done", j.Status)
			assert.Equal(t, 0, j.Encoded)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
