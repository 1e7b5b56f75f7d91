// Package httpapi exposes the compression pipeline as a small JSON API:
// submit a job for an input/output directory pair, poll its progress.
// Only fast mode is available here; there is no interactive channel to
// ask per-file widths over.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mediapress/internal/cleanup"
	cfgpkg "mediapress/internal/config"
	"mediapress/internal/media/ffmpeg"
	"mediapress/internal/media/webpenc"
	"mediapress/internal/pipeline"
	"mediapress/internal/scan"
	"mediapress/internal/store"
)

const jobTTL = 30 * time.Minute

type Deps struct {
	Cfg    cfgpkg.Config
	Logger *zap.SugaredLogger
	Store  store.Store
}

type jobRequest struct {
	InputDir  string   `json:"input_dir" binding:"required"`
	OutputDir string   `json:"output_dir" binding:"required"`
	MaxWidth  int      `json:"max_width"`
	Quality   int      `json:"quality"`
	CRF       int      `json:"crf"`
	Preset    string   `json:"preset"`
	Overwrite bool     `json:"overwrite"`
	Excludes  []string `json:"excludes"`
}

func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.POST("/jobs", func(c *gin.Context) {
		var req jobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := scan.CheckDirs(req.InputDir, req.OutputDir); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		id := uuid.NewString()
		ctx := context.Background()
		_ = d.Store.Set(ctx, &store.JobStatus{ID: id, Status: "queued"}, jobTTL)
		go runJob(d, id, req)
		c.JSON(http.StatusAccepted, gin.H{"id": id})
	})

	r.GET("/jobs/:id", func(c *gin.Context) {
		j, ok := d.Store.Get(context.Background(), c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, j)
	})

	return r
}

func runJob(d Deps, id string, req jobRequest) {
	ctx := context.Background()
	set := func(j store.JobStatus) {
		j.ID = id
		_ = d.Store.Set(ctx, &j, jobTTL)
	}
	set(store.JobStatus{Status: "processing", Stage: "scan"})

	// stale partial outputs from a crashed earlier job
	cleanup.SweepTemp(req.OutputDir, time.Duration(d.Cfg.CleanupMinutes)*time.Minute)

	quality := req.Quality
	if quality == 0 {
		quality = d.Cfg.ImageQuality
	}
	crf := req.CRF
	if crf == 0 {
		crf = d.Cfg.VideoCRF
	}
	preset := req.Preset
	if preset == "" {
		preset = d.Cfg.VideoPreset
	}

	var index, total int
	var current store.JobStatus
	current.Status = "processing"
	current.Stage = "encode"

	sum, err := pipeline.Run(ctx, pipeline.Options{
		InputDir:  req.InputDir,
		OutputDir: req.OutputDir,
		Excludes:  req.Excludes,
		Mode:      pipeline.ModeFast,
		MaxWidth:  req.MaxWidth,
		Quality:   quality,
		CRF:       crf,
		Preset:    preset,
		Overwrite: req.Overwrite,
		Images:    &webpenc.Encoder{Logger: d.Logger},
		Videos:    &ffmpeg.Runner{Logger: d.Logger},
		Logger:    d.Logger,
		OnFile: func(i, n int, e scan.Entry) {
			index, total = i, n
			current.File = e.Rel
			current.Percent = i * 100 / n
			set(current)
		},
		OnVideoProgress: func(rel string, pct int) {
			if total == 0 {
				return
			}
			// overall percent: finished files plus the fraction of this one
			p := (index*100 + pct) / total
			if p > 99 {
				p = 99
			}
			current.Percent = p
			set(current)
		},
	})
	if err != nil {
		if d.Logger != nil {
			d.Logger.Errorf("job %s: %v", id, err)
		}
		set(store.JobStatus{Status: "error", Error: err.Error()})
		return
	}
	set(store.JobStatus{
		Status:   "done",
		Percent:  100,
		Encoded:  sum.Encoded,
		Skipped:  sum.Skipped,
		Failed:   sum.Failed,
		InBytes:  sum.InBytes,
		OutBytes: sum.OutBytes,
	})
}
