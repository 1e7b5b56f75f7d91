package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"mediapress/internal/pipeline"
	"mediapress/internal/scan"
)

func init() {
	color.NoColor = true
}

func TestBytes(t *testing.T) {
	assert.Equal(t, "0 B", Bytes(0))
	assert.Equal(t, "999 B", Bytes(999))
	assert.Equal(t, "1.0 KB", Bytes(1000))
	assert.Equal(t, "1.4 KB", Bytes(1400))
	assert.Equal(t, "2.50 MB", Bytes(2_500_000))
	assert.Equal(t, "1.20 GB", Bytes(1_200_000_000))
	assert.Equal(t, "-1.0 KB", Bytes(-1000))
}

func TestSavedPercent(t *testing.T) {
	assert.InDelta(t, 50.0, SavedPercent(1000, 500), 0.001)
	assert.InDelta(t, 0.0, SavedPercent(0, 500), 0.001)
	assert.InDelta(t, -100.0, SavedPercent(500, 1000), 0.001)
}

func TestRenderSummary(t *testing.T) {
	sum := &pipeline.Summary{
		Results: []pipeline.FileResult{
			{Rel: "a.jpg", OutRel: "a.webp", Kind: scan.Image, Action: pipeline.ActionEncoded, InBytes: 1000, OutBytes: 400},
			{Rel: "b.mov", Kind: scan.Video, Action: pipeline.ActionFailed, Err: errors.New("boom")},
			{Rel: "c.png", Kind: scan.Image, Action: pipeline.ActionSkippedExisting},
		},
		Encoded: 1, Failed: 1, Skipped: 1, Images: 1,
		InBytes: 1000, OutBytes: 400,
		Elapsed: 1234 * time.Millisecond,
	}

	var buf bytes.Buffer
	Render(&buf, sum, true)
	out := buf.String()

	assert.Contains(t, out, "a.jpg -> a.webp")
	assert.Contains(t, out, "b.mov: boom")
	assert.Contains(t, out, "c.png (exists)")
	assert.Contains(t, out, "Encoded 1 files (1 images, 0 videos), skipped 1, failed 1")
	assert.Contains(t, out, "saved 600 B (60.0%)")
}

func TestRenderQuietOnlyFailures(t *testing.T) {
	sum := &pipeline.Summary{
		Results: []pipeline.FileResult{
			{Rel: "a.jpg", Action: pipeline.ActionEncoded, InBytes: 10, OutBytes: 5},
			{Rel: "b.mov", Action: pipeline.ActionFailed, Err: errors.New("boom")},
		},
		Encoded: 1, Failed: 1, InBytes: 10, OutBytes: 5,
	}
	var buf bytes.Buffer
	Render(&buf, sum, false)
	out := buf.String()
	assert.NotContains(t, out, "a.jpg")
	assert.Contains(t, out, "b.mov")
}
