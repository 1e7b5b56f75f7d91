// Package pipeline runs the compression loop: scan the input tree, pick a
// target width per file (globally in fast mode, interactively in custom
// mode), hand the file to the matching encoder and collect size results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"mediapress/internal/scan"
)

type Mode int

const (
	// ModeFast applies one global width/quality to every file, no prompts.
	ModeFast Mode = iota
	// ModeCustom asks the Prompter for a target width per file.
	ModeCustom
)

type Action int

const (
	ActionEncoded Action = iota
	ActionSkippedExisting
	ActionSkippedUser
	ActionFailed
)

func (a Action) String() string {
	switch a {
	case ActionEncoded:
		return "encoded"
	case ActionSkippedExisting:
		return "exists"
	case ActionSkippedUser:
		return "skipped"
	case ActionFailed:
		return "failed"
	}
	return "unknown"
}

// ImageEncoder re-encodes one image file into WebP.
type ImageEncoder interface {
	Encode(ctx context.Context, in, out string, quality, maxWidth int) error
}

// VideoEncoder re-encodes one video file into H.264/AAC MP4. progress may be
// nil; when set it receives 0..100.
type VideoEncoder interface {
	Transcode(ctx context.Context, in, out string, crf int, preset string, maxWidth int, progress func(pct int)) error
}

// Prompter supplies the per-file width in custom mode.
// width 0 means keep the source size; skip drops the file entirely.
type Prompter interface {
	WidthFor(rel string, size int64) (width int, skip bool, err error)
}

type FileResult struct {
	Rel      string
	OutRel   string
	Kind     scan.Kind
	Action   Action
	InBytes  int64
	OutBytes int64
	Err      error
}

type Summary struct {
	Results []FileResult

	Encoded int
	Skipped int
	Failed  int
	Images  int // encoded images
	Videos  int // encoded videos

	// Byte totals over encoded files only, so the savings number is not
	// diluted by skips and failures.
	InBytes  int64
	OutBytes int64

	Elapsed time.Duration
}

type Options struct {
	InputDir  string
	OutputDir string
	Excludes  []string

	Mode      Mode
	MaxWidth  int // fast mode width cap, 0 = keep source size
	Quality   int // WebP quality
	CRF       int
	Preset    string
	Overwrite bool

	Images   ImageEncoder
	Videos   VideoEncoder
	Prompter Prompter
	Logger   *zap.SugaredLogger

	// OnFile fires before each file is processed (progress bars).
	OnFile func(index, total int, e scan.Entry)
	// OnVideoProgress receives per-file transcode percent (serve mode).
	OnVideoProgress func(rel string, pct int)
}

// Run executes the loop sequentially and returns the summary. Per-file
// encoder failures are recorded and the loop continues; only setup errors
// and context cancellation abort the run.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Images == nil || opts.Videos == nil {
		return nil, errors.New("pipeline: both encoders are required")
	}
	if opts.Mode == ModeCustom && opts.Prompter == nil {
		return nil, errors.New("pipeline: custom mode requires a prompter")
	}
	if err := scan.CheckDirs(opts.InputDir, opts.OutputDir); err != nil {
		return nil, err
	}
	if fi, err := os.Stat(opts.InputDir); err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("input %q is not a directory", opts.InputDir)
	}

	start := time.Now()
	log := opts.Logger
	entries, err := scan.Scan(ctx, opts.InputDir, opts.Excludes, func(path string, err error) error {
		if log != nil {
			log.Warnf("skipping unreadable path %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sum := &Summary{}
	for i, e := range entries {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}
		if opts.OnFile != nil {
			opts.OnFile(i, len(entries), e)
		}

		res := processOne(ctx, opts, e)
		sum.Results = append(sum.Results, res)
		switch res.Action {
		case ActionEncoded:
			sum.Encoded++
			sum.InBytes += res.InBytes
			sum.OutBytes += res.OutBytes
			if e.Kind == scan.Image {
				sum.Images++
			} else {
				sum.Videos++
			}
		case ActionFailed:
			sum.Failed++
			if log != nil {
				log.Errorf("%s: %v", e.Rel, res.Err)
			}
		default:
			sum.Skipped++
		}
	}
	sum.Elapsed = time.Since(start)
	return sum, nil
}

func processOne(ctx context.Context, opts Options, e scan.Entry) FileResult {
	out := scan.OutputPath(opts.OutputDir, e.Rel, e.Kind)
	outRel, relErr := filepath.Rel(opts.OutputDir, out)
	if relErr != nil {
		outRel = out
	}
	res := FileResult{Rel: e.Rel, OutRel: outRel, Kind: e.Kind, InBytes: e.Size}

	if !opts.Overwrite {
		if _, err := os.Stat(out); err == nil {
			res.Action = ActionSkippedExisting
			return res
		}
	}

	width := opts.MaxWidth
	if opts.Mode == ModeCustom {
		w, skip, err := opts.Prompter.WidthFor(e.Rel, e.Size)
		if err != nil {
			res.Action = ActionFailed
			res.Err = fmt.Errorf("prompt: %w", err)
			return res
		}
		if skip {
			res.Action = ActionSkippedUser
			return res
		}
		width = w
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		res.Action = ActionFailed
		res.Err = fmt.Errorf("create output directory: %w", err)
		return res
	}

	var err error
	switch e.Kind {
	case scan.Image:
		err = opts.Images.Encode(ctx, e.Path, out, opts.Quality, width)
	case scan.Video:
		var progress func(int)
		if opts.OnVideoProgress != nil {
			rel := e.Rel
			progress = func(pct int) { opts.OnVideoProgress(rel, pct) }
		}
		err = opts.Videos.Transcode(ctx, e.Path, out, opts.CRF, opts.Preset, width, progress)
	}
	if err != nil {
		res.Action = ActionFailed
		res.Err = err
		return res
	}

	fi, err := os.Stat(out)
	if err != nil {
		res.Action = ActionFailed
		res.Err = fmt.Errorf("stat output: %w", err)
		return res
	}
	res.OutBytes = fi.Size()
	res.Action = ActionEncoded
	return res
}
