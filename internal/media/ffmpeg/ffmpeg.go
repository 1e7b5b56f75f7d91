// Package ffmpeg shells out to ffmpeg/ffprobe to re-encode videos into
// H.264/AAC MP4 with optional width capping.
package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"mediapress/internal/execx"
)

const (
	DefaultCRF    = 23
	DefaultPreset = "medium"
	tmpSuffix     = ".tmp"
)

type Runner struct {
	Logger *zap.SugaredLogger
}

type Props struct {
	Width  int
	Height int
	FPS    float64
}

func (r *Runner) durationSeconds(ctx context.Context, input string) (float64, error) {
	out, errStr, err := execx.RunContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", input)
	if err == nil {
		if v, perr := strconv.ParseFloat(strings.TrimSpace(out), 64); perr == nil && v > 0 {
			return v, nil
		}
	} else if r.Logger != nil {
		r.Logger.Debugf("ffprobe(format) failed: %v: %s", err, strings.TrimSpace(errStr))
	}
	out2, errStr2, err2 := execx.RunContext(ctx, "ffprobe", "-v", "error", "-show_entries", "stream=duration", "-of", "csv=p=0", input)
	if err2 == nil {
		var maxDur float64
		for _, ln := range strings.Split(strings.TrimSpace(out2), "\n") {
			if ln == "N/A" || ln == "" {
				continue
			}
			if v, perr := strconv.ParseFloat(strings.TrimSpace(ln), 64); perr == nil && v > maxDur {
				maxDur = v
			}
		}
		if maxDur > 0 {
			return maxDur, nil
		}
	} else if r.Logger != nil {
		r.Logger.Debugf("ffprobe(stream) failed: %v: %s", err2, strings.TrimSpace(errStr2))
	}
	out3, errStr3, err3 := execx.RunContext(ctx, "ffprobe", "-v", "error", "-select_streams", "v:0", "-show_entries", "stream=duration", "-of", "default=nw=1:nk=1", input)
	if err3 == nil {
		if v, perr := strconv.ParseFloat(strings.TrimSpace(out3), 64); perr == nil && v > 0 {
			return v, nil
		}
	} else if r.Logger != nil {
		r.Logger.Debugf("ffprobe(v:0) failed: %v: %s", err3, strings.TrimSpace(errStr3))
	}
	return 0, fmt.Errorf("ffprobe: cannot determine duration")
}

// Probe returns the video stream dimensions and frame rate (fps may be 0).
func (r *Runner) Probe(ctx context.Context, input string) (Props, error) {
	out, errStr, err := execx.RunContext(ctx, "ffprobe", "-v", "error", "-select_streams", "v:0", "-show_entries", "stream=width,height,avg_frame_rate,r_frame_rate", "-of", "default=nw=1:nk=1", input)
	if err != nil {
		if r.Logger != nil {
			r.Logger.Debugf("ffprobe(props) failed: %v: %s", err, strings.TrimSpace(errStr))
		}
		return Props{}, err
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var p Props
	if len(lines) >= 1 {
		p.Width, _ = strconv.Atoi(strings.TrimSpace(lines[0]))
	}
	if len(lines) >= 2 {
		p.Height, _ = strconv.Atoi(strings.TrimSpace(lines[1]))
	}
	if len(lines) >= 3 {
		p.FPS = parseRatio(lines[2])
	}
	if p.FPS == 0 && len(lines) >= 4 {
		p.FPS = parseRatio(lines[3])
	}
	if p.Width <= 0 || p.Height <= 0 {
		return p, fmt.Errorf("ffprobe: no dimensions")
	}
	return p, nil
}

func parseRatio(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0
	}
	if strings.Contains(s, "/") {
		parts := strings.SplitN(s, "/", 2)
		num, _ := strconv.ParseFloat(parts[0], 64)
		den, _ := strconv.ParseFloat(parts[1], 64)
		if den != 0 {
			return num / den
		}
		if num > 0 {
			return num
		}
		return 0
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// buildArgs assembles the transcode arguments up to but excluding the output
// path. maxWidth 0 keeps the source size; srcWidth clamps the cap so small
// sources are never upscaled.
func buildArgs(input string, crf int, preset string, maxWidth, srcWidth int) []string {
	if crf <= 0 {
		crf = DefaultCRF
	}
	if preset == "" {
		preset = DefaultPreset
	}
	args := []string{"-i", input}
	effWidth := maxWidth
	if maxWidth > 0 && srcWidth > 0 && maxWidth > srcWidth {
		effWidth = srcWidth
	}
	if effWidth > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale='min(%d,iw)':-2", effWidth))
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(crf),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
	)
	return args
}

// Transcode re-encodes input into an H.264/AAC MP4 at out. The file is
// written to a temp path (container forced to mp4) and renamed on success.
// progress, when non-nil, receives 0..100 as ffmpeg reports out_time_ms.
func (r *Runner) Transcode(ctx context.Context, input, out string, crf int, preset string, maxWidth int, progress func(pct int)) error {
	var srcWidth int
	if props, err := r.Probe(ctx, input); err == nil {
		srcWidth = props.Width
	}
	dur, derr := r.durationSeconds(ctx, input)
	if derr != nil && r.Logger != nil {
		r.Logger.Warnf("duration unknown for %s: %v", input, derr)
	}

	tmp := out + tmpSuffix
	args := append([]string{"-y", "-progress", "pipe:1", "-nostats"}, buildArgs(input, crf, preset, maxWidth, srcWidth)...)
	args = append(args, "-f", "mp4", tmp)
	if r.Logger != nil {
		r.Logger.Debugf("ffmpeg %v", args)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	var stderrTail strings.Builder
	cmd.Stderr = &tailWriter{b: &stderrTail}
	if err := cmd.Start(); err != nil {
		return err
	}

	reader := bufio.NewReader(stdout)
	for {
		line, rerr := reader.ReadString('\n')
		if line != "" && progress != nil {
			if v, ok := strings.CutPrefix(strings.TrimSpace(line), "out_time_ms="); ok {
				if ms, perr := strconv.ParseFloat(v, 64); perr == nil {
					progress(percentOf(ms/1e6, dur))
				}
			}
		}
		if rerr != nil {
			break
		}
	}

	if err := cmd.Wait(); err != nil {
		os.Remove(tmp)
		tail := strings.TrimSpace(stderrTail.String())
		if tail != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, lastLines(tail, 5))
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	if progress != nil {
		progress(100)
	}
	return os.Rename(tmp, out)
}

// percentOf maps elapsed output seconds to a percent. With an unknown
// duration it degrades to a coarse guess that never claims completion.
func percentOf(seconds, duration float64) int {
	var pct int
	if duration > 0 {
		pct = int(seconds/duration*100 + 0.5)
		if pct > 99 {
			pct = 99
		}
	} else {
		pct = int(seconds / 120.0 * 90.0)
		if pct > 90 {
			pct = 90
		}
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// tailWriter keeps the last few KB of stderr for error reporting.
type tailWriter struct {
	b *strings.Builder
}

const tailLimit = 4096

func (t *tailWriter) Write(p []byte) (int, error) {
	if t.b.Len()+len(p) > tailLimit {
		keep := t.b.String()
		if len(keep) > tailLimit/2 {
			keep = keep[len(keep)-tailLimit/2:]
		}
		t.b.Reset()
		t.b.WriteString(keep)
	}
	t.b.Write(p)
	return len(p), nil
}

var _ io.Writer = (*tailWriter)(nil)
