// Package webpenc re-encodes still images into WebP, downscaling by width
// when asked. Decoding covers the formats the scanner classifies as images.
package webpenc

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	// Decoders for everything scan classifies as an image.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
)

const (
	DefaultQuality = 80
	tmpSuffix      = ".tmp"
)

type Encoder struct {
	Logger *zap.SugaredLogger
}

// FitWidth returns the width the image should be scaled to, 0 meaning no
// scaling. Upscaling is never requested.
func FitWidth(srcWidth, maxWidth int) int {
	if maxWidth <= 0 || srcWidth <= maxWidth {
		return 0
	}
	return maxWidth
}

func clampQuality(q int) int {
	if q <= 0 {
		return DefaultQuality
	}
	if q > 100 {
		return 100
	}
	return q
}

// Encode decodes in, optionally downscales it to maxWidth and writes a WebP
// file at out. The file is written to a temp path first and renamed on
// success so aborted runs never leave a plausible-looking output behind.
func (e *Encoder) Encode(ctx context.Context, in, out string, quality, maxWidth int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(in), err)
	}

	if w := FitWidth(img.Bounds().Dx(), maxWidth); w > 0 {
		if e.Logger != nil {
			e.Logger.Debugf("resizing %s (%s) %d -> %d px wide", in, format, img.Bounds().Dx(), w)
		}
		img = resize.Resize(uint(w), 0, img, resize.Lanczos3)
	}

	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(clampQuality(quality)))
	if err != nil {
		return fmt.Errorf("webp options: %w", err)
	}

	tmp := out + tmpSuffix
	dst, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := webp.Encode(dst, img, opts); err != nil {
		dst.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode webp: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, out); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
