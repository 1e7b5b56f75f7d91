// Package scan walks an input tree, classifies media files and computes
// the mirrored output path for each of them.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type Kind int

const (
	Other Kind = iota
	Image
	Video
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Video:
		return "video"
	}
	return "other"
}

var imageExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".webp": {}, ".bmp": {}, ".tif": {}, ".tiff": {},
}

var videoExts = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".mkv": {}, ".avi": {},
	".webm": {}, ".m4v": {}, ".mpg": {}, ".mpeg": {},
	".wmv": {}, ".flv": {}, ".3gp": {}, ".ts": {},
}

// Classify reports whether path names an image, a video or something else,
// judged by extension only.
func Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExts[ext]; ok {
		return Image
	}
	if _, ok := videoExts[ext]; ok {
		return Video
	}
	return Other
}

// Entry is one media file found under the input root.
type Entry struct {
	Path string // absolute path of the source file
	Rel  string // path relative to the input root
	Size int64
	Kind Kind
}

// OutputPath mirrors rel under outRoot, rewriting the extension to the
// target container for the kind (.webp for images, .mp4 for videos).
func OutputPath(outRoot, rel string, kind Kind) string {
	ext := filepath.Ext(rel)
	base := strings.TrimSuffix(rel, ext)
	switch kind {
	case Image:
		base += ".webp"
	case Video:
		base += ".mp4"
	default:
		base += ext
	}
	return filepath.Join(outRoot, base)
}

// CheckDirs rejects input/output pairs that would make the walk feed on its
// own output.
func CheckDirs(inputDir, outputDir string) error {
	inAbs, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input dir: %w", err)
	}
	outAbs, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}
	inAbs = filepath.Clean(inAbs)
	outAbs = filepath.Clean(outAbs)

	if outAbs == inAbs {
		return fmt.Errorf("output directory %q is the same as input directory", outAbs)
	}
	if strings.HasPrefix(outAbs, inAbs+string(filepath.Separator)) {
		return fmt.Errorf("output directory %q is inside input directory %q", outAbs, inAbs)
	}
	if strings.HasPrefix(inAbs, outAbs+string(filepath.Separator)) {
		return fmt.Errorf("input directory %q is inside output directory %q", inAbs, outAbs)
	}
	return nil
}

// ErrorCallback is called when a subtree cannot be read. Returning an error
// stops the walk; returning nil skips the location and continues.
type ErrorCallback func(path string, err error) error

// Scan walks root and returns all image and video entries in walk order.
// Exclude patterns are doublestar globs matched against the relative path;
// a matching directory is pruned whole.
func Scan(ctx context.Context, root string, excludes []string, onError ErrorCallback) ([]Entry, error) {
	var entries []Entry
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if onError != nil {
				if cbErr := onError(path, err); cbErr != nil {
					return cbErr
				}
				return nil
			}
			return fmt.Errorf("access %q: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %q: %w", path, err)
		}
		if rel == "." {
			return nil
		}

		for _, pattern := range excludes {
			match, err := doublestar.Match(pattern, filepath.ToSlash(rel))
			if err != nil {
				return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
			}
			if match {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		kind := Classify(path)
		if kind == Other {
			return nil
		}
		entries = append(entries, Entry{
			Path: path,
			Rel:  rel,
			Size: info.Size(),
			Kind: kind,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
