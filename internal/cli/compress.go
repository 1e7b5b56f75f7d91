package cli

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"mediapress/internal/cleanup"
	"mediapress/internal/media/ffmpeg"
	"mediapress/internal/media/webpenc"
	"mediapress/internal/pipeline"
	"mediapress/internal/prompt"
	"mediapress/internal/report"
	"mediapress/internal/scan"
)

var compressFlags struct {
	in        string
	out       string
	width     int
	quality   int
	crf       int
	preset    string
	custom    bool
	excludes  []string
	overwrite bool
	verbose   bool
}

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Walk a tree and re-encode every image and video into it",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &compressFlags
		if f.quality == 0 {
			f.quality = cfg.ImageQuality
		}
		if f.crf == 0 {
			f.crf = cfg.VideoCRF
		}
		if f.preset == "" {
			f.preset = cfg.VideoPreset
		}
		if f.width == 0 {
			f.width = cfg.MaxWidth
		}

		// Validate the directory pair before touching anything on disk;
		// sweeping first would delete temp files under the input tree when
		// in and out overlap.
		if err := scan.CheckDirs(f.in, f.out); err != nil {
			return err
		}
		// leftovers from a previous aborted run
		cleanup.SweepTemp(f.out, time.Duration(cfg.CleanupMinutes)*time.Minute)

		opts := pipeline.Options{
			InputDir:  f.in,
			OutputDir: f.out,
			Excludes:  f.excludes,
			Mode:      pipeline.ModeFast,
			MaxWidth:  f.width,
			Quality:   f.quality,
			CRF:       f.crf,
			Preset:    f.preset,
			Overwrite: f.overwrite,
			Images:    &webpenc.Encoder{Logger: logger},
			Videos:    &ffmpeg.Runner{Logger: logger},
			Logger:    logger,
		}

		var bar *progressbar.ProgressBar
		if f.custom {
			opts.Mode = pipeline.ModeCustom
			opts.Prompter = prompt.New(os.Stdin, os.Stdout, report.Bytes)
		} else {
			opts.OnFile = func(index, total int, e scan.Entry) {
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetWriter(os.Stderr),
						progressbar.OptionShowCount(),
						progressbar.OptionSetDescription("compressing"),
						progressbar.OptionThrottle(100*time.Millisecond),
					)
				}
				_ = bar.Set(index)
				bar.Describe(e.Rel)
			}
		}

		sum, err := pipeline.Run(cmd.Context(), opts)
		if bar != nil {
			_ = bar.Finish()
			os.Stderr.WriteString("\n")
		}
		if err != nil {
			return err
		}
		report.Render(os.Stdout, sum, f.verbose || f.custom)
		return nil
	},
}

func init() {
	c := compressCmd
	c.Flags().StringVarP(&compressFlags.in, "in", "i", "", "input directory (required)")
	c.Flags().StringVarP(&compressFlags.out, "out", "o", "", "output directory (required)")
	c.Flags().IntVarP(&compressFlags.width, "width", "w", 0, "cap output width in pixels (0 keeps source size)")
	c.Flags().IntVarP(&compressFlags.quality, "quality", "q", 0, "WebP quality 1-100")
	c.Flags().IntVar(&compressFlags.crf, "crf", 0, "H.264 CRF (lower is better quality)")
	c.Flags().StringVar(&compressFlags.preset, "preset", "", "x264 preset (ultrafast..veryslow)")
	c.Flags().BoolVarP(&compressFlags.custom, "custom", "c", false, "ask a target width per file instead of one global width")
	c.Flags().StringArrayVarP(&compressFlags.excludes, "exclude", "x", nil, "glob of paths to skip, repeatable (e.g. '**/originals/**')")
	c.Flags().BoolVar(&compressFlags.overwrite, "overwrite", false, "re-encode even when the output file exists")
	c.Flags().BoolVarP(&compressFlags.verbose, "verbose", "v", false, "print a line per file")
	_ = c.MarkFlagRequired("in")
	_ = c.MarkFlagRequired("out")
	rootCmd.AddCommand(c)
}
