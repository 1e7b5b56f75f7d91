// Package cli implements the mediapress commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "mediapress/internal/config"
	"mediapress/internal/logx"
)

var (
	cfgPath  string
	logLevel string

	cfg    cfgpkg.Config
	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "mediapress",
	Short: "Re-encode a directory tree of images and videos for the web",
	Long: `mediapress walks a directory tree, converts images to WebP and videos to
H.264/AAC MP4, optionally capping their width, and mirrors the folder
structure into an output directory while reporting size savings.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = cfgpkg.Load(cfgPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		console := cmd.Name() != "serve"
		logger, err = logx.Init(cfg.LogLevel, console)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
