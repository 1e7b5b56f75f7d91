// Package report renders per-file lines and the closing savings summary.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"mediapress/internal/pipeline"
)

const kb = 1000

// Bytes formats n as a human-readable size, 1000-based.
func Bytes(n int64) string {
	switch {
	case n < 0:
		return "-" + Bytes(-n)
	case n < kb:
		return fmt.Sprintf("%d B", n)
	case n < kb*kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	case n < kb*kb*kb:
		return fmt.Sprintf("%.2f MB", float64(n)/(kb*kb))
	default:
		return fmt.Sprintf("%.2f GB", float64(n)/(kb*kb*kb))
	}
}

// SavedPercent returns how much smaller out is than in, in percent.
// Negative means the output grew.
func SavedPercent(in, out int64) float64 {
	if in <= 0 {
		return 0
	}
	return (1 - float64(out)/float64(in)) * 100
}

// Render writes the summary to w. With verbose set, every file gets a line;
// otherwise only failures are listed before the totals.
func Render(w io.Writer, sum *pipeline.Summary, verbose bool) {
	green := color.New(color.FgGreen).SprintfFunc()
	red := color.New(color.FgRed).SprintfFunc()
	yellow := color.New(color.FgYellow).SprintfFunc()

	for _, r := range sum.Results {
		switch {
		case r.Action == pipeline.ActionFailed:
			fmt.Fprintf(w, "%s %s: %v\n", red("FAIL"), r.Rel, r.Err)
		case verbose && r.Action == pipeline.ActionEncoded:
			fmt.Fprintf(w, "%s %s -> %s  %s -> %s (%+.1f%%)\n",
				green("OK  "), r.Rel, r.OutRel,
				Bytes(r.InBytes), Bytes(r.OutBytes), -SavedPercent(r.InBytes, r.OutBytes))
		case verbose:
			fmt.Fprintf(w, "%s %s (%s)\n", yellow("SKIP"), r.Rel, r.Action)
		}
	}

	fmt.Fprintf(w, "\nEncoded %d files (%d images, %d videos), skipped %d, failed %d in %s\n",
		sum.Encoded, sum.Images, sum.Videos, sum.Skipped, sum.Failed, sum.Elapsed.Round(10*time.Millisecond))
	if sum.Encoded == 0 {
		return
	}
	saved := sum.InBytes - sum.OutBytes
	line := fmt.Sprintf("Total: %s -> %s, saved %s (%.1f%%)",
		Bytes(sum.InBytes), Bytes(sum.OutBytes), Bytes(saved), SavedPercent(sum.InBytes, sum.OutBytes))
	if saved >= 0 {
		fmt.Fprintln(w, green("%s", line))
	} else {
		fmt.Fprintln(w, red("%s", line))
	}
}
