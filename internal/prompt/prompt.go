// Package prompt reads per-file answers for custom mode.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxAttempts = 3

// Stdio prompts on w and reads answers line by line from r.
type Stdio struct {
	r    *bufio.Reader
	w    io.Writer
	size func(int64) string
}

// New returns a prompter. sizeFn formats the file size shown in the prompt.
func New(r io.Reader, w io.Writer, sizeFn func(int64) string) *Stdio {
	if sizeFn == nil {
		sizeFn = func(n int64) string { return fmt.Sprintf("%d B", n) }
	}
	return &Stdio{r: bufio.NewReader(r), w: w, size: sizeFn}
}

// WidthFor asks for the target width of one file. An empty answer keeps the
// source size (width 0), "s" or "skip" drops the file. Invalid input is
// re-asked a few times, then the source size is kept.
func (p *Stdio) WidthFor(rel string, size int64) (int, bool, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintf(p.w, "%s (%s) width [Enter=keep, s=skip]: ", rel, p.size(size))
		line, err := p.r.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				// stdin closed mid-run: keep source size for the rest
				return 0, false, nil
			}
			return 0, false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "":
			return 0, false, nil
		case "s", "skip":
			return 0, true, nil
		}
		w, convErr := strconv.Atoi(answer)
		if convErr == nil && w > 0 {
			return w, false, nil
		}
		fmt.Fprintf(p.w, "enter a positive number, blank or s\n")
	}
	return 0, false, nil
}
