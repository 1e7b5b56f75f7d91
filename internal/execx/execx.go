package execx

import (
	"bytes"
	"context"
	"os/exec"
)

// Run executes name with args and returns stdout and stderr as strings.
func Run(name string, args ...string) (string, string, error) {
	return RunContext(context.Background(), name, args...)
}

// RunContext is Run with cancellation.
func RunContext(ctx context.Context, name string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
