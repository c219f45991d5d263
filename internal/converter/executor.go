package converter

import (
	"context"
	"os/exec"
)

// Executor abstracts command execution to ease testing.
type Executor interface {
	// Run executes name with args and returns its combined stdout and stderr.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// SystemExecutor executes commands using the local OS.
type SystemExecutor struct{}

func (SystemExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
