package build

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Runner executes the external tools the pipeline drives.
type Runner interface {
	// Run streams the command's output and fails on a non-zero exit.
	Run(ctx context.Context, name string, args ...string) error
	// Capture returns the command's trimmed stdout and fails on a non-zero exit.
	Capture(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec, inheriting the environment.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner attached to the process stdout and stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	slog.Info("executing", "cmd", commandLine(name, args))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", commandLine(name, args), err)
	}
	return nil
}

// Capture implements Runner.
func (r *ExecRunner) Capture(ctx context.Context, name string, args ...string) (string, error) {
	slog.Info("executing", "cmd", commandLine(name, args))

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", commandLine(name, args), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
