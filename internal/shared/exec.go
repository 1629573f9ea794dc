package shared

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// CommandRunner abstracts external process invocation so the downloader and
// index refresher can be tested without the real binaries installed.
type CommandRunner interface {
	// LookPath reports where binary resolves on PATH, or an error when it
	// is not installed.
	LookPath(binary string) (string, error)

	// Run executes binary with args in dir, blocking until it exits.
	// A non-zero exit wraps [ErrExternalTool] with captured stderr.
	Run(ctx context.Context, dir, binary string, args ...string) error
}

// ExecRunner is the production CommandRunner backed by os/exec.
// Stdout, when set, receives the tool's own output so progress from
// long-running downloads stays visible.
type ExecRunner struct {
	Stdout io.Writer
}

var _ CommandRunner = (*ExecRunner)(nil)

func (e *ExecRunner) LookPath(binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not installed", ErrNotFound, binary)
	}
	return path, nil
}

func (e *ExecRunner) Run(ctx context.Context, dir, binary string, args ...string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if e.Stdout != nil {
		cmd.Stdout = e.Stdout
	}

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%w: %s: %s", ErrExternalTool, binary, msg)
	}

	return nil
}
