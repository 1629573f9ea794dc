// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/curator/internal/shared"
)

// FakeRunner is a test double for [shared.CommandRunner].
//
// Invocations are recorded; errors can be forced globally, per binary, or
// per argument substring. OnRun, when set, is called for every Run so
// tests can simulate the tool's side effects (e.g. writing files into the
// staging directory).
type FakeRunner struct {
	Calls       []FakeCall
	LookPathErr error
	RunErr      error
	FailWhenArg string // Run fails when any argument contains this substring
	MissingBins map[string]bool
	OnRun       func(dir, binary string, args []string) error
}

// FakeCall records one Run invocation.
type FakeCall struct {
	Dir    string
	Binary string
	Args   []string
}

var _ shared.CommandRunner = (*FakeRunner)(nil)

func (f *FakeRunner) LookPath(binary string) (string, error) {
	if f.LookPathErr != nil {
		return "", f.LookPathErr
	}
	if f.MissingBins[binary] {
		return "", fmt.Errorf("%w: %s is not installed", shared.ErrNotFound, binary)
	}
	return "/usr/bin/" + binary, nil
}

func (f *FakeRunner) Run(ctx context.Context, dir, binary string, args ...string) error {
	f.Calls = append(f.Calls, FakeCall{Dir: dir, Binary: binary, Args: args})

	if f.RunErr != nil {
		return f.RunErr
	}
	if f.FailWhenArg != "" {
		for _, a := range args {
			if strings.Contains(a, f.FailWhenArg) {
				return fmt.Errorf("%w: forced failure for %s", shared.ErrExternalTool, a)
			}
		}
	}
	if f.OnRun != nil {
		return f.OnRun(dir, binary, args)
	}
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MustWriteFile writes content to dir/name and fails the test on error.
func MustWriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}
