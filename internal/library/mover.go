// package library applies deduplication plans to the filesystem: deleting
// losers, moving survivors into the library directory, and triggering the
// media-index rescan.
package library

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/curator/internal/dedupe"
	"github.com/desertthunder/curator/internal/shared"
)

// FileError records a per-file failure that did not abort the batch.
type FileError struct {
	Path string
	Err  error
}

// ApplyResult summarizes executing a dedupe plan's removals.
type ApplyResult struct {
	Removed []string
	Kept    []string // non-survivors left in place under keep_duplicates
	Errors  []FileError
}

// MoveResult summarizes relocating files into the library directory.
type MoveResult struct {
	Moved   []string // destination paths
	Skipped []string // sources left in place due to collisions under "skip"
	Errors  []FileError
}

// Mover executes the destructive half of the pipeline. It only ever acts
// on an already-confirmed plan; planning itself lives in package dedupe.
type Mover struct {
	cfg    shared.LibraryConfig
	logger *log.Logger
}

func NewMover(cfg shared.LibraryConfig, logger *log.Logger) *Mover {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Mover{cfg: cfg, logger: logger}
}

// Apply deletes the plan's removal candidates, or records them as kept
// when keep_duplicates is set. Per-file failures are collected so the rest
// of the batch proceeds.
func (m *Mover) Apply(plan *dedupe.Plan) *ApplyResult {
	result := &ApplyResult{}

	for _, candidate := range plan.Removals() {
		if m.cfg.KeepDuplicates {
			result.Kept = append(result.Kept, candidate.Path)
			continue
		}

		if err := os.Remove(candidate.Path); err != nil {
			m.logger.Error("failed to remove duplicate", "path", candidate.Path, "error", err)
			result.Errors = append(result.Errors, FileError{
				Path: candidate.Path,
				Err:  fmt.Errorf("%w: %s: %v", shared.ErrUnreadableFile, candidate.Path, err),
			})
			continue
		}

		m.logger.Info("removed duplicate", "path", candidate.Path)
		result.Removed = append(result.Removed, candidate.Path)
	}

	return result
}

// Move relocates files into targetDir, creating it if needed. Name
// collisions follow the configured policy: "rename" appends " (n)" before
// the extension, "skip" leaves the source in place and records it. An
// existing library file is never silently overwritten.
func (m *Mover) Move(files []string, targetDir string) (*MoveResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to move", shared.ErrEmptyInput)
	}

	if info, err := os.Stat(targetDir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotADirectory, targetDir)
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create target directory %s: %w", targetDir, err)
	}

	result := &MoveResult{}

	for _, src := range files {
		dest := filepath.Join(targetDir, filepath.Base(src))

		if _, err := os.Stat(dest); err == nil {
			switch m.cfg.OnCollision {
			case "skip":
				m.logger.Warn("destination exists, skipping", "src", src, "dest", dest)
				result.Skipped = append(result.Skipped, src)
				result.Errors = append(result.Errors, FileError{
					Path: src,
					Err:  fmt.Errorf("%w: %s", shared.ErrDestinationExists, dest),
				})
				continue
			default: // "rename"
				dest = nextFreeName(dest)
			}
		}

		if err := moveFile(src, dest); err != nil {
			m.logger.Error("failed to move file", "src", src, "dest", dest, "error", err)
			result.Errors = append(result.Errors, FileError{Path: src, Err: err})
			continue
		}

		m.logger.Info("moved", "src", src, "dest", dest)
		result.Moved = append(result.Moved, dest)
	}

	return result, nil
}

// nextFreeName finds the first "name (n).ext" variant that does not exist.
func nextFreeName(dest string) string {
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// moveFile renames src to dest, falling back to copy-and-remove when the
// rename crosses filesystems.
func moveFile(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("failed to move %s: %w", src, err)
	}

	if err := copyFile(src, dest); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove source after copy %s: %w", src, err)
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrUnreadableFile, src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrUnreadableFile, src, err)
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	return out.Close()
}
