package main

import (
	"context"
	"errors"

	"github.com/desertthunder/curator/internal/dedupe"
	"github.com/desertthunder/curator/internal/shared"
	"github.com/urfave/cli/v3"
)

// Move relocates every staged audio file into the library directory,
// applying the configured collision policy.
func (r *Runner) Move(ctx context.Context, cmd *cli.Command) error {
	r.applyConfigFlag(cmd)

	target := cmd.String("target")
	if target == "" {
		target = r.config.Library.TargetDir
	}
	target = shared.ExpandHome(target)

	staging := shared.ExpandHome(r.config.Library.StagingDir)
	candidates, err := dedupe.Scan(staging, r.config.Library.Extensions)
	if err != nil {
		if errors.Is(err, shared.ErrEmptyInput) {
			r.writePlain("No audio files in %s\n", staging)
			return nil
		}
		return err
	}

	paths := make([]string, 0, len(candidates))
	for _, c := range candidates {
		paths = append(paths, c.Path)
	}

	result, err := r.newMover().Move(paths, target)
	if err != nil {
		return err
	}

	r.writePlainln("Moved %d files to %s", len(result.Moved), target)
	for _, skipped := range result.Skipped {
		r.writePlain("  skipped: %s (already exists)\n", skipped)
	}
	for _, fileErr := range result.Errors {
		r.writePlain("  failed: %s (%v)\n", fileErr.Path, fileErr.Err)
	}

	return nil
}
