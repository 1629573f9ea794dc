package main

import (
	"context"
	"errors"

	"github.com/desertthunder/curator/internal/dedupe"
	"github.com/desertthunder/curator/internal/formatter"
	"github.com/desertthunder/curator/internal/shared"
	"github.com/urfave/cli/v3"
)

// Dedupe scans a directory, prints (or exports) the deduplication plan,
// and with --apply deletes the duplicates after confirmation.
func (r *Runner) Dedupe(ctx context.Context, cmd *cli.Command) error {
	r.applyConfigFlag(cmd)

	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Library.StagingDir
	}
	dir = shared.ExpandHome(dir)

	strategy, err := dedupe.ParseStrategy(cmd.String("strategy"))
	if err != nil {
		return err
	}

	candidates, err := dedupe.Scan(dir, r.config.Library.Extensions)
	if err != nil {
		if errors.Is(err, shared.ErrEmptyInput) {
			r.writePlain("No audio files in %s\n", dir)
			return nil
		}
		return err
	}

	plan, err := dedupe.BuildPlan(candidates, strategy)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if output := cmd.String("output"); output != "" {
		if err := formatter.WritePlanExport(plan, format, output); err != nil {
			return err
		}
		r.writePlain("Plan written to %s\n", output)
	} else {
		data, err := formatter.ExportPlan(plan, format)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return err
		}
	}

	if !cmd.Bool("apply") {
		return nil
	}

	if len(plan.Removals()) == 0 {
		r.writePlain("Nothing to remove.\n")
		return nil
	}

	if !cmd.Bool("yes") && !r.promptConfirm(plan) {
		r.writePlainln("Aborted; no files were removed.")
		return nil
	}

	applied := r.newMover().Apply(plan)
	r.writePlainln("Removed %d duplicate files from %s", len(applied.Removed), dir)
	for _, fileErr := range applied.Errors {
		r.writePlain("  failed: %s (%v)\n", fileErr.Path, fileErr.Err)
	}

	return nil
}
