package main

import (
	"context"

	"github.com/desertthunder/curator/internal/dedupe"
	"github.com/desertthunder/curator/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync runs the full pipeline: read list → download → dedupe → confirm →
// move → refresh. Per-URL failures are reported in the summary; a clean
// user abort exits zero with staging untouched.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	r.applyConfigFlag(cmd)
	if list := cmd.String("list"); list != "" {
		r.config.Library.ListPath = list
	}
	if cmd.Bool("keep") {
		r.config.Library.KeepDuplicates = true
	}

	strategy, err := r.resolveStrategy(cmd)
	if err != nil {
		return err
	}

	r.openHistory()
	engine := r.newEngine()

	r.logger.Info("starting sync", "strategy", strategy, "list", r.config.Library.ListPath)

	// The drain goroutine owns all progress output, including the
	// confirmation prompt, so prompt and progress lines never interleave.
	progressCh := make(chan tasks.ProgressUpdate, 50)
	answerCh := make(chan bool, 1)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ReadList, tasks.ScanFiles, tasks.BuildPlan:
				r.writePlain("• %s\n", update.Message)
			case tasks.Download:
				r.writePlain("  ↓ %s\n", update.Message)
			case tasks.AwaitConfirm:
				plan, ok := update.Data.(*dedupe.Plan)
				answerCh <- ok && r.promptConfirm(plan)
			case tasks.ApplyPlan, tasks.MoveFiles, tasks.RefreshIndex:
				r.writePlain("• %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Sync(ctx, progressCh, tasks.SyncOpts{
		Strategy:    strategy,
		DryRun:      cmd.Bool("dry-run"),
		AutoConfirm: cmd.Bool("yes"),
		SkipRefresh: cmd.Bool("skip-refresh"),
		Confirm: func(plan *dedupe.Plan) bool {
			return <-answerCh
		},
	})
	close(progressCh)
	// Let buffered progress lines finish printing before the summary.
	<-drained

	if err != nil {
		return err
	}

	if result.Aborted {
		r.writePlainln("Aborted; staging directory left untouched.")
		return nil
	}
	if result.StagingWasEmpty {
		r.writePlainln("Nothing to do; staging directory has no audio files.")
		return nil
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync Complete")
	r.writePlain("Downloads: %d (%d failed)\n", len(result.Downloads), len(result.DownloadFailures()))
	if result.Plan != nil {
		r.writePlain("Duplicate groups: %d\n", len(result.Plan.DuplicateGroups()))
	}
	if result.Apply != nil {
		r.writePlain("Duplicates removed: %d\n", len(result.Apply.Removed))
	}
	if result.Move != nil {
		r.writePlain("Moved to library: %d (skipped %d)\n", len(result.Move.Moved), len(result.Move.Skipped))
	}
	if cmd.Bool("dry-run") {
		r.writePlain("Dry run: nothing was deleted or moved.\n")
	}
	if result.RefreshErr != nil {
		r.writePlain("Index refresh failed: %v\n", result.RefreshErr)
	}

	if failures := result.DownloadFailures(); len(failures) > 0 {
		r.writePlain("\nFailed downloads:\n")
		for _, f := range failures {
			r.writePlain("  - %s\n", f.URL)
		}
	}

	return nil
}
