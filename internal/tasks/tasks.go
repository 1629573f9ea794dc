// package tasks orchestrates the library maintenance pipeline.
//
// The core abstraction is SyncEngine, which runs the sequential
// read → download → plan → apply → move → refresh flow. Operations emit
// progress updates via channels for non-blocking status reporting to
// CLI/UI layers. Confirmation is a value supplied by the caller, never an
// interactive read inside the engine, so the pipeline is testable without
// a terminal.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/curator/internal/dedupe"
	"github.com/desertthunder/curator/internal/downloader"
	"github.com/desertthunder/curator/internal/history"
	"github.com/desertthunder/curator/internal/library"
	"github.com/desertthunder/curator/internal/playlist"
	"github.com/desertthunder/curator/internal/shared"
)

// SyncOpts controls a pipeline run.
type SyncOpts struct {
	Strategy    dedupe.Strategy
	DryRun      bool // plan and report only; no deletes, moves, or refresh
	AutoConfirm bool // proceed without calling Confirm
	SkipRefresh bool
	// Confirm is consulted before destructive action when AutoConfirm is
	// unset. A nil Confirm aborts the run cleanly.
	Confirm func(plan *dedupe.Plan) bool
}

// SyncResult aggregates the outcome of every pipeline stage.
type SyncResult struct {
	Downloads       []downloader.Result
	Plan            *dedupe.Plan
	Apply           *library.ApplyResult
	Move            *library.MoveResult
	RefreshErr      error // reported, never rolls back the move
	Aborted         bool  // user declined at the confirmation boundary
	StagingWasEmpty bool  // no audio files after the download stage
}

// DownloadFailures returns the per-URL failures of the download stage.
func (r *SyncResult) DownloadFailures() []downloader.Result {
	var failed []downloader.Result
	for _, d := range r.Downloads {
		if d.Err != nil {
			failed = append(failed, d)
		}
	}
	return failed
}

// SyncEngine defines the full maintenance pipeline.
type SyncEngine interface {
	// Sync runs the whole flow: read the URL list, download each playlist,
	// plan deduplication over staging, apply it after confirmation, move
	// survivors into the library, and refresh the media index.
	Sync(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOpts) (*SyncResult, error)
}

// LibraryEngine implements SyncEngine over the concrete collaborators.
type LibraryEngine struct {
	cfg        *shared.Config
	downloader *downloader.Downloader
	mover      *library.Mover
	refresher  *library.Refresher
	runs       *history.RunRepository // optional; nil disables history
	logger     *log.Logger
}

// NewLibraryEngine creates a LibraryEngine. The run repository may be nil
// when no database is configured.
func NewLibraryEngine(
	cfg *shared.Config,
	dl *downloader.Downloader,
	mover *library.Mover,
	refresher *library.Refresher,
	runs *history.RunRepository,
	logger *log.Logger,
) *LibraryEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LibraryEngine{
		cfg:        cfg,
		downloader: dl,
		mover:      mover,
		refresher:  refresher,
		runs:       runs,
		logger:     logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// sendControl delivers an update the pipeline waits on. Unlike telemetry,
// it must not be dropped: the consumer has to see the confirmation request
// before anyone can answer it, so this send blocks until received.
func (e *LibraryEngine) sendControl(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	progress <- update
}

// Sync runs the full pipeline sequentially. Per-item failures (one URL,
// one unreadable file) are collected in the result; whole-run failures
// (missing list file, missing tool) abort with an error before any
// destructive action.
func (e *LibraryEngine) Sync(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOpts) (*SyncResult, error) {
	result := &SyncResult{}
	run := e.startRun(opts)

	urls, err := playlist.ReadList(e.cfg.Library.ListPath)
	if err != nil {
		return nil, e.failRun(run, err)
	}
	e.sendProgress(progress, readListUpdate(len(urls), e.cfg.Library.ListPath))

	if run != nil {
		run.URLsTotal = len(urls)
	}

	if len(urls) > 0 {
		downloads, err := e.downloadAll(ctx, progress, urls)
		if err != nil {
			return nil, e.failRun(run, err)
		}
		result.Downloads = downloads

		for _, d := range downloads {
			if run == nil {
				break
			}
			if d.Err != nil {
				run.DownloadedFailed++
			} else {
				run.DownloadedOK++
			}
		}
	}

	staging := shared.ExpandHome(e.cfg.Library.StagingDir)
	candidates, err := dedupe.Scan(staging, e.cfg.Library.Extensions)
	if err != nil {
		if errors.Is(err, shared.ErrEmptyInput) {
			// Nothing landed in staging; a run with no work is not a failure.
			e.logger.Warn("staging directory has no audio files", "dir", staging)
			result.StagingWasEmpty = true
			e.finishRun(run, result, history.StatusCompleted)
			e.sendProgress(progress, doneUpdate())
			return result, nil
		}
		return nil, e.failRun(run, err)
	}
	e.sendProgress(progress, scanFilesUpdate(len(candidates)))

	plan, err := dedupe.BuildPlan(candidates, opts.Strategy)
	if err != nil {
		return nil, e.failRun(run, err)
	}
	result.Plan = plan
	for _, skipped := range plan.Skipped {
		e.logger.Warn("skipped unreadable file", "path", skipped.Path, "error", skipped.Err)
	}

	dupes := plan.DuplicateGroups()
	e.sendProgress(progress, buildPlanUpdate(len(dupes), len(plan.Removals())))
	if run != nil {
		run.DuplicateGroups = len(dupes)
	}

	if opts.DryRun {
		e.finishRun(run, result, history.StatusCompleted)
		e.sendProgress(progress, doneUpdate())
		return result, nil
	}

	// Deleting duplicates and moving files out of staging are both
	// destructive, so the gate applies even when the plan found no
	// duplicate groups.
	if !opts.AutoConfirm {
		e.sendControl(progress, awaitConfirmUpdate(plan))
		if opts.Confirm == nil || !opts.Confirm(plan) {
			result.Aborted = true
			e.finishRun(run, result, history.StatusAborted)
			return result, nil
		}
	}

	applied := e.mover.Apply(plan)
	result.Apply = applied
	e.sendProgress(progress, applyPlanUpdate(len(applied.Removed)))
	if run != nil {
		run.FilesRemoved = len(applied.Removed)
	}

	survivors := plan.Survivors()
	paths := make([]string, 0, len(survivors))
	for _, s := range survivors {
		paths = append(paths, s.Path)
	}

	moved, err := e.mover.Move(paths, shared.ExpandHome(e.cfg.Library.TargetDir))
	if err != nil {
		return result, e.failRun(run, err)
	}
	result.Move = moved
	e.sendProgress(progress, moveFilesUpdate(len(moved.Moved)))
	if run != nil {
		run.FilesMoved = len(moved.Moved)
	}

	if !opts.SkipRefresh {
		e.sendProgress(progress, refreshIndexUpdate())
		if err := e.refresher.Refresh(ctx); err != nil {
			e.logger.Error("index refresh failed", "error", err)
			result.RefreshErr = err
		}
	}

	e.finishRun(run, result, history.StatusCompleted)
	e.sendProgress(progress, doneUpdate())
	return result, nil
}

// downloadAll fetches every URL and emits per-URL progress.
func (e *LibraryEngine) downloadAll(ctx context.Context, progress chan<- ProgressUpdate, urls []string) ([]downloader.Result, error) {
	staging := shared.ExpandHome(e.cfg.Library.StagingDir)

	return e.downloader.DownloadAll(ctx, staging, urls, func(step, total int, url string) {
		e.sendProgress(progress, downloadUpdate(step, total, url))
	})
}

// startRun opens a history row, or returns nil when history is disabled.
func (e *LibraryEngine) startRun(opts SyncOpts) *history.Run {
	if e.runs == nil {
		return nil
	}

	run := &history.Run{
		Strategy:  opts.Strategy.String(),
		Status:    history.StatusRunning,
		StartedAt: time.Now(),
	}
	if err := e.runs.Create(run); err != nil {
		e.logger.Warn("failed to record run start", "error", err)
		return nil
	}
	return run
}

// finishRun closes a history row with the given status.
func (e *LibraryEngine) finishRun(run *history.Run, result *SyncResult, status string) {
	if run == nil || e.runs == nil {
		return
	}

	now := time.Now()
	run.Status = status
	run.FinishedAt = &now
	if err := e.runs.Update(run); err != nil {
		e.logger.Warn("failed to record run finish", "error", err)
	}
}

// failRun marks the history row failed and passes the error through.
func (e *LibraryEngine) failRun(run *history.Run, err error) error {
	if run != nil && e.runs != nil {
		now := time.Now()
		run.Status = history.StatusFailed
		run.FinishedAt = &now
		if uerr := e.runs.Update(run); uerr != nil {
			e.logger.Warn("failed to record run failure", "error", uerr)
		}
	}
	return fmt.Errorf("sync failed: %w", err)
}
