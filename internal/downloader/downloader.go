// package downloader adapts the external download tool (yt-dlp by default).
//
// The contract with the tool is narrow: given a playlist URL, produce zero
// or more audio files in the staging directory, or exit non-zero. One URL
// failing never aborts the rest of the batch.
package downloader

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/curator/internal/shared"
	"golang.org/x/time/rate"
)

// Result records the outcome of downloading a single playlist URL.
type Result struct {
	URL      string
	Err      error
	Duration time.Duration
}

// Downloader invokes the configured download tool once per playlist URL.
type Downloader struct {
	cfg     shared.DownloaderConfig
	runner  shared.CommandRunner
	logger  *log.Logger
	limiter *rate.Limiter
}

// New creates a Downloader. A non-positive rate limit disables throttling
// between invocations.
func New(cfg shared.DownloaderConfig, runner shared.CommandRunner, logger *log.Logger) *Downloader {
	if runner == nil {
		runner = &shared.ExecRunner{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Downloader{
		cfg:     cfg,
		runner:  runner,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Check verifies the download tool is installed before any batch work
// starts. Returns [shared.ErrNotFound] when the binary is missing.
func (d *Downloader) Check() error {
	_, err := d.runner.LookPath(d.cfg.Binary)
	return err
}

// args builds the tool invocation for a single URL, requesting audio
// extraction in the configured format.
func (d *Downloader) args(url string) []string {
	args := []string{
		"-x",
		"--audio-format", d.cfg.AudioFormat,
		"--audio-quality", d.cfg.AudioQuality,
	}
	if d.cfg.EmbedThumbnail {
		args = append(args, "--embed-thumbnail")
	}
	if d.cfg.EmbedMetadata {
		args = append(args, "--embed-metadata", "--add-metadata")
	}
	if d.cfg.OutputTemplate != "" {
		args = append(args, "-o", d.cfg.OutputTemplate)
	}
	return append(args, url)
}

// Download fetches a single playlist URL into stagingDir.
func (d *Downloader) Download(ctx context.Context, stagingDir, url string) error {
	d.logger.Info("downloading", "url", url, "staging", stagingDir)
	if err := d.runner.Run(ctx, stagingDir, d.cfg.Binary, d.args(url)...); err != nil {
		return fmt.Errorf("download failed for %s: %w", url, err)
	}
	return nil
}

// DownloadAll fetches every URL sequentially, rate-limited between
// invocations, and reports per-URL results. Failures are recorded, not
// propagated, so later URLs still run. onStart, when non-nil, is called
// before each invocation for progress reporting. Returns
// [shared.ErrEmptyInput] when there are no URLs to process.
func (d *Downloader) DownloadAll(ctx context.Context, stagingDir string, urls []string, onStart func(step, total int, url string)) ([]Result, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no playlist URLs", shared.ErrEmptyInput)
	}

	if err := d.Check(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	results := make([]Result, 0, len(urls))
	for i, url := range urls {
		if err := d.limiter.Wait(ctx); err != nil {
			return results, fmt.Errorf("download batch cancelled: %w", err)
		}

		if onStart != nil {
			onStart(i+1, len(urls), url)
		}

		start := time.Now()
		err := d.Download(ctx, stagingDir, url)
		if err != nil {
			d.logger.Error("download failed", "url", url, "error", err)
		}

		results = append(results, Result{
			URL:      url,
			Err:      err,
			Duration: time.Since(start),
		})
	}

	return results, nil
}
