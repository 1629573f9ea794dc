package main

import (
	"context"

	"github.com/desertthunder/curator/internal/playlist"
	"github.com/desertthunder/curator/internal/shared"
	"github.com/urfave/cli/v3"
)

// Download fetches every playlist URL in the list file into staging,
// without deduplicating or moving anything.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	r.applyConfigFlag(cmd)
	if list := cmd.String("list"); list != "" {
		r.config.Library.ListPath = list
	}

	urls, err := playlist.ReadList(r.config.Library.ListPath)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		r.writePlain("No playlist URLs in %s\n", r.config.Library.ListPath)
		return nil
	}

	staging := shared.ExpandHome(r.config.Library.StagingDir)
	r.logger.Info("downloading playlists", "count", len(urls), "staging", staging)

	results, err := r.newDownloader().DownloadAll(ctx, staging, urls, func(step, total int, url string) {
		r.writePlain("[%d/%d] %s\n", step, total, url)
	})
	if err != nil {
		return err
	}

	ok := 0
	for _, res := range results {
		if res.Err == nil {
			ok++
		}
	}

	r.writePlainln("Downloaded %d/%d playlists to %s", ok, len(results), staging)
	for _, res := range results {
		if res.Err != nil {
			r.writePlain("  failed: %s (%v)\n", res.URL, res.Err)
		}
	}

	return nil
}
