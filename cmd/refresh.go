package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"
)

// Refresh runs the configured media index command.
func (r *Runner) Refresh(ctx context.Context, cmd *cli.Command) error {
	r.applyConfigFlag(cmd)

	refresher := r.newRefresher()
	if err := refresher.Check(); err != nil {
		return err
	}

	if err := refresher.Refresh(ctx); err != nil {
		return err
	}

	r.writePlain("Index refreshed: %s %s\n", r.config.Index.Binary, strings.Join(r.config.Index.Args, " "))
	return nil
}
