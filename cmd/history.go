package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/curator/internal/formatter"
	"github.com/desertthunder/curator/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists past pipeline runs recorded in the database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	r.applyConfigFlag(cmd)

	repo := r.openHistory()
	if repo == nil {
		return fmt.Errorf("%w: no database configured; run 'curator setup' first", shared.ErrMissingConfig)
	}

	runs, err := repo.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.RunsToJSON(runs)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(append(data, '\n')); err != nil {
			return err
		}
		return nil
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded yet.\n")
		return nil
	}

	if _, err := r.output.Write(formatter.RunsToText(runs)); err != nil {
		return err
	}
	return nil
}
