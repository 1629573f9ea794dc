package library

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/curator/internal/shared"
)

// Refresher triggers the media server's index rescan after files land in
// the library directory (mpc update by default).
type Refresher struct {
	cfg    shared.IndexConfig
	runner shared.CommandRunner
	logger *log.Logger
}

func NewRefresher(cfg shared.IndexConfig, runner shared.CommandRunner, logger *log.Logger) *Refresher {
	if runner == nil {
		runner = &shared.ExecRunner{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Refresher{cfg: cfg, runner: runner, logger: logger}
}

// Check verifies the index command is installed.
func (r *Refresher) Check() error {
	_, err := r.runner.LookPath(r.cfg.Binary)
	return err
}

// Refresh invokes the configured index command. A failure here is
// reported to the caller but the preceding move is never rolled back.
func (r *Refresher) Refresh(ctx context.Context) error {
	if err := r.Check(); err != nil {
		return err
	}

	r.logger.Info("refreshing media index", "binary", r.cfg.Binary, "args", r.cfg.Args)
	if err := r.runner.Run(ctx, "", r.cfg.Binary, r.cfg.Args...); err != nil {
		return fmt.Errorf("index refresh failed: %w", err)
	}

	return nil
}
