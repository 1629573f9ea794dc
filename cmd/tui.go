package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/curator/internal/shared"
	"github.com/desertthunder/curator/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for a maintenance run.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.applyConfigFlag(cmd)

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/curator-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	r.openHistory()
	model := ui.NewModel(ctx, r.newEngine())
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
