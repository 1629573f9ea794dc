package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/curator/internal/tasks"
)

var (
	_ tea.Msg = progressUpdateMsg{}
	_ tea.Msg = runCompleteMsg{}
)

// progressUpdateMsg carries one engine progress event into the Update loop.
type progressUpdateMsg tasks.ProgressUpdate

// runCompleteMsg signals that the pipeline goroutine has finished.
type runCompleteMsg struct {
	result *tasks.SyncResult
	err    error
}
