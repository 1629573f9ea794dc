package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/curator/internal/dedupe"
	"github.com/desertthunder/curator/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	StrategyView ViewState = iota
	RunView
	ConfirmView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.SyncEngine
	width        int
	height       int
	strategyList list.Model
	groupList    list.Model
	strategy     dedupe.Strategy
	plan         *dedupe.Plan
	progressChan chan tasks.ProgressUpdate
	confirmChan  chan bool
	progress     tasks.ProgressUpdate
	result       *tasks.SyncResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine tasks.SyncEngine) *Model {
	items := []list.Item{
		strategyItem{strategy: dedupe.StrategyTitle},
		strategyItem{strategy: dedupe.StrategyContent},
	}
	strategyList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	strategyList.Title = "Deduplication Strategy"
	strategyList.SetShowStatusBar(false)
	strategyList.SetFilteringEnabled(false)

	return &Model{
		ctx:          ctx,
		view:         StrategyView,
		engine:       engine,
		strategyList: strategyList,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init is a no-op; the strategy list is built in NewModel.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.strategyList.SetSize(msg.Width-4, msg.Height-8)
		if m.groupList.Width() == 0 {
			m.groupList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case StrategyView:
			return m.handleStrategyKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case RunView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		if m.progress.Phase == tasks.AwaitConfirm {
			if plan, ok := m.progress.Data.(*dedupe.Plan); ok {
				m.plan = plan
				m.buildGroupList()
			}
			m.view = ConfirmView
			// Hold off pulling more progress until the user answers.
			return m, nil
		}
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case StrategyView:
		return m.renderStrategy()
	case RunView:
		return m.renderRun()
	case ConfirmView:
		return m.renderConfirm()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleStrategyKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.strategyList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(strategyItem); ok {
				m.strategy = item.strategy
				m.view = RunView
				return m, m.startRun()
			}
		}
	}

	var cmd tea.Cmd
	m.strategyList, cmd = m.strategyList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.confirmChan <- true
		m.view = RunView
		return m, m.waitForProgress()
	case "n", "esc", "q":
		m.confirmChan <- false
		return m, m.waitForProgress()
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.groupList, cmd = m.groupList.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = StrategyView
		m.plan = nil
		m.result = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case StrategyView:
		m.strategyList, cmd = m.strategyList.Update(msg)
	case ConfirmView:
		m.groupList, cmd = m.groupList.Update(msg)
	}
	return m, cmd
}

func (m *Model) buildGroupList() {
	dupes := m.plan.DuplicateGroups()
	items := make([]list.Item, len(dupes))
	for i, group := range dupes {
		items[i] = groupItem{group: group}
	}
	m.groupList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.groupList.Title = fmt.Sprintf("%d duplicate groups (%d removals)", len(dupes), len(m.plan.Removals()))
	m.groupList.SetShowStatusBar(false)
	m.groupList.SetFilteringEnabled(false)
	m.groupList.SetSize(m.width-4, m.height-10)
}

// startRun launches the pipeline in a goroutine. The engine's confirmation
// callback blocks on confirmChan so destructive work waits for the
// ConfirmView keypress.
func (m *Model) startRun() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.confirmChan = make(chan bool, 1)
	progressChan := m.progressChan

	go func() {
		result, err := m.engine.Sync(m.ctx, progressChan, tasks.SyncOpts{
			Strategy: m.strategy,
			Confirm: func(plan *dedupe.Plan) bool {
				return <-m.confirmChan
			},
		})
		m.result = result
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return runCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return runCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderStrategy() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.strategyList.View(), helpView)
}

func (m *Model) renderRun() string {
	title := styles.title.Render("Library Maintenance")

	var phase string
	switch m.progress.Phase {
	case tasks.ReadList:
		phase = "Reading playlist URLs..."
	case tasks.Download:
		phase = fmt.Sprintf("Downloading (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ScanFiles:
		phase = "Scanning staging directory..."
	case tasks.BuildPlan:
		phase = "Planning deduplication..."
	case tasks.ApplyPlan:
		phase = "Removing duplicates..."
	case tasks.MoveFiles:
		phase = "Moving files to library..."
	case tasks.RefreshIndex:
		phase = "Refreshing media index..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Apply deduplication plan?")
	var warning string
	if removals := len(m.plan.Removals()); removals > 0 {
		warning = styles.warn.Render(fmt.Sprintf("%d files will be removed from staging.", removals))
	} else {
		warning = styles.warn.Render(fmt.Sprintf("No duplicates; %d files will be moved to the library.", len(m.plan.Survivors())))
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, warning, m.groupList.View(), helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Run failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.result.Aborted {
		title := styles.warn.Render("Run aborted; staging left untouched.")
		return fmt.Sprintf("%s\n\n%s", title, helpView)
	}

	if m.result.StagingWasEmpty {
		title := styles.warn.Render("Nothing to do; staging directory has no audio files.")
		return fmt.Sprintf("%s\n\n%s", title, helpView)
	}

	title := styles.ok.Render("✓ Run Complete!")

	removed, moved := 0, 0
	if m.result.Apply != nil {
		removed = len(m.result.Apply.Removed)
	}
	if m.result.Move != nil {
		moved = len(m.result.Move.Moved)
	}
	info := fmt.Sprintf(
		"\nDownloads: %d (%d failed)\nDuplicates removed: %d\nFiles moved to library: %d",
		len(m.result.Downloads),
		len(m.result.DownloadFailures()),
		removed,
		moved,
	)

	var trailer string
	if m.result.RefreshErr != nil {
		trailer = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Index refresh failed: %v", m.result.RefreshErr)))
	}
	if failures := m.result.DownloadFailures(); len(failures) > 0 {
		trailer += fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to download %d playlists:", len(failures))))
		for _, f := range failures {
			trailer += fmt.Sprintf("\n  • %s", f.URL)
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, trailer, helpView)
}
