// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for library maintenance:
//  1. [StrategyView] : Choose the deduplication strategy
//  2. [RunView] : Monitor real-time pipeline progress updates
//  3. [ConfirmView] : Review the deduplication plan and approve removals
//  4. [ResultView] : Display run metrics and any failures
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the LibraryEngine, providing non-blocking status reporting during a run.
// The engine's confirmation callback blocks on a channel the ConfirmView feeds, so destructive work waits for a keypress.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
