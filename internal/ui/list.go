package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/curator/internal/dedupe"
)

var (
	_ list.Item = strategyItem{}
	_ list.Item = groupItem{}
)

// strategyItem wraps [dedupe.Strategy] to implement [list.Item].
type strategyItem struct {
	strategy dedupe.Strategy
}

func (i strategyItem) FilterValue() string { return i.strategy.String() }
func (i strategyItem) Title() string       { return i.strategy.String() }
func (i strategyItem) Description() string {
	switch i.strategy {
	case dedupe.StrategyTitle:
		return "group files by normalized filename (fast, no file reads)"
	case dedupe.StrategyContent:
		return "group files by content hash (exact, reads every file)"
	default:
		return ""
	}
}

// groupItem wraps [dedupe.Group] to implement [list.Item].
type groupItem struct {
	group dedupe.Group
}

func (i groupItem) FilterValue() string { return i.group.Key }
func (i groupItem) Title() string       { return i.group.SurvivorCandidate().Name }
func (i groupItem) Description() string {
	removals := i.group.Removals()
	if len(removals) == 1 {
		return fmt.Sprintf("removes %s", removals[0].Name)
	}
	return fmt.Sprintf("removes %d duplicates", len(removals))
}
