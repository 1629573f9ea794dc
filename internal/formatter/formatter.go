// package formatter exports deduplication plans and run history to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/curator/internal/dedupe"
	"github.com/desertthunder/curator/internal/history"
	"github.com/desertthunder/curator/internal/shared"
)

// Supported export formats.
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// candidate actions in plan exports
const (
	actionKeep   = "keep"
	actionRemove = "remove"
)

// PlanToCSV converts a deduplication plan to CSV with columns:
// Group, Key, File, Size, Action
func PlanToCSV(plan *dedupe.Plan) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Group", "Key", "File", "Size", "Action"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, group := range plan.Groups {
		for j, c := range group.Candidates {
			action := actionKeep
			if j != group.Survivor {
				action = actionRemove
			}
			record := []string{
				strconv.Itoa(i + 1),
				group.Key,
				c.Name,
				strconv.FormatInt(c.Size, 10),
				action,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PlanToMarkdown converts a deduplication plan to Markdown. Singleton
// groups are summarized; duplicate groups are listed file by file.
func PlanToMarkdown(plan *dedupe.Plan) ([]byte, error) {
	var buf bytes.Buffer

	dupes := plan.DuplicateGroups()
	removals := plan.Removals()

	buf.WriteString("# Deduplication Plan\n\n")
	buf.WriteString(fmt.Sprintf("**Strategy**: %s\n", plan.Strategy))
	buf.WriteString(fmt.Sprintf("**Files**: %d\n", countCandidates(plan)))
	buf.WriteString(fmt.Sprintf("**Duplicate groups**: %d\n", len(dupes)))
	buf.WriteString(fmt.Sprintf("**Removal candidates**: %d\n\n", len(removals)))

	if len(dupes) > 0 {
		buf.WriteString("## Duplicates\n\n")
		for i, group := range dupes {
			buf.WriteString(fmt.Sprintf("%d. `%s`\n", i+1, group.Key))
			for j, c := range group.Candidates {
				marker := "remove"
				if j == group.Survivor {
					marker = "keep"
				}
				buf.WriteString(fmt.Sprintf("   - **%s** %s (%s)\n", marker, c.Name, shared.FormatBytes(c.Size)))
			}
		}
		buf.WriteString("\n")
	}

	if len(plan.Skipped) > 0 {
		buf.WriteString("## Skipped\n\n")
		for _, s := range plan.Skipped {
			buf.WriteString(fmt.Sprintf("- %s: %v\n", s.Path, s.Err))
		}
	}

	return buf.Bytes(), nil
}

// PlanToText converts a deduplication plan to plain text.
func PlanToText(plan *dedupe.Plan) ([]byte, error) {
	var buf bytes.Buffer

	dupes := plan.DuplicateGroups()
	buf.WriteString(fmt.Sprintf("Strategy: %s\n", plan.Strategy))
	buf.WriteString(fmt.Sprintf("Files: %d\n", countCandidates(plan)))
	buf.WriteString(fmt.Sprintf("Duplicate groups: %d\n", len(dupes)))
	buf.WriteString(fmt.Sprintf("Removal candidates: %d\n", len(plan.Removals())))

	for i, group := range dupes {
		buf.WriteString(fmt.Sprintf("\nGroup %d (%s):\n", i+1, group.Key))
		for j, c := range group.Candidates {
			action := actionRemove
			if j == group.Survivor {
				action = actionKeep
			}
			buf.WriteString(fmt.Sprintf("  [%s] %s (%s)\n", action, c.Name, shared.FormatBytes(c.Size)))
		}
	}

	for _, s := range plan.Skipped {
		buf.WriteString(fmt.Sprintf("\nSkipped %s: %v\n", s.Path, s.Err))
	}

	return buf.Bytes(), nil
}

// PlanToJSON generates an indented JSON representation of a plan.
func PlanToJSON(plan *dedupe.Plan) ([]byte, error) {
	type candidateOut struct {
		Path string `json:"path"`
		Name string `json:"name"`
		Size int64  `json:"size"`
	}
	type groupOut struct {
		Key      string         `json:"key"`
		Survivor candidateOut   `json:"survivor"`
		Removals []candidateOut `json:"removals"`
	}
	type planOut struct {
		Strategy string     `json:"strategy"`
		Files    int        `json:"files"`
		Groups   []groupOut `json:"duplicate_groups"`
		Skipped  []string   `json:"skipped,omitempty"`
	}

	conv := func(c dedupe.Candidate) candidateOut {
		return candidateOut{Path: c.Path, Name: c.Name, Size: c.Size}
	}

	out := planOut{Strategy: plan.Strategy.String(), Files: countCandidates(plan)}
	for _, group := range plan.DuplicateGroups() {
		g := groupOut{Key: group.Key, Survivor: conv(group.SurvivorCandidate()), Removals: []candidateOut{}}
		for _, c := range group.Removals() {
			g.Removals = append(g.Removals, conv(c))
		}
		out.Groups = append(out.Groups, g)
	}
	for _, s := range plan.Skipped {
		out.Skipped = append(out.Skipped, s.Path)
	}

	return shared.MarshalJSON(out, true)
}

// RunsToText renders run history rows as aligned plain text, newest first.
func RunsToText(runs []*history.Run) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%-4s  %-9s  %-8s  %-5s  %-7s  %-7s  %-6s  %s\n",
		"Seq", "Status", "Strategy", "URLs", "Removed", "Moved", "Groups", "Started"))

	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("%-4d  %-9s  %-8s  %-5d  %-7d  %-7d  %-6d  %s\n",
			run.Sequence,
			run.Status,
			run.Strategy,
			run.URLsTotal,
			run.FilesRemoved,
			run.FilesMoved,
			run.DuplicateGroups,
			run.StartedAt.Format("2006-01-02 15:04:05"),
		))
	}

	return buf.Bytes()
}

// RunsToJSON generates an indented JSON representation of run history.
func RunsToJSON(runs []*history.Run) ([]byte, error) {
	return shared.MarshalJSON(runs, true)
}

// ExportPlan renders a plan in the given format. Returns
// [shared.ErrInvalidArgument] for unknown formats.
func ExportPlan(plan *dedupe.Plan, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		return PlanToText(plan)
	case FormatCSV:
		return PlanToCSV(plan)
	case FormatMarkdown, "md":
		return PlanToMarkdown(plan)
	case FormatJSON:
		return PlanToJSON(plan)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want text, csv, markdown, or json)", shared.ErrInvalidArgument, format)
	}
}

// WritePlanExport renders a plan in the given format and writes it to path.
func WritePlanExport(plan *dedupe.Plan, format, path string) error {
	data, err := ExportPlan(plan, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func countCandidates(plan *dedupe.Plan) int {
	total := 0
	for _, g := range plan.Groups {
		total += len(g.Candidates)
	}
	return total
}
