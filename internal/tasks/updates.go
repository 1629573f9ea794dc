package tasks

import (
	"fmt"

	"github.com/desertthunder/curator/internal/dedupe"
)

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Pipeline phase enumeration
type Phase int

const (
	ReadList Phase = iota
	Download
	ScanFiles
	BuildPlan
	AwaitConfirm
	ApplyPlan
	MoveFiles
	RefreshIndex
	Done
)

func (p Phase) String() string {
	switch p {
	case ReadList:
		return "read_list"
	case Download:
		return "download"
	case ScanFiles:
		return "scan_files"
	case BuildPlan:
		return "build_plan"
	case AwaitConfirm:
		return "await_confirm"
	case ApplyPlan:
		return "apply_plan"
	case MoveFiles:
		return "move_files"
	case RefreshIndex:
		return "refresh_index"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

func readListUpdate(count int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadList,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Read %d playlist URLs from %s", count, path),
	}
}

func downloadUpdate(step, total int, url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Download,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Downloading %d/%d: %s", step, total, url),
		Data:    url,
	}
}

func scanFilesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanFiles,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d audio files in staging", count),
	}
}

func buildPlanUpdate(groups, removals int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildPlan,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d duplicate groups (%d removal candidates)", groups, removals),
	}
}

func awaitConfirmUpdate(plan *dedupe.Plan) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AwaitConfirm,
		Step:    1,
		Total:   1,
		Message: "Waiting for confirmation...",
		Data:    plan,
	}
}

func applyPlanUpdate(removed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyPlan,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removed %d duplicate files", removed),
	}
}

func moveFilesUpdate(moved int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MoveFiles,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Moved %d files to library", moved),
	}
}

func refreshIndexUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   RefreshIndex,
		Step:    1,
		Total:   1,
		Message: "Refreshing media index...",
	}
}

func doneUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: "Pipeline complete",
	}
}
