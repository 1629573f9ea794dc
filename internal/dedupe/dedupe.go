// package dedupe plans duplicate removal over a directory of audio files.
//
// The package only computes plans: it partitions candidates into groups
// under a strategy, designates one survivor per group, and reports the
// rest as removal candidates. Deleting or moving files is the library
// package's job, which keeps a dry-run/confirm boundary between planning
// and destructive action.
package dedupe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/desertthunder/curator/internal/shared"
)

// Strategy selects how candidates are considered equivalent.
type Strategy int

const (
	// StrategyTitle groups files by normalized filename. Fast, no file
	// reads, but false positives/negatives when titles are inconsistent.
	StrategyTitle Strategy = iota
	// StrategyContent groups files by SHA-256 of their bytes. Exact-match
	// detection immune to filename variance, blind to re-encodes, and
	// reads every file in full.
	StrategyContent
)

func (s Strategy) String() string {
	switch s {
	case StrategyTitle:
		return "title"
	case StrategyContent:
		return "content"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a flag or prompt value into a Strategy.
func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "title", "by-title":
		return StrategyTitle, nil
	case "content", "by-content", "hash":
		return StrategyContent, nil
	default:
		return 0, fmt.Errorf("%w: %q (want title or content)", shared.ErrInvalidStrategy, value)
	}
}

// Candidate is one audio file under consideration.
type Candidate struct {
	Path string // absolute or staging-relative path
	Name string // base filename
	Size int64
	Key  string // comparison key under the active strategy
}

// Group is a set of candidates sharing a comparison key.
// Survivor indexes the single candidate that will be kept.
type Group struct {
	Key        string
	Candidates []Candidate
	Survivor   int
}

// SurvivorCandidate returns the candidate designated to be kept.
func (g Group) SurvivorCandidate() Candidate {
	return g.Candidates[g.Survivor]
}

// Removals returns the group's candidates other than the survivor.
func (g Group) Removals() []Candidate {
	removals := make([]Candidate, 0, len(g.Candidates)-1)
	for i, c := range g.Candidates {
		if i != g.Survivor {
			removals = append(removals, c)
		}
	}
	return removals
}

// SkippedFile records a candidate that could not be read during hashing.
type SkippedFile struct {
	Path string
	Err  error
}

// Plan is the full output of a deduplication pass: a partition of the
// scanned candidates into groups (singletons included), plus any files
// skipped because they could not be read.
type Plan struct {
	Strategy Strategy
	Groups   []Group
	Skipped  []SkippedFile
}

// DuplicateGroups returns only the groups with more than one candidate.
func (p *Plan) DuplicateGroups() []Group {
	var dupes []Group
	for _, g := range p.Groups {
		if len(g.Candidates) > 1 {
			dupes = append(dupes, g)
		}
	}
	return dupes
}

// Survivors returns the kept candidate of every group, singletons included.
func (p *Plan) Survivors() []Candidate {
	survivors := make([]Candidate, 0, len(p.Groups))
	for _, g := range p.Groups {
		survivors = append(survivors, g.SurvivorCandidate())
	}
	return survivors
}

// Removals returns every candidate slated for removal across all groups.
func (p *Plan) Removals() []Candidate {
	var removals []Candidate
	for _, g := range p.Groups {
		removals = append(removals, g.Removals()...)
	}
	return removals
}

// Scan lists the audio files in dir matching the given extensions
// (case-insensitive, e.g. ".flac"), sorted by filename so that downstream
// grouping is deterministic. Returns [shared.ErrNotFound] when dir does
// not exist and [shared.ErrEmptyInput] when no matching files are found.
func Scan(dir string, extensions []string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory %s", shared.ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	match := func(name string) bool {
		ext := strings.ToLower(filepath.Ext(name))
		for _, want := range extensions {
			if ext == strings.ToLower(want) {
				return true
			}
		}
		return false
	}

	var candidates []Candidate
	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrUnreadableFile, entry.Name(), err)
		}

		candidates = append(candidates, Candidate{
			Path: filepath.Join(dir, entry.Name()),
			Name: entry.Name(),
			Size: info.Size(),
		})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no audio files in %s", shared.ErrEmptyInput, dir)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Name < candidates[j].Name
	})

	return candidates, nil
}

// BuildPlan partitions candidates into groups under the given strategy and
// picks a survivor for each. Under StrategyContent, files that cannot be
// read are recorded in Plan.Skipped and excluded from grouping rather than
// failing the batch.
func BuildPlan(candidates []Candidate, strategy Strategy) (*Plan, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", shared.ErrEmptyInput)
	}

	plan := &Plan{Strategy: strategy}

	grouped := make(map[string][]Candidate)
	var order []string

	for _, c := range candidates {
		switch strategy {
		case StrategyTitle:
			c.Key = NormalizeTitle(c.Name)
		case StrategyContent:
			hash, err := HashFile(c.Path)
			if err != nil {
				plan.Skipped = append(plan.Skipped, SkippedFile{Path: c.Path, Err: err})
				continue
			}
			c.Key = hash
		default:
			return nil, fmt.Errorf("%w: %d", shared.ErrInvalidStrategy, strategy)
		}

		if _, seen := grouped[c.Key]; !seen {
			order = append(order, c.Key)
		}
		grouped[c.Key] = append(grouped[c.Key], c)
	}

	for _, key := range order {
		group := Group{Key: key, Candidates: grouped[key]}
		group.Survivor = chooseSurvivor(group.Candidates)
		plan.Groups = append(plan.Groups, group)
	}

	return plan, nil
}

// chooseSurvivor picks the largest candidate, breaking ties by
// lexicographically smallest filename. Candidates arrive in scan order so
// the choice is deterministic for identical directory contents.
func chooseSurvivor(candidates []Candidate) int {
	best := 0
	for i := 1; i < len(candidates); i++ {
		c, b := candidates[i], candidates[best]
		if c.Size > b.Size || (c.Size == b.Size && c.Name < b.Name) {
			best = i
		}
	}
	return best
}
