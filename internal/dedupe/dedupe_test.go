package dedupe

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/desertthunder/curator/internal/shared"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestParseStrategy(t *testing.T) {
	tc := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{input: "title", want: StrategyTitle},
		{input: "by-title", want: StrategyTitle},
		{input: "  Content ", want: StrategyContent},
		{input: "hash", want: StrategyContent},
		{input: "fuzzy", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidStrategy) {
					t.Errorf("expected ErrInvalidStrategy, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestScan(t *testing.T) {
	t.Run("lists matching files sorted by name", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "02 - b.flac", "bb")
		writeFile(t, dir, "01 - a.flac", "aa")
		writeFile(t, dir, "notes.txt", "skip me")
		if err := os.Mkdir(filepath.Join(dir, "sub.flac"), 0755); err != nil {
			t.Fatalf("failed to create subdir: %v", err)
		}

		candidates, err := Scan(dir, []string{".flac"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}
		if candidates[0].Name != "01 - a.flac" || candidates[1].Name != "02 - b.flac" {
			t.Errorf("unexpected order: %v", candidates)
		}
		if candidates[0].Size != 2 {
			t.Errorf("expected size 2, got %d", candidates[0].Size)
		}
	})

	t.Run("extension match is case-insensitive", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "song.FLAC", "x")

		candidates, err := Scan(dir, []string{".flac"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(candidates) != 1 {
			t.Errorf("expected 1 candidate, got %d", len(candidates))
		}
	})

	t.Run("empty directory wraps ErrEmptyInput", func(t *testing.T) {
		_, err := Scan(t.TempDir(), []string{".flac"})
		if !errors.Is(err, shared.ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("missing directory wraps ErrNotFound", func(t *testing.T) {
		_, err := Scan(filepath.Join(t.TempDir(), "missing"), []string{".flac"})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestBuildPlan(t *testing.T) {
	t.Run("groups partition the candidate set", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "01 - alpha.flac", "one")
		writeFile(t, dir, "02 - alpha.flac", "two!")
		writeFile(t, dir, "03 - beta.flac", "three")

		candidates, err := Scan(dir, []string{".flac"})
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		for _, strategy := range []Strategy{StrategyTitle, StrategyContent} {
			plan, err := BuildPlan(candidates, strategy)
			if err != nil {
				t.Fatalf("%v: plan failed: %v", strategy, err)
			}

			seen := map[string]int{}
			for _, g := range plan.Groups {
				for _, c := range g.Candidates {
					seen[c.Name]++
				}
			}
			if len(seen) != len(candidates) {
				t.Errorf("%v: groups cover %d files, want %d", strategy, len(seen), len(candidates))
			}
			for name, count := range seen {
				if count != 1 {
					t.Errorf("%v: %s appears in %d groups", strategy, name, count)
				}
			}
		}
	})

	t.Run("byte-identical files share a content group", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "song.flac", "identical bytes")
		writeFile(t, dir, "song (1).flac", "identical bytes")

		candidates, err := Scan(dir, []string{".flac"})
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		plan, err := BuildPlan(candidates, StrategyContent)
		if err != nil {
			t.Fatalf("plan failed: %v", err)
		}

		dupes := plan.DuplicateGroups()
		if len(dupes) != 1 {
			t.Fatalf("expected 1 duplicate group, got %d", len(dupes))
		}
		if len(dupes[0].Candidates) != 2 {
			t.Errorf("expected group of 2, got %d", len(dupes[0].Candidates))
		}
		if got := len(plan.Removals()); got != 1 {
			t.Errorf("expected 1 removal, got %d", got)
		}
	})

	t.Run("title strategy folds copy suffixes", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "song.flac", "aaa")
		writeFile(t, dir, "song (1).flac", "bbb")

		candidates, err := Scan(dir, []string{".flac"})
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		plan, err := BuildPlan(candidates, StrategyTitle)
		if err != nil {
			t.Fatalf("plan failed: %v", err)
		}

		if len(plan.Groups) != 1 {
			t.Fatalf("expected 1 group, got %d", len(plan.Groups))
		}
		if len(plan.Groups[0].Candidates) != 2 {
			t.Errorf("expected group of 2, got %d", len(plan.Groups[0].Candidates))
		}
	})

	t.Run("survivor is largest file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "01 - track.flac", "short")
		writeFile(t, dir, "02 - track.flac", "much longer content here")

		candidates, err := Scan(dir, []string{".flac"})
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		plan, err := BuildPlan(candidates, StrategyTitle)
		if err != nil {
			t.Fatalf("plan failed: %v", err)
		}

		if got := plan.Groups[0].SurvivorCandidate().Name; got != "02 - track.flac" {
			t.Errorf("expected largest file to survive, got %s", got)
		}
		removals := plan.Groups[0].Removals()
		if len(removals) != 1 || removals[0].Name != "01 - track.flac" {
			t.Errorf("unexpected removals: %v", removals)
		}
	})

	t.Run("size ties break by filename", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "02 - track.flac", "same!")
		writeFile(t, dir, "01 - track.flac", "same!")

		candidates, err := Scan(dir, []string{".flac"})
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		plan, err := BuildPlan(candidates, StrategyTitle)
		if err != nil {
			t.Fatalf("plan failed: %v", err)
		}

		if got := plan.Groups[0].SurvivorCandidate().Name; got != "01 - track.flac" {
			t.Errorf("expected lexicographically smallest name to survive, got %s", got)
		}
	})

	t.Run("planning twice yields identical plans", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "01 - a.flac", "aaa")
		writeFile(t, dir, "02 - a.flac", "bbbb")
		writeFile(t, dir, "03 - c.flac", "ccc")

		candidates, err := Scan(dir, []string{".flac"})
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		first, err := BuildPlan(candidates, StrategyContent)
		if err != nil {
			t.Fatalf("first plan failed: %v", err)
		}
		second, err := BuildPlan(candidates, StrategyContent)
		if err != nil {
			t.Fatalf("second plan failed: %v", err)
		}

		if !reflect.DeepEqual(first, second) {
			t.Error("expected identical plans for unchanged directory")
		}
	})

	t.Run("unreadable file is skipped not fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "good.flac", "fine")

		candidates, err := Scan(dir, []string{".flac"})
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		candidates = append(candidates, Candidate{
			Path: filepath.Join(dir, "vanished.flac"),
			Name: "vanished.flac",
		})

		plan, err := BuildPlan(candidates, StrategyContent)
		if err != nil {
			t.Fatalf("plan failed: %v", err)
		}

		if len(plan.Skipped) != 1 {
			t.Fatalf("expected 1 skipped file, got %d", len(plan.Skipped))
		}
		if !errors.Is(plan.Skipped[0].Err, shared.ErrUnreadableFile) {
			t.Errorf("expected ErrUnreadableFile, got %v", plan.Skipped[0].Err)
		}
		if len(plan.Groups) != 1 {
			t.Errorf("expected readable file still grouped, got %d groups", len(plan.Groups))
		}
	})

	t.Run("no candidates wraps ErrEmptyInput", func(t *testing.T) {
		_, err := BuildPlan(nil, StrategyTitle)
		if !errors.Is(err, shared.ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})
}

func TestHashFile(t *testing.T) {
	t.Run("identical content hashes equal", func(t *testing.T) {
		dir := t.TempDir()
		a := writeFile(t, dir, "a.flac", "payload")
		b := writeFile(t, dir, "b.flac", "payload")

		ha, err := HashFile(a)
		if err != nil {
			t.Fatalf("hash failed: %v", err)
		}
		hb, err := HashFile(b)
		if err != nil {
			t.Fatalf("hash failed: %v", err)
		}
		if ha != hb {
			t.Error("expected equal hashes for identical content")
		}
	})

	t.Run("missing file wraps ErrUnreadableFile", func(t *testing.T) {
		_, err := HashFile(filepath.Join(t.TempDir(), "missing.flac"))
		if !errors.Is(err, shared.ErrUnreadableFile) {
			t.Errorf("expected ErrUnreadableFile, got %v", err)
		}
	})
}
