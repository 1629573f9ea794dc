package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/curator/internal/dedupe"
	"github.com/desertthunder/curator/internal/shared"
	tu "github.com/desertthunder/curator/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			input := strings.NewReader("")
			cmdRunner := &tu.FakeRunner{}

			runner := NewRunner(RunnerOpts{
				Config:    config,
				Logger:    logger,
				Output:    output,
				Input:     input,
				CmdRunner: cmdRunner,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.input != input {
				t.Error("expected input to be set")
			}
			if runner.cmdRunner != cmdRunner {
				t.Error("expected command runner to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil input uses stdin", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Input: nil,
			})

			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("promptConfirm", func(t *testing.T) {
		plan := &dedupe.Plan{
			Strategy: dedupe.StrategyTitle,
			Groups: []dedupe.Group{
				{
					Key: "song",
					Candidates: []dedupe.Candidate{
						{Name: "song.flac", Size: 2},
						{Name: "song (1).flac", Size: 1},
					},
				},
			},
		}

		tc := []struct {
			name   string
			answer string
			want   bool
		}{
			{"y accepts", "y\n", true},
			{"yes accepts", "yes\n", true},
			{"uppercase Y accepts", "Y\n", true},
			{"n declines", "n\n", false},
			{"empty declines", "\n", false},
			{"garbage declines", "maybe\n", false},
		}

		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				output := &bytes.Buffer{}
				runner := NewRunner(RunnerOpts{
					Output: output,
					Input:  strings.NewReader(c.answer),
				})

				if got := runner.promptConfirm(plan); got != c.want {
					t.Errorf("answer %q: got %v, want %v", c.answer, got, c.want)
				}
				if !strings.Contains(output.String(), "Delete 1 duplicate files?") {
					t.Error("prompt should state the removal count")
				}
			})
		}

		t.Run("no duplicates prompts for the move", func(t *testing.T) {
			unique := &dedupe.Plan{
				Strategy: dedupe.StrategyTitle,
				Groups: []dedupe.Group{
					{Key: "a", Candidates: []dedupe.Candidate{{Name: "a.flac", Size: 1}}},
					{Key: "b", Candidates: []dedupe.Candidate{{Name: "b.flac", Size: 1}}},
				},
			}

			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{
				Output: output,
				Input:  strings.NewReader("y\n"),
			})

			if !runner.promptConfirm(unique) {
				t.Error("expected y to accept")
			}
			if !strings.Contains(output.String(), "Move 2 files to the library?") {
				t.Error("prompt should describe the move when there is nothing to delete")
			}
		})
	})

	t.Run("promptStrategy", func(t *testing.T) {
		tc := []struct {
			name    string
			answer  string
			want    dedupe.Strategy
			wantErr bool
		}{
			{"empty defaults to title", "\n", dedupe.StrategyTitle, false},
			{"1 selects title", "1\n", dedupe.StrategyTitle, false},
			{"2 selects content", "2\n", dedupe.StrategyContent, false},
			{"named content", "content\n", dedupe.StrategyContent, false},
			{"unknown answer errors", "3\n", 0, true},
		}

		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				runner := NewRunner(RunnerOpts{
					Output: &bytes.Buffer{},
					Input:  strings.NewReader(c.answer),
				})

				got, err := runner.promptStrategy()
				if c.wantErr {
					if err == nil {
						t.Fatal("expected error")
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != c.want {
					t.Errorf("got %v, want %v", got, c.want)
				}
			})
		}
	})
}

func TestDedupeCommand(t *testing.T) {
	writeStaging := func(t *testing.T) (string, *shared.Config) {
		t.Helper()
		staging := t.TempDir()
		tu.MustWriteFile(t, staging, "01 - song.flac", "longer content")
		tu.MustWriteFile(t, staging, "02 - song.flac", "short")
		tu.MustWriteFile(t, staging, "other.flac", "unique")

		config := shared.DefaultConfig()
		config.Library.StagingDir = staging
		config.Database.Path = "" // no history for command tests
		return staging, config
	}

	run := func(t *testing.T, runner *Runner, args ...string) error {
		t.Helper()
		app := &cli.Command{Name: "curator", Commands: runner.register()}
		return app.Run(context.Background(), append([]string{"curator"}, args...))
	}

	t.Run("prints the plan without touching files", func(t *testing.T) {
		staging, config := writeStaging(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if err := run(t, runner, "dedupe", "--strategy", "title"); err != nil {
			t.Fatalf("command failed: %v", err)
		}

		if !strings.Contains(output.String(), "Duplicate groups: 1") {
			t.Errorf("expected plan summary, got:\n%s", output.String())
		}
		tu.AssertFileExists(t, filepath.Join(staging, "02 - song.flac"))
	})

	t.Run("apply with yes deletes duplicates", func(t *testing.T) {
		staging, config := writeStaging(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if err := run(t, runner, "dedupe", "--strategy", "title", "--apply", "--yes"); err != nil {
			t.Fatalf("command failed: %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(staging, "01 - song.flac"))
		tu.AssertFileMissing(t, filepath.Join(staging, "02 - song.flac"))
		tu.AssertFileExists(t, filepath.Join(staging, "other.flac"))
	})

	t.Run("apply declined leaves files in place", func(t *testing.T) {
		staging, config := writeStaging(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: config,
			Output: output,
			Input:  strings.NewReader("n\n"),
		})

		if err := run(t, runner, "dedupe", "--strategy", "title", "--apply"); err != nil {
			t.Fatalf("command failed: %v", err)
		}

		if !strings.Contains(output.String(), "Aborted") {
			t.Error("expected abort message")
		}
		tu.AssertFileExists(t, filepath.Join(staging, "02 - song.flac"))
	})

	t.Run("exports the plan to a file", func(t *testing.T) {
		_, config := writeStaging(t)
		exportPath := filepath.Join(t.TempDir(), "plan.json")
		runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})

		if err := run(t, runner, "dedupe", "--strategy", "content", "--format", "json", "--output", exportPath); err != nil {
			t.Fatalf("command failed: %v", err)
		}

		content := tu.MustReadFile(t, exportPath)
		if !strings.Contains(content, `"strategy": "content"`) {
			t.Errorf("unexpected export content:\n%s", content)
		}
	})

	t.Run("empty directory reports and exits clean", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Library.StagingDir = t.TempDir()
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if err := run(t, runner, "dedupe"); err != nil {
			t.Fatalf("command failed: %v", err)
		}
		if !strings.Contains(output.String(), "No audio files") {
			t.Errorf("expected empty-dir message, got:\n%s", output.String())
		}
	})
}

func TestSyncCommand(t *testing.T) {
	setup := func(t *testing.T, urls []string) (*shared.Config, string, string) {
		t.Helper()
		staging := t.TempDir()
		target := filepath.Join(t.TempDir(), "library")
		listPath := filepath.Join(t.TempDir(), "list.txt")
		if err := os.WriteFile(listPath, []byte(strings.Join(urls, "\n")), 0644); err != nil {
			t.Fatalf("failed to write list: %v", err)
		}

		config := shared.DefaultConfig()
		config.Library.StagingDir = staging
		config.Library.TargetDir = target
		config.Library.ListPath = listPath
		config.Database.Path = ""
		config.Downloader.RateLimit = 0
		return config, staging, target
	}

	fakeDownloads := func() *tu.FakeRunner {
		return &tu.FakeRunner{OnRun: func(dir, binary string, args []string) error {
			if binary != "yt-dlp" {
				return nil
			}
			url := args[len(args)-1]
			name := url[strings.LastIndex(url, "/")+1:]
			return os.WriteFile(filepath.Join(dir, name+".flac"), []byte(name), 0644)
		}}
	}

	run := func(t *testing.T, runner *Runner, args ...string) error {
		t.Helper()
		app := &cli.Command{Name: "curator", Commands: runner.register()}
		return app.Run(context.Background(), append([]string{"curator"}, args...))
	}

	t.Run("progress lines flush before the summary", func(t *testing.T) {
		config, _, target := setup(t, []string{
			"https://example.com/p/track-a",
			"https://example.com/p/track-b",
		})

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output, CmdRunner: fakeDownloads()})

		if err := run(t, runner, "sync", "--strategy", "title", "--yes"); err != nil {
			t.Fatalf("command failed: %v", err)
		}

		text := output.String()
		header := strings.Index(text, "Sync Complete")
		if header < 0 {
			t.Fatalf("expected summary header, got:\n%s", text)
		}
		if last := strings.LastIndex(text, "• "); last > header {
			t.Errorf("progress line printed after the summary:\n%s", text)
		}

		entries, err := os.ReadDir(target)
		if err != nil {
			t.Fatalf("failed to read target: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("expected 2 files in library, got %d", len(entries))
		}
	})

	t.Run("declining with no duplicates leaves staging untouched", func(t *testing.T) {
		config, staging, target := setup(t, []string{
			"https://example.com/p/track-a",
			"https://example.com/p/track-b",
		})

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:    config,
			Output:    output,
			Input:     strings.NewReader("n\n"),
			CmdRunner: fakeDownloads(),
		})

		if err := run(t, runner, "sync", "--strategy", "content"); err != nil {
			t.Fatalf("command failed: %v", err)
		}

		text := output.String()
		if !strings.Contains(text, "Move 2 files to the library?") {
			t.Errorf("expected move prompt, got:\n%s", text)
		}
		if !strings.Contains(text, "Aborted") {
			t.Errorf("expected abort message, got:\n%s", text)
		}

		entries, err := os.ReadDir(staging)
		if err != nil {
			t.Fatalf("failed to read staging: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("staging files should be untouched, got %d", len(entries))
		}
		if _, err := os.Stat(target); !os.IsNotExist(err) {
			t.Error("library directory should not exist after decline")
		}
	})
}

func TestMoveCommand(t *testing.T) {
	t.Run("moves staged files with rename collision policy", func(t *testing.T) {
		staging := t.TempDir()
		target := t.TempDir()
		tu.MustWriteFile(t, staging, "a.flac", "aaa")
		tu.MustWriteFile(t, staging, "b.flac", "bbb")
		tu.MustWriteFile(t, target, "a.flac", "existing")

		config := shared.DefaultConfig()
		config.Library.StagingDir = staging
		config.Library.TargetDir = target

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output})
		app := &cli.Command{Name: "curator", Commands: runner.register()}

		if err := app.Run(context.Background(), []string{"curator", "move"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(target, "a.flac"))
		tu.AssertFileExists(t, filepath.Join(target, "a (1).flac"))
		tu.AssertFileExists(t, filepath.Join(target, "b.flac"))
		tu.AssertFileMissing(t, filepath.Join(staging, "a.flac"))
		if got := tu.MustReadFile(t, filepath.Join(target, "a.flac")); got != "existing" {
			t.Error("existing library file must never be overwritten")
		}
	})
}
