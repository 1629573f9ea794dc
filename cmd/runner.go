package main

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/curator/internal/dedupe"
	"github.com/desertthunder/curator/internal/downloader"
	"github.com/desertthunder/curator/internal/formatter"
	"github.com/desertthunder/curator/internal/history"
	"github.com/desertthunder/curator/internal/library"
	"github.com/desertthunder/curator/internal/shared"
	"github.com/desertthunder/curator/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	cmdRunner shared.CommandRunner
	db        *sql.DB
	repo      *history.RunRepository
	logger    *log.Logger
	output    io.Writer
	input     io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	CmdRunner shared.CommandRunner
	Logger    *log.Logger
	Output    io.Writer
	Input     io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.CmdRunner == nil {
		opts.CmdRunner = &shared.ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:    opts.Config,
		cmdRunner: opts.CmdRunner,
		logger:    opts.Logger,
		output:    opts.Output,
		input:     opts.Input,
	}
}

// SetLogger replaces the runner's logger, e.g. to redirect to a file for the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the run-history database if one was opened.
func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
		r.db = nil
		r.repo = nil
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, downloadCommand, dedupeCommand, moveCommand, refreshCommand, historyCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// applyConfigFlag reloads configuration from the command's --config flag
// when the file exists.
func (r *Runner) applyConfigFlag(cmd *cli.Command) {
	path := cmd.String("config")
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current settings", "path", path, "error", err)
		return
	}
	r.config = config
}

// openHistory opens the run database lazily. A missing or unopenable
// database disables history rather than failing the command.
func (r *Runner) openHistory() *history.RunRepository {
	if r.repo != nil {
		return r.repo
	}
	path := r.config.Database.Path
	if path == "" {
		return nil
	}

	db, err := shared.NewDatabase(shared.ExpandHome(path))
	if err != nil {
		r.logger.Warn("run history disabled", "path", path, "error", err)
		return nil
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("run history disabled", "path", path, "error", err)
		db.Close()
		return nil
	}

	r.db = db
	r.repo = history.NewRunRepository(db)
	return r.repo
}

func (r *Runner) newDownloader() *downloader.Downloader {
	return downloader.New(r.config.Downloader, r.cmdRunner, r.logger)
}

func (r *Runner) newMover() *library.Mover {
	return library.NewMover(r.config.Library, r.logger)
}

func (r *Runner) newRefresher() *library.Refresher {
	return library.NewRefresher(r.config.Index, r.cmdRunner, r.logger)
}

// newEngine builds a pipeline engine from the runner's current configuration.
func (r *Runner) newEngine() *tasks.LibraryEngine {
	return tasks.NewLibraryEngine(r.config, r.newDownloader(), r.newMover(), r.newRefresher(), r.repo, r.logger)
}

// promptConfirm prints the plan and asks whether to proceed. The prompt
// guards the move into the library as well as duplicate deletion, so it is
// shown even when the plan found no duplicates. Anything other than y/yes
// declines.
func (r *Runner) promptConfirm(plan *dedupe.Plan) bool {
	if text, err := formatter.PlanToText(plan); err == nil {
		r.writePlain("\n%s", text)
	}
	if removals := plan.Removals(); len(removals) > 0 {
		r.writePlain("\nDelete %d duplicate files? [y/N] ", len(removals))
	} else {
		r.writePlain("\nNo duplicates found. Move %d files to the library? [y/N] ", len(plan.Survivors()))
	}

	reader := bufio.NewReader(r.input)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// promptStrategy asks which deduplication strategy to use. Empty input
// defaults to title.
func (r *Runner) promptStrategy() (dedupe.Strategy, error) {
	r.writePlain("Deduplication strategy:\n")
	r.writePlain("  1. title   (normalized filename, fast)\n")
	r.writePlain("  2. content (SHA-256 hash, exact)\n")
	r.writePlain("Choose [1]: ")

	reader := bufio.NewReader(r.input)
	line, _ := reader.ReadString('\n')

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "1", "title":
		return dedupe.StrategyTitle, nil
	case "2", "content", "hash":
		return dedupe.StrategyContent, nil
	default:
		return 0, fmt.Errorf("%w: %q", shared.ErrInvalidStrategy, strings.TrimSpace(line))
	}
}

// resolveStrategy uses the --strategy flag when given, otherwise prompts.
func (r *Runner) resolveStrategy(cmd *cli.Command) (dedupe.Strategy, error) {
	if value := cmd.String("strategy"); value != "" {
		return dedupe.ParseStrategy(value)
	}
	return r.promptStrategy()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
