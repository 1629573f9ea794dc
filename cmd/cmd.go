// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// syncCommand runs the full maintenance pipeline.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Download playlists, deduplicate staging, move to library, refresh index",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "Path to the playlist URL list file",
			},
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Deduplication strategy (title or content); prompts when omitted",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Apply the deduplication plan without asking",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Plan and report only; delete and move nothing",
			},
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "Leave duplicates in staging instead of deleting them",
			},
			&cli.BoolFlag{
				Name:  "skip-refresh",
				Usage: "Skip the media index refresh step",
			},
		},
		Action: r.Sync,
	}
}

// downloadCommand runs only the download stage.
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "download",
		Aliases: []string{"dl"},
		Usage:   "Download every playlist URL in the list file to staging",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "Path to the playlist URL list file",
			},
		},
		Action: r.Download,
	}
}

// dedupeCommand plans (and optionally applies) duplicate removal.
func dedupeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dedupe",
		Usage: "Find duplicate audio files and print the removal plan",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory to scan (defaults to the staging directory)",
			},
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Deduplication strategy (title or content)",
				Value:   "title",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format (text, csv, markdown, json)",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "apply",
				Usage: "Delete the duplicates after confirmation",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Apply without asking",
			},
		},
		Action: r.Dedupe,
	}
}

// moveCommand moves staged audio files into the library.
func moveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "move",
		Usage: "Move audio files from staging into the library directory",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "Library directory (defaults to the configured target)",
			},
		},
		Action: r.Move,
	}
}

// refreshCommand triggers the media index update.
func refreshCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Run the media index refresh command (default: mpc update)",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Refresh,
	}
}

// historyCommand lists recorded pipeline runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past runs recorded in the database",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand writes the default configuration and initializes the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml, the staging directory, and the run database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for interactive maintenance.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI for a maintenance run",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
