package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/curator/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the default configuration, creates the staging directory,
// and initializes the run database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	r.config = config

	staging := shared.ExpandHome(config.Library.StagingDir)
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	r.logger.Info("staging directory ready", "path", staging)

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(shared.ExpandHome(config.Database.Path))
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlain("✓ Setup complete\n")
	r.writePlain("Config: %s\n", configPath)
	r.writePlain("Staging: %s\n", staging)
	r.writePlain("Database: %s\n", config.Database.Path)
	r.writePlain("Next: add playlist URLs to %s and run 'curator sync'\n", config.Library.ListPath)

	return nil
}
