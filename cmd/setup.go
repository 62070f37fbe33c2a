package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a starter config.toml for the user to fill in.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("✓ Config written to %s\n\n", configPath)
	r.writePlain("Next steps:\n")
	r.writePlain("1. Register an app at https://developer.spotify.com/dashboard\n")
	r.writePlain("2. Add http://127.0.0.1:8080/callback as a redirect URI\n")
	r.writePlain("3. Fill in credentials.spotify.client_id in %s\n", configPath)
	r.writePlain("4. Run 'spotx auth login' to connect your account\n")

	return nil
}

// SetupDatabase initializes the track cache database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else if config == nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	return nil
}
