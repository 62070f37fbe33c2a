package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotx/internal/repositories"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CacheSync pages through the user's saved tracks and caches them in the local
// database, recording a sync run row for the attempt.
func (r *Runner) CacheSync(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		}
	}
	if config == nil {
		config = shared.DefaultConfig()
	}

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	// Migrations are idempotent, so a fresh database works without a separate
	// setup step.
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	engine := tasks.NewLibraryEngine(
		r.spotify,
		repositories.NewTrackCacheAdapter(repositories.NewTrackRepository(db)),
		repositories.NewSyncRunRepository(db),
	)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		for update := range progressCh {
			switch update.Phase {
			case tasks.CacheTracks:
				r.writePlain("  %s\n", update.Message)
			default:
				r.writePlain("→ %s\n", update.Message)
			}
		}
	}()

	opts := tasks.SyncOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  float64(cmd.Int("rate-limit")),
		MaxTracks:  cmd.Int("max-tracks"),
	}

	r.writePlain("Syncing Spotify library to %s\n\n", config.Database.Path)

	result, syncErr := engine.SyncLibrary(ctx, progressCh, opts)
	close(progressCh)
	<-printerDone

	if result != nil {
		r.writePlain("\n")
		r.writePlainHeader("Sync Summary")
		r.writePlain("Total saved tracks: %d\n", result.TotalTracks)
		r.writePlain("Cached: %d\n", result.SyncedCount)
		if result.FailedCount > 0 {
			r.writePlain("Failed: %d\n", result.FailedCount)
		}
		if result.Run != nil {
			r.writePlain("Run %s finished with status %q\n", result.Run.ID(), result.Run.Status())
		}
	}

	if syncErr != nil {
		return adviseAuth(fmt.Errorf("sync failed: %w", syncErr))
	}

	r.writePlain("\n✓ Library sync complete\n")
	return nil
}
