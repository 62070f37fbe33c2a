package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// LibraryExport exports playlists (or the liked songs collection) to local
// files through the bulk export engine.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	if cmd.Bool("liked") {
		return r.exportLikedSongs(ctx, cmd)
	}

	var ids []string
	for _, id := range strings.Split(cmd.String("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		playlists, err := r.spotify.GetPlaylists(ctx)
		if err != nil {
			return adviseAuth(fmt.Errorf("%w: %v", shared.ErrAPIRequest, err))
		}
		for _, p := range playlists {
			ids = append(ids, p.ID)
		}
	}

	if len(ids) == 0 {
		r.writePlain("No playlists to export.\n")
		return nil
	}

	engine := tasks.NewLibraryEngine(r.spotify, nil, nil)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  float64(cmd.Int("rate-limit")),
	}

	r.writePlain("Exporting %d playlists...\n\n", len(ids))

	result, exportErr := engine.BulkExport(ctx, progressCh, ids, opts)
	close(progressCh)
	<-printerDone

	if result != nil {
		r.writePlain("\n")
		r.writePlainHeader("Export Summary")
		r.writePlain("Playlists: %d\n", result.TotalPlaylists)
		r.writePlain("Succeeded: %d\n", result.SuccessfulExports)
		if result.FailedExports > 0 {
			r.writePlain("Failed: %d\n", result.FailedExports)
			for _, res := range result.Results {
				if !res.Success {
					r.writePlain("  ✗ %s: %v\n", res.PlaylistName, res.Error)
				}
			}
		}
		r.writePlain("Output: %s\n", result.OutputDirectory)
		if result.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", result.ManifestPath)
		}
	}

	if exportErr != nil {
		return adviseAuth(fmt.Errorf("export failed: %w", exportErr))
	}

	r.writePlain("\n✓ Export complete\n")
	return nil
}

// exportLikedSongs pages the entire saved tracks collection and writes it out
// as a single pseudo-playlist.
func (r *Runner) exportLikedSongs(ctx context.Context, cmd *cli.Command) error {
	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = fmt.Sprintf("spotify_export_%d", time.Now().Unix())
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	const pageSize = 50
	var tracks []models.Track

	r.writePlain("Fetching liked songs...\n")

	for offset := 0; ; {
		page, err := r.spotify.SavedTracks(ctx, pageSize, offset)
		if err != nil {
			return adviseAuth(fmt.Errorf("%w: failed to fetch saved tracks at offset %d: %v", shared.ErrAPIRequest, offset, err))
		}

		tracks = append(tracks, page.Tracks...)
		offset += len(page.Tracks)
		r.writePlain("→ Fetched %d of %d tracks\n", len(tracks), page.Total)

		if !page.More || len(page.Tracks) == 0 {
			break
		}
	}

	export := &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:         "liked_songs",
			Name:       "Liked Songs",
			TrackCount: len(tracks),
		},
		Tracks: tracks,
	}

	var files []string
	switch cmd.String("format") {
	case "csv":
		res, err := formatter.WriteCSVExport(export, filepath.Join(outputDir, export.Playlist.ID))
		if err != nil {
			return fmt.Errorf("CSV export failed: %w", err)
		}
		files = []string{res.TracksFile, res.MetadataFile}
	case "markdown":
		res, err := formatter.WriteMarkdownExport(export, filepath.Join(outputDir, export.Playlist.ID), "")
		if err != nil {
			return fmt.Errorf("markdown export failed: %w", err)
		}
		files = res.Files
	case "txt":
		file, err := formatter.WriteTextExport(export, filepath.Join(outputDir, "liked_songs_tracks.txt"))
		if err != nil {
			return fmt.Errorf("text export failed: %w", err)
		}
		files = []string{file}
	default:
		file, err := formatter.WriteJSONExport(export, filepath.Join(outputDir, "liked_songs.json"))
		if err != nil {
			return fmt.Errorf("JSON export failed: %w", err)
		}
		files = []string{file}
	}

	r.writePlain("\n✓ Exported %d liked songs\n", len(tracks))
	for _, file := range files {
		r.writePlain("  %s\n", file)
	}

	return nil
}
