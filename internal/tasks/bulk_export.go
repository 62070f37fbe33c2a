package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/time/rate"
)

// PlaylistExportJob pairs a playlist ID with its fetched export for a worker.
type PlaylistExportJob struct {
	PlaylistID string
	Export     *models.PlaylistExport
}

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format        string                                               // Export format: json, csv, markdown, txt
	OutputDir     string                                               // Base output directory (default: spotify_export_{epoch})
	NumWorkers    int                                                  // Concurrent workers (default: 5)
	RateLimit     float64                                              // Requests per second (default: 5)
	GetCoverImage func(ctx context.Context, id string) (string, error) // Fetcher function
}

// BulkExport exports multiple playlists concurrently with rate limiting and progress tracking.
//
// This method implements a worker pool pattern to efficiently export multiple playlists.
// It respects API rate limits, handles partial failures gracefully, and generates a manifest file summarizing the export results.
func (e *LibraryEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkExportOpts,
) (*formatter.BulkExportResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("spotify_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &formatter.BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]formatter.PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan PlaylistExportJob, len(ids))
	results := make(chan formatter.PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		e.sendProgress(prog, fetchingSourceUpdate(1, len(ids)))
		for i, playlistID := range ids {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				close(jobs)
				return
			}

			export, err := e.svc.ExportPlaylist(ctx, playlistID)
			if err != nil {
				results <- formatter.PlaylistExportResult{
					PlaylistID:   playlistID,
					PlaylistName: fmt.Sprintf("Unknown (%s)", playlistID),
					Success:      false,
					Error:        fmt.Errorf("failed to fetch playlist: %w", err),
				}
				continue
			}

			jobs <- PlaylistExportJob{
				PlaylistID: playlistID,
				Export:     export,
			}

			e.sendProgress(prog, exportingPlaylistUpdate(i+1, len(ids), export.Playlist.Name))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(
				completed,
				len(ids),
				res.PlaylistName,
				len(res.Files),
			))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(
				completed,
				len(ids),
				res.PlaylistName,
				res.Error,
			))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (e *LibraryEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- formatter.PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := e.exportSinglePlaylist(ctx, job, opts)
		results <- res
	}
}

// exportSinglePlaylist exports a single playlist to the appropriate format.
func (e *LibraryEngine) exportSinglePlaylist(
	ctx context.Context,
	j PlaylistExportJob,
	opts BulkExportOpts,
) formatter.PlaylistExportResult {
	result := formatter.PlaylistExportResult{
		PlaylistID:   j.PlaylistID,
		PlaylistName: j.Export.Playlist.Name,
		Success:      false,
		Files:        []string{},
	}

	switch opts.Format {
	case "csv":
		baseFilepath := filepath.Join(opts.OutputDir, j.Export.Playlist.ID)
		csvRes, err := formatter.WriteCSVExport(j.Export, baseFilepath)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.TracksFile, csvRes.MetadataFile}
		result.Success = true

	case "markdown":
		outputDir := filepath.Join(opts.OutputDir, j.Export.Playlist.ID)

		var imageURL string
		if opts.GetCoverImage != nil {
			if url, err := opts.GetCoverImage(ctx, j.PlaylistID); err == nil {
				imageURL = url
			}
		}

		mdRes, err := formatter.WriteMarkdownExport(j.Export, outputDir, imageURL)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files
		result.Success = true

	case "txt":
		txtPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_tracks.txt", j.Export.Playlist.ID))
		txtFile, err := formatter.WriteTextExport(j.Export, txtPath)
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{txtFile}
		result.Success = true
	case "json":
		fallthrough
	default:
		jsonPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", j.Export.Playlist.ID))
		jsonFile, err := formatter.WriteJSONExport(j.Export, jsonPath)
		if err != nil {
			result.Error = fmt.Errorf("JSON export failed: %w", err)
			return result
		}
		result.Files = []string{jsonFile}
		result.Success = true
	}
	return result
}
