// package tasks implements long-running library operations against the Spotify API.
//
// The core abstraction is SyncEngine, which orchestrates library syncs and bulk playlist exports.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/time/rate"
)

// TrackCacher persists tracks fetched during sync operations.
//
// Implemented by repositories.TrackCacheAdapter. Cache failures are counted
// as failed tracks but never abort a sync.
type TrackCacher interface {
	CacheTrack(service, serviceID string, track models.Track) error
}

// SyncRecorder persists sync run bookkeeping rows.
//
// Implemented by repositories.SyncRunRepository.
type SyncRecorder interface {
	Create(run *models.SyncRun) error
	Update(run *models.SyncRun) error
}

// SyncOpts contains configuration for a library sync.
type SyncOpts struct {
	PageSize   int     // Tracks fetched per page (default: 50, max: 50)
	NumWorkers int     // Concurrent cache writers (default: 4, max: 10)
	RateLimit  float64 // Page fetches per second (default: 5)
	MaxTracks  int     // Upper bound on tracks to sync (0 = entire library)
}

// SyncResult contains the outcome of a library sync.
type SyncResult struct {
	Run         *models.SyncRun // Recorded run row (nil when bookkeeping is disabled)
	TotalTracks int             // Saved tracks reported by the service
	SyncedCount int             // Tracks cached successfully
	FailedCount int             // Tracks that could not be cached
}

// trackCacheResult carries one worker's outcome back to the collector.
type trackCacheResult struct {
	track models.Track
	err   error
}

// SyncEngine defines long-running library operations against a music service.
type SyncEngine interface {
	// SyncLibrary pages through the user's saved tracks and caches each one locally, recording a sync run.
	SyncLibrary(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOpts) (*SyncResult, error)

	// BulkExport exports multiple playlists concurrently with rate limiting and progress tracking.
	BulkExport(ctx context.Context, progress chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*formatter.BulkExportResult, error)
}

// LibraryEngine implements SyncEngine for library operations.
// Contains dependencies on the music service and local persistence.
type LibraryEngine struct {
	svc   services.Service
	cache TrackCacher
	runs  SyncRecorder
}

// NewLibraryEngine creates a new LibraryEngine with the provided dependencies.
// Both cache and runs may be nil; a nil runs recorder disables bookkeeping.
func NewLibraryEngine(svc services.Service, cache TrackCacher, runs SyncRecorder) *LibraryEngine {
	return &LibraryEngine{
		svc:   svc,
		cache: cache,
		runs:  runs,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// recordRun updates the sync run row. Bookkeeping failures never interrupt a sync.
func (e *LibraryEngine) recordRun(run *models.SyncRun) {
	if e.runs == nil || run == nil {
		return
	}
	_ = e.runs.Update(run)
}

// SyncLibrary pages through the user's saved tracks and caches every track locally.
//
// Pages are fetched sequentially under a rate limiter while a worker pool writes
// tracks through the cache. A sync run row tracks totals and final status.
func (e *LibraryEngine) SyncLibrary(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOpts) (*SyncResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if e.cache == nil {
		return nil, fmt.Errorf("%w: track cache not initialized", shared.ErrServiceUnavailable)
	}

	if opts.PageSize <= 0 || opts.PageSize > 50 {
		opts.PageSize = 50
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	var run *models.SyncRun
	if e.runs != nil {
		run = models.NewSyncRun(0)
		if err := e.runs.Create(run); err != nil {
			return nil, fmt.Errorf("failed to record sync run: %w", err)
		}
		run.Start()
		e.recordRun(run)
	}

	result := &SyncResult{Run: run}
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	e.sendProgress(progress, fetchLibraryUpdate(0, 0))

	first, err := e.svc.SavedTracks(ctx, opts.PageSize, 0)
	if err != nil {
		fetchErr := fmt.Errorf("%w: failed to fetch saved tracks: %v", shared.ErrAPIRequest, err)
		if run != nil {
			run.Fail(fetchErr.Error())
			e.recordRun(run)
		}
		return result, fetchErr
	}

	total := first.Total
	if opts.MaxTracks > 0 && opts.MaxTracks < total {
		total = opts.MaxTracks
	}
	result.TotalTracks = total
	if run != nil {
		run.SetTotal(total)
		e.recordRun(run)
	}

	jobs := make(chan models.Track, opts.PageSize)
	results := make(chan trackCacheResult, opts.PageSize)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.cacheWorker(ctx, &wg, jobs, results)
	}

	counts := struct{ seen, synced, failed int }{}
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			counts.seen++
			if res.err != nil {
				counts.failed++
			} else {
				counts.synced++
			}
			e.sendProgress(progress, cacheTrackUpdate(counts.seen, total, res.track))
		}
	}()

	var feedErr error
	page := first
	offset := 0
	fetched := 0

feed:
	for {
		for _, track := range page.Tracks {
			if opts.MaxTracks > 0 && fetched >= opts.MaxTracks {
				break feed
			}

			select {
			case <-ctx.Done():
				feedErr = ctx.Err()
				break feed
			default:
			}

			select {
			case <-ctx.Done():
				feedErr = ctx.Err()
				break feed
			case jobs <- track:
				fetched++
			}
		}

		offset += len(page.Tracks)
		if !page.More || len(page.Tracks) == 0 {
			break
		}

		if err := limiter.Wait(ctx); err != nil {
			feedErr = err
			break
		}

		e.sendProgress(progress, fetchLibraryUpdate(fetched, total))

		next, err := e.svc.SavedTracks(ctx, opts.PageSize, offset)
		if err != nil {
			feedErr = fmt.Errorf("%w: failed to fetch saved tracks at offset %d: %v", shared.ErrAPIRequest, offset, err)
			break
		}
		page = next
	}

	close(jobs)
	wg.Wait()
	close(results)
	<-collectorDone

	result.SyncedCount = counts.synced
	result.FailedCount = counts.failed

	if run != nil {
		run.SetSynced(counts.synced)
		run.SetFailed(counts.failed)
		if feedErr != nil {
			run.Fail(feedErr.Error())
		} else {
			run.Complete()
		}
		e.recordRun(run)
		e.sendProgress(progress, runRecordedUpdate(run))
	}

	if feedErr != nil {
		return result, feedErr
	}
	return result, nil
}

// cacheWorker drains the jobs channel and writes each track through the cache.
func (e *LibraryEngine) cacheWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan models.Track, results chan<- trackCacheResult) {
	defer wg.Done()

	for track := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := e.cache.CacheTrack("spotify", track.ID, track)
		results <- trackCacheResult{track: track, err: err}
	}
}
