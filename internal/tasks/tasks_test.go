package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	tu "github.com/desertthunder/spotx/internal/testing"
)

var _ SyncEngine = (*LibraryEngine)(nil)

// memoryCache is an in-memory TrackCacher safe for concurrent workers.
type memoryCache struct {
	mu     sync.Mutex
	tracks map[string]models.Track
	errFor map[string]error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		tracks: make(map[string]models.Track),
		errFor: make(map[string]error),
	}
}

func (c *memoryCache) CacheTrack(service, serviceID string, track models.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.errFor[serviceID]; ok {
		return err
	}

	c.tracks[service+"/"+serviceID] = track
	return nil
}

func (c *memoryCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracks)
}

// memoryRecorder is an in-memory SyncRecorder capturing run transitions.
type memoryRecorder struct {
	mu        sync.Mutex
	createErr error
	created   []*models.SyncRun
	statuses  []string
}

func (r *memoryRecorder) Create(run *models.SyncRun) error {
	if r.createErr != nil {
		return r.createErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	run.SetID(fmt.Sprintf("run_%d", len(r.created)+1))
	r.created = append(r.created, run)
	return nil
}

func (r *memoryRecorder) Update(run *models.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statuses = append(r.statuses, run.Status())
	return nil
}

func (r *memoryRecorder) lastStatus() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.statuses) == 0 {
		return ""
	}
	return r.statuses[len(r.statuses)-1]
}

func makeTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			ID:     fmt.Sprintf("track%d", i+1),
			Title:  fmt.Sprintf("Song %d", i+1),
			Artist: fmt.Sprintf("Artist %d", i+1),
			Album:  "Test Album",
		}
	}
	return tracks
}

// libraryService returns a mock whose SavedTracks pages through tracks.
func libraryService(tracks []models.Track) *tu.MockService {
	return &tu.MockService{
		SavedTracksFn: func(ctx context.Context, limit, offset int) (*models.TrackPage, error) {
			if offset > len(tracks) {
				offset = len(tracks)
			}

			end := offset + limit
			if end > len(tracks) {
				end = len(tracks)
			}

			return &models.TrackPage{
				Tracks: tracks[offset:end],
				Total:  len(tracks),
				Limit:  limit,
				Offset: offset,
				More:   end < len(tracks),
			}, nil
		},
	}
}

func drainProgress(ch <-chan ProgressUpdate) {
	go func() {
		for range ch {
		}
	}()
}

func TestLibraryEngine_SyncLibrary(t *testing.T) {
	tests := []struct {
		name       string
		trackCount int
		opts       SyncOpts
		wantTotal  int
		wantSynced int
	}{
		{
			name:       "SinglePage",
			trackCount: 10,
			opts:       SyncOpts{RateLimit: 1000},
			wantTotal:  10,
			wantSynced: 10,
		},
		{
			name:       "MultiplePages",
			trackCount: 120,
			opts:       SyncOpts{RateLimit: 1000},
			wantTotal:  120,
			wantSynced: 120,
		},
		{
			name:       "EmptyLibrary",
			trackCount: 0,
			opts:       SyncOpts{RateLimit: 1000},
			wantTotal:  0,
			wantSynced: 0,
		},
		{
			name:       "MaxTracksCap",
			trackCount: 120,
			opts:       SyncOpts{RateLimit: 1000, MaxTracks: 30},
			wantTotal:  30,
			wantSynced: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newMemoryCache()
			recorder := &memoryRecorder{}
			engine := NewLibraryEngine(libraryService(makeTracks(tt.trackCount)), cache, recorder)

			progressCh := make(chan ProgressUpdate, 500)
			drainProgress(progressCh)
			defer close(progressCh)

			result, err := engine.SyncLibrary(context.Background(), progressCh, tt.opts)
			if err != nil {
				t.Fatalf("SyncLibrary failed: %v", err)
			}

			if result.TotalTracks != tt.wantTotal {
				t.Errorf("expected %d total tracks, got %d", tt.wantTotal, result.TotalTracks)
			}
			if result.SyncedCount != tt.wantSynced {
				t.Errorf("expected %d synced, got %d", tt.wantSynced, result.SyncedCount)
			}
			if result.FailedCount != 0 {
				t.Errorf("expected 0 failed, got %d", result.FailedCount)
			}
			if cache.size() != tt.wantSynced {
				t.Errorf("expected %d cached tracks, got %d", tt.wantSynced, cache.size())
			}

			if len(recorder.created) != 1 {
				t.Fatalf("expected 1 sync run created, got %d", len(recorder.created))
			}

			run := result.Run
			if run == nil {
				t.Fatal("expected result to carry the sync run")
			}
			if run.Status() != models.SyncStatusCompleted {
				t.Errorf("expected run status %s, got %s", models.SyncStatusCompleted, run.Status())
			}
			if run.Total() != tt.wantTotal {
				t.Errorf("expected run total %d, got %d", tt.wantTotal, run.Total())
			}
			if run.Synced() != tt.wantSynced {
				t.Errorf("expected run synced %d, got %d", tt.wantSynced, run.Synced())
			}
			if recorder.lastStatus() != models.SyncStatusCompleted {
				t.Errorf("expected last recorded status %s, got %s", models.SyncStatusCompleted, recorder.lastStatus())
			}
		})
	}
}

func TestLibraryEngine_SyncLibrary_ServiceErrors(t *testing.T) {
	t.Run("NilService", func(t *testing.T) {
		engine := NewLibraryEngine(nil, newMemoryCache(), nil)

		progressCh := make(chan ProgressUpdate, 10)
		defer close(progressCh)

		_, err := engine.SyncLibrary(context.Background(), progressCh, SyncOpts{})
		if err == nil {
			t.Fatal("expected error for nil service")
		}
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if !strings.Contains(err.Error(), "not initialized") {
			t.Errorf("expected 'not initialized' in error, got %v", err)
		}
	})

	t.Run("NilCache", func(t *testing.T) {
		engine := NewLibraryEngine(libraryService(makeTracks(5)), nil, nil)

		progressCh := make(chan ProgressUpdate, 10)
		defer close(progressCh)

		_, err := engine.SyncLibrary(context.Background(), progressCh, SyncOpts{})
		if err == nil {
			t.Fatal("expected error for nil cache")
		}
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestLibraryEngine_SyncLibrary_FetchFailure(t *testing.T) {
	t.Run("FirstPage", func(t *testing.T) {
		svc := &tu.MockService{
			SavedTracksFn: func(ctx context.Context, limit, offset int) (*models.TrackPage, error) {
				return nil, errors.New("connection reset")
			},
		}
		recorder := &memoryRecorder{}
		engine := NewLibraryEngine(svc, newMemoryCache(), recorder)

		progressCh := make(chan ProgressUpdate, 100)
		drainProgress(progressCh)
		defer close(progressCh)

		result, err := engine.SyncLibrary(context.Background(), progressCh, SyncOpts{RateLimit: 1000})
		if err == nil {
			t.Fatal("expected error when first page fetch fails")
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if result.SyncedCount != 0 {
			t.Errorf("expected 0 synced, got %d", result.SyncedCount)
		}
		if recorder.lastStatus() != models.SyncStatusFailed {
			t.Errorf("expected run marked failed, got %s", recorder.lastStatus())
		}
	})

	t.Run("MidSync", func(t *testing.T) {
		tracks := makeTracks(120)
		svc := &tu.MockService{
			SavedTracksFn: func(ctx context.Context, limit, offset int) (*models.TrackPage, error) {
				if offset >= 50 {
					return nil, errors.New("rate limited")
				}

				return &models.TrackPage{
					Tracks: tracks[offset : offset+limit],
					Total:  len(tracks),
					Limit:  limit,
					Offset: offset,
					More:   true,
				}, nil
			},
		}
		cache := newMemoryCache()
		recorder := &memoryRecorder{}
		engine := NewLibraryEngine(svc, cache, recorder)

		progressCh := make(chan ProgressUpdate, 500)
		drainProgress(progressCh)
		defer close(progressCh)

		result, err := engine.SyncLibrary(context.Background(), progressCh, SyncOpts{RateLimit: 1000})
		if err == nil {
			t.Fatal("expected error when a later page fetch fails")
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "offset 50") {
			t.Errorf("expected failing offset in error, got %v", err)
		}

		if result.SyncedCount != 50 {
			t.Errorf("expected 50 tracks synced before failure, got %d", result.SyncedCount)
		}
		if recorder.lastStatus() != models.SyncStatusFailed {
			t.Errorf("expected run marked failed, got %s", recorder.lastStatus())
		}

		run := result.Run
		if run.Synced() != 50 {
			t.Errorf("expected run synced 50, got %d", run.Synced())
		}
		if run.ErrorMessage() == "" {
			t.Error("expected run to record the failure message")
		}
	})
}

func TestLibraryEngine_SyncLibrary_CacheFailures(t *testing.T) {
	cache := newMemoryCache()
	cache.errFor["track3"] = errors.New("disk full")
	cache.errFor["track7"] = errors.New("disk full")

	recorder := &memoryRecorder{}
	engine := NewLibraryEngine(libraryService(makeTracks(10)), cache, recorder)

	progressCh := make(chan ProgressUpdate, 100)
	drainProgress(progressCh)
	defer close(progressCh)

	result, err := engine.SyncLibrary(context.Background(), progressCh, SyncOpts{RateLimit: 1000})
	if err != nil {
		t.Fatalf("cache failures should not abort the sync: %v", err)
	}

	if result.SyncedCount != 8 {
		t.Errorf("expected 8 synced, got %d", result.SyncedCount)
	}
	if result.FailedCount != 2 {
		t.Errorf("expected 2 failed, got %d", result.FailedCount)
	}

	run := result.Run
	if run.Status() != models.SyncStatusCompleted {
		t.Errorf("expected run completed despite cache failures, got %s", run.Status())
	}
	if run.Failed() != 2 {
		t.Errorf("expected run failed count 2, got %d", run.Failed())
	}
}

func TestLibraryEngine_SyncLibrary_Bookkeeping(t *testing.T) {
	t.Run("RecorderDisabled", func(t *testing.T) {
		cache := newMemoryCache()
		engine := NewLibraryEngine(libraryService(makeTracks(5)), cache, nil)

		progressCh := make(chan ProgressUpdate, 100)
		drainProgress(progressCh)
		defer close(progressCh)

		result, err := engine.SyncLibrary(context.Background(), progressCh, SyncOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("SyncLibrary without recorder failed: %v", err)
		}
		if result.Run != nil {
			t.Error("expected no sync run without a recorder")
		}
		if result.SyncedCount != 5 {
			t.Errorf("expected 5 synced, got %d", result.SyncedCount)
		}
	})

	t.Run("CreateRunError", func(t *testing.T) {
		recorder := &memoryRecorder{createErr: errors.New("database locked")}
		engine := NewLibraryEngine(libraryService(makeTracks(5)), newMemoryCache(), recorder)

		progressCh := make(chan ProgressUpdate, 10)
		defer close(progressCh)

		_, err := engine.SyncLibrary(context.Background(), progressCh, SyncOpts{RateLimit: 1000})
		if err == nil {
			t.Fatal("expected error when sync run cannot be recorded")
		}
		if !strings.Contains(err.Error(), "failed to record sync run") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestLibraryEngine_SyncLibrary_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recorder := &memoryRecorder{}
	engine := NewLibraryEngine(libraryService(makeTracks(120)), newMemoryCache(), recorder)

	progressCh := make(chan ProgressUpdate, 500)
	drainProgress(progressCh)
	defer close(progressCh)

	result, err := engine.SyncLibrary(ctx, progressCh, SyncOpts{RateLimit: 1000})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	if result.SyncedCount != 0 {
		t.Errorf("expected 0 synced after immediate cancellation, got %d", result.SyncedCount)
	}
	if recorder.lastStatus() != models.SyncStatusFailed {
		t.Errorf("expected run marked failed, got %s", recorder.lastStatus())
	}
}

func TestLibraryEngine_SyncLibrary_ProgressUpdates(t *testing.T) {
	engine := NewLibraryEngine(libraryService(makeTracks(10)), newMemoryCache(), &memoryRecorder{})

	progressCh := make(chan ProgressUpdate, 500)
	var updates []ProgressUpdate
	done := make(chan struct{})

	go func() {
		for update := range progressCh {
			updates = append(updates, update)
		}
		close(done)
	}()

	_, err := engine.SyncLibrary(context.Background(), progressCh, SyncOpts{RateLimit: 1000})
	if err != nil {
		t.Fatalf("SyncLibrary failed: %v", err)
	}

	close(progressCh)
	<-done

	if len(updates) == 0 {
		t.Fatal("expected progress updates")
	}

	phases := make(map[Phase]bool)
	for _, update := range updates {
		phases[update.Phase] = true
	}

	for _, phase := range []Phase{FetchLibrary, CacheTracks, RecordRun} {
		if !phases[phase] {
			t.Errorf("expected at least one %s update", phase)
		}
	}
}

func TestLibraryEngine_SyncLibrary_NonBlockingProgress(t *testing.T) {
	engine := NewLibraryEngine(libraryService(makeTracks(20)), newMemoryCache(), nil)

	// Unbuffered channel nobody reads: every send should be dropped.
	progressCh := make(chan ProgressUpdate)

	done := make(chan error, 1)
	go func() {
		_, err := engine.SyncLibrary(context.Background(), progressCh, SyncOpts{RateLimit: 1000})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("SyncLibrary failed: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("SyncLibrary blocked on an unconsumed progress channel")
	}
}

func TestSyncOpts_Defaults(t *testing.T) {
	var gotLimit int
	svc := &tu.MockService{
		SavedTracksFn: func(ctx context.Context, limit, offset int) (*models.TrackPage, error) {
			gotLimit = limit
			return &models.TrackPage{Tracks: nil, Total: 0, Limit: limit, Offset: offset}, nil
		},
	}
	engine := NewLibraryEngine(svc, newMemoryCache(), nil)

	progressCh := make(chan ProgressUpdate, 100)
	drainProgress(progressCh)
	defer close(progressCh)

	if _, err := engine.SyncLibrary(context.Background(), progressCh, SyncOpts{PageSize: 500}); err != nil {
		t.Fatalf("SyncLibrary failed: %v", err)
	}

	if gotLimit != 50 {
		t.Errorf("expected page size clamped to 50, got %d", gotLimit)
	}
}
