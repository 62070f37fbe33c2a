package tasks

import (
	"fmt"

	"github.com/desertthunder/spotx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	CacheTracks
	RecordRun
	FetchSource
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case CacheTracks:
		return "cache_tracks"
	case RecordRun:
		return "record_run"
	case FetchSource:
		return "fetch_source"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func fetchLibraryUpdate(fetched, total int) ProgressUpdate {
	if total == 0 {
		return ProgressUpdate{
			Phase:   FetchLibrary,
			Step:    0,
			Total:   0,
			Message: "Fetching saved tracks from Spotify...",
		}
	}
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    fetched,
		Total:   total,
		Message: fmt.Sprintf("Fetched %d of %d saved tracks...", fetched, total),
	}
}

func cacheTrackUpdate(step, total int, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Title),
	}
}

func runRecordedUpdate(run *models.SyncRun) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordRun,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync run %s: %d synced, %d failed", run.Status(), run.Synced(), run.Failed()),
		Data:    run,
	}
}

func fetchingSourceUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: "Fetching playlists from Spotify...",
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
