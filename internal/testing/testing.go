// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/spotx/internal/models"
)

// MockService is a configurable test double for [services.Service].
// Unset function fields fall back to empty successful responses.
type MockService struct {
	ProfileFn           func(ctx context.Context) (*models.Profile, error)
	SearchFn            func(ctx context.Context, query string, kinds []string, limit int) (*models.SearchResults, error)
	SearchTrackFn       func(ctx context.Context, title, artist string) (*models.Track, error)
	GetPlaylistsFn      func(ctx context.Context) ([]models.Playlist, error)
	GetPlaylistFn       func(ctx context.Context, playlistID string) (*models.Playlist, error)
	ExportPlaylistFn    func(ctx context.Context, playlistID string) (*models.PlaylistExport, error)
	ImportPlaylistFn    func(ctx context.Context, export *models.PlaylistExport) (*models.Playlist, error)
	AddTracksFn         func(ctx context.Context, playlistID string, uris []string) error
	SavedTracksFn       func(ctx context.Context, limit, offset int) (*models.TrackPage, error)
	SaveTracksFn        func(ctx context.Context, trackIDs []string) error
	RemoveSavedTracksFn func(ctx context.Context, trackIDs []string) error
	PlaybackStateFn     func(ctx context.Context) (*models.PlaybackState, error)
	DevicesFn           func(ctx context.Context) ([]models.Device, error)
	PlayFn              func(ctx context.Context, contextURI string, trackURIs []string) error
	PauseFn             func(ctx context.Context) error
	SkipNextFn          func(ctx context.Context) error
	SkipPreviousFn      func(ctx context.Context) error
	QueueTrackFn        func(ctx context.Context, uri string) error
	QueueFn             func(ctx context.Context) (*models.Queue, error)
	RecentlyPlayedFn    func(ctx context.Context, limit int) ([]models.PlayHistory, error)
	TopTracksFn         func(ctx context.Context, timeRange string, limit int) ([]models.Track, error)
	TopArtistsFn        func(ctx context.Context, timeRange string, limit int) ([]models.Artist, error)
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) Profile(ctx context.Context) (*models.Profile, error) {
	if m.ProfileFn != nil {
		return m.ProfileFn(ctx)
	}
	return &models.Profile{}, nil
}

func (m *MockService) Search(ctx context.Context, query string, kinds []string, limit int) (*models.SearchResults, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, kinds, limit)
	}
	return &models.SearchResults{}, nil
}

func (m *MockService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	if m.SearchTrackFn != nil {
		return m.SearchTrackFn(ctx, title, artist)
	}
	return nil, nil
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if m.GetPlaylistsFn != nil {
		return m.GetPlaylistsFn(ctx)
	}
	return []models.Playlist{}, nil
}

func (m *MockService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if m.GetPlaylistFn != nil {
		return m.GetPlaylistFn(ctx, playlistID)
	}
	return nil, nil
}

func (m *MockService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	if m.ExportPlaylistFn != nil {
		return m.ExportPlaylistFn(ctx, playlistID)
	}
	return nil, nil
}

func (m *MockService) ImportPlaylist(ctx context.Context, export *models.PlaylistExport) (*models.Playlist, error) {
	if m.ImportPlaylistFn != nil {
		return m.ImportPlaylistFn(ctx, export)
	}
	return nil, nil
}

func (m *MockService) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	if m.AddTracksFn != nil {
		return m.AddTracksFn(ctx, playlistID, uris)
	}
	return nil
}

func (m *MockService) SavedTracks(ctx context.Context, limit, offset int) (*models.TrackPage, error) {
	if m.SavedTracksFn != nil {
		return m.SavedTracksFn(ctx, limit, offset)
	}
	return &models.TrackPage{}, nil
}

func (m *MockService) SaveTracks(ctx context.Context, trackIDs []string) error {
	if m.SaveTracksFn != nil {
		return m.SaveTracksFn(ctx, trackIDs)
	}
	return nil
}

func (m *MockService) RemoveSavedTracks(ctx context.Context, trackIDs []string) error {
	if m.RemoveSavedTracksFn != nil {
		return m.RemoveSavedTracksFn(ctx, trackIDs)
	}
	return nil
}

func (m *MockService) PlaybackState(ctx context.Context) (*models.PlaybackState, error) {
	if m.PlaybackStateFn != nil {
		return m.PlaybackStateFn(ctx)
	}
	return nil, nil
}

func (m *MockService) Devices(ctx context.Context) ([]models.Device, error) {
	if m.DevicesFn != nil {
		return m.DevicesFn(ctx)
	}
	return []models.Device{}, nil
}

func (m *MockService) Play(ctx context.Context, contextURI string, trackURIs []string) error {
	if m.PlayFn != nil {
		return m.PlayFn(ctx, contextURI, trackURIs)
	}
	return nil
}

func (m *MockService) Pause(ctx context.Context) error {
	if m.PauseFn != nil {
		return m.PauseFn(ctx)
	}
	return nil
}

func (m *MockService) SkipNext(ctx context.Context) error {
	if m.SkipNextFn != nil {
		return m.SkipNextFn(ctx)
	}
	return nil
}

func (m *MockService) SkipPrevious(ctx context.Context) error {
	if m.SkipPreviousFn != nil {
		return m.SkipPreviousFn(ctx)
	}
	return nil
}

func (m *MockService) QueueTrack(ctx context.Context, uri string) error {
	if m.QueueTrackFn != nil {
		return m.QueueTrackFn(ctx, uri)
	}
	return nil
}

func (m *MockService) Queue(ctx context.Context) (*models.Queue, error) {
	if m.QueueFn != nil {
		return m.QueueFn(ctx)
	}
	return &models.Queue{}, nil
}

func (m *MockService) RecentlyPlayed(ctx context.Context, limit int) ([]models.PlayHistory, error) {
	if m.RecentlyPlayedFn != nil {
		return m.RecentlyPlayedFn(ctx, limit)
	}
	return []models.PlayHistory{}, nil
}

func (m *MockService) TopTracks(ctx context.Context, timeRange string, limit int) ([]models.Track, error) {
	if m.TopTracksFn != nil {
		return m.TopTracksFn(ctx, timeRange, limit)
	}
	return []models.Track{}, nil
}

func (m *MockService) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Artist, error) {
	if m.TopArtistsFn != nil {
		return m.TopArtistsFn(ctx, timeRange, limit)
	}
	return []models.Artist{}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
