// package services defines interface Service for interacting with the Spotify Web API
package services

import (
	"context"

	"github.com/desertthunder/spotx/internal/models"
)

// Service defines the surface of the music provider the adapter exposes.
// Implementations translate provider responses into the shared models types.
type Service interface {
	// Name returns the name of the provider (e.g., "Spotify")
	Name() string

	// Profile retrieves the authenticated user's account information.
	Profile(ctx context.Context) (*models.Profile, error)

	// Search runs a catalog search across the given entity kinds
	// (track, album, artist, playlist). An empty kinds slice searches tracks.
	Search(ctx context.Context, query string, kinds []string, limit int) (*models.SearchResults, error)

	// SearchTrack searches for a single track by title and artist.
	// Returns the best match or an error if no match is found.
	SearchTrack(ctx context.Context, title, artist string) (*models.Track, error)

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// ExportPlaylist exports a playlist with all its tracks.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// ImportPlaylist creates a new playlist for the authenticated user and
	// populates it with the provided tracks.
	ImportPlaylist(ctx context.Context, export *models.PlaylistExport) (*models.Playlist, error)

	// AddTracksToPlaylist appends tracks to an existing playlist.
	AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error

	// SavedTracks retrieves one page of the user's library.
	SavedTracks(ctx context.Context, limit, offset int) (*models.TrackPage, error)

	// SaveTracks adds tracks to the user's library.
	SaveTracks(ctx context.Context, trackIDs []string) error

	// RemoveSavedTracks removes tracks from the user's library.
	RemoveSavedTracks(ctx context.Context, trackIDs []string) error

	// PlaybackState retrieves the current playback session.
	// Returns nil when nothing is playing on any device.
	PlaybackState(ctx context.Context) (*models.PlaybackState, error)

	// Devices lists the playback devices registered with the user's account.
	Devices(ctx context.Context) ([]models.Device, error)

	// Play starts or resumes playback, optionally from a context URI
	// (album or playlist) or an explicit list of track URIs.
	Play(ctx context.Context, contextURI string, trackURIs []string) error

	// Pause pauses playback on the active device.
	Pause(ctx context.Context) error

	// SkipNext advances playback to the next track in the queue.
	SkipNext(ctx context.Context) error

	// SkipPrevious returns playback to the previous track.
	SkipPrevious(ctx context.Context) error

	// QueueTrack appends a track to the active device's playback queue.
	QueueTrack(ctx context.Context, uri string) error

	// Queue retrieves the active device's playback queue.
	Queue(ctx context.Context) (*models.Queue, error)

	// RecentlyPlayed retrieves the user's listening history, newest first.
	RecentlyPlayed(ctx context.Context, limit int) ([]models.PlayHistory, error)

	// TopTracks retrieves the user's most played tracks over a time range
	// (short_term, medium_term, long_term).
	TopTracks(ctx context.Context, timeRange string, limit int) ([]models.Track, error)

	// TopArtists retrieves the user's most played artists over a time range.
	TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Artist, error)
}
