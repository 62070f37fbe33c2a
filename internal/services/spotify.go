// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	Explicit    bool            `json:"explicit"`
	ExternalIDs externalIDs     `json:"external_ids"`
	Popularity  int             `json:"popularity"`
	URI         string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Genres    []string       `json:"genres"`
	Followers followers      `json:"followers"`
	Images    []SpotifyImage `json:"images"`
	URI       string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTrack struct {
	Total int                    `json:"total"`
	Items []SpotifyPlaylistTrack `json:"items"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       Owner          `json:"owner"`
	Public      bool           `json:"public"`
	Tracks      playlistTrack  `json:"tracks"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents a paginated response of saved tracks.
type SpotifyPaginatedTracks struct {
	Items    []SpotifySavedTrack `json:"items"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items    []SpotifySimplePlaylist `json:"items"`
	Total    int                     `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
	Next     *string                 `json:"next"`
	Previous *string                 `json:"previous"`
}

// SpotifyPaginatedPlaylistTracks represents one page of a playlist's tracks.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Owner       Owner               `json:"owner"`
	Public      bool                `json:"public"`
	Tracks      simplePlaylistTrack `json:"tracks"`
	Images      []SpotifyImage      `json:"images"`
	URI         string              `json:"uri"`
}

type playbackContext struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// SpotifyDevice represents a playback device.
type SpotifyDevice struct {
	ID            string `json:"id"`
	IsActive      bool   `json:"is_active"`
	IsRestricted  bool   `json:"is_restricted"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	VolumePercent int    `json:"volume_percent"`
}

// SpotifyPlaybackState represents the current playback session.
type SpotifyPlaybackState struct {
	Device       SpotifyDevice    `json:"device"`
	RepeatState  string           `json:"repeat_state"`
	ShuffleState bool             `json:"shuffle_state"`
	Context      *playbackContext `json:"context"`
	ProgressMS   int              `json:"progress_ms"`
	IsPlaying    bool             `json:"is_playing"`
	Item         *SpotifyTrack    `json:"item"`
}

// SpotifyPlayHistory represents one entry of the recently played listing.
type SpotifyPlayHistory struct {
	Track    SpotifyTrack     `json:"track"`
	PlayedAt string           `json:"played_at"`
	Context  *playbackContext `json:"context"`
}

// SpotifyRecentlyPlayed represents the play history response.
type SpotifyRecentlyPlayed struct {
	Items []SpotifyPlayHistory `json:"items"`
}

// SpotifyQueue represents the active device's play queue.
type SpotifyQueue struct {
	CurrentlyPlaying *SpotifyTrack  `json:"currently_playing"`
	Queue            []SpotifyTrack `json:"queue"`
}

type searchTracks struct {
	Items []SpotifyTrack `json:"items"`
}

type searchAlbums struct {
	Items []SpotifyAlbum `json:"items"`
}

type searchArtists struct {
	Items []SpotifyArtist `json:"items"`
}

type searchPlaylists struct {
	Items []SpotifySimplePlaylist `json:"items"`
}

// SpotifySearchResults represents a catalog search response.
// Only the requested entity kinds are populated.
type SpotifySearchResults struct {
	Tracks    *searchTracks    `json:"tracks"`
	Albums    *searchAlbums    `json:"albums"`
	Artists   *searchArtists   `json:"artists"`
	Playlists *searchPlaylists `json:"playlists"`
}

// SpotifyTopTracks represents the paginated response of the user's top tracks.
type SpotifyTopTracks struct {
	Items []SpotifyTrack `json:"items"`
	Total int            `json:"total"`
}

// SpotifyTopArtists represents the paginated response of the user's top artists.
type SpotifyTopArtists struct {
	Items []SpotifyArtist `json:"items"`
	Total int            `json:"total"`
}

// APIError is a non-2xx response from the Spotify Web API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("spotify API error: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("spotify API error: status %d", e.Status)
}

// Unwrap maps the status to the matching shared sentinel so callers can
// branch with [errors.Is].
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return shared.ErrReauthorizationRequired
	case e.Status == http.StatusTooManyRequests || e.Status >= 500:
		return shared.ErrServiceUnavailable
	default:
		return shared.ErrAPIRequest
	}
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Requests carry bearer tokens drawn from an [oauth2.TokenSource] (the
// credential lifecycle manager in production) and are throttled by an
// optional rate limiter.
type SpotifyService struct {
	source     oauth2.TokenSource
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// SpotifyOpts configures optional fields of [SpotifyService].
type SpotifyOpts struct {
	BaseURL string        // BaseURL overrides the production API base URL
	Client  *http.Client  // Client overrides the default HTTP client
	Limiter *rate.Limiter // Limiter throttles outbound API calls when set
}

// NewSpotifyService creates a Spotify client drawing bearer tokens from source.
func NewSpotifyService(source oauth2.TokenSource, opts *SpotifyOpts) *SpotifyService {
	if opts == nil {
		opts = &SpotifyOpts{}
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &SpotifyService{
		source:     source,
		baseURL:    baseURL,
		httpClient: client,
		limiter:    opts.Limiter,
	}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// A non-nil body is JSON encoded. A non-nil result is decoded from the
// response unless the API answered 204 No Content.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.source == nil {
		return fmt.Errorf("%w: no token source configured", shared.ErrNotAuthenticated)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	token, err := s.source.Token()
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "GET", "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	var track SpotifyTrack
	endpoint := fmt.Sprintf("/tracks/%s", trackID)
	if err := s.doRequest(ctx, "GET", endpoint, nil, &track); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
		}
		return nil, err
	}
	return &track, nil
}

// SeveralTracks retrieves multiple tracks by their IDs (up to 50).
func (s *SpotifyService) SeveralTracks(ctx context.Context, trackIDs []string) ([]SpotifyTrack, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidInput)
	}
	if len(trackIDs) > 50 {
		return nil, fmt.Errorf("%w: maximum 50 track IDs allowed", shared.ErrInvalidInput)
	}

	ids := strings.Join(trackIDs, ",")
	endpoint := fmt.Sprintf("/tracks?ids=%s", url.QueryEscape(ids))

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}

	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Tracks, nil
}

// LibraryTracks retrieves one page of the user's saved tracks.
func (s *SpotifyService) LibraryTracks(ctx context.Context, limit, offset int) (*SpotifyPaginatedTracks, error) {
	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", clampLimit(limit), offset)

	var response SpotifyPaginatedTracks
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// UserPlaylists retrieves the current user's playlists with pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", clampLimit(limit), offset)

	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// Playlist retrieves a playlist by ID.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	endpoint := fmt.Sprintf("/playlists/%s", playlistID)

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, "GET", endpoint, nil, &playlist); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}
		return nil, err
	}

	return &playlist, nil
}

// PlaylistTracks retrieves one page of a playlist's tracks.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*SpotifyPaginatedPlaylistTracks, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, limit, offset)

	var response SpotifyPaginatedPlaylistTracks
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}
		return nil, err
	}

	return &response, nil
}

// Album retrieves an album by ID.
func (s *SpotifyService) Album(ctx context.Context, albumID string) (*SpotifyAlbum, error) {
	var album SpotifyAlbum
	endpoint := fmt.Sprintf("/albums/%s", albumID)
	if err := s.doRequest(ctx, "GET", endpoint, nil, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// SeveralAlbums retrieves multiple albums by their IDs (up to 20).
func (s *SpotifyService) SeveralAlbums(ctx context.Context, albumIDs []string) ([]SpotifyAlbum, error) {
	if len(albumIDs) == 0 {
		return nil, fmt.Errorf("%w: no album IDs provided", shared.ErrInvalidInput)
	}
	if len(albumIDs) > 20 {
		return nil, fmt.Errorf("%w: maximum 20 album IDs allowed", shared.ErrInvalidInput)
	}

	ids := strings.Join(albumIDs, ",")
	endpoint := fmt.Sprintf("/albums?ids=%s", url.QueryEscape(ids))

	var response struct {
		Albums []SpotifyAlbum `json:"albums"`
	}

	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Albums, nil
}

// Artist retrieves an artist by ID.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*SpotifyArtist, error) {
	var artist SpotifyArtist
	endpoint := fmt.Sprintf("/artists/%s", artistID)
	if err := s.doRequest(ctx, "GET", endpoint, nil, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// SeveralArtists retrieves multiple artists by their IDs (up to 50).
func (s *SpotifyService) SeveralArtists(ctx context.Context, artistIDs []string) ([]SpotifyArtist, error) {
	if len(artistIDs) == 0 {
		return nil, fmt.Errorf("%w: no artist IDs provided", shared.ErrInvalidInput)
	}
	if len(artistIDs) > 50 {
		return nil, fmt.Errorf("%w: maximum 50 artist IDs allowed", shared.ErrInvalidInput)
	}

	ids := strings.Join(artistIDs, ",")
	endpoint := fmt.Sprintf("/artists?ids=%s", url.QueryEscape(ids))

	var response struct {
		Artists []SpotifyArtist `json:"artists"`
	}

	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Artists, nil
}

// SearchCatalog performs a raw catalog search. The types argument is the
// comma-separated list of entity kinds the API should match.
func (s *SpotifyService) SearchCatalog(ctx context.Context, query, types string, limit int) (*SpotifySearchResults, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}
	if types == "" {
		types = "track"
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=%s&limit=%d",
		url.QueryEscape(query), url.QueryEscape(types), clampLimit(limit))

	var response SpotifySearchResults
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// Player retrieves the raw playback state, or nil when nothing is playing
// on any device (the API answers 204 in that case).
func (s *SpotifyService) Player(ctx context.Context) (*SpotifyPlaybackState, error) {
	var state SpotifyPlaybackState
	if err := s.doRequest(ctx, "GET", "/me/player", nil, &state); err != nil {
		return nil, err
	}

	if state.Device.ID == "" && state.Item == nil {
		return nil, nil
	}

	return &state, nil
}

// Service interface implementation

// Profile retrieves the authenticated user's account information.
func (s *SpotifyService) Profile(ctx context.Context) (*models.Profile, error) {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
		Followers:   user.Followers.Total,
	}, nil
}

// Search runs a catalog search across the given entity kinds.
func (s *SpotifyService) Search(ctx context.Context, query string, kinds []string, limit int) (*models.SearchResults, error) {
	if len(kinds) == 0 {
		kinds = []string{"track"}
	}

	for _, kind := range kinds {
		switch kind {
		case "track", "album", "artist", "playlist":
		default:
			return nil, fmt.Errorf("%w: unsupported search kind %q", shared.ErrInvalidArgument, kind)
		}
	}

	raw, err := s.SearchCatalog(ctx, query, strings.Join(kinds, ","), limit)
	if err != nil {
		return nil, err
	}

	results := &models.SearchResults{}

	if raw.Tracks != nil {
		for _, st := range raw.Tracks.Items {
			results.Tracks = append(results.Tracks, trackFromSpotify(st))
		}
	}
	if raw.Albums != nil {
		for _, sa := range raw.Albums.Items {
			results.Albums = append(results.Albums, albumFromSpotify(sa))
		}
	}
	if raw.Artists != nil {
		for _, sa := range raw.Artists.Items {
			results.Artists = append(results.Artists, artistFromSpotify(sa))
		}
	}
	if raw.Playlists != nil {
		for _, sp := range raw.Playlists.Items {
			results.Playlists = append(results.Playlists, playlistFromSimple(sp))
		}
	}

	return results, nil
}

// SearchTrack searches for a track by title and artist.
//
// Prefers an exact match on normalized title and artist, falling back to the
// API's top result.
func (s *SpotifyService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	query := fmt.Sprintf("track:%s artist:%s", title, artist)

	raw, err := s.SearchCatalog(ctx, query, "track", 10)
	if err != nil {
		return nil, err
	}

	if raw.Tracks == nil || len(raw.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: no match for %q by %q", shared.ErrTrackNotFound, title, artist)
	}

	want := shared.NormalizeTrackKey(title, artist)

	for _, st := range raw.Tracks.Items {
		candidate := trackFromSpotify(st)
		if shared.NormalizeTrackKey(candidate.Title, candidate.Artist) == want {
			return &candidate, nil
		}
	}

	best := trackFromSpotify(raw.Tracks.Items[0])
	return &best, nil
}

// GetPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var allPlaylists []models.Playlist
	limit := 50
	offset := 0

	for {
		response, err := s.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			allPlaylists = append(allPlaylists, playlistFromSimple(sp))
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return allPlaylists, nil
}

// GetPlaylist retrieves a specific playlist by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	playlist := playlistFromSpotify(*sp)
	return &playlist, nil
}

// ExportPlaylist exports a playlist with all its tracks, following the
// pagination of the playlist items endpoint.
func (s *SpotifyService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	var tracks []models.Track
	limit := 100
	offset := 0

	for {
		page, err := s.PlaylistTracks(ctx, playlistID, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			tracks = append(tracks, trackFromSpotify(item.Track))
		}

		if page.Next == nil {
			break
		}
		offset += limit
	}

	return &models.PlaylistExport{
		Playlist: playlistFromSpotify(*sp),
		Tracks:   tracks,
	}, nil
}

// ImportPlaylist creates a playlist for the authenticated user and adds the
// export's tracks in batches of 100.
func (s *SpotifyService) ImportPlaylist(ctx context.Context, export *models.PlaylistExport) (*models.Playlist, error) {
	if export == nil || export.Playlist.Name == "" {
		return nil, fmt.Errorf("%w: export missing playlist name", shared.ErrInvalidInput)
	}

	profile, err := s.UserProfile(ctx)
	if err != nil {
		return nil, err
	}

	var created SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", profile.ID)
	body := map[string]any{
		"name":        export.Playlist.Name,
		"description": export.Playlist.Description,
		"public":      export.Playlist.Public,
	}
	if err := s.doRequest(ctx, "POST", endpoint, body, &created); err != nil {
		return nil, err
	}

	uris := make([]string, 0, len(export.Tracks))
	for _, track := range export.Tracks {
		switch {
		case track.URI != "":
			uris = append(uris, track.URI)
		case track.ID != "":
			uris = append(uris, "spotify:track:"+track.ID)
		}
	}

	if len(uris) > 0 {
		if err := s.AddTracksToPlaylist(ctx, created.ID, uris); err != nil {
			return nil, err
		}
	}

	playlist := playlistFromSpotify(created)
	playlist.TrackCount = len(uris)
	return &playlist, nil
}

// AddTracksToPlaylist appends tracks to an existing playlist in batches of 100.
func (s *SpotifyService) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: empty playlist ID", shared.ErrInvalidInput)
	}
	if len(uris) == 0 {
		return fmt.Errorf("%w: no track URIs provided", shared.ErrInvalidInput)
	}

	for start := 0; start < len(uris); start += 100 {
		end := start + 100
		if end > len(uris) {
			end = len(uris)
		}

		endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
		body := map[string]any{"uris": uris[start:end]}
		if err := s.doRequest(ctx, "POST", endpoint, body, nil); err != nil {
			return fmt.Errorf("failed to add tracks to %s: %w", playlistID, err)
		}
	}

	return nil
}

// SavedTracks retrieves one page of the user's library.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit, offset int) (*models.TrackPage, error) {
	response, err := s.LibraryTracks(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &models.TrackPage{
		Total:  response.Total,
		Limit:  response.Limit,
		Offset: response.Offset,
		More:   response.Next != nil,
	}

	for _, item := range response.Items {
		page.Tracks = append(page.Tracks, trackFromSpotify(item.Track))
	}

	return page, nil
}

// SaveTracks adds tracks to the user's library (up to 50 per call).
func (s *SpotifyService) SaveTracks(ctx context.Context, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidInput)
	}
	if len(trackIDs) > 50 {
		return fmt.Errorf("%w: maximum 50 track IDs allowed", shared.ErrInvalidInput)
	}

	return s.doRequest(ctx, "PUT", "/me/tracks", map[string]any{"ids": trackIDs}, nil)
}

// RemoveSavedTracks removes tracks from the user's library (up to 50 per call).
func (s *SpotifyService) RemoveSavedTracks(ctx context.Context, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidInput)
	}
	if len(trackIDs) > 50 {
		return fmt.Errorf("%w: maximum 50 track IDs allowed", shared.ErrInvalidInput)
	}

	return s.doRequest(ctx, "DELETE", "/me/tracks", map[string]any{"ids": trackIDs}, nil)
}

// PlaybackState retrieves the current playback session, or nil when nothing
// is playing.
func (s *SpotifyService) PlaybackState(ctx context.Context) (*models.PlaybackState, error) {
	raw, err := s.Player(ctx)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	state := &models.PlaybackState{
		Device:   deviceFromSpotify(raw.Device),
		Progress: raw.ProgressMS / 1000,
		Playing:  raw.IsPlaying,
		Shuffle:  raw.ShuffleState,
		Repeat:   raw.RepeatState,
	}

	if raw.Item != nil {
		track := trackFromSpotify(*raw.Item)
		state.Track = &track
	}
	if raw.Context != nil {
		state.ContextURI = raw.Context.URI
	}

	return state, nil
}

// Devices lists the playback devices registered with the user's account.
func (s *SpotifyService) Devices(ctx context.Context) ([]models.Device, error) {
	var response struct {
		Devices []SpotifyDevice `json:"devices"`
	}

	if err := s.doRequest(ctx, "GET", "/me/player/devices", nil, &response); err != nil {
		return nil, err
	}

	devices := make([]models.Device, 0, len(response.Devices))
	for _, sd := range response.Devices {
		devices = append(devices, deviceFromSpotify(sd))
	}

	return devices, nil
}

// Play starts or resumes playback on the active device.
func (s *SpotifyService) Play(ctx context.Context, contextURI string, trackURIs []string) error {
	payload := map[string]any{}
	if contextURI != "" {
		payload["context_uri"] = contextURI
	}
	if len(trackURIs) > 0 {
		payload["uris"] = trackURIs
	}

	var body any
	if len(payload) > 0 {
		body = payload
	}

	return s.doRequest(ctx, "PUT", "/me/player/play", body, nil)
}

// Pause pauses playback on the active device.
func (s *SpotifyService) Pause(ctx context.Context) error {
	return s.doRequest(ctx, "PUT", "/me/player/pause", nil, nil)
}

// SkipNext advances playback to the next track in the queue.
func (s *SpotifyService) SkipNext(ctx context.Context) error {
	return s.doRequest(ctx, "POST", "/me/player/next", nil, nil)
}

// SkipPrevious returns playback to the previous track.
func (s *SpotifyService) SkipPrevious(ctx context.Context) error {
	return s.doRequest(ctx, "POST", "/me/player/previous", nil, nil)
}

// QueueTrack appends a track to the active device's playback queue.
func (s *SpotifyService) QueueTrack(ctx context.Context, uri string) error {
	if uri == "" {
		return fmt.Errorf("%w: empty track URI", shared.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("/me/player/queue?uri=%s", url.QueryEscape(uri))
	return s.doRequest(ctx, "POST", endpoint, nil, nil)
}

// Queue retrieves the upcoming tracks on the active device.
func (s *SpotifyService) Queue(ctx context.Context) (*models.Queue, error) {
	var response SpotifyQueue
	if err := s.doRequest(ctx, "GET", "/me/player/queue", nil, &response); err != nil {
		return nil, err
	}

	queue := &models.Queue{}
	if response.CurrentlyPlaying != nil {
		track := trackFromSpotify(*response.CurrentlyPlaying)
		queue.NowPlaying = &track
	}
	for _, st := range response.Queue {
		queue.Next = append(queue.Next, trackFromSpotify(st))
	}

	return queue, nil
}

// RecentlyPlayed retrieves the user's listening history, newest first.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, limit int) ([]models.PlayHistory, error) {
	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", clampLimit(limit))

	var response SpotifyRecentlyPlayed
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	history := make([]models.PlayHistory, 0, len(response.Items))
	for _, item := range response.Items {
		entry := models.PlayHistory{
			Track:    trackFromSpotify(item.Track),
			PlayedAt: item.PlayedAt,
		}
		if item.Context != nil {
			entry.Context = item.Context.URI
		}
		history = append(history, entry)
	}

	return history, nil
}

// TopTracks retrieves the user's most played tracks over a time range.
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange string, limit int) ([]models.Track, error) {
	timeRange, err := validTimeRange(timeRange)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/me/top/tracks?time_range=%s&limit=%d", timeRange, clampLimit(limit))

	var response SpotifyTopTracks
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Items))
	for _, st := range response.Items {
		tracks = append(tracks, trackFromSpotify(st))
	}

	return tracks, nil
}

// TopArtists retrieves the user's most played artists over a time range.
func (s *SpotifyService) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.Artist, error) {
	timeRange, err := validTimeRange(timeRange)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/me/top/artists?time_range=%s&limit=%d", timeRange, clampLimit(limit))

	var response SpotifyTopArtists
	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(response.Items))
	for _, sa := range response.Items {
		artists = append(artists, artistFromSpotify(sa))
	}

	return artists, nil
}

// clampLimit keeps page sizes within the API's accepted 1-50 window.
func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 50 {
		return 50
	}
	return limit
}

func validTimeRange(timeRange string) (string, error) {
	switch timeRange {
	case "":
		return "medium_term", nil
	case "short_term", "medium_term", "long_term":
		return timeRange, nil
	default:
		return "", fmt.Errorf("%w: unsupported time range %q", shared.ErrInvalidArgument, timeRange)
	}
}

// isStatus reports whether err is an [APIError] with the given HTTP status.
func isStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func trackFromSpotify(st SpotifyTrack) models.Track {
	track := models.Track{
		ID:       st.ID,
		URI:      st.URI,
		Title:    st.Name,
		Duration: st.DurationMS / 1000,
		ISRC:     st.ExternalIDs.ISRC,
		Explicit: st.Explicit,
	}

	if len(st.Artists) > 0 {
		track.Artist = st.Artists[0].Name
	}
	if st.Album.Name != "" {
		track.Album = st.Album.Name
	}

	return track
}

func playlistFromSpotify(sp SpotifyPlaylist) models.Playlist {
	playlist := models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		Owner:       ownerName(sp.Owner),
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
	}

	if len(sp.Images) > 0 {
		playlist.ImageURL = sp.Images[0].URL
	}

	return playlist
}

func playlistFromSimple(sp SpotifySimplePlaylist) models.Playlist {
	playlist := models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		Owner:       ownerName(sp.Owner),
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
	}

	if len(sp.Images) > 0 {
		playlist.ImageURL = sp.Images[0].URL
	}

	return playlist
}

func albumFromSpotify(sa SpotifyAlbum) models.Album {
	album := models.Album{
		ID:          sa.ID,
		URI:         sa.URI,
		Name:        sa.Name,
		ReleaseDate: sa.ReleaseDate,
		TrackCount:  sa.TotalTracks,
	}

	if len(sa.Artists) > 0 {
		album.Artist = sa.Artists[0].Name
	}

	return album
}

func artistFromSpotify(sa SpotifyArtist) models.Artist {
	return models.Artist{
		ID:        sa.ID,
		URI:       sa.URI,
		Name:      sa.Name,
		Genres:    sa.Genres,
		Followers: sa.Followers.Total,
	}
}

func deviceFromSpotify(sd SpotifyDevice) models.Device {
	return models.Device{
		ID:       sd.ID,
		Name:     sd.Name,
		Type:     sd.Type,
		Active:   sd.IsActive,
		Volume:   sd.VolumePercent,
		Restrict: sd.IsRestricted,
	}
}

func ownerName(owner Owner) string {
	if owner.DisplayName != "" {
		return owner.DisplayName
	}
	return owner.ID
}
