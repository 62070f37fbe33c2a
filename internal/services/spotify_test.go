package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// mockTokenSource implements [oauth2.TokenSource] for testing
type mockTokenSource struct {
	token *oauth2.Token
	err   error
}

func (m *mockTokenSource) Token() (*oauth2.Token, error) {
	return m.token, m.err
}

func testSource() *mockTokenSource {
	return &mockTokenSource{token: &oauth2.Token{AccessToken: "test_access_token"}}
}

func newTestService(t *testing.T, handler http.HandlerFunc) *SpotifyService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewSpotifyService(testSource(), &SpotifyOpts{BaseURL: server.URL})
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			srv := NewSpotifyService(testSource(), nil)

			if srv.baseURL != spotifyBaseURL {
				t.Errorf("expected production base URL, got %s", srv.baseURL)
			}
			if srv.httpClient == nil {
				t.Error("expected a default HTTP client")
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("WithOpts", func(t *testing.T) {
			client := &http.Client{}
			limiter := rate.NewLimiter(rate.Limit(5), 1)
			srv := NewSpotifyService(testSource(), &SpotifyOpts{
				BaseURL: "http://example.com",
				Client:  client,
				Limiter: limiter,
			})

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected custom base URL, got %s", srv.baseURL)
			}
			if srv.httpClient != client {
				t.Error("expected custom client to be used")
			}
			if srv.limiter != limiter {
				t.Error("expected custom limiter to be used")
			}
		})
	})

	t.Run("BearerAuthorization", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test_access_token" {
				t.Errorf("expected bearer header, got %q", got)
			}
			fmt.Fprint(w, `{"id":"user123"}`)
		})

		if _, err := srv.UserProfile(context.Background()); err != nil {
			t.Fatalf("failed to fetch profile: %v", err)
		}
	})

	t.Run("NoTokenSource", func(t *testing.T) {
		srv := NewSpotifyService(nil, nil)

		_, err := srv.UserProfile(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("TokenSourceFailure", func(t *testing.T) {
		srv := NewSpotifyService(&mockTokenSource{err: errors.New("token source error")}, nil)

		_, err := srv.UserProfile(context.Background())
		if err == nil || !strings.Contains(err.Error(), "failed to obtain access token") {
			t.Errorf("expected token source failure, got %v", err)
		}
	})

	t.Run("RateLimiterFailure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected no request past a blocked limiter")
		}))
		t.Cleanup(server.Close)

		srv := NewSpotifyService(testSource(), &SpotifyOpts{
			BaseURL: server.URL,
			Limiter: rate.NewLimiter(0, 0),
		})

		_, err := srv.UserProfile(context.Background())
		if err == nil || !strings.Contains(err.Error(), "rate limit wait failed") {
			t.Errorf("expected rate limit failure, got %v", err)
		}
	})

	t.Run("StatusMapping", func(t *testing.T) {
		tc := []struct {
			name   string
			status int
			want   error
		}{
			{"Unauthorized", http.StatusUnauthorized, shared.ErrReauthorizationRequired},
			{"RateLimited", http.StatusTooManyRequests, shared.ErrServiceUnavailable},
			{"ServerError", http.StatusInternalServerError, shared.ErrServiceUnavailable},
			{"BadRequest", http.StatusBadRequest, shared.ErrAPIRequest},
		}

		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(c.status)
					fmt.Fprint(w, `{"error":{"message":"nope"}}`)
				})

				_, err := srv.UserProfile(context.Background())
				if !errors.Is(err, c.want) {
					t.Errorf("expected %v for status %d, got %v", c.want, c.status, err)
				}

				var apiErr *APIError
				if !errors.As(err, &apiErr) || apiErr.Status != c.status {
					t.Errorf("expected APIError with status %d, got %v", c.status, err)
				}
			})
		}
	})

	t.Run("Profile", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("expected path /me, got %s", r.URL.Path)
			}
			fmt.Fprint(w, `{"id":"user123","display_name":"Test User","email":"test@example.com","country":"US","product":"premium","followers":{"total":7}}`)
		})

		profile, err := srv.Profile(context.Background())
		if err != nil {
			t.Fatalf("failed to fetch profile: %v", err)
		}

		if profile.ID != "user123" || profile.DisplayName != "Test User" {
			t.Errorf("unexpected profile identity: %+v", profile)
		}
		if profile.Product != "premium" || profile.Followers != 7 {
			t.Errorf("unexpected profile details: %+v", profile)
		}
	})
}

func TestSpotifyServiceLibrary(t *testing.T) {
	t.Run("SavedTracks", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/tracks" {
				t.Errorf("expected path /me/tracks, got %s", r.URL.Path)
			}
			fmt.Fprint(w, `{
				"items": [
					{"added_at":"2024-01-01T00:00:00Z","track":{"id":"t1","name":"Song One","artists":[{"id":"a1","name":"Artist One"}],"album":{"id":"al1","name":"Album One"},"duration_ms":215000,"explicit":true,"external_ids":{"isrc":"USRC11111111"},"uri":"spotify:track:t1"}}
				],
				"total": 120, "limit": 1, "offset": 0,
				"next": "https://api.spotify.com/v1/me/tracks?offset=1&limit=1"
			}`)
		})

		page, err := srv.SavedTracks(context.Background(), 1, 0)
		if err != nil {
			t.Fatalf("failed to fetch saved tracks: %v", err)
		}

		if page.Total != 120 || !page.More {
			t.Errorf("expected total 120 with more pages, got %+v", page)
		}
		if len(page.Tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(page.Tracks))
		}

		track := page.Tracks[0]
		if track.Title != "Song One" || track.Artist != "Artist One" || track.Album != "Album One" {
			t.Errorf("unexpected track mapping: %+v", track)
		}
		if track.Duration != 215 {
			t.Errorf("expected duration 215s, got %d", track.Duration)
		}
		if track.ISRC != "USRC11111111" || !track.Explicit {
			t.Errorf("unexpected track details: %+v", track)
		}
	})

	t.Run("SaveTracks", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", r.Method)
			}

			var body struct {
				IDs []string `json:"ids"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			if len(body.IDs) != 2 || body.IDs[0] != "t1" {
				t.Errorf("unexpected ids payload: %v", body.IDs)
			}
		})

		if err := srv.SaveTracks(context.Background(), []string{"t1", "t2"}); err != nil {
			t.Fatalf("failed to save tracks: %v", err)
		}
	})

	t.Run("RemoveSavedTracks", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", r.Method)
			}
		})

		if err := srv.RemoveSavedTracks(context.Background(), []string{"t1"}); err != nil {
			t.Fatalf("failed to remove tracks: %v", err)
		}
	})

	t.Run("TooManyIDs", func(t *testing.T) {
		srv := NewSpotifyService(testSource(), nil)

		ids := make([]string, 51)
		for i := range ids {
			ids[i] = fmt.Sprintf("t%d", i)
		}

		if err := srv.SaveTracks(context.Background(), ids); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for 51 ids, got %v", err)
		}
		if err := srv.SaveTracks(context.Background(), nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty ids, got %v", err)
		}
	})
}

func TestSpotifyServicePlaylists(t *testing.T) {
	t.Run("GetPlaylistsPaginated", func(t *testing.T) {
		requests := 0
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			requests++
			if r.URL.Query().Get("offset") == "0" {
				fmt.Fprint(w, `{
					"items": [
						{"id":"p1","name":"First","owner":{"id":"user123","display_name":"Test User"},"public":true,"tracks":{"total":10}},
						{"id":"p2","name":"Second","owner":{"id":"user123"},"tracks":{"total":5}}
					],
					"total": 3, "next": "https://api.spotify.com/v1/me/playlists?offset=50"
				}`)
				return
			}
			fmt.Fprint(w, `{"items":[{"id":"p3","name":"Third","owner":{"id":"user123"},"tracks":{"total":1}}],"total":3,"next":null}`)
		})

		playlists, err := srv.GetPlaylists(context.Background())
		if err != nil {
			t.Fatalf("failed to fetch playlists: %v", err)
		}

		if requests != 2 {
			t.Errorf("expected 2 paginated requests, got %d", requests)
		}
		if len(playlists) != 3 {
			t.Fatalf("expected 3 playlists, got %d", len(playlists))
		}
		if playlists[0].Owner != "Test User" {
			t.Errorf("expected owner display name, got %s", playlists[0].Owner)
		}
		if playlists[1].Owner != "user123" {
			t.Errorf("expected owner ID fallback, got %s", playlists[1].Owner)
		}
	})

	t.Run("GetPlaylistNotFound", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"status":404,"message":"Not found"}}`)
		})

		_, err := srv.GetPlaylist(context.Background(), "missing")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if err == nil || !strings.Contains(err.Error(), "missing") {
			t.Errorf("expected playlist ID in error, got %v", err)
		}
	})

	t.Run("ExportPlaylist", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/playlists/pl1":
				fmt.Fprint(w, `{"id":"pl1","name":"Mix","description":"A mix","owner":{"id":"user123"},"public":true,"tracks":{"total":3}}`)
			case r.URL.Path == "/playlists/pl1/tracks" && r.URL.Query().Get("offset") == "0":
				fmt.Fprint(w, `{
					"items": [
						{"track":{"id":"t1","name":"One","artists":[{"name":"A"}],"album":{"name":"X"},"duration_ms":60000}},
						{"track":{"id":"t2","name":"Two","artists":[{"name":"B"}],"album":{"name":"Y"},"duration_ms":120000}}
					],
					"total": 3, "next": "https://api.spotify.com/v1/playlists/pl1/tracks?offset=100"
				}`)
			case r.URL.Path == "/playlists/pl1/tracks":
				fmt.Fprint(w, `{"items":[{"track":{"id":"t3","name":"Three","duration_ms":30000}}],"total":3,"next":null}`)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		})

		export, err := srv.ExportPlaylist(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("failed to export playlist: %v", err)
		}

		if export.Playlist.Name != "Mix" || export.Playlist.TrackCount != 3 {
			t.Errorf("unexpected playlist metadata: %+v", export.Playlist)
		}
		if len(export.Tracks) != 3 {
			t.Fatalf("expected 3 tracks across pages, got %d", len(export.Tracks))
		}
		if export.Tracks[2].Title != "Three" {
			t.Errorf("expected final page track, got %+v", export.Tracks[2])
		}
	})

	t.Run("ImportPlaylist", func(t *testing.T) {
		var addedURIs []string
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/me":
				fmt.Fprint(w, `{"id":"user123"}`)
			case r.URL.Path == "/users/user123/playlists":
				var body struct {
					Name        string `json:"name"`
					Description string `json:"description"`
					Public      bool   `json:"public"`
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("failed to decode create body: %v", err)
				}
				if body.Name != "Road Trip" || body.Public {
					t.Errorf("unexpected create payload: %+v", body)
				}
				fmt.Fprint(w, `{"id":"new1","name":"Road Trip","owner":{"id":"user123"},"tracks":{"total":0}}`)
			case r.URL.Path == "/playlists/new1/tracks":
				var body struct {
					URIs []string `json:"uris"`
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("failed to decode tracks body: %v", err)
				}
				addedURIs = append(addedURIs, body.URIs...)
				fmt.Fprint(w, `{"snapshot_id":"snap1"}`)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		})

		export := &models.PlaylistExport{
			Playlist: models.Playlist{Name: "Road Trip", Description: "Long drive"},
			Tracks: []models.Track{
				{URI: "spotify:track:x1"},
				{ID: "x2"},
				{},
			},
		}

		playlist, err := srv.ImportPlaylist(context.Background(), export)
		if err != nil {
			t.Fatalf("failed to import playlist: %v", err)
		}

		if playlist.ID != "new1" || playlist.TrackCount != 2 {
			t.Errorf("unexpected created playlist: %+v", playlist)
		}
		if len(addedURIs) != 2 || addedURIs[0] != "spotify:track:x1" || addedURIs[1] != "spotify:track:x2" {
			t.Errorf("unexpected added URIs: %v", addedURIs)
		}
	})

	t.Run("ImportPlaylistMissingName", func(t *testing.T) {
		srv := NewSpotifyService(testSource(), nil)

		_, err := srv.ImportPlaylist(context.Background(), &models.PlaylistExport{})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSpotifyServiceSearch(t *testing.T) {
	t.Run("MultipleKinds", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("type"); got != "track,album" {
				t.Errorf("expected type track,album, got %q", got)
			}
			if got := r.URL.Query().Get("q"); got != "daft punk" {
				t.Errorf("expected query daft punk, got %q", got)
			}
			fmt.Fprint(w, `{
				"tracks": {"items": [{"id":"t1","name":"One More Time","artists":[{"name":"Daft Punk"}],"duration_ms":320000}]},
				"albums": {"items": [{"id":"al1","name":"Discovery","artists":[{"name":"Daft Punk"}],"release_date":"2001-03-12","total_tracks":14}]}
			}`)
		})

		results, err := srv.Search(context.Background(), "daft punk", []string{"track", "album"}, 10)
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}

		if len(results.Tracks) != 1 || results.Tracks[0].Title != "One More Time" {
			t.Errorf("unexpected track results: %+v", results.Tracks)
		}
		if len(results.Albums) != 1 || results.Albums[0].Artist != "Daft Punk" {
			t.Errorf("unexpected album results: %+v", results.Albums)
		}
		if results.Artists != nil || results.Playlists != nil {
			t.Errorf("expected only requested kinds, got %+v", results)
		}
	})

	t.Run("UnsupportedKind", func(t *testing.T) {
		srv := NewSpotifyService(testSource(), nil)

		_, err := srv.Search(context.Background(), "query", []string{"show"}, 10)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("SearchTrackPrefersExactMatch", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"tracks": {"items": [
					{"id":"t1","name":"Target Song (Remix)","artists":[{"name":"Artist Y"}]},
					{"id":"t2","name":"Target Song","artists":[{"name":"Artist Y"}]}
				]}
			}`)
		})

		track, err := srv.SearchTrack(context.Background(), "target song", "artist y")
		if err != nil {
			t.Fatalf("failed to search track: %v", err)
		}

		if track.ID != "t2" {
			t.Errorf("expected exact match t2, got %s", track.ID)
		}
	})

	t.Run("SearchTrackFallsBackToTopResult", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"tracks": {"items": [{"id":"t1","name":"Close Enough","artists":[{"name":"Someone"}]}]}}`)
		})

		track, err := srv.SearchTrack(context.Background(), "target song", "artist y")
		if err != nil {
			t.Fatalf("failed to search track: %v", err)
		}

		if track.ID != "t1" {
			t.Errorf("expected top result fallback, got %s", track.ID)
		}
	})

	t.Run("SearchTrackNoMatch", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"tracks": {"items": []}}`)
		})

		_, err := srv.SearchTrack(context.Background(), "nothing", "nobody")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})
}

func TestSpotifyServicePlayback(t *testing.T) {
	t.Run("PlaybackState", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"device": {"id":"d1","is_active":true,"name":"Kitchen","type":"Speaker","volume_percent":60},
				"repeat_state": "context", "shuffle_state": true,
				"context": {"type":"playlist","uri":"spotify:playlist:pl1"},
				"progress_ms": 45000, "is_playing": true,
				"item": {"id":"t1","name":"Now Playing","artists":[{"name":"Artist"}],"duration_ms":180000}
			}`)
		})

		state, err := srv.PlaybackState(context.Background())
		if err != nil {
			t.Fatalf("failed to fetch playback state: %v", err)
		}

		if state.Device.Name != "Kitchen" || !state.Device.Active || state.Device.Volume != 60 {
			t.Errorf("unexpected device mapping: %+v", state.Device)
		}
		if !state.Playing || !state.Shuffle || state.Repeat != "context" {
			t.Errorf("unexpected state flags: %+v", state)
		}
		if state.Progress != 45 {
			t.Errorf("expected progress 45s, got %d", state.Progress)
		}
		if state.Track == nil || state.Track.Title != "Now Playing" {
			t.Errorf("unexpected track: %+v", state.Track)
		}
		if state.ContextURI != "spotify:playlist:pl1" {
			t.Errorf("unexpected context: %s", state.ContextURI)
		}
	})

	t.Run("NothingPlaying", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		state, err := srv.PlaybackState(context.Background())
		if err != nil {
			t.Fatalf("expected no error for 204, got %v", err)
		}
		if state != nil {
			t.Errorf("expected nil state when nothing is playing, got %+v", state)
		}
	})

	t.Run("Devices", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/player/devices" {
				t.Errorf("expected devices path, got %s", r.URL.Path)
			}
			fmt.Fprint(w, `{"devices":[{"id":"d1","name":"Kitchen","type":"Speaker","is_active":true,"volume_percent":60},{"id":"d2","name":"Phone","type":"Smartphone","is_restricted":true}]}`)
		})

		devices, err := srv.Devices(context.Background())
		if err != nil {
			t.Fatalf("failed to list devices: %v", err)
		}

		if len(devices) != 2 {
			t.Fatalf("expected 2 devices, got %d", len(devices))
		}
		if !devices[0].Active || devices[0].Volume != 60 {
			t.Errorf("unexpected first device: %+v", devices[0])
		}
		if !devices[1].Restrict {
			t.Errorf("expected restricted second device: %+v", devices[1])
		}
	})

	t.Run("Play", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/me/player/play" {
				t.Errorf("expected PUT /me/player/play, got %s %s", r.Method, r.URL.Path)
			}

			var body struct {
				ContextURI string `json:"context_uri"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			if body.ContextURI != "spotify:album:al1" {
				t.Errorf("expected context URI, got %q", body.ContextURI)
			}
			w.WriteHeader(http.StatusNoContent)
		})

		if err := srv.Play(context.Background(), "spotify:album:al1", nil); err != nil {
			t.Fatalf("failed to start playback: %v", err)
		}
	})

	t.Run("PauseAndSkip", func(t *testing.T) {
		var seen []string
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.Method+" "+r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		ctx := context.Background()
		if err := srv.Pause(ctx); err != nil {
			t.Fatalf("failed to pause: %v", err)
		}
		if err := srv.SkipNext(ctx); err != nil {
			t.Fatalf("failed to skip next: %v", err)
		}
		if err := srv.SkipPrevious(ctx); err != nil {
			t.Fatalf("failed to skip previous: %v", err)
		}

		want := []string{"PUT /me/player/pause", "POST /me/player/next", "POST /me/player/previous"}
		for i, path := range want {
			if i >= len(seen) || seen[i] != path {
				t.Errorf("expected call %d to be %s, got %v", i, path, seen)
			}
		}
	})

	t.Run("QueueTrack", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("uri"); got != "spotify:track:t1" {
				t.Errorf("expected queued uri, got %q", got)
			}
			w.WriteHeader(http.StatusNoContent)
		})

		if err := srv.QueueTrack(context.Background(), "spotify:track:t1"); err != nil {
			t.Fatalf("failed to queue track: %v", err)
		}

		if err := srv.QueueTrack(context.Background(), ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty URI, got %v", err)
		}
	})
}

func TestSpotifyServicePersonalization(t *testing.T) {
	t.Run("RecentlyPlayed", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "20" {
				t.Errorf("expected default limit 20, got %q", got)
			}
			fmt.Fprint(w, `{
				"items": [
					{"track":{"id":"t1","name":"One","duration_ms":60000},"played_at":"2024-03-01T10:00:00Z","context":{"type":"playlist","uri":"spotify:playlist:pl1"}},
					{"track":{"id":"t2","name":"Two","duration_ms":90000},"played_at":"2024-03-01T09:55:00Z"}
				]
			}`)
		})

		history, err := srv.RecentlyPlayed(context.Background(), 0)
		if err != nil {
			t.Fatalf("failed to fetch history: %v", err)
		}

		if len(history) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(history))
		}
		if history[0].Context != "spotify:playlist:pl1" {
			t.Errorf("expected context URI, got %q", history[0].Context)
		}
		if history[1].Context != "" {
			t.Errorf("expected empty context, got %q", history[1].Context)
		}
	})

	t.Run("TopTracksDefaultRange", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("time_range"); got != "medium_term" {
				t.Errorf("expected medium_term default, got %q", got)
			}
			fmt.Fprint(w, `{"items":[{"id":"t1","name":"Top One","duration_ms":200000}],"total":1}`)
		})

		tracks, err := srv.TopTracks(context.Background(), "", 10)
		if err != nil {
			t.Fatalf("failed to fetch top tracks: %v", err)
		}

		if len(tracks) != 1 || tracks[0].Title != "Top One" {
			t.Errorf("unexpected top tracks: %+v", tracks)
		}
	})

	t.Run("TopArtists", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("time_range"); got != "long_term" {
				t.Errorf("expected long_term, got %q", got)
			}
			fmt.Fprint(w, `{"items":[{"id":"a1","name":"Big Artist","genres":["electronic"],"followers":{"total":1000}}],"total":1}`)
		})

		artists, err := srv.TopArtists(context.Background(), "long_term", 10)
		if err != nil {
			t.Fatalf("failed to fetch top artists: %v", err)
		}

		if len(artists) != 1 || artists[0].Followers != 1000 {
			t.Errorf("unexpected top artists: %+v", artists)
		}
	})

	t.Run("InvalidTimeRange", func(t *testing.T) {
		srv := NewSpotifyService(testSource(), nil)

		if _, err := srv.TopTracks(context.Background(), "all_time", 10); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestAPIError(t *testing.T) {
	t.Run("WithBody", func(t *testing.T) {
		err := &APIError{Status: 400, Body: `{"error":"bad"}`}
		if !strings.Contains(err.Error(), "status 400") {
			t.Errorf("expected status in message, got %s", err.Error())
		}
	})

	t.Run("WithoutBody", func(t *testing.T) {
		err := &APIError{Status: 502}
		if err.Error() != "spotify API error: status 502" {
			t.Errorf("unexpected message: %s", err.Error())
		}
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Error("expected 502 to unwrap to ErrServiceUnavailable")
		}
	})
}

func TestServiceInterface(t *testing.T) {
	var _ Service = NewSpotifyService(testSource(), nil)
}
