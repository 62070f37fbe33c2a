package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the Spotify Web API
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: request path", shared.ErrMissingArgument)
	}

	r.logger.Debug("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return adviseAuth(fmt.Errorf("%w: %v", shared.ErrAPIRequest, err))
	}

	return r.writeRawResponse(resp, cmd.Bool("pretty"))
}

// APIPost makes a direct POST request to the Spotify Web API
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: request path", shared.ErrMissingArgument)
	}

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	r.logger.Debug("POST request", "path", path)

	resp, err := r.api.Post(ctx, path, []byte(data))
	if err != nil {
		return adviseAuth(fmt.Errorf("%w: %v", shared.ErrAPIRequest, err))
	}

	return r.writeRawResponse(resp, true)
}

// APIPut makes a direct PUT request to the Spotify Web API. The body is
// optional; several player endpoints take none.
func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: request path", shared.ErrMissingArgument)
	}

	if data != "" {
		var jsonTest any
		if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
			return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
		}
	}

	r.logger.Debug("PUT request", "path", path)

	resp, err := r.api.Put(ctx, path, []byte(data))
	if err != nil {
		return adviseAuth(fmt.Errorf("%w: %v", shared.ErrAPIRequest, err))
	}

	return r.writeRawResponse(resp, true)
}

// APIDump fetches a snapshot of the account's state across the endpoints the
// typed service covers, collecting per-endpoint failures instead of aborting.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")
	save := cmd.Bool("save")

	r.logger.Debug("dumping account state")
	r.writePlain("Fetching account state...\n\n")

	type DumpData struct {
		Profile        any   `json:"profile,omitempty"`
		Playlists      any   `json:"playlists,omitempty"`
		LikedSongs     any   `json:"liked_songs,omitempty"`
		TopTracks      any   `json:"top_tracks,omitempty"`
		TopArtists     any   `json:"top_artists,omitempty"`
		Player         any   `json:"player,omitempty"`
		Devices        any   `json:"devices,omitempty"`
		RecentlyPlayed any   `json:"recently_played,omitempty"`
		Errors         []any `json:"errors,omitempty"`
	}

	dump := DumpData{
		Errors: []any{},
	}

	sections := []struct {
		label    string
		endpoint string
		into     *any
	}{
		{"📊 Fetching profile...", "/me", &dump.Profile},
		{"📝 Fetching playlists...", "/me/playlists?limit=50", &dump.Playlists},
		{"❤️  Fetching liked songs...", "/me/tracks?limit=50", &dump.LikedSongs},
		{"🎵 Fetching top tracks...", "/me/top/tracks?limit=20", &dump.TopTracks},
		{"👨‍🎤 Fetching top artists...", "/me/top/artists?limit=20", &dump.TopArtists},
		{"📻 Fetching playback state...", "/me/player", &dump.Player},
		{"💿 Fetching devices...", "/me/player/devices", &dump.Devices},
		{"📜 Fetching recently played...", "/me/player/recently-played?limit=50", &dump.RecentlyPlayed},
	}

	for _, section := range sections {
		r.writePlain("%s\n", section.label)

		resp, err := r.api.Get(ctx, section.endpoint)
		switch {
		case err != nil:
			dump.Errors = append(dump.Errors, map[string]string{"endpoint": section.endpoint, "error": err.Error()})
			r.logger.Warn("failed to fetch endpoint", "endpoint", section.endpoint, "error", err)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			dump.Errors = append(dump.Errors, map[string]string{"endpoint": section.endpoint, "error": fmt.Sprintf("status %d", resp.StatusCode)})
			r.logger.Warn("failed to fetch endpoint", "endpoint", section.endpoint, "status", resp.StatusCode)
		default:
			*section.into = resp.JSONData
		}
	}

	r.writePlain("\n✓ Dump complete\n\n")

	if save {
		saveFile := "api_dump.json"
		data, err := shared.MarshalJSON(dump, true)
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := os.WriteFile(saveFile, data, 0644); err != nil {
			r.logger.Warn("failed to save dump", "error", err)
		} else {
			r.writePlain("✓ Dump saved to %s\n\n", saveFile)
		}
	}

	return r.writeJSON(dump, pretty)
}

// writeRawResponse prints a raw API response, treating non-2xx as an error.
func (r *Runner) writeRawResponse(resp *services.APIResponse, pretty bool) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	if len(resp.Body) > 0 {
		r.output.Write(resp.Body)
		r.output.Write([]byte("\n"))
		return nil
	}

	return r.writePlain("✓ %d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
}
