package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SpotifyProfile shows the authorized user's account details.
func (r *Runner) SpotifyProfile(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	profile, err := r.spotify.Profile(ctx)
	if err != nil {
		return adviseAuth(fmt.Errorf("%w: %v", shared.ErrAPIRequest, err))
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}

	name := profile.DisplayName
	if name == "" {
		name = profile.ID
	}

	r.writePlain("%s\n", name)
	r.writePlain("  ID: %s\n", profile.ID)
	if profile.Email != "" {
		r.writePlain("  Email: %s\n", profile.Email)
	}
	if profile.Country != "" {
		r.writePlain("  Country: %s\n", profile.Country)
	}
	if profile.Product != "" {
		r.writePlain("  Plan: %s\n", profile.Product)
	}
	r.writePlain("  Followers: %d\n", profile.Followers)

	return nil
}

// SpotifyPlaylists lists Spotify playlists with optional limit.
func (r *Runner) SpotifyPlaylists(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Debugf("listing spotify playlists with limit %v", limit)

	playlists, err := r.spotify.GetPlaylists(ctx)
	if err != nil {
		return adviseAuth(fmt.Errorf("%w: %v", shared.ErrAPIRequest, err))
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		if p.Public {
			r.writePlain("   Visibility: Public\n")
		} else {
			r.writePlain("   Visibility: Private\n")
		}
		r.writePlain("\n")
	}

	return nil
}

// SpotifySearch searches the catalog across one or more entity kinds.
func (r *Runner) SpotifySearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	var kinds []string
	for _, kind := range strings.Split(cmd.String("kinds"), ",") {
		if kind = strings.TrimSpace(kind); kind != "" {
			kinds = append(kinds, kind)
		}
	}

	results, err := r.spotify.Search(ctx, query, kinds, cmd.Int("limit"))
	if err != nil {
		return adviseAuth(fmt.Errorf("%w: %v", shared.ErrAPIRequest, err))
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	if len(results.Tracks) > 0 {
		r.writePlain("Tracks:\n")
		for i, t := range results.Tracks {
			r.writePlain("%d. %s - %s\n", i+1, t.Artist, t.Title)
			if t.Album != "" {
				r.writePlain("   Album: %s\n", t.Album)
			}
			r.writePlain("   URI: %s\n", t.URI)
		}
		r.writePlain("\n")
	}

	if len(results.Albums) > 0 {
		r.writePlain("Albums:\n")
		for i, a := range results.Albums {
			r.writePlain("%d. %s - %s (%s)\n", i+1, a.Artist, a.Name, a.ReleaseDate)
		}
		r.writePlain("\n")
	}

	if len(results.Artists) > 0 {
		r.writePlain("Artists:\n")
		for i, a := range results.Artists {
			r.writePlain("%d. %s\n", i+1, a.Name)
		}
		r.writePlain("\n")
	}

	if len(results.Playlists) > 0 {
		r.writePlain("Playlists:\n")
		for i, p := range results.Playlists {
			r.writePlain("%d. %s (%d tracks)\n", i+1, p.Name, p.TrackCount)
		}
		r.writePlain("\n")
	}

	if len(results.Tracks)+len(results.Albums)+len(results.Artists)+len(results.Playlists) == 0 {
		r.writePlain("No results for %q.\n", query)
	}

	return nil
}

// SpotifyExport exports a playlist with all tracks to JSON.
func (r *Runner) SpotifyExport(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	outputFile := cmd.String("output")
	pretty := cmd.Bool("pretty")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Debugf("exporting spotify playlist %v", playlistID)

	export, err := r.spotify.ExportPlaylist(ctx, playlistID)
	if err != nil {
		return adviseAuth(fmt.Errorf("%w: %v", shared.ErrAPIRequest, err))
	}

	if outputFile != "" {
		data, err := shared.MarshalJSON(export, pretty)
		if err != nil {
			return fmt.Errorf("failed to marshal export: %w", err)
		}
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}

		r.writePlain("✓ Playlist exported to %s\n", outputFile)
		r.writePlain("  Playlist: %s\n", export.Playlist.Name)
		r.writePlain("  Tracks: %d\n", len(export.Tracks))
		return nil
	}

	return r.writeJSON(export, pretty)
}
