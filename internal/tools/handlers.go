package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// authStatus is the auth_status response payload.
type authStatus struct {
	Authenticated bool   `json:"authenticated"`
	Hint          string `json:"hint,omitempty"`
}

// jsonResult marshals v as indented JSON wrapped in a successful tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// serviceError converts a provider failure into a tool error, attaching an
// actionable hint where the sentinel admits one.
func serviceError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, shared.ErrReauthorizationRequired), errors.Is(err, shared.ErrNotAuthenticated):
		return mcp.NewToolResultError("Not authenticated with Spotify. Run `spotx auth login` to connect an account.")
	case errors.Is(err, shared.ErrServiceUnavailable):
		return mcp.NewToolResultError(fmt.Sprintf("Spotify is unavailable right now: %v", err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%v", err))
	}
}

// stringArg reads an optional string argument, returning "" when absent or
// not a string.
func stringArg(request mcp.CallToolRequest, key string) string {
	if v, ok := request.GetArguments()[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// intArg reads an optional numeric argument. JSON numbers arrive as float64.
func intArg(request mcp.CallToolRequest, key string, fallback int) int {
	if v, ok := request.GetArguments()[key]; ok {
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return fallback
}

// boolArg reads an optional boolean argument, defaulting to false.
func boolArg(request mcp.CallToolRequest, key string) bool {
	if v, ok := request.GetArguments()[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// listArg splits a comma-separated string argument into trimmed entries.
func listArg(request mcp.CallToolRequest, key string) []string {
	raw := stringArg(request, key)
	if raw == "" {
		return nil
	}

	var items []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// handleAuthStatus reports credential presence without touching the network.
// An expired record still counts as connected; the first authenticated call
// will refresh or surface a reauthorization error.
func (s *Server) handleAuthStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := authStatus{Authenticated: s.authn != nil && s.authn.IsAuthenticated()}
	if !status.Authenticated {
		status.Hint = "Run `spotx auth login` to connect a Spotify account."
	}
	return jsonResult(status)
}

// handleProfile returns the connected user's profile.
func (s *Server) handleProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile, err := s.svc.Profile(ctx)
	if err != nil {
		return serviceError(err), nil
	}
	return jsonResult(profile)
}

// handleSearch runs a catalog search. Results pass through unranked and
// unshaped; the provider's ordering is the response ordering.
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required"), nil
	}

	results, err := s.svc.Search(ctx, query, listArg(request, "kinds"), intArg(request, "limit", 0))
	if err != nil {
		return serviceError(err), nil
	}
	return jsonResult(results)
}

// handlePlayback dispatches on the action argument: get and devices read
// state, the rest issue player commands and confirm with a short message.
func (s *Server) handlePlayback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action argument is required"), nil
	}

	switch action {
	case "get":
		state, err := s.svc.PlaybackState(ctx)
		if err != nil {
			return serviceError(err), nil
		}
		if state == nil {
			return mcp.NewToolResultText("No active playback."), nil
		}
		return jsonResult(state)
	case "devices":
		devices, err := s.svc.Devices(ctx)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(devices)
	case "start":
		if err := s.svc.Play(ctx, stringArg(request, "context_uri"), listArg(request, "uris")); err != nil {
			return serviceError(err), nil
		}
		return mcp.NewToolResultText("Playback started."), nil
	case "pause":
		if err := s.svc.Pause(ctx); err != nil {
			return serviceError(err), nil
		}
		return mcp.NewToolResultText("Playback paused."), nil
	case "next":
		if err := s.svc.SkipNext(ctx); err != nil {
			return serviceError(err), nil
		}
		return mcp.NewToolResultText("Skipped to next track."), nil
	case "previous":
		if err := s.svc.SkipPrevious(ctx); err != nil {
			return serviceError(err), nil
		}
		return mcp.NewToolResultText("Skipped to previous track."), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown playback action: %s", action)), nil
	}
}

// handleQueue reads the playback queue or appends a track to it.
func (s *Server) handleQueue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action argument is required"), nil
	}

	switch action {
	case "get":
		queue, err := s.svc.Queue(ctx)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(queue)
	case "add":
		uri := stringArg(request, "uri")
		if uri == "" {
			return mcp.NewToolResultError("uri argument is required for add"), nil
		}
		if err := s.svc.QueueTrack(ctx, uri); err != nil {
			return serviceError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Queued %s.", uri)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown queue action: %s", action)), nil
	}
}

// handlePlaylist covers the playlist surface: list and get return metadata,
// tracks returns the playlist with its full track listing, create builds an
// empty playlist, and add_tracks appends by URI.
func (s *Server) handlePlaylist(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action argument is required"), nil
	}

	switch action {
	case "list":
		playlists, err := s.svc.GetPlaylists(ctx)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(playlists)
	case "get":
		id := stringArg(request, "id")
		if id == "" {
			return mcp.NewToolResultError("id argument is required for get"), nil
		}
		playlist, err := s.svc.GetPlaylist(ctx, id)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(playlist)
	case "tracks":
		id := stringArg(request, "id")
		if id == "" {
			return mcp.NewToolResultError("id argument is required for tracks"), nil
		}
		export, err := s.svc.ExportPlaylist(ctx, id)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(export)
	case "create":
		name := stringArg(request, "name")
		if name == "" {
			return mcp.NewToolResultError("name argument is required for create"), nil
		}
		export := &models.PlaylistExport{
			Playlist: models.Playlist{
				Name:        name,
				Description: stringArg(request, "description"),
				Public:      boolArg(request, "public"),
			},
		}
		created, err := s.svc.ImportPlaylist(ctx, export)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(created)
	case "add_tracks":
		id := stringArg(request, "id")
		if id == "" {
			return mcp.NewToolResultError("id argument is required for add_tracks"), nil
		}
		uris := listArg(request, "uris")
		if len(uris) == 0 {
			return mcp.NewToolResultError("uris argument is required for add_tracks"), nil
		}
		if err := s.svc.AddTracksToPlaylist(ctx, id, uris); err != nil {
			return serviceError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Added %d tracks to %s.", len(uris), id)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown playlist action: %s", action)), nil
	}
}

// handleLibrary pages through saved tracks or edits the saved set.
func (s *Server) handleLibrary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action argument is required"), nil
	}

	switch action {
	case "saved":
		page, err := s.svc.SavedTracks(ctx, intArg(request, "limit", 0), intArg(request, "offset", 0))
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(page)
	case "save":
		ids := listArg(request, "ids")
		if len(ids) == 0 {
			return mcp.NewToolResultError("ids argument is required for save"), nil
		}
		if err := s.svc.SaveTracks(ctx, ids); err != nil {
			return serviceError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Saved %d tracks.", len(ids))), nil
	case "remove":
		ids := listArg(request, "ids")
		if len(ids) == 0 {
			return mcp.NewToolResultError("ids argument is required for remove"), nil
		}
		if err := s.svc.RemoveSavedTracks(ctx, ids); err != nil {
			return serviceError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Removed %d tracks.", len(ids))), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown library action: %s", action)), nil
	}
}

// handleTopItems returns the user's most played tracks or artists over the
// requested time range.
func (s *Server) handleTopItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := request.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("kind argument is required"), nil
	}

	timeRange := stringArg(request, "time_range")
	limit := intArg(request, "limit", 0)

	switch kind {
	case "tracks":
		tracks, err := s.svc.TopTracks(ctx, timeRange, limit)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(tracks)
	case "artists":
		artists, err := s.svc.TopArtists(ctx, timeRange, limit)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(artists)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown top_items kind: %s", kind)), nil
	}
}

// handleRecentlyPlayed returns listening history, newest first.
func (s *Server) handleRecentlyPlayed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history, err := s.svc.RecentlyPlayed(ctx, intArg(request, "limit", 0))
	if err != nil {
		return serviceError(err), nil
	}
	return jsonResult(history)
}
