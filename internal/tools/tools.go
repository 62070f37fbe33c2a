package tools

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
)

// Authenticator reports whether a Spotify account is connected. Satisfied by
// [auth.Manager]; the server never triggers a login itself, it only reports.
type Authenticator interface {
	IsAuthenticated() bool
}

// Server exposes the music provider operations as MCP tools over stdio.
//
// Every tool returns structured JSON on success. Failures surface as tool
// errors with actionable messages rather than protocol errors, so an
// assistant sees "run spotx auth login" instead of a dropped connection.
type Server struct {
	svc    services.Service
	authn  Authenticator
	logger *log.Logger
	mcp    *server.MCPServer
}

// NewServer builds the MCP server and registers the full tool set.
//
// The logger defaults to stderr so protocol traffic on stdout stays clean.
func NewServer(svc services.Service, authn Authenticator, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	mcpServer := server.NewMCPServer(
		"spotx",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	s := &Server{svc: svc, authn: authn, logger: logger, mcp: mcpServer}
	s.registerTools()
	return s
}

// Start serves the MCP protocol on stdin/stdout until the client disconnects
// or ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools declares every tool and binds its handler.
func (s *Server) registerTools() {
	authStatusTool := mcp.NewTool("auth_status",
		mcp.WithDescription("Report whether a Spotify account is connected"),
	)
	s.mcp.AddTool(authStatusTool, s.instrument("auth_status", s.handleAuthStatus))

	profileTool := mcp.NewTool("profile",
		mcp.WithDescription("Get the connected user's Spotify profile"),
	)
	s.mcp.AddTool(profileTool, s.instrument("profile", s.handleProfile))

	searchTool := mcp.NewTool("search",
		mcp.WithDescription("Search the Spotify catalog"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text"),
		),
		mcp.WithString("kinds",
			mcp.Description("Comma-separated result kinds: track, album, artist, playlist (default: track)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results per kind (1-50)"),
		),
	)
	s.mcp.AddTool(searchTool, s.instrument("search", s.handleSearch))

	playbackTool := mcp.NewTool("playback",
		mcp.WithDescription("Inspect or control playback on the active device"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("One of: get, devices, start, pause, next, previous"),
		),
		mcp.WithString("context_uri",
			mcp.Description("Album, playlist, or artist URI to play (start only)"),
		),
		mcp.WithString("uris",
			mcp.Description("Comma-separated track URIs to play (start only)"),
		),
	)
	s.mcp.AddTool(playbackTool, s.instrument("playback", s.handlePlayback))

	queueTool := mcp.NewTool("queue",
		mcp.WithDescription("Inspect the playback queue or append a track to it"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("One of: get, add"),
		),
		mcp.WithString("uri",
			mcp.Description("Track URI to append (add only)"),
		),
	)
	s.mcp.AddTool(queueTool, s.instrument("queue", s.handleQueue))

	playlistTool := mcp.NewTool("playlist",
		mcp.WithDescription("List, inspect, create, or extend the user's playlists"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("One of: list, get, tracks, create, add_tracks"),
		),
		mcp.WithString("id",
			mcp.Description("Playlist ID (get, tracks, add_tracks)"),
		),
		mcp.WithString("name",
			mcp.Description("Playlist name (create)"),
		),
		mcp.WithString("description",
			mcp.Description("Playlist description (create)"),
		),
		mcp.WithBoolean("public",
			mcp.Description("Whether the new playlist is public (create, default: false)"),
		),
		mcp.WithString("uris",
			mcp.Description("Comma-separated track URIs to add (add_tracks)"),
		),
	)
	s.mcp.AddTool(playlistTool, s.instrument("playlist", s.handlePlaylist))

	libraryTool := mcp.NewTool("library",
		mcp.WithDescription("Browse or edit the user's saved tracks"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("One of: saved, save, remove"),
		),
		mcp.WithString("ids",
			mcp.Description("Comma-separated track IDs (save, remove)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Page size for saved (1-50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Page offset for saved"),
		),
	)
	s.mcp.AddTool(libraryTool, s.instrument("library", s.handleLibrary))

	topItemsTool := mcp.NewTool("top_items",
		mcp.WithDescription("Get the user's most played tracks or artists"),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("One of: tracks, artists"),
		),
		mcp.WithString("time_range",
			mcp.Description("One of: short_term, medium_term, long_term (default: medium_term)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum items (1-50)"),
		),
	)
	s.mcp.AddTool(topItemsTool, s.instrument("top_items", s.handleTopItems))

	recentlyPlayedTool := mcp.NewTool("recently_played",
		mcp.WithDescription("Get the user's listening history, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries (1-50)"),
		),
	)
	s.mcp.AddTool(recentlyPlayedTool, s.instrument("recently_played", s.handleRecentlyPlayed))
}

// instrument tags each dispatch of the named tool with a request id and logs
// the outcome. Rejections (bad arguments, provider failures) log at warn;
// only handler panics or protocol faults surface as Go errors.
func (s *Server) instrument(name string, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := shared.WithLogger(s.logger, "tool", name, "request_id", shared.GenerateID())
		logger.Debug("dispatching tool call")

		result, err := handler(ctx, request)
		switch {
		case err != nil:
			logger.Error("tool call failed", "error", err)
		case result != nil && result.IsError:
			logger.Warn("tool call rejected")
		default:
			logger.Debug("tool call completed")
		}

		return result, err
	}
}
