// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with Spotify using OAuth2 + PKCE",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "plain",
						Usage: "Print the authorization URL instead of launching the interactive view",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Check whether stored credentials exist",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Confirm the credentials by fetching the profile",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove stored credentials",
				Action: r.AuthLogout,
			},
		},
	}
}

// serveCommand exposes the tool surface over stdio for MCP clients.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve Spotify tools over MCP on stdin/stdout",
		Action: r.Serve,
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify profile and playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "profile",
				Usage: "Show the authorized user's profile",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyProfile,
			},
			{
				Name:  "playlists",
				Usage: "List Spotify playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyPlaylists,
			},
			{
				Name:  "search",
				Usage: "Search the Spotify catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kinds",
						Usage: "Comma-separated result kinds (track, album, artist, playlist)",
						Value: "track",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results per kind",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifySearch,
			},
			{
				Name:  "export",
				Usage: "Export playlist JSON for debugging",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to export",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SpotifyExport,
			},
		},
	}
}

// libraryCommand handles bulk library export operations
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "Bulk library operations",
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Export playlists (or liked songs) to local files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "ids",
						Usage: "Comma-separated playlist IDs (default: every playlist)",
					},
					&cli.BoolFlag{
						Name:  "liked",
						Usage: "Export liked songs instead of playlists",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (json, csv, markdown, or txt)",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
					},
					&cli.IntFlag{
						Name:  "rate-limit",
						Usage: "API requests per second",
					},
				},
				Action: r.LibraryExport,
			},
		},
	}
}

// cacheCommand handles the local track cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Local track cache operations",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Sync the Spotify library into the local cache database",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.IntFlag{
						Name:  "max-tracks",
						Usage: "Stop after caching this many tracks (0 = no limit)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent fetch workers",
					},
					&cli.IntFlag{
						Name:  "rate-limit",
						Usage: "API requests per second",
					},
				},
				Action: r.CacheSync,
			},
		},
	}
}

// apiCommand handles direct Spotify Web API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct Spotify Web API calls",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET against the Web API, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "put",
				Usage: "Direct PUT with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "JSON body to send",
					},
				},
				Action: r.APIPut,
			},
			{
				Name:  "dump",
				Usage: "Snapshot of account state (profile, playlists, player, etc)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save dump to api_dump.json",
						Value: false,
					},
				},
				Action: r.APIDump,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a starter config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
