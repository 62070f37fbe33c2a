// Package tools exposes the Spotify passthrough operations as MCP tools so
// assistants can drive them over stdio.
//
// # Tool Surface
//
// [Server] registers one tool per concern — auth_status, profile, search,
// playback, queue, playlist, library, top_items, recently_played — with
// multi-operation tools dispatching on an action argument (playback: get,
// devices, start, pause, next, previous; playlist: list, get, tracks,
// create, add_tracks; library: saved, save, remove; queue: get, add).
//
// # Result Shape
//
// Successful calls return indented JSON of the shared models types. Argument
// mistakes and provider failures return tool errors, not Go errors, so the
// protocol stream stays alive; a handler error would tear the session down.
//
// # Authentication
//
// The server holds credentials at arm's length: it checks presence through
// [Authenticator] and otherwise relies on the service layer's token source.
// Calls failing with [shared.ErrReauthorizationRequired] report the
// `spotx auth login` remedy in the tool error message.
//
// # Observability
//
// Each dispatch is tagged with the tool name and a fresh request id, logged
// to stderr. stdout is reserved for protocol traffic.
package tools
