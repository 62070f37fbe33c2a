// Package services defines the [Service] interface for the music provider and implements it for the Spotify Web API.
//
// # Service Interface
//
// The adapter's tool surface depends on [Service] rather than the concrete
// client, so tests can substitute a double for the provider.
//
// # Spotify Implementation
//
// [SpotifyService] draws bearer tokens from an [oauth2.TokenSource] — the
// credential lifecycle manager in production — so every request carries a
// valid access token without the service knowing how tokens are stored or
// refreshed.
//
// Outbound calls are throttled by an optional [rate.Limiter] configured from
// the api section of the config file.
//
// # Raw API Access
//
// [APIService] performs path-addressed GET, POST, and PUT requests with the
// same bearer authorization, for endpoints the typed client does not cover.
//
// # Error Handling
//
// Non-2xx responses surface as [APIError], which unwraps to the shared
// sentinels so callers can branch with errors.Is:
//   - [shared.ErrReauthorizationRequired] : the API rejected the access token
//   - [shared.ErrServiceUnavailable] : rate limited or server error
//   - [shared.ErrAPIRequest] : any other request failure
//   - [shared.ErrPlaylistNotFound] / [shared.ErrTrackNotFound] : lookups by ID that missed
//
// # API Mappings
//
// Provider-specific JSON responses convert to the shared models types:
// [SpotifyPlaylist] → models.Playlist, [SpotifyTrack] → models.Track with
// ISRC from external_ids, [SpotifyDevice] → models.Device, and so on. Track
// matching in SearchTrack prefers exact normalized title/artist comparison,
// falling back to the API's top result.
package services
