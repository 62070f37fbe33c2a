// Package models defines domain entities and persistence interfaces for the spotx adapter.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing streaming service data
//   - [Playlist] : Basic playlist metadata
//   - [PlaylistExport] : Playlist with complete track listing
//   - [Track] : Song metadata with ISRC for cross-service matching
//   - [Album], [Artist] : Catalog entities returned by search and top-item queries
//   - [Profile] : The authenticated user's account information
//   - [Device], [PlaybackState] : Playback session state
//   - [PlayHistory] : Listening history entries
//   - [SearchResults] : Aggregated matches across entity types
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedTrack] : Cached tracks with ISRC for matching optimization
//   - [SyncRun] : Library sync operations tracking progress and results
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
