// Package tasks orchestrates long-running library operations with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines two operations:
//
//  1. [SyncEngine.SyncLibrary] : Full saved-library sync into the local cache
//     - Pages through the user's saved tracks under a rate limiter
//     - Caches each track through a worker pool (service+ID dedupe)
//     - Records a sync run row with totals and final status
//
//  2. [SyncEngine.BulkExport] : Concurrent playlist export to disk
//     - Fetches each playlist export with rate limiting
//     - Writes JSON, CSV, Markdown, or plain-text files via a worker pool
//     - Generates a manifest file summarizing the export results
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Track Caching
//
// The [TrackCacher] interface enables automatic track persistence during syncs
//
// Cache failures are counted per track but never abort a sync. Run bookkeeping
// failures are ignored entirely so a broken database cannot stall a running sync.
//
// # Implementation
//
// [LibraryEngine] implements [SyncEngine] with dependencies on:
//   - [services.Service] : Spotify API client
//   - [TrackCacher] : Persistence layer (repositories.TrackCacheAdapter)
//   - [SyncRecorder] : Sync history (repositories.SyncRunRepository)
package tasks
