// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [TrackRepository] : Track caching with ISRC-based lookups and service-specific queries
//   - [TrackCacheAdapter] : Write-through cache wrapper that deduplicates on service+service_id
//   - [SyncRunRepository] : Library sync history with status tracking
//
// Sequence numbers provide stable, human-readable ordering (e.g., track #42, run #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
