package models

import (
	"fmt"
	"time"
)

// PersistedTrack is a cached [Track] with service metadata and soft delete support.
//
// Tracks are cached on fetch so that repeated lookups, exports, and sync runs
// can resolve track metadata without a network call. The (service, serviceID)
// pair uniquely identifies a cached track.
type PersistedTrack struct {
	id        string
	sequence  int
	service   string
	serviceID string
	track     Track
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedTrack creates a cached track entity from a service [Track] DTO
func NewPersistedTrack(sequence int, service, serviceID string, track Track) *PersistedTrack {
	now := time.Now()
	return &PersistedTrack{
		sequence:  sequence,
		service:   service,
		serviceID: serviceID,
		track:     track,
		createdAt: now,
		updatedAt: now,
	}
}

func (t *PersistedTrack) ID() string            { return t.id }
func (t *PersistedTrack) Sequence() int         { return t.sequence }
func (t *PersistedTrack) Service() string       { return t.service }
func (t *PersistedTrack) ServiceID() string     { return t.serviceID }
func (t *PersistedTrack) Title() string         { return t.track.Title }
func (t *PersistedTrack) Artist() string        { return t.track.Artist }
func (t *PersistedTrack) Album() string         { return t.track.Album }
func (t *PersistedTrack) Duration() int         { return t.track.Duration }
func (t *PersistedTrack) ISRC() string          { return t.track.ISRC }
func (t *PersistedTrack) Track() Track          { return t.track }
func (t *PersistedTrack) CreatedAt() time.Time  { return t.createdAt }
func (t *PersistedTrack) UpdatedAt() time.Time  { return t.updatedAt }
func (t *PersistedTrack) DeletedAt() *time.Time { return t.deletedAt }

func (t *PersistedTrack) SetID(id string)            { t.id = id }
func (t *PersistedTrack) SetUpdatedAt(at time.Time)  { t.updatedAt = at }
func (t *PersistedTrack) SetDeletedAt(at *time.Time) { t.deletedAt = at }

// Validate checks that the cached track carries the fields required for matching
func (t *PersistedTrack) Validate() error {
	if t.id == "" {
		return fmt.Errorf("track ID is required")
	}
	if t.service == "" {
		return fmt.Errorf("track service is required")
	}
	if t.serviceID == "" {
		return fmt.Errorf("track service ID is required")
	}
	if t.track.Title == "" {
		return fmt.Errorf("track title is required")
	}
	return nil
}
