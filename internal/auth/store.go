package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
)

const (
	credentialsFile = "credentials.json"
	handshakeFile   = "handshake.json"
)

// Credentials is the persisted token record, one per installation.
//
// The record is either currently valid, stale but refreshable (carries a
// refresh token), or stale and dead (no refresh token, re-authorization
// is the only way forward).
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at"` // epoch milliseconds
	Scope        string `json:"scope"`
}

// ExpiresWithin reports whether the access token expires within margin of now.
func (c *Credentials) ExpiresWithin(now time.Time, margin time.Duration) bool {
	return now.Add(margin).UnixMilli() >= c.ExpiresAt
}

// Handshake is the transient record for one outstanding authorization attempt.
//
// At most one handshake exists at a time: a new authorization attempt
// overwrites any prior unconsumed record, invalidating that attempt.
type Handshake struct {
	State        string `json:"state"`
	CodeVerifier string `json:"code_verifier"`
}

// Store persists the credential and handshake records.
//
// Implementations must treat a missing record as (nil, nil) rather than an
// error, and clearing an absent record as success.
type Store interface {
	SaveCredentials(creds *Credentials) error // SaveCredentials writes the credential record
	LoadCredentials() (*Credentials, error)   // LoadCredentials reads the credential record, nil when absent
	ClearCredentials() error                  // ClearCredentials deletes the credential record, idempotent
	SaveHandshake(handshake *Handshake) error // SaveHandshake writes the handshake record, overwriting any prior one
	LoadHandshake() (*Handshake, error)       // LoadHandshake reads the handshake record, nil when absent
	ClearHandshake() error                    // ClearHandshake deletes the handshake record, idempotent
}

// FileStore implements [Store] with two JSON files under a single directory.
//
// The directory is created with owner-only permissions on first write and each
// record file is written with mode 0600.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. No I/O happens until first use.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// SaveCredentials writes the credential record to disk.
func (s *FileStore) SaveCredentials(creds *Credentials) error {
	return s.writeRecord(credentialsFile, creds)
}

// LoadCredentials reads the credential record. Returns nil without error when no record exists.
func (s *FileStore) LoadCredentials() (*Credentials, error) {
	var creds Credentials
	found, err := s.readRecord(credentialsFile, &creds)
	if err != nil || !found {
		return nil, err
	}
	return &creds, nil
}

// ClearCredentials deletes the credential record. Succeeds when no record exists.
func (s *FileStore) ClearCredentials() error {
	return s.removeRecord(credentialsFile)
}

// SaveHandshake writes the handshake record, replacing any prior one.
func (s *FileStore) SaveHandshake(handshake *Handshake) error {
	return s.writeRecord(handshakeFile, handshake)
}

// LoadHandshake reads the handshake record. Returns nil without error when no record exists.
func (s *FileStore) LoadHandshake() (*Handshake, error) {
	var handshake Handshake
	found, err := s.readRecord(handshakeFile, &handshake)
	if err != nil || !found {
		return nil, err
	}
	return &handshake, nil
}

// ClearHandshake deletes the handshake record. Succeeds when no record exists.
func (s *FileStore) ClearHandshake() error {
	return s.removeRecord(handshakeFile)
}

// writeRecord marshals v and writes it to name under the store directory with mode 0600.
func (s *FileStore) writeRecord(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("%w: failed to create storage directory: %v", shared.ErrStorage, err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", shared.ErrStorage, name, err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0600); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrStorage, name, err)
	}

	return nil
}

// readRecord unmarshals name into v. The boolean reports whether the record exists.
func (s *FileStore) readRecord(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: failed to read %s: %v", shared.ErrStorage, name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: corrupt record %s: %v", shared.ErrStorage, name, err)
	}

	return true, nil
}

// removeRecord deletes name from the store directory, ignoring absence.
func (s *FileStore) removeRecord(name string) error {
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: failed to remove %s: %v", shared.ErrStorage, name, err)
	}
	return nil
}
