// Package store persists user credential records.
//
// Backends register themselves with RegisterFactory; Open selects one by
// Config.Driver. The memory backend is built in; the sqlite and redis
// backends live in store/gormstore and store/redisstore and are linked in
// with a blank import:
//
//	import _ "github.com/kbukum/authgate/store/gormstore"
//
//	backend, err := store.Open(ctx, cfg, log)
package store

import (
	"context"
	"errors"
	"maps"
	"time"
)

var (
	// ErrNotFound is returned when no record exists for a username.
	ErrNotFound = errors.New("store: record not found")
	// ErrConflict is returned when adding a record whose username is taken.
	ErrConflict = errors.New("store: username already exists")
)

// Record is a persisted user. PasswordHash is the self-describing hash
// produced by the password package, never the plaintext.
type Record struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	PasswordHash string         `json:"password_hash"`
	Profile      map[string]any `json:"profile,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Clone returns a copy whose Profile map is not shared with r.
func (r Record) Clone() Record {
	r.Profile = maps.Clone(r.Profile)
	return r
}

// Store is the credential storage contract consumed by the auth flow.
type Store interface {
	// FindByUsername returns ErrNotFound when the username is unknown.
	FindByUsername(ctx context.Context, username string) (*Record, error)

	// Add persists rec and returns the stored record with ID and CreatedAt
	// populated. Returns ErrConflict when the username is already taken.
	Add(ctx context.Context, rec Record) (*Record, error)

	// List returns all records ordered by creation time.
	List(ctx context.Context) ([]Record, error)
}

// Backend is a Store with a connection lifecycle.
type Backend interface {
	Store
	Ping(ctx context.Context) error
	Close() error
}
