// Package redisstore is the Redis credential store.
//
// Each record is a JSON document at "<prefix>:user:<username>", created with
// SETNX so two concurrent registrations of one username cannot both succeed.
// The username set "<prefix>:users" indexes all records for listing.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/redis"
	"github.com/kbukum/authgate/store"
)

func init() {
	store.RegisterFactory(store.DriverRedis, func(_ context.Context, cfg store.Config, log *logger.Logger) (store.Backend, error) {
		return Open(cfg.Redis, log)
	})
}

// Store is a store.Backend on Redis.
type Store struct {
	client *redis.Client
	users  *redis.TypedStore[store.Record]
}

var _ store.Backend = (*Store)(nil)

// Open creates a client for cfg and wraps it in a Store.
func Open(cfg redis.Config, log *logger.Logger) (*Store, error) {
	client, err := redis.New(cfg, log)
	if err != nil {
		return nil, err
	}
	return New(client), nil
}

// New creates a Store on an existing client, using its configured key prefix.
func New(client *redis.Client) *Store {
	prefix := client.Config().KeyPrefix
	return &Store{
		client: client,
		users:  redis.NewTypedStore[store.Record](client, prefix+":user", prefix+":users"),
	}
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*store.Record, error) {
	rec, err := s.users.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("redisstore: %w", err)
	}
	if rec == nil {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (s *Store) Add(ctx context.Context, rec store.Record) (*store.Record, error) {
	rec = rec.Clone()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	created, err := s.users.Create(ctx, rec.Username, &rec)
	if err != nil {
		return nil, fmt.Errorf("redisstore: %w", err)
	}
	if !created {
		return nil, store.ErrConflict
	}
	return &rec, nil
}

func (s *Store) List(ctx context.Context) ([]store.Record, error) {
	recs, err := s.users.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("redisstore: %w", err)
	}
	store.SortByCreation(recs)
	return recs, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

func (s *Store) Close() error { return s.client.Close() }
