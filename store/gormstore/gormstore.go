// Package gormstore is the SQLite credential store, built on GORM.
package gormstore

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/authgate/database"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/store"
)

func init() {
	store.RegisterFactory(store.DriverSQLite, func(ctx context.Context, cfg store.Config, log *logger.Logger) (store.Backend, error) {
		return Open(ctx, cfg.SQLite, log)
	})
}

//go:embed migrations/*.sql
var migrations embed.FS

// userRow is a row of the users table created by migrations/.
type userRow struct {
	ID           string         `gorm:"primaryKey"`
	Username     string         `gorm:"column:username"`
	PasswordHash string         `gorm:"column:password_hash"`
	Profile      map[string]any `gorm:"serializer:json"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
}

func (userRow) TableName() string { return "users" }

func (r *userRow) record() store.Record {
	return store.Record{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Profile:      r.Profile,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

// Store is a store.Backend on a SQLite database.
type Store struct {
	db  *database.DB
	log *logger.Logger
}

var _ store.Backend = (*Store)(nil)

// Open connects to the database and applies the schema migrations.
func Open(ctx context.Context, cfg database.Config, log *logger.Logger) (*Store, error) {
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	s, err := New(db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New creates a Store on an open database and applies the schema migrations.
func New(db *database.DB, log *logger.Logger) (*Store, error) {
	if err := db.MigrateUp(migrations, "migrations"); err != nil {
		return nil, fmt.Errorf("gormstore: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*store.Record, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&row).Error
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("gormstore: find user: %w", err)
	}
	rec := row.record()
	return &rec, nil
}

func (s *Store) Add(ctx context.Context, rec store.Record) (*store.Record, error) {
	row := userRow{
		ID:           rec.ID,
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		Profile:      rec.Profile,
		CreatedAt:    rec.CreatedAt,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if database.IsDuplicateError(err) {
			return nil, store.ErrConflict
		}
		return nil, fmt.Errorf("gormstore: add user: %w", err)
	}
	out := row.record()
	return &out, nil
}

func (s *Store) List(ctx context.Context) ([]store.Record, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("created_at, username").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list users: %w", err)
	}
	out := make([]store.Record, len(rows))
	for i := range rows {
		out[i] = rows[i].record()
	}
	return out, nil
}

// SchemaVersion returns the applied migration version. A half-applied
// migration is an error.
func (s *Store) SchemaVersion() (uint, error) {
	version, dirty, err := s.db.MigrateVersion(migrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("gormstore: schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("gormstore: schema version %d is dirty", version)
	}
	return version, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }
