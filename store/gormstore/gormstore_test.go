package gormstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/authgate/database"
	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), database.Config{DSN: "file::memory:"}, logger.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AddAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx, store.Record{
		Username:     "alice",
		PasswordHash: "$2a$10$abc",
		Profile:      map[string]any{"email": "alice@example.com", "age": 30.0},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if added.ID == "" {
		t.Fatal("Add should assign an ID")
	}

	got, err := s.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if got.ID != added.ID || got.PasswordHash != "$2a$10$abc" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Profile["email"] != "alice@example.com" || got.Profile["age"] != 30.0 {
		t.Fatalf("profile not round-tripped: %+v", got.Profile)
	}
}

func TestStore_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.FindByUsername(context.Background(), "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want store.ErrNotFound", err)
	}
}

func TestStore_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, store.Record{Username: "alice", PasswordHash: "h1"}); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	if _, err := s.Add(ctx, store.Record{Username: "alice", PasswordHash: "h2"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("error = %v, want store.ErrConflict", err)
	}

	got, _ := s.FindByUsername(ctx, "alice")
	if got.PasswordHash != "h1" {
		t.Fatal("duplicate Add must not overwrite")
	}
}

func TestStore_ListOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, u := range []string{"carol", "alice", "bob"} {
		s.Add(ctx, store.Record{Username: u, PasswordHash: "h", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("List returned %d records, want 3", len(recs))
	}
	for i, want := range []string{"carol", "alice", "bob"} {
		if recs[i].Username != want {
			t.Errorf("recs[%d] = %q, want %q", i, recs[i].Username, want)
		}
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "users.db")
	ctx := context.Background()

	s, err := Open(ctx, database.Config{DSN: dsn}, logger.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	s.Add(ctx, store.Record{Username: "alice", PasswordHash: "h"})
	s.Close()

	s, err = Open(ctx, database.Config{DSN: dsn}, logger.Nop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	if _, err := s.FindByUsername(ctx, "alice"); err != nil {
		t.Fatalf("record should survive reopen: %v", err)
	}
}

func TestFactoryRegistered(t *testing.T) {
	cfg := store.Config{Driver: store.DriverSQLite, SQLite: database.Config{DSN: "file::memory:"}}
	b, err := store.Open(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("store.Open(sqlite) failed: %v", err)
	}
	defer b.Close()
	if _, ok := b.(*Store); !ok {
		t.Fatalf("expected *gormstore.Store, got %T", b)
	}
}

func TestStore_SchemaVersion(t *testing.T) {
	s := newTestStore(t)
	v, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 1 {
		t.Errorf("SchemaVersion = %d, want 1", v)
	}
}

func TestComponent_DescribeShowsSchema(t *testing.T) {
	c := store.NewComponent(store.Config{
		Driver: store.DriverSQLite,
		SQLite: database.Config{DSN: "file::memory:"},
	}, logger.Nop())
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop(ctx)

	if got := c.Describe().Details; got != "driver=sqlite dsn=file::memory: schema=v1" {
		t.Errorf("Describe().Details = %q", got)
	}
}
