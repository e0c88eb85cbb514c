package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/authgate/logger"
	"github.com/kbukum/authgate/redis"
	"github.com/kbukum/authgate/store"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	s, err := Open(redis.Config{Addr: mini.Addr(), KeyPrefix: "test"}, logger.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mini
}

func TestStore_AddAndFind(t *testing.T) {
	s, mini := newTestStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx, store.Record{
		Username:     "alice",
		PasswordHash: "$2a$10$abc",
		Profile:      map[string]any{"email": "alice@example.com"},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	raw, err := mini.Get("test:user:alice")
	if err != nil {
		t.Fatalf("expected record at test:user:alice: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("stored value is not JSON: %v", err)
	}
	if doc["password_hash"] != "$2a$10$abc" {
		t.Fatalf("unexpected stored document: %s", raw)
	}

	got, err := s.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if got.ID != added.ID || got.Profile["email"] != "alice@example.com" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestStore_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.FindByUsername(context.Background(), "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want store.ErrNotFound", err)
	}
}

func TestStore_ConcurrentDuplicate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(ctx, store.Record{Username: "alice", PasswordHash: "h"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, store.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 || conflicts != 7 {
		t.Fatalf("wins=%d conflicts=%d, want 1 and 7", wins, conflicts)
	}
}

func TestStore_List(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, u := range []string{"carol", "alice", "bob"} {
		s.Add(ctx, store.Record{Username: u, PasswordHash: "h", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recs) != 3 || recs[0].Username != "carol" || recs[2].Username != "bob" {
		t.Fatalf("unexpected list: %+v", recs)
	}
}

func TestStore_PingAfterShutdown(t *testing.T) {
	s, mini := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	mini.Close()

	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error after shutdown")
	}
	if _, err := s.FindByUsername(context.Background(), "alice"); err == nil || errors.Is(err, store.ErrNotFound) {
		t.Fatalf("storage failure must not look like not-found, got %v", err)
	}
}

func TestFactoryRegistered(t *testing.T) {
	mini := miniredis.RunT(t)
	cfg := store.Config{Driver: store.DriverRedis, Redis: redis.Config{Addr: mini.Addr()}}
	b, err := store.Open(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("store.Open(redis) failed: %v", err)
	}
	defer b.Close()
	if _, ok := b.(*Store); !ok {
		t.Fatalf("expected *redisstore.Store, got %T", b)
	}
}
