package redis

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/authgate/logger"
)

// newTestClient creates a redis.Client backed by miniredis for testing.
func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)

	client, err := New(Config{Addr: mini.Addr()}, logger.Nop())
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, mini
}

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestTypedStore_CreateAndLoad(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewTypedStore[testRecord](client, "test:rec", "test:recs")
	ctx := context.Background()

	created, err := store.Create(ctx, "k1", &testRecord{Name: "a", Count: 5})
	if err != nil || !created {
		t.Fatalf("Create = %v, %v; want true, nil", created, err)
	}

	got, err := store.Load(ctx, "k1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got == nil || got.Count != 5 || got.Name != "a" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestTypedStore_CreateRefusesExistingKey(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewTypedStore[testRecord](client, "test:rec", "test:recs")
	ctx := context.Background()

	store.Create(ctx, "k1", &testRecord{Count: 1})
	created, err := store.Create(ctx, "k1", &testRecord{Count: 2})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created {
		t.Fatal("second Create of the same key should report false")
	}

	got, _ := store.Load(ctx, "k1")
	if got == nil || got.Count != 1 {
		t.Fatalf("original record should be unchanged, got %+v", got)
	}
}

func TestTypedStore_ConcurrentCreateSingleWinner(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewTypedStore[testRecord](client, "test:rec", "test:recs")
	ctx := context.Background()

	const n = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := store.Create(ctx, "same", &testRecord{Count: i})
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one successful create, got %d", wins)
	}
}

func TestTypedStore_LoadMissing(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewTypedStore[testRecord](client, "test:rec", "test:recs")

	got, err := store.Load(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing key, got %+v", got)
	}
}

func TestTypedStore_LoadAllSkipsDeleted(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[testRecord](client, "test:rec", "test:recs")
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		store.Create(ctx, name, &testRecord{Name: name})
	}
	// The record key expires or is removed by hand; the index entry stays.
	mini.Del("test:rec:b")

	all, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	names := make([]string, 0, len(all))
	for _, r := range all {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Fatalf("LoadAll names = %v, want [a c]", names)
	}
}

func TestTypedStore_LoadAllEmpty(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewTypedStore[testRecord](client, "test:rec", "test:recs")

	all, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no records, got %v", all)
	}
}

func TestTypedStore_KeyPrefix(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[testRecord](client, "myprefix", "myindex")
	ctx := context.Background()

	store.Create(ctx, "k1", &testRecord{Count: 42})

	raw, err := mini.Get("myprefix:k1")
	if err != nil || raw == "" {
		t.Fatalf("expected prefixed key in Redis, err: %v", err)
	}
	if ok, _ := mini.SIsMember("myindex", "k1"); !ok {
		t.Fatal("expected k1 in index set")
	}
}

func TestClient_Ping(t *testing.T) {
	client, mini := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	mini.Close()
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error after server shutdown")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.KeyPrefix != "authgate" {
		t.Errorf("KeyPrefix = %q, want authgate", cfg.KeyPrefix)
	}

	bad := cfg
	bad.ReadTimeout = "soon"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for invalid read_timeout")
	}
}
