package redis

import (
	"context"
	"encoding/json"
	"fmt"
)

// TypedStore provides typed JSON-serialized records on Redis, with an index
// set listing every key it has created.
type TypedStore[C any] struct {
	client    *Client
	keyPrefix string
	indexKey  string
}

// NewTypedStore creates a TypedStore backed by the given Redis client.
// Record keys are keyPrefix followed by a colon and the record key.
func NewTypedStore[C any](client *Client, keyPrefix, indexKey string) *TypedStore[C] {
	return &TypedStore[C]{
		client:    client,
		keyPrefix: keyPrefix,
		indexKey:  indexKey,
	}
}

func (s *TypedStore[C]) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Load deserializes JSON from Redis. Returns (nil, nil) if key doesn't exist.
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	raw, err := s.client.Get(ctx, s.fullKey(key))
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("typed store load %q: %w", key, err)
	}

	var val C
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return nil, fmt.Errorf("typed store unmarshal %q: %w", key, err)
	}
	return &val, nil
}

// Create serializes val and stores it only if key is unused. Returns false
// without writing if the key already exists.
func (s *TypedStore[C]) Create(ctx context.Context, key string, val *C) (bool, error) {
	data, err := json.Marshal(val)
	if err != nil {
		return false, fmt.Errorf("typed store marshal %q: %w", key, err)
	}
	created, err := s.client.CreateIndexed(ctx, s.fullKey(key), s.indexKey, string(data), key)
	if err != nil {
		return false, fmt.Errorf("typed store create %q: %w", key, err)
	}
	return created, nil
}

// Keys returns every key recorded in the index set.
func (s *TypedStore[C]) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.client.Members(ctx, s.indexKey)
	if err != nil {
		return nil, fmt.Errorf("typed store keys: %w", err)
	}
	return keys, nil
}

// LoadAll returns every indexed record. Index entries whose record has
// disappeared are skipped.
func (s *TypedStore[C]) LoadAll(ctx context.Context) ([]C, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.fullKey(k)
	}
	raws, err := s.client.MGet(ctx, full...)
	if err != nil {
		return nil, fmt.Errorf("typed store load all: %w", err)
	}

	out := make([]C, 0, len(raws))
	for i, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var val C
		if err := json.Unmarshal([]byte(str), &val); err != nil {
			return nil, fmt.Errorf("typed store unmarshal %q: %w", keys[i], err)
		}
		out = append(out, val)
	}
	return out, nil
}
