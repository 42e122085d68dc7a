package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Store is a byte-oriented key/value cache with per-entry TTLs.
type Store interface {
	// Get returns the cached value and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	// Reset drops every entry owned by the store.
	Reset(ctx context.Context) error
}

// Noop is the store used when caching is disabled. Every read misses.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error                  { return nil }
func (Noop) DeleteByPrefix(context.Context, string) error             { return nil }
func (Noop) Reset(context.Context) error                              { return nil }

// Remember returns the cached JSON value under key, or loads, stores and returns it.
// Cache failures degrade to a direct load; load failures are never cached.
func Remember[T any](ctx context.Context, store Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	return RememberVersioned(ctx, store, "", key, ttl, load)
}

// RememberVersioned is Remember guarded by the generation key: a fill that overlaps a Bump
// of that generation is dropped again, so an eviction racing a load never leaves the old value cached.
func RememberVersioned[T any](ctx context.Context, store Store, generation, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if raw, ok, err := store.Get(ctx, key); err == nil && ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	before := readGeneration(ctx, store, generation)
	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := store.Set(ctx, key, raw, ttl); err == nil && generation != "" {
		if readGeneration(ctx, store, generation) != before {
			_ = store.Delete(ctx, key)
		}
	}
	return value, nil
}

// Bump starts a new generation. Call it before evicting the keys the generation guards.
func Bump(ctx context.Context, store Store, generation string) error {
	return store.Set(ctx, generation, []byte(uuid.NewString()), 0)
}

func readGeneration(ctx context.Context, store Store, generation string) string {
	if generation == "" {
		return ""
	}
	raw, ok, err := store.Get(ctx, generation)
	if err != nil || !ok {
		return ""
	}
	return string(raw)
}
