package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, prefix string) (*Redis, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, prefix), mr, client
}

func TestRedisSetGetWithPrefix(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newTestRedis(t, "bookstore")

	require.NoError(t, store.Set(ctx, "books:detail:1", []byte(`{"id":1}`), time.Minute))
	require.True(t, mr.Exists("bookstore:books:detail:1"))

	val, ok, err := store.Get(ctx, "books:detail:1")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"id":1}`, string(val))

	mr.FastForward(time.Minute)
	_, ok, err = store.Get(ctx, "books:detail:1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisDeleteByPrefixScansAllKeys(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newTestRedis(t, "bookstore")

	for i := 0; i < scanBatch*2+5; i++ {
		require.NoError(t, store.Set(ctx, BookListKey(i), []byte("x"), time.Minute))
	}
	require.NoError(t, store.Set(ctx, BookDetailKey(3), []byte("x"), time.Minute))

	require.NoError(t, store.DeleteByPrefix(ctx, BookListPrefix))
	require.Len(t, mr.Keys(), 1)
	require.True(t, mr.Exists("bookstore:books:detail:3"))
}

func TestRedisResetKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	store, mr, client := newTestRedis(t, "bookstore")

	require.NoError(t, client.Set(ctx, "ratelimit:1.2.3.4", "5", 0).Err())
	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, store.Reset(ctx))
	require.Equal(t, []string{"ratelimit:1.2.3.4"}, mr.Keys())
}

func TestRedisDeleteNoKeys(t *testing.T) {
	store, _, _ := newTestRedis(t, "")
	require.NoError(t, store.Delete(context.Background()))
}
