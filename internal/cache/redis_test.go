package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/library-management/internal/config"
)

type testBook struct {
	Title           string `json:"title"`
	AvailableCopies int    `json:"availableCopies"`
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache, err := InitServer(context.Background(), config.RedisConnection{RedisAddress: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	expected := []testBook{{Title: "Dune", AvailableCopies: 2}, {Title: "Emma", AvailableCopies: 0}}
	require.NoError(t, cache.Set(ctx, "books:all", expected, time.Minute))

	var actual []testBook
	found, err := cache.Get(ctx, "books:all", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out []testBook
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetCorruptedValue(t *testing.T) {
	cache, mr := setupTestCache(t)
	require.NoError(t, mr.Set("books:all", "{not json"))

	var out []testBook
	found, err := cache.Get(context.Background(), "books:all", &out)
	require.Error(t, err)
	assert.False(t, found)
}

func TestExpiration(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "books:all", []testBook{{Title: "Dune"}}, time.Second))
	mr.FastForward(2 * time.Second)

	var out []testBook
	found, err := cache.Get(ctx, "books:all", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "books:all", []testBook{{Title: "Dune"}}, time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "books:all"))
	assert.False(t, mr.Exists("books:all"))

	require.NoError(t, cache.Invalidate(ctx, "books:all"), "deleting a missing key is not an error")
}

func TestInitServer_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = InitServer(context.Background(), config.RedisConnection{
		RedisAddress:     addr,
		RedisDialTimeout: 100 * time.Millisecond,
	})
	require.Error(t, err)
}
