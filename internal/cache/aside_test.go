package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, New(rdb)
}

func TestStore_Aside(t *testing.T) {
	mr, s := newTestStore(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			*dest = cachedThing{ID: 1, Name: "general"}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, s.Aside(ctx, "thing:1", &first, time.Minute, fetch(&first)))
	assert.Equal(t, "general", first.Name)
	assert.True(t, mr.Exists("thing:1"))

	var second cachedThing
	require.NoError(t, s.Aside(ctx, "thing:1", &second, time.Minute, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second lookup should be served from redis")

	s.Invalidate(ctx, "thing:1")
	assert.False(t, mr.Exists("thing:1"))
}

func TestStore_AsidePropagatesFetchError(t *testing.T) {
	mr, s := newTestStore(t)
	boom := errors.New("boom")

	var dest cachedThing
	err := s.Aside(context.Background(), "thing:2", &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("thing:2"))
}

func TestStore_NilIsNoop(t *testing.T) {
	var s *Store
	ctx := context.Background()

	found, err := s.GetJSON(ctx, "k", &cachedThing{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, s.SetJSON(ctx, "k", cachedThing{}, time.Minute))
	s.InvalidateUser(ctx, 1)

	called := false
	require.NoError(t, New(nil).Aside(ctx, "k", &cachedThing{}, time.Minute, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:7", UserKey(7))
	assert.Equal(t, "post:3", PostKey(3))
	assert.Equal(t, "notifications:user:5", UserChannel(5))
	assert.Equal(t, "user", prefixOf(UserKey(1)))
}

func TestOptions(t *testing.T) {
	opts, err := Options("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = Options("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	_, err = Options("redis://%%bad")
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err := Connect(context.Background(), addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	_, err = Connect(context.Background(), addr)
	assert.Error(t, err)
}
