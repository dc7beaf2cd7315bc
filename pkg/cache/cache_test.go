package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestMemoryStoreExpiresLazily(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "k", payload{Name: "polity", Score: 7}, time.Minute))

	var got payload
	ok, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload{Name: "polity", Score: 7}, got)

	now = now.Add(2 * time.Minute)
	ok, err = store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len(), "expired entry is pruned on read")
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "short", 1, time.Second))
	require.NoError(t, store.Set(ctx, "long", 2, time.Hour))

	now = now.Add(time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "long"))
	assert.Equal(t, 0, store.Len())
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, "civilprep:")

	require.NoError(t, store.Set(ctx, "suggestions:1", payload{Name: "economy", Score: 3}, time.Minute))
	assert.True(t, mr.Exists("civilprep:suggestions:1"))

	var got payload
	ok, err := store.Get(ctx, "suggestions:1", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "economy", got.Name)

	mr.FastForward(2 * time.Minute)
	ok, err = store.Get(ctx, "suggestions:1", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
