package statestore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entityfsm/pkg/statestore"
)

func TestNewRedis(t *testing.T) {
	t.Parallel()

	_, err := statestore.NewRedis[int, Life](nil, lifeTable())
	assert.ErrorIs(t, err, statestore.ErrNilClient)

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })

	_, err = statestore.NewRedis[int, Life](client, nil)
	assert.ErrorIs(t, err, statestore.ErrNilTable)

	store, err := statestore.NewRedis[int, Life](client, lifeTable())
	require.NoError(t, err)
	assert.Equal(t, "fsm:life", store.Key())

	store, err = statestore.NewRedis(client, lifeTable(), statestore.WithKeyPrefix[int, Life]("game"))
	require.NoError(t, err)
	assert.Equal(t, "game:life", store.Key())
}

func TestConnectRedis(t *testing.T) {
	t.Parallel()

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()
		_, err := statestore.ConnectRedis(context.Background(), statestore.RedisConfig{
			ConnectionURL: "http://localhost:6379",
			RetryAttempts: 1,
		})
		assert.ErrorIs(t, err, statestore.ErrFailedToParseRedisConnString)
	})

	t.Run("no wait after the last attempt", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		_, err := statestore.ConnectRedis(context.Background(), statestore.RedisConfig{
			ConnectionURL: "redis://127.0.0.1:1/0",
			RetryAttempts: 1,
			RetryInterval: time.Minute,
		})
		assert.ErrorIs(t, err, statestore.ErrRedisNotReady)
		assert.Less(t, time.Since(start), 30*time.Second)
	})
}

func TestRedisLive(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()

	client, err := statestore.ConnectRedis(ctx, statestore.RedisConfig{ConnectionURL: url, RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, statestore.RedisHealthcheck(client)(ctx))

	prefix := "test-" + uuid.NewString()
	store, err := statestore.NewRedis(client, lifeTable(), statestore.WithKeyPrefix[int, Life](prefix))
	require.NoError(t, err)
	t.Cleanup(func() { client.Del(context.Background(), store.Key()) })

	_, ok, err := store.State(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetState(ctx, 1, Dying))
	v, ok, err := store.State(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Dying, v)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, client.HSet(ctx, store.Key(), "2", "zombie").Err())
	_, _, err = store.State(ctx, 2)
	assert.ErrorIs(t, err, statestore.ErrUnknownState)

	require.NoError(t, store.Remove(ctx, 1))
	_, ok, err = store.State(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
