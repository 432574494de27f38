package replay

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testOwner = "0xA11cE1cE7a5b1c9d3F2e4D6b8A0c2E4f6A8b0C2d"

func testStoreLifecycle(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	digest := "0x" + uuid.New().String()

	require.NoError(t, store.Reserve(ctx, digest, testOwner))
	assert.ErrorIs(t, store.Reserve(ctx, digest, testOwner), ErrAlreadySeen)

	// owner matching is case-insensitive
	assert.ErrorIs(t, store.Reserve(ctx, digest, "0xa11ce1ce7a5b1c9d3f2e4d6b8a0c2e4f6a8b0c2d"), ErrAlreadySeen)

	require.NoError(t, store.MarkUsed(ctx, digest, testOwner))
	assert.ErrorIs(t, store.Reserve(ctx, digest, testOwner), ErrAlreadySeen)

	// a different digest for the same owner is independent
	require.NoError(t, store.Reserve(ctx, digest+"ff", testOwner))
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	testStoreLifecycle(t, NewMemoryStore(0))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Reserve(ctx, "0xabc", testOwner))
	assert.ErrorIs(t, store.Reserve(ctx, "0xabc", testOwner), ErrAlreadySeen)

	now = now.Add(2 * time.Minute)
	assert.NoError(t, store.Reserve(ctx, "0xabc", testOwner))
}

func TestMemoryStore_SweepsExpired(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	for _, digest := range []string{"0x01", "0x02", "0x03"} {
		require.NoError(t, store.Reserve(ctx, digest, testOwner))
	}
	assert.Equal(t, 3, store.Len())

	// within the TTL nothing is dropped
	now = now.Add(30 * time.Second)
	require.NoError(t, store.Reserve(ctx, "0x04", testOwner))
	assert.Equal(t, 4, store.Len())

	// the first three expired; the next reserve sweeps them
	now = now.Add(45 * time.Second)
	require.NoError(t, store.Reserve(ctx, "0x05", testOwner))
	assert.Equal(t, 2, store.Len())
	assert.ErrorIs(t, store.Reserve(ctx, "0x04", testOwner), ErrAlreadySeen)
}

func TestMemoryStore_ConcurrentReserve(t *testing.T) {
	store := NewMemoryStore(0)
	var wins atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Reserve(context.Background(), "0xdead", testOwner) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestRedisStore_Lifecycle(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDRESS not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()
	require.NoError(t, client.Ping(context.Background()).Err())

	testStoreLifecycle(t, NewRedisStore(client, time.Minute, zap.NewNop()))
}
