package store

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, "tradelink"), mr
}

func TestRedisStore_ReadWriteRemove(t *testing.T) {
	rs, mr := setupTestRedis(t)

	_, err := rs.Read("guest_cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, rs.Write("guest_cart", []byte(`[1,2,3]`)))

	// Keys are namespaced under the prefix
	assert.True(t, mr.Exists("tradelink:guest_cart"))

	data, err := rs.Read("guest_cart")
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3]`, string(data))

	require.NoError(t, rs.Remove("guest_cart"))
	_, err = rs.Read("guest_cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStore_NoExpiry(t *testing.T) {
	rs, mr := setupTestRedis(t)

	require.NoError(t, rs.Write("guest_wishlist", []byte(`[]`)))

	// Guest state persists like browser local storage
	ttl := mr.TTL("tradelink:guest_wishlist")
	assert.Zero(t, ttl)
}
