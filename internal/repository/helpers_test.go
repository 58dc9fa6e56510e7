package repository

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func newTestRegistry(t *testing.T, rdb *redis.Client) *KeyRegistry {
	t.Helper()

	reg, err := NewKeyRegistry(rdb, 64)
	require.NoError(t, err)
	t.Cleanup(reg.Close)

	return reg
}
