package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aliskhannn/selfaudit-bot/internal/storage"
)

const (
	recordedPollsKey = "polls:recorded_polls"
	pollKeyPrefix    = "poll"
	keyCacheTTL      = 24 * time.Hour
)

var ErrEmptyPollName = errors.New("empty poll name")

// allocatePollKey returns the key recorded for a poll name or allocates the
// next free "pollN" with N starting at the number of recorded polls.
// It runs as a single script, so concurrent first use cannot assign one key twice.
var allocatePollKey = redis.NewScript(`
local existing = redis.call('HGET', KEYS[1], ARGV[1])
if existing then
	return existing
end
local n = redis.call('HLEN', KEYS[1])
local key = ARGV[2] .. n
while redis.call('EXISTS', 'polls:' .. key) == 1 do
	n = n + 1
	key = ARGV[2] .. n
end
redis.call('HSET', KEYS[1], ARGV[1], key)
redis.call('HSET', 'polls:' .. key, 'name', ARGV[1])
return key
`)

// KeyRegistry maps human-readable poll names to compact storage keys.
// Redis is authoritative; the cache only saves round trips and is bounded.
type KeyRegistry struct {
	rdb   redis.Cmdable
	cache *storage.Cache[string, string]
}

// NewKeyRegistry creates a KeyRegistry with a cache of at most cacheSize names.
func NewKeyRegistry(rdb redis.Cmdable, cacheSize int) (*KeyRegistry, error) {
	cache, err := storage.NewCache[string, string](cacheSize, keyCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("poll key cache: %w", err)
	}
	return &KeyRegistry{rdb: rdb, cache: cache}, nil
}

// KeyFor returns the stable storage key of a poll, allocating one on first use.
// Allocated keys are never reassigned or removed.
func (r *KeyRegistry) KeyFor(ctx context.Context, pollName string) (string, error) {
	if pollName == "" {
		return "", ErrEmptyPollName
	}

	if key, ok := r.cache.Get(pollName); ok {
		return key, nil
	}

	key, err := allocatePollKey.Run(ctx, r.rdb, []string{recordedPollsKey}, pollName, pollKeyPrefix).Text()
	if err != nil {
		return "", fmt.Errorf("resolve poll key for %q: %w", pollName, err)
	}

	r.cache.Store(pollName, key)
	return key, nil
}

// Warm resolves keys for every name up front, registering the ones never seen.
func (r *KeyRegistry) Warm(ctx context.Context, pollNames []string) error {
	for _, name := range pollNames {
		if _, err := r.KeyFor(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// SavedPolls lists poll names that have a key, sorted.
func (r *KeyRegistry) SavedPolls(ctx context.Context) ([]string, error) {
	names, err := r.rdb.HKeys(ctx, recordedPollsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("list recorded polls: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

// Close releases the cache.
func (r *KeyRegistry) Close() {
	r.cache.Close()
}
