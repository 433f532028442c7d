package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL bounds how stale a cached profile can get if an
	// invalidation is lost.
	DefaultCacheTTL = 5 * time.Minute

	versionKeyPrefix = CacheKeyPrefix + "version:"
	// versionTTL outlives any fill in progress by a wide margin.
	versionTTL = 24 * time.Hour
)

// CacheService is a JSON cache over Redis. A nil client disables it; every
// failure is logged and reported as a miss so callers fall through to storage.
// Each key has a generation counter that Delete bumps; fills go through
// SetIfVersion so a slow reader cannot overwrite a newer invalidation.
type CacheService struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewCacheService(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CacheService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheService{client: client, ttl: ttl, logger: logger}
}

// Get retrieves a value from cache
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	val, err := c.client.Get(ctx, CacheKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(val, dest); err != nil {
		c.logger.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

// Version returns the generation of key. Read it before loading the value
// to cache and pass it to SetIfVersion. ok is false when the cache is off or
// unreachable, in which case nothing should be cached.
func (c *CacheService) Version(ctx context.Context, key string) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}

	v, err := c.client.Get(ctx, versionKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		c.logger.Warn("cache version read failed", "key", key, "error", err)
		return 0, false
	}
	return v, true
}

// setIfVersion writes KEYS[1] only while KEYS[2] still holds the generation
// the caller read before loading the value.
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[2] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// SetIfVersion stores value with the service TTL unless key was deleted after
// version was read. It reports whether the value was stored.
func (c *CacheService) SetIfVersion(ctx context.Context, key string, value interface{}, version int64) bool {
	if c == nil || c.client == nil {
		return false
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache marshal failed", "key", key, "error", err)
		return false
	}

	stored, err := setIfVersion.Run(ctx, c.client,
		[]string{CacheKeyPrefix + key, versionKey(key)},
		string(data), strconv.FormatInt(version, 10), c.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
		return false
	}
	if stored == 0 {
		c.logger.Debug("cache fill skipped, entry changed while loading", "key", key)
	}
	return stored == 1
}

// Delete removes the given keys and bumps their generations, so a fill that
// started before the delete cannot write the old value back.
func (c *CacheService) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = CacheKeyPrefix + k
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, full...)
		for _, k := range keys {
			pipe.Incr(ctx, versionKey(k))
			pipe.Expire(ctx, versionKey(k), versionTTL)
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("cache delete failed", "keys", keys, "error", err)
	}
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}

func versionKey(key string) string {
	return versionKeyPrefix + key
}

func profileCacheKey(uid string) string {
	return CacheKey("profile", uid)
}
