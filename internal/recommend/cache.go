package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long a skill's results are reused.
const DefaultCacheTTL = 6 * time.Hour

// Cache stores course lists by key.
type Cache interface {
	// Get returns the cached courses and whether the key was present.
	Get(ctx context.Context, key string) ([]Course, bool, error)
	Set(ctx context.Context, key string, courses []Course, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis string keys holding JSON.
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

// NewRedisCache creates a RedisCache whose keys start with prefix.
func NewRedisCache(client redis.Cmdable, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// NewRedisClient connects to the Redis server described by a redis:// URL and pings it.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]Course, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var courses []Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached courses: %w", err)
	}
	return courses, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, courses []Course, ttl time.Duration) error {
	data, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("failed to encode courses: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// CachedSource serves repeated skill lookups from a Cache. Cache errors are logged
// and otherwise ignored; only the wrapped source can fail a lookup.
type CachedSource struct {
	source Source
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// CacheOption configures a CachedSource.
type CacheOption func(*CachedSource)

// WithCacheLogger sets the logger used for cache failures.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(s *CachedSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCachedSource wraps source with cache.
func NewCachedSource(source Source, cache Cache, ttl time.Duration, opts ...CacheOption) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	s := &CachedSource{source: source, cache: cache, ttl: ttl, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Source.
func (s *CachedSource) Name() string {
	return s.source.Name()
}

// Search implements Source. The skill is lowercased and trimmed before both the
// cache lookup and the source query. Empty results are not cached.
func (s *CachedSource) Search(ctx context.Context, skill string, limit int) ([]Course, error) {
	skill = normalizeQuery(skill)
	key := cacheKey(s.source.Name(), skill, limit)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("course cache read failed", "key", key, "error", err)
	} else if ok {
		return cached, nil
	}

	courses, err := s.source.Search(ctx, skill, limit)
	if err != nil {
		return nil, err
	}

	if len(courses) > 0 {
		if err := s.cache.Set(ctx, key, courses, s.ttl); err != nil {
			s.logger.Warn("course cache write failed", "key", key, "error", err)
		}
	}
	return courses, nil
}

func cacheKey(source, skill string, limit int) string {
	return fmt.Sprintf("courses:%s:%d:%s", source, limit, skill)
}

func normalizeQuery(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}
