package evaluate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by [Cache.Get] when no entry exists for the key.
var ErrCacheMiss = errors.New("evaluation not cached")

// Cache stores evaluation results keyed by the (correct line, spoken text)
// pair. The same attempt against the same line always yields the same
// verdict, so repeated drilling of a line never pays for a second remote
// judgement.
type Cache interface {
	Get(ctx context.Context, correct, spoken string) (Result, error)
	Set(ctx context.Context, correct, spoken string, result Result) error
}

// cacheKey derives a fixed-length key from the line pair. The NUL separator
// keeps ("ab","c") and ("a","bc") distinct.
func cacheKey(correct, spoken string) string {
	sum := sha256.Sum256([]byte(correct + "\x00" + spoken))
	return "linecue:eval:" + hex.EncodeToString(sum[:])
}

// defaultCacheTTL bounds how long a cached verdict lives. Long enough to
// cover a rehearsal session, short enough that prompt changes roll out within
// a day.
const defaultCacheTTL = 24 * time.Hour

// RedisCache implements [Cache] on a Redis instance.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// RedisCacheOption is a functional option for configuring a [RedisCache].
type RedisCacheOption func(*RedisCache)

// WithTTL overrides the default 24h entry lifetime.
func WithTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisCache) {
		c.ttl = ttl
	}
}

// NewRedisCache creates a RedisCache talking to the given address
// (host:port). It pings the server once to fail fast on misconfiguration.
func NewRedisCache(ctx context.Context, addr string, opts ...RedisCacheOption) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("evaluate: redis ping %q: %w", addr, err)
	}

	c := &RedisCache{client: client, ttl: defaultCacheTTL}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, correct, spoken string) (Result, error) {
	data, err := c.client.Get(ctx, cacheKey(correct, spoken)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Result{}, ErrCacheMiss
	}
	if err != nil {
		return Result{}, fmt.Errorf("evaluate: redis get: %w", err)
	}

	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("evaluate: decode cached result: %w", err)
	}
	return r, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, correct, spoken string, result Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("evaluate: encode result: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(correct, spoken), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("evaluate: redis set: %w", err)
	}
	return nil
}

// Ping probes the Redis connection, for readiness checks.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
