package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/steemit/postsmanager/pkg/config"
	"github.com/steemit/postsmanager/pkg/logging"
)

const namespace = "postsmanager"

// Redis mirrors cache entries into Redis so a restarted process (or the
// warmer) can start from a populated cache. A nil *Redis is a disabled mirror.
type Redis struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

// NewRedis creates a new Redis mirror client
func NewRedis(cfg *config.RedisConfig) (*Redis, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis mirror disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established", zap.Duration("ttl", cfg.TTL))

	return &Redis{
		client: client,
		ctx:    context.Background(),
		ttl:    cfg.TTL,
	}, nil
}

// HashKey returns the md5 hex digest of the joined parts
func HashKey(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func (c *Redis) namespaceKey(key string) string {
	return namespace + ":" + key
}

// mirrorKey is the Redis key of an entry; the kind stays readable so that a
// whole kind can be dropped with one pattern.
func mirrorKey(key Key) string {
	return string(key.Kind) + ":" + HashKey(key.String())
}

// GetJSON loads a value stored with SetJSON
func (c *Redis) GetJSON(key string, out interface{}) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	data, err := c.client.Get(c.ctx, c.namespaceKey(key)).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// SetJSON stores value as JSON with the configured TTL
func (c *Redis) SetJSON(key string, value interface{}) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.client.Set(c.ctx, c.namespaceKey(key), data, c.ttl).Err()
}

// Delete removes a key from cache
func (c *Redis) Delete(key string) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Del(c.ctx, c.namespaceKey(key)).Err()
}

// DeletePrefix removes every key starting with prefix and returns how many were removed
func (c *Redis) DeletePrefix(prefix string) (int, error) {
	if c == nil || c.client == nil {
		return 0, ErrCacheDisabled
	}

	removed := 0
	iter := c.client.Scan(c.ctx, 0, c.namespaceKey(prefix)+"*", 100).Iterator()
	for iter.Next(c.ctx) {
		if err := c.client.Del(c.ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, iter.Err()
}

// Exists checks if a key exists
func (c *Redis) Exists(key string) (bool, error) {
	if c == nil || c.client == nil {
		return false, ErrCacheDisabled
	}
	count, err := c.client.Exists(c.ctx, c.namespaceKey(key)).Result()
	return count > 0, err
}

// Close closes the Redis connection
func (c *Redis) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Redis) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}

var (
	// ErrCacheDisabled is returned when mirror operations are attempted but Redis is disabled
	ErrCacheDisabled = fmt.Errorf("cache is disabled")
)
