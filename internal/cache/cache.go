package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/config"
)

// Cache is a thin cache-aside layer over Redis for vendor API
// responses (insights, keyword stats). A missing or unreachable Redis
// degrades to no caching instead of failing requests.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

func New(cfg *config.CacheConfig, logger *zap.Logger) *Cache {
	if cfg.Addr == "" {
		logger.Info("Cache disabled, no Redis address configured")
		return &Cache{logger: logger}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, continuing without cache", zap.Error(err))
		return &Cache{logger: logger}
	}

	logger.Info("Redis connected", zap.String("addr", cfg.Addr))
	return &Cache{client: client, logger: logger}
}

func (c *Cache) Close() {
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			c.logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
}

// GetJSON reads the key into dest. Returns (true, nil) on a hit,
// (false, nil) on a miss or when caching is disabled.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	s, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it with the TTL; best-effort.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}
