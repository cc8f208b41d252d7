package dedup

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vivaahlink/vivaah-backend/internal/logger"
)

type redisCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisCache builds a Redis-backed dedup cache so multiple webhook
// replicas share one seen-set. Requires REDIS_ADDR. Entries expire instead of
// being evicted by count.
func NewRedisCache(log *logger.Logger) (Cache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCache{
		log: log.With("service", "RedisDedupCache"),
		rdb: rdb,
		ttl: 24 * time.Hour,
	}, nil
}

func key(messageID string) string {
	return "dedup:msg:" + messageID
}

func (c *redisCache) Seen(ctx context.Context, messageID string) bool {
	n, err := c.rdb.Exists(ctx, key(messageID)).Result()
	if err != nil {
		// Treat an unreachable cache as unseen; a duplicate slipping through
		// is cheaper than dropping a real message.
		c.log.Warn("Dedup lookup failed, treating as unseen", "error", err)
		return false
	}
	return n > 0
}

func (c *redisCache) Mark(ctx context.Context, messageID string) {
	if err := c.rdb.Set(ctx, key(messageID), "1", c.ttl).Err(); err != nil {
		c.log.Warn("Dedup mark failed", "message_id", messageID, "error", err)
	}
}
