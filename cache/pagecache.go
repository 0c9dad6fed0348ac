package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shelfwatch-product-harvester/config"
)

// PageCache memoizes fetched page bodies in redis, keyed by URL digest.
// A nil redis client degrades to a cache that never hits.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewPageCache(cfg *config.Config, client *redis.Client, logger *zap.SugaredLogger) *PageCache {
	ttl := time.Duration(cfg.Harvest.PageCacheTTLSec) * time.Second
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &PageCache{client: client, ttl: ttl, logger: logger}
}

func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "page:" + hex.EncodeToString(sum[:])
}

func (c *PageCache) Get(ctx context.Context, url string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	body, err := c.client.Get(ctx, Key(url)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warnw("page_cache_get_failed", "url", url, "err", err)
		}
		return nil, false
	}
	return body, true
}

func (c *PageCache) Put(ctx context.Context, url string, body []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, Key(url), body, c.ttl).Err(); err != nil {
		c.logger.Warnw("page_cache_put_failed", "url", url, "err", err)
	}
}
