package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

const DefaultTotalTTL = 30 * time.Minute

var _ domain.TotalCache = (*RedisTotalCache)(nil)

// RedisTotalCache keeps per-user XP totals in Redis. Every failure is
// logged and treated as a miss: the ledger stays the source of truth.
type RedisTotalCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewRedisTotalCache(client *redis.Client, ttl time.Duration, log *logrus.Logger) *RedisTotalCache {
	if ttl <= 0 {
		ttl = DefaultTotalTTL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisTotalCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (c *RedisTotalCache) key(userID string) string {
	return fmt.Sprintf("xp_total:%s", userID)
}

func (c *RedisTotalCache) Get(ctx context.Context, userID string) (int64, bool) {
	key := c.key(userID)

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithField("user_id", userID).Warnf("cache: redis read error: %v", err)
		}
		return 0, false
	}

	total, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		c.log.WithField("user_id", userID).Warn("cache: corrupted total, cleaning up key")
		c.client.Del(ctx, key)
		return 0, false
	}
	return total, true
}

func (c *RedisTotalCache) Set(ctx context.Context, userID string, total int64) {
	if err := c.client.Set(ctx, c.key(userID), total, c.ttl).Err(); err != nil {
		c.log.WithField("user_id", userID).Warnf("cache: redis set error: %v", err)
	}
}

func (c *RedisTotalCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		c.log.WithField("user_id", userID).Errorf("cache: failed to invalidate total: %v", err)
	}
}
