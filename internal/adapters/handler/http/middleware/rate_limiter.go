package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type RateLimit struct {
	// Scope prefixes the counter keys so separate limits never share a window.
	Scope  string
	Limit  int
	Window time.Duration
}

// limiterKey counts authenticated callers per user and everyone else per
// client IP.
func limiterKey(c *gin.Context, scope string) string {
	if userID, ok := GetUserID(c); ok {
		return "rate_limit:" + scope + ":user:" + userID
	}
	return "rate_limit:" + scope + ":ip:" + c.ClientIP()
}

// RateLimiterMiddleware is a fixed-window limiter backed by Redis. A counter
// left without an expiry gets one on the next hit. Redis failures let the
// request through.
func RateLimiterMiddleware(rdb *redis.Client, cfg RateLimit, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := limiterKey(c, cfg.Scope)

		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		ttlCmd := pipe.TTL(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			log.WithError(err).WithField("key", key).Warn("rate limiter skipped")
			c.Next()
			return
		}

		count := incr.Val()
		ttl := ttlCmd.Val()
		if ttl < 0 {
			if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
				log.WithError(err).WithField("key", key).Warn("rate limiter expire failed, dropping key")
				rdb.Del(ctx, key)
				c.Next()
				return
			}
			ttl = cfg.Window
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(cfg.Limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > int64(cfg.Limit) {
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"retry_in_s": int(ttl.Seconds()),
			})
			return
		}

		c.Next()
	}
}
