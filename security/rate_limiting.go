package security

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles the proxy surface. The PIN gate is not behind
// this; failed login attempts are not limited.
type RateLimiter struct {
	redis    *redis.Client
	limit    int64
	interval time.Duration
}

func NewRateLimiter(redisClient *redis.Client, limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:    redisClient,
		limit:    int64(limit),
		interval: interval,
	}
}

// ProxyRateLimit caps requests per client IP within the configured interval
// using a redis counter. A redis error fails open.
func (r *RateLimiter) ProxyRateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			key := fmt.Sprintf("ratelimit:proxy:%s", ip)

			count, err := r.redis.Incr(c.Request().Context(), key).Result()
			if err == nil {
				if count == 1 {
					r.redis.Expire(c.Request().Context(), key, r.interval)
				}
				if count > r.limit {
					return c.JSON(429, map[string]string{
						"error": "Too many requests",
					})
				}
			}

			return next(c)
		}
	}
}
