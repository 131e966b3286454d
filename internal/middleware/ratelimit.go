package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cse-motors/dealership/internal/config"
)

// NewLoginRateLimit returns a middleware that throttles login attempts per
// client IP using a fixed window counter in Redis.  The first attempt in a
// window creates the counter with an expiry; once the counter exceeds the
// configured maximum the request is rejected with 429 and a Retry-After
// hint.  When the limiter is disabled, or Redis is unreachable, requests
// pass through untouched - availability wins over throttling here.
func NewLoginRateLimit(cfg config.LoginLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := "rl:login:" + ip
			ctx := c.Request().Context()

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c) // degrade open on Redis failure
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}
			if n > int64(cfg.Max) {
				ttl, _ := rdb.TTL(ctx, key).Result()
				secs := int(ttl.Seconds())
				if secs < 0 {
					secs = int(cfg.Window.Seconds())
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error": "too many login attempts, try again later",
				})
			}
			return next(c)
		}
	}
}
