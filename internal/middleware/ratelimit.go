package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns an Echo middleware enforcing a fixed-window
// per-user request limit backed by Redis.  Each user gets `limit`
// requests per minute on the wrapped routes; beyond that the request
// is rejected with 429.  With a nil Redis client the middleware is a
// passthrough, so losing Redis degrades to no limiting rather than
// blocking bookings.  Must run after JWTAuth so the user ID is set.
func RateLimit(rdb *redis.Client, limit int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil || limit <= 0 {
				return next(c)
			}
			userID, ok := c.Get("user_id").(uint64)
			if !ok {
				return next(c)
			}

			ctx := c.Request().Context()
			key := fmt.Sprintf("ratelimit:booking:%d:%d", userID, time.Now().Unix()/60)
			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Redis trouble must not take bookings down.
				log.Printf("ratelimit: incr failed: %v", err)
				return next(c)
			}
			if n == 1 {
				if err := rdb.Expire(ctx, key, time.Minute).Err(); err != nil {
					log.Printf("ratelimit: expire failed: %v", err)
				}
			}
			if n > int64(limit) {
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many booking requests, slow down"})
			}
			return next(c)
		}
	}
}
