package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-space/core/internal/pkg/response"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns a middleware that enforces a fixed-window per-IP rate
// limit using Redis. When Redis is unreachable the request is allowed
// through rather than blocked.
func RateLimit(rdb *redis.Client, name string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		bucket := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("folio:rate_limit:%s:%s:%d", name, ip, bucket)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, key, window+time.Second)
		}

		if count > int64(max) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			response.TooManyRequests(c, "too many requests, slow down")
			return
		}

		c.Next()
	}
}
