package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/podcastify/core/internal/pkg/response"
)

const rateLimitWindow = time.Second

// ThrottleFunc is told about each rejected request.
type ThrottleFunc func(ip, path string)

// RateLimit allows at most perSecond requests per client IP in each one-second
// window. Authenticated callers and Redis failures pass through.
func RateLimit(rdb *redis.Client, perSecond int, onThrottle ThrottleFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAuthenticated(c) || perSecond <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("podcastify:rate_limit:%s:%d", ip, time.Now().Unix())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, key, rateLimitWindow+time.Second)
		}

		if count > int64(perSecond) {
			if onThrottle != nil && count == int64(perSecond)+1 {
				go onThrottle(ip, c.Request.URL.Path)
			}
			c.Header("Retry-After", "1")
			response.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
