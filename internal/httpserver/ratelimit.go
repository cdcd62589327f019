package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitWindow = 15 * time.Minute
	rateLimitMax    = 100
)

// RateLimiter returns a fixed-window per-IP limiter backed by Redis:
// 100 requests per 15 minutes. On Redis failure requests pass through
// rather than taking the API down.
func RateLimiter(client *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "ratelimit:" + c.ClientIP()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, rateLimitWindow)
		}
		if count > rateLimitMax {
			ttl, _ := client.TTL(ctx, key).Result()
			c.Header("Retry-After", ttl.Round(time.Second).String())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests from this IP, please try again later",
			})
			return
		}
		c.Next()
	}
}
