package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/response"
)

const rateLimitWindow = time.Minute

// RateLimit counts requests per client in fixed one minute windows in Redis.
// Requests are let through when Redis is unavailable.
func RateLimit(redisClient redis.Cmdable, limit int, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		window := time.Now().Unix() / int64(rateLimitWindow.Seconds())
		key := fmt.Sprintf("rate_limit:%s:%d", rateLimitSubject(c), window)

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, rateLimitWindow)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		count := int(incr.Val())
		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		reset := (window + 1) * int64(rateLimitWindow.Seconds())

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset, 10))

		if count > limit {
			c.Header("Retry-After", strconv.FormatInt(reset-time.Now().Unix(), 10))
			response.Fail(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		c.Next()
	}
}

func rateLimitSubject(c *gin.Context) string {
	if userID, ok := GetUserIDFromContext(c); ok {
		return fmt.Sprintf("user:%d", userID)
	}
	return "ip:" + c.ClientIP()
}
