package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/response"
)

// Timeout puts a deadline on the request context. Handlers and the queries
// they run observe the deadline; when it passes before anything was written
// the client gets a 504. A non-positive timeout disables the deadline.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			response.Fail(c, http.StatusGatewayTimeout, "Request timeout")
		}
	}
}
