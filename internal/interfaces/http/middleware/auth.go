// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/response"
	"github.com/your-org/foodiehub-backend/internal/pkg/auth"
)

// Context keys set by Auth
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
	ContextIsAdmin   = "is_admin"
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// Auth creates JWT authentication middleware. The caller's identity is
// stored in the gin context and passed explicitly to services by handlers.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Fail(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			response.Fail(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := validator.ValidateAccessToken(tokenString)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextIsAdmin, claims.IsAdmin())

		c.Next()
	}
}

// RequireAdmin ensures the user is an admin. It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserIDFromContext(c); !ok {
			response.Fail(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !IsAdminFromContext(c) {
			response.Fail(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// IsAdminFromContext checks if user is admin from gin context
func IsAdminFromContext(c *gin.Context) bool {
	return c.GetBool(ContextIsAdmin)
}
