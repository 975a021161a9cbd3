// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/your-org/foodiehub-backend/internal/config"
)

// CORS returns a middleware that handles Cross-Origin Resource Sharing
func CORS(cfg config.SecurityConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     cfg.CORSAllowedMethods,
		AllowHeaders:     cfg.CORSAllowedHeaders,
		ExposeHeaders:    []string{headerRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		AllowWildcard:    true,
		MaxAge:           24 * time.Hour,
	}

	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			// credentials cannot be combined with a literal wildcard origin
			corsCfg.AllowOriginFunc = func(string) bool { return true }
			corsCfg.AllowOrigins = nil
			return cors.New(corsCfg)
		}
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		corsCfg.AllowOriginFunc = func(string) bool { return false }
		return cors.New(corsCfg)
	}
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins

	return cors.New(corsCfg)
}
