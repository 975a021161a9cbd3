package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/middleware"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/response"
)

// idParam parses a positive numeric path parameter, writing a 400 when it is malformed
func idParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusBadRequest, "Invalid "+label)
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the authenticated caller, writing a 401 when there is none
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Authentication required")
		return 0, false
	}
	return userID, true
}
