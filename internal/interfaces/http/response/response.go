// Package response writes the JSON envelope shared by every endpoint:
// {statusCode, message, data}.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/foodiehub-backend/internal/apperror"
)

// Envelope wraps every response body
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Meta       any    `json:"meta,omitempty"`
}

// OK writes a 200 response
func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{StatusCode: http.StatusOK, Message: message, Data: data})
}

// Created writes a 201 response
func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{StatusCode: http.StatusCreated, Message: message, Data: data})
}

// Paged writes a 200 response with pagination metadata
func Paged(c *gin.Context, message string, data, meta any) {
	c.JSON(http.StatusOK, Envelope{StatusCode: http.StatusOK, Message: message, Data: data, Meta: meta})
}

// Fail aborts the request with status and message
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{StatusCode: status, Message: message})
}

// Error maps err to a status code. Internal details stay in the request log
// and are never sent to the client.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)

	kind := apperror.KindOf(err)
	status := kind.HTTPStatus()
	if kind == apperror.KindInternal {
		Fail(c, status, "Internal server error")
		return
	}

	var appErr *apperror.Error
	message := err.Error()
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	Fail(c, status, message)
}
