package response

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/podcastify/core/internal/pkg/apperr"
)

// Envelope is the body of every JSON API response.
type Envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Total   *int64              `json:"total,omitempty"`
	HasMore *bool               `json:"hasMore,omitempty"`
	Detail  string              `json:"detail,omitempty"`
}

var verbose atomic.Bool

// SetVerbose toggles error details in failure responses. Off in production.
func SetVerbose(on bool) {
	verbose.Store(on)
}

// OK sends a 200 response carrying data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created sends a 201 response carrying data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Done sends a bare {success:true}.
func Done(c *gin.Context) {
	c.JSON(http.StatusOK, Envelope{Success: true})
}

// List sends one page of items with the total match count.
func List(c *gin.Context, data any, total int64, hasMore bool) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Total: &total, HasMore: &hasMore})
}

// Error maps err to its status and aborts with a failure envelope.
func Error(c *gin.Context, err error) {
	body := Envelope{Error: apperr.PublicMessage(err)}
	var e *apperr.Error
	if errors.As(err, &e) && e.Kind == apperr.KindValidation {
		body.Errors = e.Fields
	}
	if verbose.Load() {
		body.Detail = fmt.Sprintf("%+v", err)
	}
	c.AbortWithStatusJSON(apperr.Status(err), body)
}

// Fail aborts with status and a plain message.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Error: message})
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	Fail(c, http.StatusUnauthorized, "authentication required")
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	Fail(c, http.StatusConflict, message)
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context) {
	Fail(c, http.StatusTooManyRequests, "too many requests, slow down")
}
