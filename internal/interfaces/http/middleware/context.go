package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/troves/backend/internal/interfaces/http/dto"
)

// Gin context keys set by this package
const (
	RequestIDKey = "request_id"
	SessionIDKey = "session_id"
	ClaimsKey    = "admin_claims"
)

// Header names
const (
	RequestIDHeader = "X-Request-ID"
	SessionIDHeader = "X-Session-ID"
)

// GetRequestID returns the request ID assigned by RequestID
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}

// GetSessionID returns the storefront session bound by Session
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
