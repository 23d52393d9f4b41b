// Package middleware holds the gin middleware shared by every route.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"

	"secretsanta/internal/auth"
	"secretsanta/internal/models"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

// RequestObserver receives one call per finished request.
type RequestObserver interface {
	ObserveRequest(method, route, code string)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer <token>" header.
func BearerAuth(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "Token not provided")
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			unauthorized(c, "Invalid token format, use: Bearer TOKEN")
			return
		}

		if err := verifier.Verify(parts[1]); err != nil {
			logger.Warningf("Rejected token for %s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, RequestID(c), err)
			unauthorized(c, "Invalid or expired token")
			return
		}
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   models.CodeUnauthorized,
		Message: message,
	})
}

// WithRequestID tags every request with an id, reusing the caller's X-Request-ID when present.
func WithRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestID returns the id assigned by WithRequestID.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// WithLogging logs every request and reports it to observer, which may be nil.
func WithLogging(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		logger.Infof("%s %s -> %d in %dms [%s]",
			c.Request.Method, c.Request.URL.Path, status, time.Since(start).Milliseconds(), RequestID(c))

		if observer != nil {
			observer.ObserveRequest(c.Request.Method, route, strconv.Itoa(status))
		}
	}
}

// CORS allows browser clients from origin to call the API.
func CORS(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, "+RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", RequestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
