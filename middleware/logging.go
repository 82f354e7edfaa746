// logging.go - Request id, access log, panic recovery and request deadlines

package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "jobmarket.request_id"
)

// RequestID reuses the caller's X-Request-ID or generates one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(requestIDHeader, rid)
		c.Next()
	}
}

// RequestIDFrom returns the id assigned by RequestID, or "-" outside that middleware.
func RequestIDFrom(c *gin.Context) string {
	if rid := c.GetString(requestIDKey); rid != "" {
		return rid
	}
	return "-"
}

// AccessLog writes one line per request once the handler chain has finished.
func AccessLog(logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Printf("HTTP access | rid=%s ip=%s method=%s path=%s status=%d latency=%s bytes=%d",
			RequestIDFrom(c), c.ClientIP(), c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start), c.Writer.Size())
	}
}

// Recovery turns a panic in any handler into a generic 500. gin writes the
// stack to its error writer; the request id is logged here so the two lines can
// be matched.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Printf("[panic] rid=%s method=%s path=%s: %v", RequestIDFrom(c), c.Request.Method, c.Request.URL.Path, rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

// Timeout attaches a deadline to the request context; store calls observe it.
// WebSocket upgrades are long-lived and left alone.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 || c.IsWebsocket() {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
