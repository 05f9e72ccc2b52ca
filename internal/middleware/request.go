package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sasamom-server/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

// RequestID tags each request with the caller's X-Request-ID, or a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// GetRequestIDFromContext returns the id set by RequestID.
func GetRequestIDFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(requestIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// RequestLogger logs one line per request through the structured logger.
// It should be used *after* RequestID.
func RequestLogger(baseLog *logger.Logger) gin.HandlerFunc {
	log := baseLog.With("middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		requestID, _ := GetRequestIDFromContext(c)
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("Request failed", append(fields, "errors", c.Errors.String())...)
		case c.Writer.Status() >= 400:
			log.Warn("Request rejected", fields...)
		default:
			log.Info("Request handled", fields...)
		}
	}
}
