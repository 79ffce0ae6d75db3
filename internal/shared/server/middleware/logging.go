package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"housy-backend/internal/shared/metrics"
	"housy-backend/internal/shared/telemetry"
)

// Logging emits a structured log line and records request metrics.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		metrics.ObserveHTTPRequest(c.Request.Method, c.FullPath(), status, latency)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"role":        string(RoleFromContext(c)),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		for _, key := range []string{"propertyId", "photoId"} {
			if v, ok := c.Get(key); ok {
				fields[key] = v
			}
		}

		telemetry.Info("request.complete", fields)
	}
}
