package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit creates a middleware that records an audit entry after successful
// mutating requests. Identity comes from the gateway in front of this service,
// carried in the X-Actor-Id header.
func Audit(logger *zap.Logger, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		logger.Info("audit",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.String("actor_id", c.GetHeader("X-Actor-Id")),
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")))
	}
}
