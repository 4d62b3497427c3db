package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/kbm-attendance-api/pkg/middleware/requestid"
)

// Audit logs successful mutating requests together with the acting user.
func Audit(logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= 400 {
			return
		}
		fields := []zap.Field{
			zap.String("action", action),
			zap.String("resource", resource),
			zap.String("resource_id", c.Param("id")),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", requestid.Value(c)),
		}
		if claims := Claims(c); claims != nil {
			fields = append(fields, zap.String("user_id", claims.UserID), zap.String("role", string(claims.Role)))
		}
		logger.Info("audit", fields...)
	}
}
