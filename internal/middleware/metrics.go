package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kbm-attendance-api/internal/service"
)

const unmatchedRoute = "unmatched"

// probeRoutes are scraped or polled by infrastructure and stay out of request metrics.
var probeRoutes = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
	"/ready":   {},
}

// Metrics records request count and latency per route template. Unmatched routes share one
// label so arbitrary paths cannot grow the series count.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		path := c.FullPath()
		if _, probe := probeRoutes[path]; probe {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		if path == "" {
			path = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
