package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kidscholars/ksis-api/internal/service"
)

// Metrics records latency and status for every request, keyed by route
// template so path parameters do not explode the label space.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
