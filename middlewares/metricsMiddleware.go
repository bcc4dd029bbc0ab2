package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/config"
)

// MetricsMiddleware counts requests and their duration. The path label is the route
// template (/api/equipment/:id), so ids do not blow up the label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		config.RequestCount.WithLabelValues(method, path, code).Inc()
		config.RequestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
	}
}
