package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/servicios/internal/metrics"
)

// Metrics records request counts and latency labelled by the matched route pattern.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
