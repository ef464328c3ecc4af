package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"voxform/internal/observe"
)

// Metrics records request latency by route template.
func Metrics(m *observe.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTP(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
