package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"matcat/internal/infrastructure/observability"
)

// Metrics records request latency by route template, not raw path.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
