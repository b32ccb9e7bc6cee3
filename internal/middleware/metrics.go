package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/service"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/logger"
)

// Metrics returns middleware that captures request metrics using the provided service.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		// The Telegram webhook route is registered with the bot secret in
		// the path, which must not become a metric label.
		path = logger.RedactPath(path)
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, status, duration)
	}
}
