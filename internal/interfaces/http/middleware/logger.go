package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"write-space.backend/pkg/logger"
)

// LoggerMiddleware logs HTTP requests using the structured logger
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		// request_id and api_key_id are read from c.Request.Context()
		logger.LogRequest(c.Request.Context(), logger.RequestLog{
			Method:   c.Request.Method,
			Path:     path,
			Status:   c.Writer.Status(),
			Latency:  time.Since(start),
			ClientIP: c.ClientIP(),
			Bytes:    c.Writer.Size(),
		})
	}
}
