package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"savingz.backend/pkg/logger"
)

// LoggerMiddleware logs HTTP requests using the structured logger
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		logger.LogRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}
