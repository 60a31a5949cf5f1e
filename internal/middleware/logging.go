// internal/middleware/logging.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/filemart/internal/services"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		userID, _ := c.Get("user_id")
		entry := logrus.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   duration.Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
			"user_id":    userID,
		})

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request processed")
		case status >= 400:
			entry.Warn("Request processed")
		default:
			entry.Info("Request processed")
		}
	}
}

// AuditContext attaches the client address and user agent to the request
// context so activity rows written while serving it carry them.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" && c.Request.URL.Path != "/health" {
			ctx := services.WithClientInfo(c.Request.Context(), services.ClientInfo{
				IPAddress: c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
			})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
