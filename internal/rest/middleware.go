package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KilimcininKorOglu/obaschema/internal/logging"
)

// LoggingMiddleware logs every request except health checks.
func LoggingMiddleware(logger logging.Logger) gin.HandlerFunc {
	restLogger := logger.WithFields("component", "rest")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == "/health" {
			return
		}
		restLogger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"remoteAddr", c.ClientIP(),
		)
	}
}

// RecoveryMiddleware turns a panic into a 500 response.
func RecoveryMiddleware(logger logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered", "error", recovered, "path", c.Request.URL.Path)
		fail(c, http.StatusInternalServerError, "internal server error")
	})
}
