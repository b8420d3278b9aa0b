package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMiddleware logs every HTTP request handled by gin.
func HTTPMiddleware(log *slog.Logger) gin.HandlerFunc {
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			log.ErrorContext(c.Request.Context(), "HTTP request", attrs...)
		case c.Writer.Status() >= 400:
			log.WarnContext(c.Request.Context(), "HTTP request", attrs...)
		default:
			log.InfoContext(c.Request.Context(), "HTTP request", attrs...)
		}
	}
}
